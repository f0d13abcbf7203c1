package vcs

import (
	"errors"
	"fmt"
)

var (
	ErrNotARepository = errors.New("not a git or jj repository")
	ErrInvalidRef     = errors.New("invalid reference")
	ErrFileNotFound   = errors.New("file not found")
	ErrIO             = errors.New("i/o error")
)

// Kind is the closed set of failure categories callers can branch on.
type Kind int

const (
	KindOther Kind = iota
	KindNotARepository
	KindInvalidRef
	KindFileNotFound
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotARepository:
		return "not-a-repository"
	case KindInvalidRef:
		return "invalid-ref"
	case KindFileNotFound:
		return "file-not-found"
	case KindIO:
		return "io"
	default:
		return "other"
	}
}

// KindOf reports which category err belongs to. Unrecognised errors are
// KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrNotARepository):
		return KindNotARepository
	case errors.Is(err, ErrInvalidRef):
		return KindInvalidRef
	case errors.Is(err, ErrFileNotFound):
		return KindFileNotFound
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindOther
	}
}

// RefError is returned when a reference or revset does not resolve. Hint is
// set when the string looks like syntax from the other VCS and carries the
// suggested replacement.
type RefError struct {
	Ref    string
	Hint   string
	Reason string
	Err    error
}

func (e *RefError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("'%s' is git syntax, use '%s' instead", e.Ref, e.Hint)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRef, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRef, e.Ref)
}

func (e *RefError) Is(target error) bool {
	return target == ErrInvalidRef
}

func (e *RefError) Unwrap() error {
	return e.Err
}

type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFileNotFound, e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// IOError wraps a filesystem failure with the operation that caused it.
func IOError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
