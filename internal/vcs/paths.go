package vcs

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

var (
	errEmptyPath    = errors.New("path is empty")
	errAbsolutePath = errors.New("path must be repository-relative")
	errParentPath   = errors.New("path cannot contain '..'")
)

// ValidateRepoRelativePath rejects paths that could escape the working copy.
// It performs no I/O.
func ValidateRepoRelativePath(p string) error {
	if p == "" {
		return errEmptyPath
	}
	if filepath.IsAbs(p) || path.IsAbs(p) || filepath.VolumeName(p) != "" {
		return errAbsolutePath
	}
	for _, part := range strings.FieldsFunc(p, isSeparator) {
		if part == ".." {
			return errParentPath
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// ValidateRef rejects references that could be mistaken for command-line
// options.
func ValidateRef(ref string) error {
	if strings.HasPrefix(strings.TrimSpace(ref), "-") {
		return &RefError{Ref: ref, Reason: fmt.Sprintf("references cannot start with '-': %s", ref)}
	}
	return nil
}

// SplitRange splits "from...to" or "from..to". The three-dot form is checked
// first so it is never read as a two-dot range.
func SplitRange(s string) (from, to string, threeDot, ok bool) {
	if from, to, found := strings.Cut(s, "..."); found {
		return strings.TrimSpace(from), strings.TrimSpace(to), true, from != "" && to != ""
	}
	if from, to, found := strings.Cut(s, ".."); found {
		return strings.TrimSpace(from), strings.TrimSpace(to), false, from != "" && to != ""
	}
	return "", "", false, false
}
