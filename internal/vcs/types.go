package vcs

import (
	"fmt"
	"strings"
)

// CommitInfo describes one resolved commit together with its diff against
// its first parent.
type CommitInfo struct {
	CommitID string
	ChangeID string
	Message  string
	Author   string
	Date     string
	Diff     string
}

// StackedCommitInfo is one entry of CommitsInRange.
type StackedCommitInfo struct {
	CommitID string
	ShortID  string
	ChangeID string
	Summary  string
}

type SnapshotFile struct {
	Path         string
	PreviousPath string
	Status       string
}

// Snapshot is the bucketed status of a working copy.
type Snapshot struct {
	RepoRoot  string
	Branch    string
	Unstaged  []SnapshotFile
	Staged    []SnapshotFile
	Untracked []SnapshotFile
}

type HistoryCommit struct {
	CommitID     string
	ShortID      string
	Summary      string
	Author       string
	RelativeTime string
}

type CommitFile struct {
	Path         string
	PreviousPath string
	Status       string
}

type DiffFile struct {
	Name     string
	Contents string
}

// FileVersions holds both sides of a file comparison. A nil side means the
// file does not exist there.
type FileVersions struct {
	Old *DiffFile
	New *DiffFile
}

type DiffBucket int

const (
	BucketUnstaged DiffBucket = iota
	BucketStaged
	BucketUntracked
)

func (b DiffBucket) String() string {
	switch b {
	case BucketStaged:
		return "staged"
	case BucketUntracked:
		return "untracked"
	default:
		return "unstaged"
	}
}

func ParseDiffBucket(s string) (DiffBucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unstaged":
		return BucketUnstaged, nil
	case "staged":
		return BucketStaged, nil
	case "untracked":
		return BucketUntracked, nil
	default:
		return BucketUnstaged, fmt.Errorf("invalid bucket %q: expected unstaged, staged or untracked", s)
	}
}

// Type names a VCS implementation.
type Type int

const (
	TypeNone Type = iota
	TypeGit
	TypeJj
)

func (t Type) String() string {
	switch t {
	case TypeGit:
		return "git"
	case TypeJj:
		return "jj"
	default:
		return "none"
	}
}

// ParseType accepts "git" or "jj". The empty string and "auto" map to
// TypeNone, which callers treat as "detect".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TypeNone, nil
	case "git":
		return TypeGit, nil
	case "jj":
		return TypeJj, nil
	default:
		return TypeNone, fmt.Errorf("unknown backend %q", s)
	}
}
