// Package vcs defines the contract shared by the git and jj backends together
// with the values, errors and policies both of them apply.
package vcs

// MaxLogEntries caps the number of lines CommitLogForFzf returns.
const MaxLogEntries = 100

// Backend is implemented once per supported VCS. A Backend value belongs to
// a single logical operation and must not be used from several goroutines;
// concurrent callers open their own.
type Backend interface {
	// Name returns a short identifier such as "git" or "jj".
	Name() string
	// Root returns the absolute path of the working copy root.
	Root() string

	// Commit resolves ref and returns it with its diff against the first
	// parent, or against the empty tree for root commits.
	Commit(ref string) (CommitInfo, error)
	// WorkingTreeDiff compares index to worktree, or HEAD to index when
	// staged is set. Backends without an index ignore staged.
	WorkingTreeDiff(staged bool) (string, error)
	// RangeDiff compares from with to, or the merge base of both with to
	// when threeDot is set.
	RangeDiff(from, to string, threeDot bool) (string, error)
	// ChangedFiles accepts a single reference or a "from..to" /
	// "from...to" range.
	ChangedFiles(ref string) ([]string, error)
	// FileContentAtRef fails with ErrFileNotFound when path is missing or
	// is not a regular file at ref.
	FileContentAtRef(ref, path string) (string, error)
	// CurrentBranch reports false when the working copy is not on a named
	// branch or bookmark.
	CurrentBranch() (string, bool, error)
	ResolveRef(ref string) (string, error)
	// CommitLogForFzf returns at most MaxLogEntries lines, most recent
	// first. Lines may embed ANSI display hints; see StripDisplayHints.
	CommitLogForFzf() (string, error)
	WorkingTreeChangedFiles() ([]string, error)
	MergeBase(ref1, ref2 string) (string, error)
	// WorkingCopyParentRef is the syntax meaning "one step behind the
	// working copy".
	WorkingCopyParentRef() string
	RangeChangedFiles(from, to string) ([]string, error)
	// ParentRefOrEmpty names the first parent of ref, or the backend's
	// empty anchor when ref has no parent.
	ParentRefOrEmpty(ref string) (string, error)
	// CommitsInRange lists commits in to but not in from, oldest first,
	// leaving out commits without changed files.
	CommitsInRange(from, to string) ([]StackedCommitInfo, error)
}
