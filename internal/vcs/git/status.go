package git

import (
	"sort"

	gitlib "github.com/go-git/go-git/v5"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

// statusFlags translates go-git's two-column status into vcs flags.
func statusFlags(fs *gitlib.FileStatus) vcs.StatusFlags {
	var f vcs.StatusFlags
	switch fs.Staging {
	case gitlib.Added, gitlib.Copied:
		f |= vcs.IndexNew
	case gitlib.Modified:
		f |= vcs.IndexModified
	case gitlib.Deleted:
		f |= vcs.IndexDeleted
	case gitlib.Renamed:
		f |= vcs.IndexRenamed
	case gitlib.UpdatedButUnmerged:
		f |= vcs.Conflicted
	}
	switch fs.Worktree {
	case gitlib.Modified:
		f |= vcs.WtModified
	case gitlib.Deleted:
		f |= vcs.WtDeleted
	case gitlib.Renamed:
		f |= vcs.WtRenamed
	case gitlib.Untracked, gitlib.Added:
		f |= vcs.WtNew
	case gitlib.UpdatedButUnmerged:
		f |= vcs.Conflicted
	}
	return f
}

// Snapshot buckets every changed path of the working copy. Each bucket is
// sorted by path.
func (b *Backend) Snapshot() (vcs.Snapshot, error) {
	snap := vcs.Snapshot{
		RepoRoot:  b.root,
		Unstaged:  []vcs.SnapshotFile{},
		Staged:    []vcs.SnapshotFile{},
		Untracked: []vcs.SnapshotFile{},
	}
	branch, ok, err := b.CurrentBranch()
	if err != nil {
		return snap, err
	}
	snap.Branch = "HEAD"
	if ok {
		snap.Branch = branch
	}

	st, err := b.status()
	if err != nil {
		return snap, err
	}
	for path, fs := range st {
		if vcs.ShouldExclude(path) {
			continue
		}
		var prev string
		if fs.Staging == gitlib.Renamed || fs.Worktree == gitlib.Renamed {
			prev = fs.Extra
		}
		for _, e := range vcs.Classify(statusFlags(fs)) {
			file := vcs.SnapshotFile{Path: path, PreviousPath: prev, Status: e.Status}
			switch e.Bucket {
			case vcs.BucketStaged:
				snap.Staged = append(snap.Staged, file)
			case vcs.BucketUntracked:
				snap.Untracked = append(snap.Untracked, file)
			default:
				snap.Unstaged = append(snap.Unstaged, file)
			}
		}
	}
	for _, bucket := range [][]vcs.SnapshotFile{snap.Unstaged, snap.Staged, snap.Untracked} {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Path < bucket[j].Path })
	}
	return snap, nil
}
