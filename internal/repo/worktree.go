package repo

import (
	"github.com/thiagokokada/vcsdiff/internal/vcs"
	"github.com/thiagokokada/vcsdiff/internal/vcs/git"
)

// The helpers below operate on the git repository containing path, which
// for a colocated jj repository is its backing git store.

func Snapshot(path string) (vcs.Snapshot, error) {
	b, err := git.Open(path)
	if err != nil {
		return vcs.Snapshot{}, err
	}
	return b.Snapshot()
}

func History(path string, limit int) ([]vcs.HistoryCommit, error) {
	b, err := git.Open(path)
	if err != nil {
		return nil, err
	}
	return b.History(limit)
}

func CommitFiles(path, commitID string) ([]vcs.CommitFile, error) {
	b, err := git.Open(path)
	if err != nil {
		return nil, err
	}
	return b.CommitFiles(commitID)
}

func CommitFileVersions(path, commitID, file, previousPath string) (vcs.FileVersions, error) {
	b, err := git.Open(path)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	return b.CommitFileVersions(commitID, file, previousPath)
}

func FileVersions(path, file string, bucket vcs.DiffBucket) (vcs.FileVersions, error) {
	if err := vcs.ValidateRepoRelativePath(file); err != nil {
		return vcs.FileVersions{}, err
	}
	b, err := git.Open(path)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	return b.FileVersions(file, bucket)
}

func StageFile(path, file string) error {
	return withGit(path, file, func(b *git.Backend) error { return b.StageFile(file) })
}

func UnstageFile(path, file string) error {
	return withGit(path, file, func(b *git.Backend) error { return b.UnstageFile(file) })
}

func DiscardFile(path, file string, bucket vcs.DiffBucket) error {
	return withGit(path, file, func(b *git.Backend) error { return b.DiscardFile(file, bucket) })
}

func StageAll(path string) error {
	return withGit(path, "", (*git.Backend).StageAll)
}

func UnstageAll(path string) error {
	return withGit(path, "", (*git.Backend).UnstageAll)
}

func DiscardAll(path string) error {
	return withGit(path, "", (*git.Backend).DiscardAll)
}

func CommitStaged(path, message string) (string, error) {
	b, err := git.Open(path)
	if err != nil {
		return "", err
	}
	return b.CommitStaged(message)
}

// withGit validates file, when given, before the repository is touched.
func withGit(path, file string, fn func(*git.Backend) error) error {
	if file != "" {
		if err := vcs.ValidateRepoRelativePath(file); err != nil {
			return err
		}
	}
	b, err := git.Open(path)
	if err != nil {
		return err
	}
	return fn(b)
}
