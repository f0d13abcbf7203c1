package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func TestDetect(t *testing.T) {
	root := t.TempDir()
	gitOnly := filepath.Join(root, "git")
	colocated := filepath.Join(root, "colocated")
	worktree := filepath.Join(root, "linked")
	plain := filepath.Join(root, "plain")
	for _, dir := range []string{
		filepath.Join(gitOnly, ".git"),
		filepath.Join(gitOnly, "src", "pkg"),
		filepath.Join(colocated, ".git"),
		filepath.Join(colocated, ".jj"),
		filepath.Join(colocated, "nested"),
		worktree,
		plain,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: /elsewhere\n"), 0o644))

	assert.Equal(t, vcs.TypeGit, Detect(gitOnly))
	assert.Equal(t, vcs.TypeGit, Detect(filepath.Join(gitOnly, "src", "pkg")))
	assert.Equal(t, vcs.TypeJj, Detect(colocated))
	assert.Equal(t, vcs.TypeJj, Detect(filepath.Join(colocated, "nested")))
	assert.Equal(t, vcs.TypeGit, Detect(worktree))
	assert.Equal(t, vcs.TypeNone, Detect(plain))
}

func TestOpenOutsideRepository(t *testing.T) {
	_, err := Open(t.TempDir(), Options{})
	require.ErrorIs(t, err, vcs.ErrNotARepository)
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInitWithOptions(dir, &gitlib.PlainInitOptions{
		InitOptions: gitlib.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("v1\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("notes.md")
	require.NoError(t, err)
	_, err = wt.Commit("add notes", &gitlib.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	})
	require.NoError(t, err)
	return dir
}

func TestOpenDetectsGit(t *testing.T) {
	dir := initRepo(t)

	b, err := Open(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, "git", b.Name())

	b, err = Open(dir, Options{Backend: vcs.TypeGit})
	require.NoError(t, err)
	assert.Equal(t, "git", b.Name())
}

func TestWorkingCopyHelpers(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("v2\n"), 0o644))

	require.ErrorContains(t, StageFile(dir, "../x"), "path cannot contain '..'")
	require.NoError(t, StageFile(dir, "notes.md"))

	snap, err := Snapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "notes.md", Status: vcs.LabelModified}}, snap.Staged)

	versions, err := FileVersions(dir, "notes.md", vcs.BucketStaged)
	require.NoError(t, err)
	assert.Equal(t, "v1\n", versions.Old.Contents)
	assert.Equal(t, "v2\n", versions.New.Contents)

	id, err := CommitStaged(dir, "update notes")
	require.NoError(t, err)

	history, err := History(dir, 5)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, id, history[0].CommitID)

	files, err := CommitFiles(dir, id)
	require.NoError(t, err)
	assert.Equal(t, []vcs.CommitFile{{Path: "notes.md", Status: vcs.LabelModified}}, files)

	commitVersions, err := CommitFileVersions(dir, id, "notes.md", "")
	require.NoError(t, err)
	assert.Equal(t, "v1\n", commitVersions.Old.Contents)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x\n"), 0o644))
	require.NoError(t, StageAll(dir))
	require.NoError(t, UnstageAll(dir))
	require.NoError(t, DiscardFile(dir, "scratch.txt", vcs.BucketUntracked))
	require.NoError(t, DiscardAll(dir))

	snap, err = Snapshot(dir)
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Empty(t, snap.Untracked)
}
