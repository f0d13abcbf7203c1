package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	dir   string
	repo  *gitlib.Repository
	ticks int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInitWithOptions(dir, &gitlib.PlainInitOptions{
		InitOptions: gitlib.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))
	return &fixture{t: t, dir: dir, repo: repo}
}

func (f *fixture) write(name, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *fixture) remove(name string) {
	f.t.Helper()
	require.NoError(f.t, os.Remove(filepath.Join(f.dir, filepath.FromSlash(name))))
}

func (f *fixture) read(name string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, filepath.FromSlash(name)))
	require.NoError(f.t, err)
	return string(data)
}

func (f *fixture) exists(name string) bool {
	_, err := os.Lstat(filepath.Join(f.dir, filepath.FromSlash(name)))
	return err == nil
}

// commit stages every change and records a commit one hour after the
// previous one.
func (f *fixture) commit(message string) plumbing.Hash {
	f.t.Helper()
	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)
	require.NoError(f.t, wt.AddWithOptions(&gitlib.AddOptions{All: true}))
	when := baseTime.Add(time.Duration(f.ticks) * time.Hour)
	f.ticks++
	hash, err := wt.Commit(message, &gitlib.CommitOptions{
		Author:            &object.Signature{Name: "Test", Email: "test@example.com", When: when},
		AllowEmptyCommits: true,
	})
	require.NoError(f.t, err)
	return hash
}

// backend opens the fixture with a clock one day after the latest commit.
func (f *fixture) backend() *Backend {
	f.t.Helper()
	b, err := Open(f.dir)
	require.NoError(f.t, err)
	b.now = func() time.Time { return baseTime.Add(time.Duration(f.ticks)*time.Hour + 24*time.Hour) }
	return b
}
