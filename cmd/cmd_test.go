package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("VCSDIFF_WORKSPACE__FILE", filepath.Join(home, "workspace.toml"))

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
	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.dir, name), []byte(content), 0o644))
}

func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.AddWithOptions(&gitlib.AddOptions{All: true}))
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now().Add(-time.Hour)}
	h, err := wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig})
	require.NoError(r.t, err)
	return h.String()
}

// vcsdiff runs the CLI against the repository with colours disabled.
func (r *testRepo) vcsdiff(args ...string) (string, error) {
	r.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--color", "never", "--repo", r.dir}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), err
}

func (r *testRepo) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.vcsdiff(args...)
	require.NoError(r.t, err, "vcsdiff %s", strings.Join(args, " "))
	return out
}

func TestDiffOutputs(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\ntwo\nthree\n")
	r.commit("initial")
	r.write("a.txt", "one\n2\nthree\n")

	raw := r.mustRun("diff", "--raw")
	assert.Contains(t, raw, "--- a/a.txt\n+++ b/a.txt\n")
	assert.Contains(t, raw, "@@ -1,3 +1,3 @@\n one\n-two\n+2\n three\n")

	pretty := r.mustRun("diff")
	assert.Equal(t, "diff --git a/a.txt b/a.txt\n@@ -1,3 +1,3 @@\n one\n-two\n+2\n three\n", pretty)

	stat := r.mustRun("diff", "--stat")
	assert.Equal(t, " a.txt | +1 -1\n 1 file changed, 1 insertion(+), 1 deletion(-)\n", stat)

	assert.Empty(t, r.mustRun("diff", "--staged"))
}

func TestStageStatusCommitFlow(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("initial")
	r.write("a.txt", "uno dos\n")
	r.write("new.txt", "fresh\n")

	status := r.mustRun("status")
	assert.Contains(t, status, "On main in "+r.dir)
	assert.Contains(t, status, "Unstaged:\n  modified     a.txt\n")
	assert.Contains(t, status, "Untracked:\n  untracked    new.txt\n")

	r.mustRun("stage", "a.txt")
	status = r.mustRun("status")
	assert.Contains(t, status, "Staged:\n  modified     a.txt\n")
	assert.Contains(t, r.mustRun("diff", "--staged", "--raw"), "-one\n+uno dos\n")

	_, err := r.vcsdiff("stage")
	assert.EqualError(t, err, "a path or --all is required")
	_, err = r.vcsdiff("stage", "../escape")
	assert.Error(t, err)

	r.mustRun("stage", "--all")
	id := strings.TrimSpace(r.mustRun("commit", "-m", "second"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40}$`), id)
	assert.Equal(t, "On main in "+r.dir+"\nnothing to commit, working tree clean\n", r.mustRun("status"))

	history := r.mustRun("history", "--limit", "1")
	assert.True(t, strings.HasPrefix(history, id[:7]+" second (Test, "), history)

	files := r.mustRun("commit-files", id)
	assert.Equal(t, "modified     a.txt\nadded        new.txt\n", files)

	_, err = r.vcsdiff("commit", "-m", "  ")
	assert.EqualError(t, err, "commit message is empty")
}

func TestDiscard(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("initial")
	r.write("a.txt", "changed\n")
	r.write("junk.txt", "junk\n")

	_, err := r.vcsdiff("discard", "a.txt")
	assert.EqualError(t, err, "--bucket is required when discarding a path")

	r.mustRun("discard", "--bucket", "unstaged", "a.txt")
	data, err := os.ReadFile(filepath.Join(r.dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))

	r.mustRun("discard", "--bucket", "unstaged", "junk.txt")
	assert.FileExists(t, filepath.Join(r.dir, "junk.txt"))

	r.mustRun("discard", "--bucket", "untracked", "junk.txt")
	assert.NoFileExists(t, filepath.Join(r.dir, "junk.txt"))
}

func TestQueries(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	first := r.commit("first")
	r.write("a.txt", "two two\n")
	r.write("b.txt", "bee\n")
	second := r.commit("second\n\nbody line")

	show := r.mustRun("show")
	assert.True(t, strings.HasPrefix(show, "commit "+second+"\n"), show)
	assert.Contains(t, show, "Author: Test <test@example.com>\n")
	assert.Contains(t, show, "    second\n    \n    body line\n")
	assert.Contains(t, show, "-one\n+two two\n")

	assert.Equal(t, second+"\n", r.mustRun("resolve", "HEAD"))
	assert.Equal(t, "main\n", r.mustRun("branch"))
	assert.Equal(t, "HEAD^\n", r.mustRun("parent"))
	assert.Equal(t, "a.txt\nb.txt\n", r.mustRun("files"))
	assert.Equal(t, "a.txt\nb.txt\n", r.mustRun("files", first+".."+second))
	assert.Equal(t, "a.txt\nb.txt\n", r.mustRun("files", "--range", first, second))
	assert.Equal(t, "one\n", r.mustRun("cat", first, "a.txt"))
	assert.Equal(t, first+"\n", r.mustRun("merge-base", first, second))
	assert.Equal(t, second[:7]+" second\n", r.mustRun("stack", first, second))
	assert.Contains(t, r.mustRun("range", first, second, "--raw"), "diff --git a/b.txt b/b.txt\n")

	log := r.mustRun("log")
	assert.NotContains(t, log, "\x1b[")
	assert.Len(t, strings.Split(strings.TrimSpace(log), "\n"), 2)
	assert.Contains(t, r.mustRun("log", "--fzf"), "\x1b[33m")

	r.write("a.txt", "three\n")
	assert.Equal(t, "a.txt\n", r.mustRun("files", "--worktree"))
	assert.Contains(t, r.mustRun("versions", "a.txt", "--raw"), "-two two\n+three\n")
	assert.Equal(t, "two two\n", r.mustRun("versions", "a.txt", "--side", "old"))
	assert.Contains(t, r.mustRun("versions", "a.txt", "--commit", second, "--raw"), "-one\n+two two\n")
}

func TestErrorsKeepTheirKind(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("first")

	_, err := r.vcsdiff("resolve", "no-such-ref")
	assert.Equal(t, vcs.KindInvalidRef, vcs.KindOf(err))

	_, err = r.vcsdiff("cat", "HEAD", "missing.txt")
	assert.Equal(t, vcs.KindFileNotFound, vcs.KindOf(err))

	_, err = r.vcsdiff("resolve", "--", "-bad")
	assert.Equal(t, vcs.KindInvalidRef, vcs.KindOf(err))
	assert.ErrorContains(t, err, "cannot start with '-'")

	var stdout, stderr bytes.Buffer
	err = run([]string{"--color", "never", "--repo", t.TempDir(), "show"}, &stdout, &stderr)
	assert.ErrorIs(t, err, vcs.ErrNotARepository)

	_, err = r.vcsdiff("--backend", "svn", "show")
	assert.ErrorContains(t, err, `unknown backend "svn"`)
}

func TestWorkspaceCommands(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("first")
	r.write("a.txt", "two more\n")
	canonical, err := filepath.EvalSymlinks(r.dir)
	require.NoError(t, err)
	name := filepath.Base(canonical)

	assert.Equal(t, "added "+name+" ("+canonical+")\n", r.mustRun("workspace", "add", r.dir))
	_, err = r.vcsdiff("workspace", "add", r.dir)
	assert.EqualError(t, err, "repository already in workspace")

	assert.Equal(t, "* 0 "+name+" "+canonical+"\n", r.mustRun("workspace", "list"))
	assert.Equal(t, name+" [git] main 1 changed\n", r.mustRun("workspace", "status"))

	r.mustRun("workspace", "rename", "0", "proj")
	assert.Equal(t, "* 0 proj "+canonical+"\n", r.mustRun("workspace", "list"))

	_, err = r.vcsdiff("workspace", "use", "3")
	assert.Error(t, err)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--color", "never", "--active", "files", "--worktree"}, &stdout, &stderr))
	assert.Equal(t, "a.txt\n", stdout.String())

	r.mustRun("workspace", "remove", "0")
	assert.Empty(t, r.mustRun("workspace", "list"))
}

func TestVersionCommand(t *testing.T) {
	newTestRepo(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "vcsdiff "))
	assert.Contains(t, stdout.String(), "jj >= ")
}
