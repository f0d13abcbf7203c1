package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/vcsdiff/internal/diff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func TestWorkingTreeDiff(t *testing.T) {
	f := newFixture(t)
	f.write("notes.md", "one\ntwo\nthree\n")
	f.write("gone.txt", "bye\n")
	f.commit("init")
	b := f.backend()

	text, err := b.WorkingTreeDiff(false)
	require.NoError(t, err)
	assert.Empty(t, text)

	f.write("notes.md", "one\n2\nthree\n")
	f.remove("gone.txt")
	f.write("untracked.txt", "new\n")

	text, err = b.WorkingTreeDiff(false)
	require.NoError(t, err)
	d := diff.Parse(text)
	require.Len(t, d.Files, 2)
	assert.Equal(t, "gone.txt", d.Files[0].Path)
	assert.Equal(t, "notes.md", d.Files[1].Path)
	assert.Contains(t, text, "deleted file mode 100644")
	assert.Contains(t, text, "@@ -1,3 +1,3 @@\n one\n-two\n+2\n three\n")

	staged, err := b.WorkingTreeDiff(true)
	require.NoError(t, err)
	assert.Empty(t, staged)

	require.NoError(t, b.StageFile("notes.md"))

	staged, err = b.WorkingTreeDiff(true)
	require.NoError(t, err)
	d = diff.Parse(staged)
	require.Len(t, d.Files, 1)
	assert.Equal(t, "notes.md", d.Files[0].Path)

	unstaged, err := b.WorkingTreeDiff(false)
	require.NoError(t, err)
	d = diff.Parse(unstaged)
	require.Len(t, d.Files, 1)
	assert.Equal(t, "gone.txt", d.Files[0].Path)

	files, err := b.WorkingTreeChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"gone.txt", "notes.md", "untracked.txt"}, files)
}

func TestWorkingTreeDiffBinary(t *testing.T) {
	f := newFixture(t)
	f.write("blob.bin", "a\x00b")
	f.commit("init")
	f.write("blob.bin", "a\x00c")
	b := f.backend()

	text, err := b.WorkingTreeDiff(false)
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/blob.bin b/blob.bin\nBinary files a/blob.bin and b/blob.bin differ\n", text)
}

func TestWorkingTreeDiffSkipsExcluded(t *testing.T) {
	f := newFixture(t)
	f.write("yarn.lock", "v1\n")
	f.write("app.js", "v1\n")
	f.commit("init")
	f.write("yarn.lock", "v2\n")
	b := f.backend()

	text, err := b.WorkingTreeDiff(false)
	require.NoError(t, err)
	assert.Empty(t, text)

	files, err := b.WorkingTreeChangedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSnapshotUntrackedOnly(t *testing.T) {
	f := newFixture(t)
	f.write("README.md", "hi\n")
	f.commit("init")
	f.write("new.txt", "new\n")
	b := f.backend()

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, f.dir, snap.RepoRoot)
	assert.Equal(t, "main", snap.Branch)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "new.txt", Status: vcs.LabelUntracked}}, snap.Untracked)
}

func TestSnapshotStagedAndUnstaged(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.write("b.txt", "b\n")
	f.commit("init")
	b := f.backend()

	f.write("a.txt", "a2\n")
	require.NoError(t, b.StageFile("a.txt"))
	f.write("a.txt", "a3\n")
	f.write("c.txt", "c\n")
	require.NoError(t, b.StageFile("c.txt"))
	f.remove("b.txt")

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []vcs.SnapshotFile{
		{Path: "a.txt", Status: vcs.LabelModified},
		{Path: "c.txt", Status: vcs.LabelAdded},
	}, snap.Staged)
	assert.Equal(t, []vcs.SnapshotFile{
		{Path: "a.txt", Status: vcs.LabelModified},
		{Path: "b.txt", Status: vcs.LabelDeleted},
	}, snap.Unstaged)
	assert.Empty(t, snap.Untracked)
}

func TestMutationsValidatePathsFirst(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.commit("init")
	f.write("a.txt", "changed\n")
	b := f.backend()

	before, err := b.Snapshot()
	require.NoError(t, err)

	for _, path := range []string{"", "../outside.txt", "dir/../../x", "/etc/passwd"} {
		assert.Error(t, b.StageFile(path), path)
		assert.Error(t, b.UnstageFile(path), path)
		assert.Error(t, b.DiscardFile(path, vcs.BucketUnstaged), path)
		_, err := b.FileVersions(path, vcs.BucketUnstaged)
		assert.Error(t, err, path)
	}

	after, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "changed\n", f.read("a.txt"))
}

func TestStageAllUnstageAllAndCommit(t *testing.T) {
	f := newFixture(t)
	f.write("keep.txt", "keep\n")
	f.write("edit.txt", "v1\n")
	f.write("drop.txt", "drop\n")
	f.commit("init")
	b := f.backend()

	f.write("edit.txt", "v2\n")
	f.remove("drop.txt")
	f.write("add.txt", "add\n")

	require.NoError(t, b.StageAll())
	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []vcs.SnapshotFile{
		{Path: "add.txt", Status: vcs.LabelAdded},
		{Path: "drop.txt", Status: vcs.LabelDeleted},
		{Path: "edit.txt", Status: vcs.LabelModified},
	}, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Empty(t, snap.Untracked)

	require.NoError(t, b.UnstageAll())
	snap, err = b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Len(t, snap.Unstaged, 2)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "add.txt", Status: vcs.LabelUntracked}}, snap.Untracked)

	require.NoError(t, b.StageAll())
	_, err = b.CommitStaged("  \n\t")
	require.ErrorIs(t, err, errEmptyMessage)
	assert.EqualError(t, err, "commit message is empty")

	id, err := b.CommitStaged("second")
	require.NoError(t, err)
	head, err := b.ResolveRef("HEAD")
	require.NoError(t, err)
	assert.Equal(t, head, id)

	info, err := b.Commit("HEAD")
	require.NoError(t, err)
	assert.Equal(t, "Test <test@example.com>", info.Author)

	snap, err = b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Empty(t, snap.Untracked)
}

func TestUnstageFile(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.commit("init")
	b := f.backend()

	f.write("a.txt", "a2\n")
	f.write("new.txt", "n\n")
	require.NoError(t, b.StageAll())

	require.NoError(t, b.UnstageFile("a.txt"))
	require.NoError(t, b.UnstageFile("new.txt"))

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "a.txt", Status: vcs.LabelModified}}, snap.Unstaged)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "new.txt", Status: vcs.LabelUntracked}}, snap.Untracked)
	assert.Equal(t, "a2\n", f.read("a.txt"))
}

func TestUnstageAllWithoutHead(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	b := f.backend()

	require.NoError(t, b.StageFile("a.txt"))
	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "a.txt", Status: vcs.LabelAdded}}, snap.Staged)

	require.NoError(t, b.UnstageAll())
	snap, err = b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Equal(t, []vcs.SnapshotFile{{Path: "a.txt", Status: vcs.LabelUntracked}}, snap.Untracked)
}

func TestDiscardFile(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.write("b.txt", "b\n")
	f.commit("init")
	b := f.backend()

	f.write("a.txt", "edited\n")
	require.NoError(t, b.DiscardFile("a.txt", vcs.BucketUnstaged))
	assert.Equal(t, "a\n", f.read("a.txt"))

	f.write("b.txt", "staged edit\n")
	require.NoError(t, b.StageFile("b.txt"))
	require.NoError(t, b.DiscardFile("b.txt", vcs.BucketStaged))
	assert.Equal(t, "b\n", f.read("b.txt"))

	f.write("added.txt", "added\n")
	require.NoError(t, b.StageFile("added.txt"))
	require.NoError(t, b.DiscardFile("added.txt", vcs.BucketStaged))
	assert.False(t, f.exists("added.txt"))

	f.write("scratch/tmp.txt", "tmp\n")
	require.NoError(t, b.DiscardFile("scratch", vcs.BucketUntracked))
	assert.False(t, f.exists("scratch"))

	f.remove("a.txt")
	require.NoError(t, b.DiscardFile("a.txt", vcs.BucketUnstaged))
	assert.Equal(t, "a\n", f.read("a.txt"))

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Empty(t, snap.Untracked)
}

func TestDiscardUnstagedKeepsUntrackedFile(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.commit("init")
	b := f.backend()

	f.write("notes.txt", "keep me\n")
	require.NoError(t, b.DiscardFile("notes.txt", vcs.BucketUnstaged))
	assert.True(t, f.exists("notes.txt"))
	assert.Equal(t, "keep me\n", f.read("notes.txt"))

	snap, err := b.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Untracked, 1)
	assert.Equal(t, "notes.txt", snap.Untracked[0].Path)
}

func TestDiscardRestoresExecutableBit(t *testing.T) {
	f := newFixture(t)
	f.write("run.sh", "#!/bin/sh\n")
	full := filepath.Join(f.dir, "run.sh")
	require.NoError(t, os.Chmod(full, 0o755))
	f.commit("init")
	b := f.backend()

	f.write("run.sh", "#!/bin/sh\necho hi\n")
	require.NoError(t, b.DiscardFile("run.sh", vcs.BucketUnstaged))

	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.Equal(t, "#!/bin/sh\n", f.read("run.sh"))
}

func TestDiscardAll(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a\n")
	f.commit("init")
	b := f.backend()

	f.write("a.txt", "changed\n")
	f.write("staged.txt", "s\n")
	require.NoError(t, b.StageFile("staged.txt"))
	f.write("loose/file.txt", "u\n")

	require.NoError(t, b.DiscardAll())
	assert.Equal(t, "a\n", f.read("a.txt"))
	assert.False(t, f.exists("staged.txt"))
	assert.False(t, f.exists("loose/file.txt"))

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staged)
	assert.Empty(t, snap.Unstaged)
	assert.Empty(t, snap.Untracked)
}
