package git

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcsdiff/internal/unidiff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

// blobSide is one side of a working-tree comparison. A nil blobSide means
// the path does not exist on that side.
type blobSide struct {
	data []byte
}

func (b *Backend) status() (gitlib.Status, error) {
	wt, err := b.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	return st, nil
}

func (b *Backend) index() (*gitindex.Index, error) {
	idx, err := b.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

func (b *Backend) WorkingTreeDiff(staged bool) (string, error) {
	st, err := b.status()
	if err != nil {
		return "", err
	}
	var paths []string
	for path, fst := range st {
		if vcs.ShouldExclude(path) {
			continue
		}
		if staged && fst.Staging != gitlib.Unmodified && fst.Staging != gitlib.Untracked {
			paths = append(paths, path)
		}
		if !staged && fst.Worktree != gitlib.Unmodified && fst.Worktree != gitlib.Untracked {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return "", nil
	}
	sort.Strings(paths)

	idx, err := b.index()
	if err != nil {
		return "", err
	}
	var head *object.Tree
	if staged {
		if head, err = b.headTree(); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for _, path := range paths {
		var old, new *blobSide
		if staged {
			if old, err = b.treeSide(head, path); err != nil {
				return "", err
			}
			if new, err = b.indexSide(idx, path); err != nil {
				return "", err
			}
		} else {
			if old, err = b.indexSide(idx, path); err != nil {
				return "", err
			}
			if new, err = b.diskSide(path); err != nil {
				return "", err
			}
		}
		writeSides(&sb, path, old, new)
	}
	return sb.String(), nil
}

func writeSides(sb *strings.Builder, path string, old, new *blobSide) {
	if old == nil && new == nil {
		return
	}
	if (old != nil && unidiff.IsBinary(old.data)) || (new != nil && unidiff.IsBinary(new.data)) {
		if old != nil && new != nil && string(old.data) == string(new.data) {
			return
		}
		unidiff.WriteBinaryFile(sb, path, old != nil, new != nil)
		return
	}
	unidiff.WriteFile(sb, path, old.text(), new.text())
}

func (s *blobSide) text() *string {
	if s == nil {
		return nil
	}
	t := lossyText(s.data)
	return &t
}

func lossyText(data []byte) string {
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

func (b *Backend) WorkingTreeChangedFiles() ([]string, error) {
	st, err := b.status()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(st))
	for path, fst := range st {
		if fst.Staging == gitlib.Unmodified && fst.Worktree == gitlib.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	paths = vcs.FilterPaths(paths)
	sort.Strings(paths)
	return paths, nil
}

func (b *Backend) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := object.GetBlob(b.repo.Storer, hash)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", hash, err)
	}
	return data, nil
}

func (b *Backend) treeSide(tree *object.Tree, path string) (*blobSide, error) {
	if tree == nil {
		return nil, nil
	}
	entry, err := tree.FindEntry(path)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", path, err)
	}
	if !entry.Mode.IsFile() {
		return nil, nil
	}
	data, err := b.readBlob(entry.Hash)
	if err != nil {
		return nil, err
	}
	return &blobSide{data: data}, nil
}

// indexSide reads the first index entry for path, whatever its stage.
func (b *Backend) indexSide(idx *gitindex.Index, path string) (*blobSide, error) {
	entry, err := idx.Entry(path)
	if err != nil {
		if errors.Is(err, gitindex.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index entry %s: %w", path, err)
	}
	data, err := b.readBlob(entry.Hash)
	if err != nil {
		return nil, err
	}
	return &blobSide{data: data}, nil
}

// diskSide reads path from the worktree. Symlinks yield their target.
func (b *Backend) diskSide(path string) (*blobSide, error) {
	full := filepath.Join(b.root, filepath.FromSlash(path))
	info, err := os.Lstat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, vcs.IOError("stat "+path, err)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(full)
		if err != nil {
			return nil, vcs.IOError("read link "+path, err)
		}
		return &blobSide{data: []byte(target)}, nil
	}
	if info.IsDir() {
		return nil, nil
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, vcs.IOError("read "+path, err)
	}
	return &blobSide{data: data}, nil
}
