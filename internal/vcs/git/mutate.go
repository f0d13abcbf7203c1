package git

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

var errEmptyMessage = errors.New("commit message is empty")

const unknownIdentity = "unknown"

func (b *Backend) saveIndex(idx *gitindex.Index) error {
	idx.Cache = nil
	if err := b.repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func removeEntries(idx *gitindex.Index, path string) {
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if e.Name != path {
			kept = append(kept, e)
		}
	}
	idx.Entries = kept
}

func (b *Backend) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := b.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	hash, err := b.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

// stageInIndex records the worktree state of path in idx. A path missing
// from disk is removed from the index.
func (b *Backend) stageInIndex(idx *gitindex.Index, path string) error {
	full := filepath.Join(b.root, filepath.FromSlash(path))
	info, err := os.Lstat(full)
	if errors.Is(err, fs.ErrNotExist) {
		removeEntries(idx, path)
		return nil
	}
	if err != nil {
		return vcs.IOError("stat "+path, err)
	}
	var data []byte
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(full)
		if err != nil {
			return vcs.IOError("read link "+path, err)
		}
		data = []byte(target)
	} else {
		if data, err = os.ReadFile(full); err != nil {
			return vcs.IOError("read "+path, err)
		}
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	hash, err := b.writeBlob(data)
	if err != nil {
		return err
	}
	removeEntries(idx, path)
	e := idx.Add(path)
	e.Hash = hash
	e.Mode = mode
	e.Size = uint32(len(data))
	e.ModifiedAt = info.ModTime()
	return nil
}

// resetInIndex restores the HEAD version of path in idx, dropping the entry
// when HEAD does not have it.
func (b *Backend) resetInIndex(idx *gitindex.Index, head *object.Tree, path string) error {
	removeEntries(idx, path)
	if head == nil {
		return nil
	}
	entry, err := head.FindEntry(path)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil
		}
		return fmt.Errorf("find %s: %w", path, err)
	}
	e := idx.Add(path)
	e.Hash = entry.Hash
	e.Mode = entry.Mode
	if blob, err := b.repo.BlobObject(entry.Hash); err == nil {
		e.Size = uint32(blob.Size)
	}
	return nil
}

func (b *Backend) StageFile(path string) error {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return err
	}
	idx, err := b.index()
	if err != nil {
		return err
	}
	if err := b.stageInIndex(idx, path); err != nil {
		return err
	}
	slog.Debug("staged file", slog.String("path", path))
	return b.saveIndex(idx)
}

// StageAll stages every change in the worktree, including new and deleted
// files.
func (b *Backend) StageAll() error {
	st, err := b.status()
	if err != nil {
		return err
	}
	idx, err := b.index()
	if err != nil {
		return err
	}
	n := 0
	for path, fst := range st {
		switch {
		case fst.Worktree == gitlib.Deleted:
			removeEntries(idx, path)
		case fst.Worktree != gitlib.Unmodified, fst.Staging == gitlib.UpdatedButUnmerged:
			if err := b.stageInIndex(idx, path); err != nil {
				return err
			}
		default:
			continue
		}
		n++
	}
	slog.Debug("staged all changes", slog.Int("paths", n))
	return b.saveIndex(idx)
}

func (b *Backend) UnstageFile(path string) error {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return err
	}
	head, err := b.headTree()
	if err != nil {
		return err
	}
	idx, err := b.index()
	if err != nil {
		return err
	}
	if err := b.resetInIndex(idx, head, path); err != nil {
		return err
	}
	slog.Debug("unstaged file", slog.String("path", path))
	return b.saveIndex(idx)
}

func (b *Backend) UnstageAll() error {
	head, err := b.headCommit()
	if err != nil {
		return err
	}
	if head == nil {
		idx, err := b.index()
		if err != nil {
			return err
		}
		idx.Entries = nil
		return b.saveIndex(idx)
	}
	wt, err := b.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.Reset(&gitlib.ResetOptions{Commit: head.Hash, Mode: gitlib.MixedReset}); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	return nil
}

// DiscardFile throws away the changes of path in bucket. Staged changes are
// reset in the index first and then discarded from the worktree too.
func (b *Backend) DiscardFile(path string, bucket vcs.DiffBucket) error {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return err
	}
	full := filepath.Join(b.root, filepath.FromSlash(path))
	if bucket == vcs.BucketUntracked {
		if err := os.RemoveAll(full); err != nil {
			return vcs.IOError("remove "+path, err)
		}
		return nil
	}
	idx, err := b.index()
	if err != nil {
		return err
	}
	if bucket == vcs.BucketStaged {
		head, err := b.headTree()
		if err != nil {
			return err
		}
		if err := b.resetInIndex(idx, head, path); err != nil {
			return err
		}
		if err := b.saveIndex(idx); err != nil {
			return err
		}
	}
	entry, err := idx.Entry(path)
	if errors.Is(err, gitindex.ErrEntryNotFound) {
		// Without an index entry there is nothing to restore. Only a path
		// whose staged addition was just reset may be removed; anything else
		// is a file the index never knew about.
		if bucket != vcs.BucketStaged {
			slog.Debug("discard skipped, path not in index", slog.String("path", path))
			return nil
		}
		if err := os.RemoveAll(full); err != nil {
			return vcs.IOError("remove "+path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index entry %s: %w", path, err)
	}
	return b.checkout(path, entry.Hash, entry.Mode)
}

// checkout writes the blob hash to path in the worktree.
func (b *Backend) checkout(path string, hash plumbing.Hash, mode filemode.FileMode) error {
	data, err := b.readBlob(hash)
	if err != nil {
		return err
	}
	full := filepath.Join(b.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return vcs.IOError("create directory for "+path, err)
	}
	if info, err := os.Lstat(full); err == nil && (info.IsDir() || info.Mode()&fs.ModeSymlink != 0 || mode == filemode.Symlink) {
		if err := os.RemoveAll(full); err != nil {
			return vcs.IOError("remove "+path, err)
		}
	}
	if mode == filemode.Symlink {
		if err := os.Symlink(string(data), full); err != nil {
			return vcs.IOError("create link "+path, err)
		}
		return nil
	}
	perm := fs.FileMode(0o644)
	if mode == filemode.Executable {
		perm = 0o755
	}
	if err := os.WriteFile(full, data, perm); err != nil {
		return vcs.IOError("write "+path, err)
	}
	if err := os.Chmod(full, perm); err != nil {
		return vcs.IOError("chmod "+path, err)
	}
	return nil
}

// DiscardAll hard resets to HEAD and deletes every untracked path.
func (b *Backend) DiscardAll() error {
	head, err := b.headCommit()
	if err != nil {
		return err
	}
	if head != nil {
		wt, err := b.repo.Worktree()
		if err != nil {
			return fmt.Errorf("open worktree: %w", err)
		}
		if err := wt.Reset(&gitlib.ResetOptions{Commit: head.Hash, Mode: gitlib.HardReset}); err != nil {
			return fmt.Errorf("hard reset: %w", err)
		}
	}
	st, err := b.status()
	if err != nil {
		return err
	}
	for path, fst := range st {
		if fst.Worktree != gitlib.Untracked {
			continue
		}
		if err := os.RemoveAll(filepath.Join(b.root, filepath.FromSlash(path))); err != nil {
			return vcs.IOError("remove "+path, err)
		}
	}
	return nil
}

// CommitStaged records the index as a new commit on HEAD and returns its id.
func (b *Backend) CommitStaged(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errEmptyMessage
	}
	wt, err := b.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{Author: b.signature()})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	slog.Debug("created commit", slog.String("id", hash.String()))
	return hash.String(), nil
}

func (b *Backend) signature() *object.Signature {
	sig := &object.Signature{Name: unknownIdentity, Email: unknownIdentity, When: b.now()}
	cfg, err := b.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		slog.Debug("read git config failed", slog.Any("error", err))
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
