package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/thiagokokada/vcsdiff/internal/unidiff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func (b *Backend) FileContentAtRef(ref, path string) (string, error) {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return "", err
	}
	tree, err := b.resolveTree(ref)
	if err != nil {
		return "", err
	}
	if tree == nil {
		return "", &vcs.FileNotFoundError{Path: path}
	}
	entry, err := tree.FindEntry(path)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return "", &vcs.FileNotFoundError{Path: path}
		}
		return "", fmt.Errorf("find %s: %w", path, err)
	}
	switch entry.Mode {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
	default:
		return "", &vcs.FileNotFoundError{Path: path}
	}
	data, err := b.readBlob(entry.Hash)
	if err != nil {
		return "", err
	}
	return lossyText(data), nil
}

// FileVersions returns both sides of path as shown in bucket. Only UTF-8
// text is supported.
func (b *Backend) FileVersions(path string, bucket vcs.DiffBucket) (vcs.FileVersions, error) {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return vcs.FileVersions{}, err
	}
	var old, new *blobSide
	var err error
	switch bucket {
	case vcs.BucketStaged:
		head, err := b.headTree()
		if err != nil {
			return vcs.FileVersions{}, err
		}
		if old, err = b.treeSide(head, path); err != nil {
			return vcs.FileVersions{}, err
		}
		idx, err := b.index()
		if err != nil {
			return vcs.FileVersions{}, err
		}
		if new, err = b.indexSide(idx, path); err != nil {
			return vcs.FileVersions{}, err
		}
	case vcs.BucketUntracked:
		if new, err = b.diskSide(path); err != nil {
			return vcs.FileVersions{}, err
		}
	default:
		idx, err := b.index()
		if err != nil {
			return vcs.FileVersions{}, err
		}
		if old, err = b.indexSide(idx, path); err != nil {
			return vcs.FileVersions{}, err
		}
		if new, err = b.diskSide(path); err != nil {
			return vcs.FileVersions{}, err
		}
	}
	return textVersions(path, path, old, new)
}

// CommitFileVersions returns path as it is in commit id and as it was in
// the first parent, where it may have been called previousPath.
func (b *Backend) CommitFileVersions(id, path, previousPath string) (vcs.FileVersions, error) {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return vcs.FileVersions{}, err
	}
	if previousPath == "" {
		previousPath = path
	} else if err := vcs.ValidateRepoRelativePath(previousPath); err != nil {
		return vcs.FileVersions{}, err
	}
	commit, err := b.resolveCommit(id)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	from, err := parentTree(commit)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	to, err := commitTree(commit)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	old, err := b.treeSide(from, previousPath)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	new, err := b.treeSide(to, path)
	if err != nil {
		return vcs.FileVersions{}, err
	}
	return textVersions(previousPath, path, old, new)
}

type binaryFileError struct {
	path string
}

func (e *binaryFileError) Error() string {
	return "binary file is not supported: " + e.path
}

func textVersions(oldPath, newPath string, old, new *blobSide) (vcs.FileVersions, error) {
	var out vcs.FileVersions
	for _, side := range []struct {
		path string
		blob *blobSide
		dst  **vcs.DiffFile
	}{{oldPath, old, &out.Old}, {newPath, new, &out.New}} {
		if side.blob == nil {
			continue
		}
		if unidiff.IsBinary(side.blob.data) || !utf8.Valid(side.blob.data) {
			return vcs.FileVersions{}, &binaryFileError{path: side.path}
		}
		*side.dst = &vcs.DiffFile{Name: side.path, Contents: string(side.blob.data)}
	}
	return out, nil
}

// CommitFiles lists the files touched by commit id against its first
// parent, with renames detected.
func (b *Backend) CommitFiles(id string) ([]vcs.CommitFile, error) {
	commit, err := b.resolveCommit(id)
	if err != nil {
		return nil, err
	}
	from, err := parentTree(commit)
	if err != nil {
		return nil, err
	}
	to, err := commitTree(commit)
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeWithOptions(context.Background(), from, to, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	files := []vcs.CommitFile{}
	for _, ch := range changes {
		path := changePath(ch)
		if vcs.ShouldExclude(path) {
			continue
		}
		delta, err := changeDelta(ch)
		if err != nil {
			return nil, err
		}
		file := vcs.CommitFile{Path: path, Status: vcs.DeltaLabel(delta)}
		if delta == vcs.DeltaRenamed {
			file.PreviousPath = ch.From.Name
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func changeDelta(ch *object.Change) (vcs.Delta, error) {
	action, err := ch.Action()
	if err != nil {
		return vcs.DeltaModified, fmt.Errorf("classify change %s: %w", changePath(ch), err)
	}
	switch action {
	case merkletrie.Insert:
		return vcs.DeltaAdded, nil
	case merkletrie.Delete:
		return vcs.DeltaDeleted, nil
	}
	switch {
	case ch.From.Name != ch.To.Name:
		return vcs.DeltaRenamed, nil
	case modeKind(ch.From.TreeEntry.Mode) != modeKind(ch.To.TreeEntry.Mode):
		return vcs.DeltaTypeChanged, nil
	default:
		return vcs.DeltaModified, nil
	}
}

// modeKind folds the executable bit so that chmod is not a type change.
func modeKind(m filemode.FileMode) filemode.FileMode {
	switch m {
	case filemode.Executable, filemode.Deprecated:
		return filemode.Regular
	}
	return m
}
