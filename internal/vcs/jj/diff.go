package jj

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thiagokokada/vcsdiff/internal/unidiff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

// nonFileConflict stands in for conflicts jj cannot render as one file, such
// as a file on one side and a directory on the other.
const nonFileConflict = "<<<<<<< Conflict (non-file)\n(complex conflict - file vs non-file)\n>>>>>>>\n"

func (b *Backend) Commit(ref string) (vcs.CommitInfo, error) {
	rev, err := b.resolve(ref)
	if err != nil {
		return vcs.CommitInfo{}, err
	}
	text, err := b.diff(rev.base(), rev.CommitID)
	if err != nil {
		return vcs.CommitInfo{}, err
	}
	return vcs.CommitInfo{
		CommitID: rev.CommitID,
		ChangeID: rev.ChangeID,
		Message:  strings.TrimRight(rev.Description, "\n"),
		Author:   fmt.Sprintf("%s <%s>", rev.AuthorName, rev.AuthorEmail),
		Date:     rev.Date,
		Diff:     text,
	}, nil
}

// WorkingTreeDiff shows the working-copy commit against its parent. jj has
// no index, so staged is ignored.
func (b *Backend) WorkingTreeDiff(bool) (string, error) {
	info, err := b.Commit("@")
	if err != nil {
		return "", err
	}
	return info.Diff, nil
}

// RangeDiff compares the trees of from and to. threeDot is ignored.
func (b *Backend) RangeDiff(from, to string, _ bool) (string, error) {
	if err := validateRefs(from, to); err != nil {
		return "", err
	}
	fromRev, err := b.resolve(from)
	if err != nil {
		return "", err
	}
	toRev, err := b.resolve(to)
	if err != nil {
		return "", err
	}
	return b.diff(fromRev.CommitID, toRev.CommitID)
}

func (b *Backend) ChangedFiles(ref string) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if from, to, _, ok := vcs.SplitRange(ref); ok {
		return b.RangeChangedFiles(from, to)
	}
	rev, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	return b.changedFiles(rev.base(), rev.CommitID)
}

func (b *Backend) WorkingTreeChangedFiles() ([]string, error) {
	return b.ChangedFiles("@")
}

func (b *Backend) RangeChangedFiles(from, to string) ([]string, error) {
	if err := validateRefs(from, to); err != nil {
		return nil, err
	}
	fromRev, err := b.resolve(from)
	if err != nil {
		return nil, err
	}
	toRev, err := b.resolve(to)
	if err != nil {
		return nil, err
	}
	return b.changedFiles(fromRev.CommitID, toRev.CommitID)
}

func (b *Backend) FileContentAtRef(ref, path string) (string, error) {
	if err := vcs.ValidateRepoRelativePath(path); err != nil {
		return "", err
	}
	rev, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	changes, err := b.types(RootRef, rev.CommitID, rootFile(path))
	if err != nil {
		return "", err
	}
	for _, ch := range changes {
		if ch.Path != path || !ch.After.HasContent() {
			continue
		}
		content, err := b.content(rev.CommitID, path, ch.After)
		if err != nil {
			return "", err
		}
		return *content, nil
	}
	return "", &vcs.FileNotFoundError{Path: path}
}

// types lists the paths that differ between two revisions.
func (b *Backend) types(from, to string, filesets ...string) ([]pathChange, error) {
	args := append([]string{"diff", "--from", from, "--to", to, "--types"}, filesets...)
	out, err := b.jj(args...)
	if err != nil {
		return nil, fmt.Errorf("list changes %s..%s: %w", from, to, err)
	}
	changes := parseTypes(out)
	for i := range changes {
		changes[i].Path = filepath.ToSlash(changes[i].Path)
	}
	return changes, nil
}

func (b *Backend) changedFiles(from, to string) ([]string, error) {
	changes, err := b.types(from, to)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(changes))
	for _, ch := range changes {
		if !vcs.ShouldExclude(ch.Path) {
			paths = append(paths, ch.Path)
		}
	}
	return paths, nil
}

// diff renders every changed path between two revisions as a git-style
// unified diff.
func (b *Backend) diff(from, to string) (string, error) {
	changes, err := b.types(from, to)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, ch := range changes {
		if vcs.ShouldExclude(ch.Path) {
			continue
		}
		old, err := b.content(from, ch.Path, ch.Before)
		if err != nil {
			return "", err
		}
		new, err := b.content(to, ch.Path, ch.After)
		if err != nil {
			return "", err
		}
		unidiff.WriteFile(&sb, ch.Path, old, new)
	}
	return sb.String(), nil
}

// content returns the text of path at rev, or nil for values without
// textual content.
func (b *Backend) content(rev, path string, v TreeValue) (*string, error) {
	if !v.HasContent() {
		return nil, nil
	}
	out, err := b.jj("file", "show", "-r", rev, "--config", "ui.conflict-marker-style=git", rootFile(path))
	if err != nil {
		if v.Kind == KindConflict {
			text := nonFileConflict
			return &text, nil
		}
		return nil, fmt.Errorf("read %s at %s: %w", path, vcs.ShortID(rev, shortIDLen), err)
	}
	text := strings.ToValidUTF8(out, "\uFFFD")
	return &text, nil
}
