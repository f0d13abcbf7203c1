package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

const dateLayout = "2006-01-02 15:04:05"

func (b *Backend) Commit(ref string) (vcs.CommitInfo, error) {
	commit, err := b.resolveCommit(ref)
	if err != nil {
		return vcs.CommitInfo{}, err
	}
	text, err := commitDiff(commit)
	if err != nil {
		return vcs.CommitInfo{}, err
	}
	return vcs.CommitInfo{
		CommitID: commit.Hash.String(),
		Message:  strings.TrimRight(commit.Message, "\n"),
		Author:   fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
		Date:     commit.Author.When.Format(dateLayout),
		Diff:     text,
	}, nil
}

func commitDiff(c *object.Commit) (string, error) {
	from, err := parentTree(c)
	if err != nil {
		return "", err
	}
	to, err := commitTree(c)
	if err != nil {
		return "", err
	}
	return treeDiff(from, to)
}

func (b *Backend) RangeDiff(from, to string, threeDot bool) (string, error) {
	if err := validateRefs(from, to); err != nil {
		return "", err
	}
	toTree, err := b.resolveTree(to)
	if err != nil {
		return "", err
	}
	var fromTree *object.Tree
	if threeDot {
		base, err := b.mergeBaseCommit(from, to)
		if err != nil {
			return "", err
		}
		fromTree, err = commitTree(base)
		if err != nil {
			return "", err
		}
	} else {
		fromTree, err = b.resolveTree(from)
		if err != nil {
			return "", err
		}
	}
	return treeDiff(fromTree, toTree)
}

// treeChanges lists the changes between two trees with excluded paths
// already removed. A nil tree stands for the empty tree.
func treeChanges(from, to *object.Tree) (object.Changes, error) {
	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	kept := changes[:0]
	for _, ch := range changes {
		if vcs.ShouldExclude(changePath(ch)) {
			continue
		}
		kept = append(kept, ch)
	}
	return kept, nil
}

// changePath prefers the post-image name and falls back to the pre-image
// one for deletions.
func changePath(ch *object.Change) string {
	if ch.To.Name != "" {
		return ch.To.Name
	}
	return ch.From.Name
}

// treeDiff renders the changes between two trees with go-git's unified
// encoder.
func treeDiff(from, to *object.Tree) (string, error) {
	changes, err := treeChanges(from, to)
	if err != nil {
		return "", err
	}
	if len(changes) == 0 {
		return "", nil
	}
	patch, err := changes.PatchContext(context.Background())
	if err != nil {
		return "", fmt.Errorf("build patch: %w", err)
	}
	return encodeUnifiedPatch(patch.FilePatches())
}

func encodeUnifiedPatch(filePatches []diff.FilePatch) (string, error) {
	var buf bytes.Buffer
	enc := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines)
	if err := enc.Encode(filePatchSet{patches: filePatches}); err != nil {
		return "", fmt.Errorf("encode patch: %w", err)
	}
	return buf.String(), nil
}

type filePatchSet struct {
	patches []diff.FilePatch
}

func (f filePatchSet) FilePatches() []diff.FilePatch { return f.patches }
func (filePatchSet) Message() string                 { return "" }

func changedPaths(changes object.Changes) []string {
	paths := make([]string, 0, len(changes))
	for _, ch := range changes {
		paths = append(paths, changePath(ch))
	}
	return paths
}

func (b *Backend) ChangedFiles(ref string) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if from, to, _, ok := vcs.SplitRange(ref); ok {
		return b.RangeChangedFiles(from, to)
	}
	commit, err := b.resolveCommit(ref)
	if err != nil {
		return nil, err
	}
	return commitChangedFiles(commit)
}

func commitChangedFiles(c *object.Commit) ([]string, error) {
	from, err := parentTree(c)
	if err != nil {
		return nil, err
	}
	to, err := commitTree(c)
	if err != nil {
		return nil, err
	}
	changes, err := treeChanges(from, to)
	if err != nil {
		return nil, err
	}
	return changedPaths(changes), nil
}

func (b *Backend) RangeChangedFiles(from, to string) ([]string, error) {
	if err := validateRefs(from, to); err != nil {
		return nil, err
	}
	fromTree, err := b.resolveTree(from)
	if err != nil {
		return nil, err
	}
	toTree, err := b.resolveTree(to)
	if err != nil {
		return nil, err
	}
	changes, err := treeChanges(fromTree, toTree)
	if err != nil {
		return nil, err
	}
	return changedPaths(changes), nil
}

// validateRefs checks every ref up front so nothing is resolved when any of
// them is rejected.
func validateRefs(refs ...string) error {
	for _, ref := range refs {
		if err := vcs.ValidateRef(ref); err != nil {
			return err
		}
	}
	return nil
}
