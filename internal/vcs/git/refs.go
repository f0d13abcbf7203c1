package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func (b *Backend) ResolveRef(ref string) (string, error) {
	commit, err := b.resolveCommit(ref)
	if err != nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

// CurrentBranch reports the checked out branch. On an unborn branch HEAD
// still names its target, which is returned as is.
func (b *Backend) CurrentBranch() (string, bool, error) {
	head, err := b.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", false, fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), true, nil
	}
	return "", false, nil
}

func (b *Backend) MergeBase(ref1, ref2 string) (string, error) {
	base, err := b.mergeBaseCommit(ref1, ref2)
	if err != nil {
		return "", err
	}
	return base.Hash.String(), nil
}

func (b *Backend) mergeBaseCommit(ref1, ref2 string) (*object.Commit, error) {
	if err := validateRefs(ref1, ref2); err != nil {
		return nil, err
	}
	c1, err := b.resolveCommit(ref1)
	if err != nil {
		return nil, err
	}
	c2, err := b.resolveCommit(ref2)
	if err != nil {
		return nil, err
	}
	bases, err := c1.MergeBase(c2)
	if err != nil {
		return nil, fmt.Errorf("merge base of %s and %s: %w", ref1, ref2, err)
	}
	if len(bases) == 0 {
		return nil, &vcs.RefError{
			Ref:    ref1 + "..." + ref2,
			Reason: fmt.Sprintf("no merge base between %s and %s", ref1, ref2),
			Err:    errNoMergeBase,
		}
	}
	return bases[0], nil
}

var errNoMergeBase = errors.New("no merge base")

// ParentRefOrEmpty returns "<ref>^", or the empty tree id for root commits.
func (b *Backend) ParentRefOrEmpty(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	commit, err := b.resolveCommit(ref)
	if err != nil {
		return "", err
	}
	if commit.NumParents() == 0 {
		return EmptyTreeHash, nil
	}
	return ref + "^", nil
}
