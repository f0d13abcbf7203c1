// Package git implements vcs.Backend on top of go-git.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

// EmptyTreeHash is the id of the tree with no entries. Every operation that
// takes a tree-ish reference accepts it.
const EmptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

const shortIDLen = 7

type Backend struct {
	repo *gitlib.Repository
	root string
	now  func() time.Time
}

var _ vcs.Backend = (*Backend)(nil)

// Open discovers the repository containing path.
func Open(path string) (*Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, vcs.IOError("resolve path", err)
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gitlib.ErrRepositoryNotExists) {
			return nil, vcs.ErrNotARepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root := wt.Filesystem.Root()
	slog.Debug("opened git repository", slog.String("root", root))
	return &Backend{repo: repo, root: root, now: time.Now}, nil
}

func (b *Backend) Name() string { return "git" }

func (b *Backend) Root() string { return b.root }

func (b *Backend) WorkingCopyParentRef() string { return "HEAD" }

// resolveCommit validates and resolves ref to a commit.
func (b *Backend) resolveCommit(ref string) (*object.Commit, error) {
	ref = strings.TrimSpace(ref)
	if err := vcs.ValidateRef(ref); err != nil {
		return nil, err
	}
	hash, err := b.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		slog.Debug("resolve revision failed", slog.String("ref", ref), slog.Any("error", err))
		return nil, &vcs.RefError{Ref: ref, Err: err}
	}
	commit, err := b.repo.CommitObject(*hash)
	if err != nil {
		return nil, &vcs.RefError{Ref: ref, Err: err}
	}
	return commit, nil
}

// resolveTree returns the tree named by ref. The empty tree comes back as
// nil, which go-git's tree diffing treats as having no entries.
func (b *Backend) resolveTree(ref string) (*object.Tree, error) {
	ref = strings.TrimSpace(ref)
	if ref == EmptyTreeHash {
		return nil, nil
	}
	commit, err := b.resolveCommit(ref)
	if err != nil {
		return nil, err
	}
	return commitTree(commit)
}

func commitTree(c *object.Commit) (*object.Tree, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", c.Hash, err)
	}
	return tree, nil
}

// parentTree returns the tree of the first parent, or nil for root commits.
func parentTree(c *object.Commit) (*object.Tree, error) {
	if c.NumParents() == 0 {
		return nil, nil
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("read parent of %s: %w", c.Hash, err)
	}
	return commitTree(parent)
}

// headCommit returns nil without error on an unborn branch.
func (b *Backend) headCommit() (*object.Commit, error) {
	ref, err := b.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read HEAD: %w", err)
	}
	commit, err := b.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return commit, nil
}

func (b *Backend) headTree() (*object.Tree, error) {
	commit, err := b.headCommit()
	if err != nil || commit == nil {
		return nil, err
	}
	return commitTree(commit)
}

func summary(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
