// Package repo picks the backend for a path and exposes the git-only
// working-copy operations by repository path.
package repo

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
	"github.com/thiagokokada/vcsdiff/internal/vcs/git"
	"github.com/thiagokokada/vcsdiff/internal/vcs/jj"
)

type Options struct {
	// Backend forces a VCS; vcs.TypeNone detects it.
	Backend vcs.Type
	// JJBinary is passed to the jj backend.
	JJBinary string
}

// Detect walks up from path looking for a repository. A directory holding
// both .jj and .git is a colocated jj repository and reports TypeJj.
func Detect(path string) vcs.Type {
	dir, err := filepath.Abs(path)
	if err != nil {
		return vcs.TypeNone
	}
	for {
		if isDir(filepath.Join(dir, ".jj")) {
			return vcs.TypeJj
		}
		if exists(filepath.Join(dir, ".git")) {
			return vcs.TypeGit
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return vcs.TypeNone
		}
		dir = parent
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// exists accepts files too, since linked worktrees and submodules use a
// .git file.
func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Open returns a fresh backend for path. Handles are not shared; callers
// open one per logical operation.
func Open(path string, opts Options) (vcs.Backend, error) {
	kind := opts.Backend
	if kind == vcs.TypeNone {
		kind = Detect(path)
	}
	slog.Debug("opening repository", slog.String("path", path), slog.String("backend", kind.String()))
	switch kind {
	case vcs.TypeGit:
		b, err := git.Open(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case vcs.TypeJj:
		b, err := jj.Open(path, jj.Options{Binary: opts.JJBinary})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, vcs.ErrNotARepository
	}
}
