// Package jj implements vcs.Backend by driving the jj command line.
package jj

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

const (
	// RootRef names jj's root commit, the parent of every history.
	RootRef = "root()"

	shortIDLen = 12
)

type Options struct {
	// Binary is the jj executable, "jj" when empty.
	Binary string
	// Runner replaces process execution, mostly for tests.
	Runner Runner
}

type Backend struct {
	root        string
	run         Runner
	snapshotted bool
}

var _ vcs.Backend = (*Backend)(nil)

// Open locates the jj workspace containing path. The first command issued
// afterwards snapshots the working copy; every later one reuses that
// snapshot.
func Open(path string, opts Options) (*Backend, error) {
	run := opts.Runner
	if run == nil {
		binary := opts.Binary
		if binary == "" {
			binary = "jj"
		}
		run = ExecRunner(binary)
	}
	if err := ensureMinVersion(run); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, vcs.IOError("resolve path", err)
	}
	out, err := run(abs, []string{"root"})
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return nil, fmt.Errorf("%w: %s", vcs.ErrNotARepository, cmdErr.Message())
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return nil, fmt.Errorf("open repository: jj root returned empty root")
	}
	b := &Backend{root: root, run: run}
	if _, err := b.resolve("@"); err != nil {
		return nil, fmt.Errorf("snapshot working copy: %w", err)
	}
	slog.Debug("opened jj repository", slog.String("root", root))
	return b, nil
}

func (b *Backend) Name() string { return "jj" }

func (b *Backend) Root() string { return b.root }

func (b *Backend) WorkingCopyParentRef() string { return "@-" }

// jj runs a subcommand against the workspace.
func (b *Backend) jj(args ...string) (string, error) {
	full := []string{"--repository", b.root, "--no-pager", "--color", "never"}
	if b.snapshotted {
		full = append(full, "--ignore-working-copy")
	}
	full = append(full, args...)
	out, err := b.run(b.root, full)
	if err != nil {
		slog.Debug("jj command failed", slog.Any("args", args), slog.Any("error", err))
		return "", err
	}
	b.snapshotted = true
	return out, nil
}
