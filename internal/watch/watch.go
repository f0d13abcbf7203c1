// Package watch reports repository changes on disk in debounced batches.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/thiagokokada/vcsdiff/internal/debounce"
)

const DefaultDebounce = 350 * time.Millisecond

// storeDirs are never walked as part of the worktree. Their interesting
// parts are listed in storeWatchDirs instead.
var storeDirs = []string{".git", ".jj"}

var storeWatchDirs = []string{
	".git",
	filepath.Join(".git", "refs", "heads"),
	".jj",
	filepath.Join(".jj", "working_copy"),
	filepath.Join(".jj", "repo", "op_heads", "heads"),
}

var skippedDirs = []string{"node_modules"}

type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	batch   *debounce.Batch
	mu      sync.Mutex
	watched map[string]struct{}
}

// New watches root and calls onChange with repository-relative paths once
// no new event arrived for delay. Events are only delivered while Run is
// active.
func New(root string, delay time.Duration, onChange func([]string)) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		root:    abs,
		fsw:     fsw,
		batch:   debounce.NewBatch(delay, onChange),
		watched: map[string]struct{}{},
	}
	dirs, err := watchDirs(osfs.New(abs))
	if err != nil {
		return nil, errors.Join(err, fsw.Close())
	}
	for _, dir := range dirs {
		if err := w.add(dir); err != nil {
			return nil, errors.Join(err, fsw.Close())
		}
	}
	return w, nil
}

// Dirs lists the watched directories relative to the root, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.watched))
	for d := range w.watched {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}

func (w *Watcher) add(rel string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[rel]; ok {
		return nil
	}
	full := filepath.Join(w.root, rel)
	slog.Debug("adding path to FS watcher", slog.String("path", full))
	if err := w.fsw.Add(full); err != nil {
		return fmt.Errorf("watch %s: %w", full, err)
	}
	w.watched[rel] = struct{}{}
	return nil
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if shouldIgnore(ev.Name) {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	slog.Debug("fsnotify event", slog.String("op", ev.Op.String()), slog.String("path", rel))
	if ev.Op.Has(fsnotify.Create) && !inStore(rel) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
			if err := w.add(filepath.FromSlash(rel)); err != nil {
				slog.Debug("watch new directory failed", slog.Any("error", err))
			}
		}
	}
	w.batch.Add(rel)
}

func (w *Watcher) Close() error {
	w.batch.Stop()
	return w.fsw.Close()
}

// watchDirs returns the worktree directories plus whichever store
// directories exist, relative to the filesystem root ("." for the root).
func watchDirs(fsys billy.Filesystem) ([]string, error) {
	var dirs []string
	err := util.Walk(fsys, "", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if p == "" {
				return err
			}
			slog.Debug("skipping unreadable path", slog.String("path", p), slog.Any("error", err))
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if p != "" && (slices.Contains(storeDirs, info.Name()) || skipDir(info.Name())) {
			return filepath.SkipDir
		}
		if p == "" {
			p = "."
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk worktree: %w", err)
	}
	for _, d := range storeWatchDirs {
		if info, err := fsys.Lstat(d); err == nil && info.IsDir() {
			dirs = append(dirs, d)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}

func skipDir(name string) bool {
	return slices.Contains(skippedDirs, name)
}

func inStore(rel string) bool {
	for _, d := range storeDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

// shouldIgnore drops lock and socket churn that every VCS command produces.
func shouldIgnore(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}
