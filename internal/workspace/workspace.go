// Package workspace persists the list of repositories the CLI switches
// between.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/thiagokokada/vcsdiff/internal/repo"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

var ErrDuplicate = errors.New("repository already in workspace")

type RepoEntry struct {
	Path string `koanf:"path"`
	Name string `koanf:"name"`
}

func NewRepoEntry(path string) RepoEntry {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		name = path
	}
	return RepoEntry{Path: path, Name: name}
}

// Available reports whether the entry still points at a repository.
func (e RepoEntry) Available() bool {
	if _, err := os.Stat(e.Path); err != nil {
		return false
	}
	return repo.Detect(e.Path) != vcs.TypeNone
}

type Workspace struct {
	Repos     []RepoEntry `koanf:"repos"`
	ActiveIdx int         `koanf:"active_idx"`
}

// Load reads the workspace file. A missing file is an empty workspace.
func Load(path string) (*Workspace, error) {
	ws := &Workspace{}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ws, nil
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", path, err)
	}
	if err := k.Unmarshal("", ws); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", path, err)
	}
	if ws.ActiveIdx < 0 || ws.ActiveIdx >= len(ws.Repos) {
		ws.ActiveIdx = 0
	}
	slog.Debug("workspace loaded", slog.String("path", path), slog.Int("repos", len(ws.Repos)))
	return ws, nil
}

// Save writes the workspace to path, creating parent directories.
func (w *Workspace) Save(path string) error {
	repos := make([]map[string]any, 0, len(w.Repos))
	for _, r := range w.Repos {
		repos = append(repos, map[string]any{"path": r.Path, "name": r.Name})
	}
	data, err := toml.Parser().Marshal(map[string]any{
		"active_idx": w.ActiveIdx,
		"repos":      repos,
	})
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return vcs.IOError("create workspace dir", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return vcs.IOError("write workspace", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(vcs.IOError("replace workspace", err), os.Remove(tmp))
	}
	return nil
}

// Add canonicalizes path and appends it when it is a repository not
// already listed.
func (w *Workspace) Add(path string) (RepoEntry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return RepoEntry{}, fmt.Errorf("invalid path: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return RepoEntry{}, fmt.Errorf("invalid path: %w", err)
	}
	if repo.Detect(canonical) == vcs.TypeNone {
		return RepoEntry{}, fmt.Errorf("%s: %w", canonical, vcs.ErrNotARepository)
	}
	for _, r := range w.Repos {
		if r.Path == canonical {
			return RepoEntry{}, ErrDuplicate
		}
	}
	entry := NewRepoEntry(canonical)
	w.Repos = append(w.Repos, entry)
	return entry, nil
}

// Remove drops the entry at idx and keeps the active index pointing at the
// same repository when possible.
func (w *Workspace) Remove(idx int) error {
	if err := w.check(idx); err != nil {
		return err
	}
	w.Repos = append(w.Repos[:idx], w.Repos[idx+1:]...)
	switch {
	case len(w.Repos) == 0:
		w.ActiveIdx = 0
	case w.ActiveIdx >= len(w.Repos):
		w.ActiveIdx = len(w.Repos) - 1
	case w.ActiveIdx > idx:
		w.ActiveIdx--
	}
	return nil
}

func (w *Workspace) SetActive(idx int) error {
	if err := w.check(idx); err != nil {
		return err
	}
	w.ActiveIdx = idx
	return nil
}

func (w *Workspace) Rename(idx int, name string) error {
	if err := w.check(idx); err != nil {
		return err
	}
	w.Repos[idx].Name = name
	return nil
}

// Active returns false for an empty workspace.
func (w *Workspace) Active() (RepoEntry, bool) {
	if w.ActiveIdx < 0 || w.ActiveIdx >= len(w.Repos) {
		return RepoEntry{}, false
	}
	return w.Repos[w.ActiveIdx], true
}

func (w *Workspace) IsEmpty() bool {
	return len(w.Repos) == 0
}

func (w *Workspace) check(idx int) error {
	if idx < 0 || idx >= len(w.Repos) {
		return fmt.Errorf("no repository at index %d (workspace has %d)", idx, len(w.Repos))
	}
	return nil
}
