// Package config loads vcsdiff settings from built-in defaults, an optional
// TOML file and VCSDIFF_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

// EnvPrefix is stripped from environment keys. A double underscore separates
// a section from its key, e.g. VCSDIFF_HIGHLIGHT__CACHE_SIZE.
const EnvPrefix = "VCSDIFF_"

const appDir = "vcsdiff"

type Config struct {
	Backend   string          `koanf:"backend"`
	Color     string          `koanf:"color"`
	Log       LogConfig       `koanf:"log"`
	Highlight HighlightConfig `koanf:"highlight"`
	History   HistoryConfig   `koanf:"history"`
	Watch     WatchConfig     `koanf:"watch"`
	JJ        JJConfig        `koanf:"jj"`
	Workspace WorkspaceConfig `koanf:"workspace"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type HighlightConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Style     string `koanf:"style"`
	CacheSize int    `koanf:"cache_size"`
}

type HistoryConfig struct {
	Limit int `koanf:"limit"`
}

type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

type JJConfig struct {
	Binary string `koanf:"binary"`
}

type WorkspaceConfig struct {
	File string `koanf:"file"`
}

func defaults() map[string]any {
	return map[string]any{
		"backend":              "auto",
		"color":                "auto",
		"log.level":            "warn",
		"highlight.enabled":    true,
		"highlight.style":      "github-dark",
		"highlight.cache_size": 512,
		"history.limit":        50,
		"watch.debounce":       "350ms",
		"jj.binary":            "jj",
		"workspace.file":       "",
	}
}

// DefaultDir is $XDG_CONFIG_HOME/vcsdiff, or the platform equivalent.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir), nil
}

// DefaultPath returns the config file read when no explicit path is given.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load builds the configuration. An explicit path must exist; with an empty
// path the default location is used when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			} else if !errors.Is(statErr, fs.ErrNotExist) {
				slog.Debug("config file not readable", slog.String("path", p), slog.Any("error", statErr))
			}
		}
	}
	if path != "" {
		slog.Debug("loading config file", slog.String("path", path))
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	if _, err := vcs.ParseType(c.Backend); err != nil {
		return fmt.Errorf("config backend: %w", err)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("config color: %q is not one of auto, always, never", c.Color)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Highlight.CacheSize <= 0 {
		return fmt.Errorf("config highlight.cache_size: must be positive, got %d", c.Highlight.CacheSize)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("config history.limit: must not be negative, got %d", c.History.Limit)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("config watch.debounce: must be positive, got %s", c.Watch.Debounce)
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config log.level: %w", err)
	}
	return level, nil
}

func (c *Config) BackendType() vcs.Type {
	t, _ := vcs.ParseType(c.Backend)
	return t
}

// WorkspaceFile resolves workspace.file, falling back to workspace.toml next
// to the default config file.
func (c *Config) WorkspaceFile() (string, error) {
	if c.Workspace.File != "" {
		return c.Workspace.File, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspace.toml"), nil
}
