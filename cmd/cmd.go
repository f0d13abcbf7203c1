// Package cmd implements the vcsdiff command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcsdiff/internal/buildinfo"
	"github.com/thiagokokada/vcsdiff/internal/config"
	"github.com/thiagokokada/vcsdiff/internal/highlight"
	"github.com/thiagokokada/vcsdiff/internal/repo"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
	"github.com/thiagokokada/vcsdiff/internal/vcs/jj"
	"github.com/thiagokokada/vcsdiff/internal/workspace"
)

type options struct {
	repo       string
	backend    string
	configPath string
	color      string
	verbose    bool
	active     bool
}

// app carries what every subcommand needs once the root has loaded the
// configuration.
type app struct {
	opts   options
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	colors bool
	pal    palette
	hl     *highlight.Highlighter
}

func Run() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(&app{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vcsdiff",
		Short:         "Inspect and edit change state in git and jj repositories",
		Long:          "vcsdiff shows working tree, staged, commit and range diffs for git and jj repositories through one interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.repo, "repo", "r", ".", "path inside the repository")
	pf.StringVar(&a.opts.backend, "backend", "", "force a backend: git, jj or auto")
	pf.StringVar(&a.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/vcsdiff/config.toml)")
	pf.StringVar(&a.opts.color, "color", "", "colorize output: auto, always or never")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.opts.active, "active", "w", false, "use the active workspace repository instead of --repo")

	root.AddCommand(
		newShowCmd(a),
		newDiffCmd(a),
		newRangeCmd(a),
		newFilesCmd(a),
		newCatCmd(a),
		newBranchCmd(a),
		newResolveCmd(a),
		newLogCmd(a),
		newMergeBaseCmd(a),
		newStackCmd(a),
		newParentCmd(a),
		newStatusCmd(a),
		newHistoryCmd(a),
		newCommitFilesCmd(a),
		newVersionsCmd(a),
		newStageCmd(a),
		newUnstageCmd(a),
		newDiscardCmd(a),
		newCommitCmd(a),
		newWatchCmd(a),
		newWorkspaceCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.opts.backend
	}
	if flags.Changed("color") {
		cfg.Color = a.opts.color
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if a.opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
	a.cfg = cfg

	a.colors = useColor(cfg.Color, a.stdout)
	a.pal = newPalette(a.colors)
	if a.colors && cfg.Highlight.Enabled {
		hl, err := highlight.New(cfg.Highlight.Style, cfg.Highlight.CacheSize)
		if err != nil {
			return err
		}
		a.hl = hl
	}

	if a.opts.active {
		path, err := a.activeRepo()
		if err != nil {
			return err
		}
		a.opts.repo = path
	}
	slog.Debug("configured",
		slog.String("repo", a.opts.repo),
		slog.String("backend", cfg.Backend),
		slog.Bool("color", a.colors),
	)
	return nil
}

func (a *app) activeRepo() (string, error) {
	ws, _, err := a.loadWorkspace()
	if err != nil {
		return "", err
	}
	entry, ok := ws.Active()
	if !ok {
		return "", fmt.Errorf("workspace is empty")
	}
	return entry.Path, nil
}

func (a *app) loadWorkspace() (*workspace.Workspace, string, error) {
	path, err := a.cfg.WorkspaceFile()
	if err != nil {
		return nil, "", err
	}
	ws, err := workspace.Load(path)
	if err != nil {
		return nil, "", err
	}
	return ws, path, nil
}

func (a *app) repoOptions() repo.Options {
	return repo.Options{Backend: a.cfg.BackendType(), JJBinary: a.cfg.JJ.Binary}
}

func (a *app) open() (vcs.Backend, error) {
	return repo.Open(a.opts.repo, a.repoOptions())
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			info := buildinfo.Read()
			fmt.Fprintf(a.stdout, "vcsdiff %s\n", info)
			if info.GoVersion != "" {
				fmt.Fprintf(a.stdout, "built with %s\n", info.GoVersion)
			}
			fmt.Fprintf(a.stdout, "jj backend requires jj >= %s\n", jj.MinVersion())
			return nil
		},
	}
}
