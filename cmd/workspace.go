package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/vcsdiff/internal/repo"
	"github.com/thiagokokada/vcsdiff/internal/workspace"
)

func newWorkspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage the list of repositories vcsdiff knows about",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List workspace repositories",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				ws, _, err := a.loadWorkspace()
				if err != nil {
					return err
				}
				for i, r := range ws.Repos {
					marker := " "
					if i == ws.ActiveIdx {
						marker = "*"
					}
					line := fmt.Sprintf("%s %d %s %s", marker, i, a.pal.file.Sprint(r.Name), r.Path)
					if !r.Available() {
						line += " " + a.pal.removed.Sprint("(missing)")
					}
					fmt.Fprintln(a.stdout, line)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <path>",
			Short: "Add a repository",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.editWorkspace(func(ws *workspace.Workspace) error {
					entry, err := ws.Add(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(a.stdout, "added %s (%s)\n", entry.Name, entry.Path)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove the repository at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				idx, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return a.editWorkspace(func(ws *workspace.Workspace) error {
					return ws.Remove(idx)
				})
			},
		},
		&cobra.Command{
			Use:   "use <index>",
			Short: "Make the repository at index the active one",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				idx, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return a.editWorkspace(func(ws *workspace.Workspace) error {
					return ws.SetActive(idx)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <index> <name>",
			Short: "Change the display name of a repository",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				idx, err := parseIndex(args[0])
				if err != nil {
					return err
				}
				return a.editWorkspace(func(ws *workspace.Workspace) error {
					return ws.Rename(idx, args[1])
				})
			},
		},
		newWorkspaceStatusCmd(a),
	)
	return cmd
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return idx, nil
}

func (a *app) editWorkspace(fn func(*workspace.Workspace) error) error {
	ws, path, err := a.loadWorkspace()
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		return err
	}
	return ws.Save(path)
}

type repoSummary struct {
	backend string
	branch  string
	changed int
	err     error
}

// newWorkspaceStatusCmd summarises every repository concurrently. Each
// goroutine opens its own backend.
func newWorkspaceStatusCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show branch and pending change count for each repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, _, err := a.loadWorkspace()
			if err != nil {
				return err
			}
			summaries := make([]repoSummary, len(ws.Repos))
			g, _ := errgroup.WithContext(cmd.Context())
			if jobs > 0 {
				g.SetLimit(jobs)
			}
			for i, r := range ws.Repos {
				g.Go(func() error {
					summaries[i] = a.summarize(r.Path)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for i, r := range ws.Repos {
				s := summaries[i]
				if s.err != nil {
					fmt.Fprintf(a.stdout, "%s %s\n", a.pal.file.Sprint(r.Name), a.pal.removed.Sprintf("error: %v", s.err))
					continue
				}
				fmt.Fprintf(a.stdout, "%s [%s] %s %d changed\n",
					a.pal.file.Sprint(r.Name), s.backend, a.pal.branch.Sprint(s.branch), s.changed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "repositories to inspect at once (0 for no limit)")
	return cmd
}

func (a *app) summarize(path string) repoSummary {
	b, err := repo.Open(path, a.repoOptions())
	if err != nil {
		return repoSummary{err: err}
	}
	branch, ok, err := b.CurrentBranch()
	if err != nil {
		return repoSummary{err: err}
	}
	if !ok {
		branch = "(detached)"
	}
	files, err := b.WorkingTreeChangedFiles()
	if err != nil {
		return repoSummary{err: err}
	}
	slog.Debug("summarized repository", slog.String("path", path), slog.Int("changed", len(files)))
	return repoSummary{backend: b.Name(), branch: branch, changed: len(files)}
}
