package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/vcsdiff/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the changed file list whenever the repository changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			root := b.Root()
			if err := a.printWorktreeFiles(); err != nil {
				return err
			}

			batches := make(chan []string, 1)
			w, err := watch.New(root, a.cfg.Watch.Debounce, func(paths []string) {
				select {
				case batches <- paths:
				default:
					slog.Debug("dropping change batch, previous one still pending", slog.Int("paths", len(paths)))
				}
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return w.Run(ctx)
			})
			g.Go(func() error {
				defer w.Close()
				for {
					select {
					case <-ctx.Done():
						return nil
					case paths := <-batches:
						a.pal.dim.Fprintf(a.stdout, "[%s] %d path(s) changed\n", time.Now().Format(time.TimeOnly), len(paths))
						if err := a.printWorktreeFiles(); err != nil {
							return err
						}
						if once {
							return nil
						}
					}
				}
			})
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "exit after the first change")
	return cmd
}

// printWorktreeFiles opens a fresh backend so each refresh sees the
// repository as it is now.
func (a *app) printWorktreeFiles() error {
	b, err := a.open()
	if err != nil {
		return err
	}
	files, err := b.WorkingTreeChangedFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.pal.dim.Fprintln(a.stdout, "no changes")
		return nil
	}
	for _, f := range files {
		fmt.Fprintf(a.stdout, "  %s\n", f)
	}
	return nil
}
