package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcsdiff/internal/repo"
	"github.com/thiagokokada/vcsdiff/internal/unidiff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged and untracked files (git)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			snap, err := repo.Snapshot(a.opts.repo)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "On %s in %s\n", a.pal.branch.Sprint(snap.Branch), snap.RepoRoot)
			a.printBucket("Staged", snap.Staged)
			a.printBucket("Unstaged", snap.Unstaged)
			a.printBucket("Untracked", snap.Untracked)
			if len(snap.Staged)+len(snap.Unstaged)+len(snap.Untracked) == 0 {
				a.pal.dim.Fprintln(a.stdout, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func (a *app) printBucket(title string, files []vcs.SnapshotFile) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(a.stdout, "\n%s:\n", title)
	for _, f := range files {
		name := f.Path
		if f.PreviousPath != "" {
			name = f.PreviousPath + " -> " + f.Path
		}
		fmt.Fprintf(a.stdout, "  %s %s\n", a.statusColor(f.Status).Sprintf("%-12s", f.Status), name)
	}
}

func (a *app) statusColor(status string) *color.Color {
	switch status {
	case vcs.LabelAdded, vcs.LabelUntracked:
		return a.pal.added
	case vcs.LabelDeleted, vcs.LabelUnmerged:
		return a.pal.removed
	default:
		return a.pal.commit
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent commits with author and age (git)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.History.Limit
			}
			commits, err := repo.History(a.opts.repo, limit)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Fprintf(a.stdout, "%s %s %s\n",
					a.pal.commit.Sprint(c.ShortID),
					c.Summary,
					a.pal.dim.Sprintf("(%s, %s)", c.Author, c.RelativeTime))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits (default from config history.limit)")
	return cmd
}

func newCommitFilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit-files <commit>",
		Short: "List files a commit changed with their status (git)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			files, err := repo.CommitFiles(a.opts.repo, args[0])
			if err != nil {
				return err
			}
			for _, f := range files {
				name := f.Path
				if f.PreviousPath != "" {
					name = f.PreviousPath + " -> " + f.Path
				}
				fmt.Fprintf(a.stdout, "%s %s\n", a.statusColor(f.Status).Sprintf("%-12s", f.Status), name)
			}
			return nil
		},
	}
}

func newVersionsCmd(a *app) *cobra.Command {
	var (
		out      diffOutput
		bucket   string
		commit   string
		previous string
		side     string
	)
	cmd := &cobra.Command{
		Use:   "versions <path>",
		Short: "Compare both versions of a text file (git)",
		Long:  "Load the old and new contents of a file from a working-tree bucket, or from a commit with --commit, and print them as a diff or print one side with --side.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			var (
				versions vcs.FileVersions
				err      error
			)
			if commit != "" {
				versions, err = repo.CommitFileVersions(a.opts.repo, commit, path, previous)
			} else {
				var b vcs.DiffBucket
				if b, err = vcs.ParseDiffBucket(bucket); err != nil {
					return err
				}
				versions, err = repo.FileVersions(a.opts.repo, path, b)
			}
			if err != nil {
				return err
			}
			switch side {
			case "old":
				return a.printSide(versions.Old, path)
			case "new":
				return a.printSide(versions.New, path)
			case "":
			default:
				return fmt.Errorf("invalid side %q: expected old or new", side)
			}
			var sb strings.Builder
			unidiff.WriteFile(&sb, path, contents(versions.Old), contents(versions.New))
			a.printDiff(sb.String(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "unstaged", "working-tree bucket: unstaged, staged or untracked")
	cmd.Flags().StringVar(&commit, "commit", "", "compare the file in this commit with its first parent")
	cmd.Flags().StringVar(&previous, "previous", "", "path before a rename, with --commit")
	cmd.Flags().StringVar(&side, "side", "", "print only the old or new contents")
	addDiffFlags(cmd, &out)
	return cmd
}

func contents(f *vcs.DiffFile) *string {
	if f == nil {
		return nil
	}
	return &f.Contents
}

func (a *app) printSide(f *vcs.DiffFile, path string) error {
	if f == nil {
		return &vcs.FileNotFoundError{Path: path}
	}
	fmt.Fprint(a.stdout, f.Contents)
	return nil
}

func newStageCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "stage [path]",
		Short: "Add a file, or every change with --all, to the index (git)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := pathOrAll(args, all)
			if err != nil {
				return err
			}
			if all {
				return repo.StageAll(a.opts.repo)
			}
			return repo.StageFile(a.opts.repo, path)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "stage every change")
	return cmd
}

func newUnstageCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "unstage [path]",
		Short: "Restore index entries from HEAD (git)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := pathOrAll(args, all)
			if err != nil {
				return err
			}
			if all {
				return repo.UnstageAll(a.opts.repo)
			}
			return repo.UnstageFile(a.opts.repo, path)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "unstage everything")
	return cmd
}

func newDiscardCmd(a *app) *cobra.Command {
	var (
		all    bool
		bucket string
	)
	cmd := &cobra.Command{
		Use:   "discard [path]",
		Short: "Throw away changes to a file, or all changes with --all (git)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := pathOrAll(args, all)
			if err != nil {
				return err
			}
			if all {
				return repo.DiscardAll(a.opts.repo)
			}
			if bucket == "" {
				return errors.New("--bucket is required when discarding a path")
			}
			b, err := vcs.ParseDiffBucket(bucket)
			if err != nil {
				return err
			}
			return repo.DiscardFile(a.opts.repo, path, b)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "reset to HEAD and delete untracked files")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket the file is listed in: unstaged, staged or untracked (required with a path)")
	return cmd
}

func pathOrAll(args []string, all bool) (string, error) {
	switch {
	case all && len(args) > 0:
		return "", errors.New("--all takes no path")
	case !all && len(args) == 0:
		return "", errors.New("a path or --all is required")
	case all:
		return "", nil
	default:
		return args[0], nil
	}
}

func newCommitCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit the index (git)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			id, err := repo.CommitStaged(a.opts.repo, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
