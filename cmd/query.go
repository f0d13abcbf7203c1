package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func newShowCmd(a *app) *cobra.Command {
	var out diffOutput
	cmd := &cobra.Command{
		Use:   "show [ref]",
		Short: "Show a commit and its diff against the first parent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			ref := b.WorkingCopyParentRef()
			if len(args) == 1 {
				ref = args[0]
			}
			info, err := b.Commit(ref)
			if err != nil {
				return err
			}
			a.printCommit(info, out)
			return nil
		},
	}
	addDiffFlags(cmd, &out)
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var (
		out    diffOutput
		staged bool
	)
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show working tree changes",
		Long:  "Show changes between the index and the working tree, or between HEAD and the index with --staged. jj repositories have no index and always show the working-copy commit.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			text, err := b.WorkingTreeDiff(staged)
			if err != nil {
				return err
			}
			a.printDiff(text, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&staged, "staged", false, "compare HEAD with the index")
	addDiffFlags(cmd, &out)
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	var (
		out      diffOutput
		threeDot bool
	)
	cmd := &cobra.Command{
		Use:   "range <from> <to>",
		Short: "Show the diff between two revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			text, err := b.RangeDiff(args[0], args[1], threeDot)
			if err != nil {
				return err
			}
			a.printDiff(text, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&threeDot, "three-dot", false, "diff from the merge base of both revisions")
	addDiffFlags(cmd, &out)
	return cmd
}

func newFilesCmd(a *app) *cobra.Command {
	var worktree, isRange bool
	cmd := &cobra.Command{
		Use:   "files [ref | from..to]",
		Short: "List changed files",
		Long:  "List files changed by a revision or range. With --worktree list uncommitted changes; with --range take <from> <to> as two arguments.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if worktree && isRange {
				return errors.New("--worktree and --range are mutually exclusive")
			}
			b, err := a.open()
			if err != nil {
				return err
			}
			var files []string
			switch {
			case worktree:
				if len(args) > 0 {
					return errors.New("--worktree takes no arguments")
				}
				files, err = b.WorkingTreeChangedFiles()
			case isRange:
				if len(args) != 2 {
					return errors.New("--range needs <from> and <to>")
				}
				files, err = b.RangeChangedFiles(args[0], args[1])
			default:
				if len(args) > 1 {
					return errors.New("expected a single ref or range")
				}
				ref := b.WorkingCopyParentRef()
				if len(args) == 1 {
					ref = args[0]
				}
				files, err = b.ChangedFiles(ref)
			}
			if err != nil {
				return err
			}
			a.printLines(files)
			return nil
		},
	}
	cmd.Flags().BoolVar(&worktree, "worktree", false, "list uncommitted changes")
	cmd.Flags().BoolVar(&isRange, "range", false, "treat the two arguments as <from> <to>")
	return cmd
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <ref> <path>",
		Short: "Print a file as it is at a revision",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			content, err := b.FileContentAtRef(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, content)
			return nil
		},
	}
}

func newBranchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "branch",
		Short: "Print the current branch or bookmark",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			name, ok, err := b.CurrentBranch()
			if err != nil {
				return err
			}
			if !ok {
				a.pal.dim.Fprintln(a.stdout, "(detached)")
				return nil
			}
			a.pal.branch.Fprintln(a.stdout, name)
			return nil
		},
	}
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <ref>",
		Short: "Print the full commit id a reference points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			id, err := b.ResolveRef(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, id)
			return nil
		},
	}
}

func newLogCmd(a *app) *cobra.Command {
	var fzf bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recent commits, one per line",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			text, err := b.CommitLogForFzf()
			if err != nil {
				return err
			}
			if !fzf && !a.colors {
				text = vcs.StripDisplayHints(text)
			}
			fmt.Fprint(a.stdout, text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fzf, "fzf", false, "keep ANSI hints for fzf --ansi regardless of --color")
	return cmd
}

func newMergeBaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge-base <ref1> <ref2>",
		Short: "Print the best common ancestor of two revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			id, err := b.MergeBase(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, id)
			return nil
		},
	}
}

func newStackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stack <from> <to>",
		Short: "List commits in to but not in from, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			commits, err := b.CommitsInRange(args[0], args[1])
			if err != nil {
				return err
			}
			for _, c := range commits {
				fields := []string{a.pal.commit.Sprint(c.ShortID)}
				if c.ChangeID != "" {
					fields = append(fields, a.pal.dim.Sprint(vcs.ShortID(c.ChangeID, 12)))
				}
				fields = append(fields, c.Summary)
				fmt.Fprintln(a.stdout, strings.Join(fields, " "))
			}
			return nil
		},
	}
}

func newParentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parent [ref]",
		Short: "Print the parent reference of a revision, or the empty anchor for root commits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}
			ref := b.WorkingCopyParentRef()
			if len(args) == 1 {
				ref = args[0]
			}
			parent, err := b.ParentRefOrEmpty(ref)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, parent)
			return nil
		},
	}
}
