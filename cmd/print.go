package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/vcsdiff/internal/diff"
	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

type palette struct {
	file    *color.Color
	hunk    *color.Color
	added   *color.Color
	removed *color.Color
	commit  *color.Color
	dim     *color.Color
	branch  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		file:    mk(color.Bold),
		hunk:    mk(color.FgCyan),
		added:   mk(color.FgGreen),
		removed: mk(color.FgRed),
		commit:  mk(color.FgYellow),
		dim:     mk(color.FgHiBlack),
		branch:  mk(color.FgMagenta, color.Bold),
	}
}

// useColor resolves "auto" against the writer: only a terminal stdout gets
// colour, and fatih/color already honours NO_COLOR and TERM=dumb there.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}

type diffOutput struct {
	raw  bool
	stat bool
}

func addDiffFlags(cmd *cobra.Command, out *diffOutput) {
	cmd.Flags().BoolVar(&out.raw, "raw", false, "print the unified diff exactly as produced")
	cmd.Flags().BoolVar(&out.stat, "stat", false, "print per-file line counts instead of the diff")
}

func (a *app) printDiff(text string, out diffOutput) {
	if out.raw {
		fmt.Fprint(a.stdout, text)
		return
	}
	d := diff.Parse(text)
	if out.stat {
		a.printStat(d)
		return
	}
	for _, f := range d.Files {
		a.pal.file.Fprintf(a.stdout, "diff --git %s %s\n", diff.QuotePath("a/"+f.Path), diff.QuotePath("b/"+f.Path))
		if len(f.Hunks) == 0 {
			a.pal.dim.Fprintln(a.stdout, "(no textual changes)")
			continue
		}
		for _, h := range f.Hunks {
			a.pal.hunk.Fprintln(a.stdout, h.Header())
			for _, l := range h.Lines {
				fmt.Fprintln(a.stdout, a.diffLine(f.Path, l))
			}
		}
	}
}

func (a *app) diffLine(path string, l diff.Line) string {
	prefix := string(l.Kind.Prefix())
	content := l.Content
	if a.hl != nil {
		content = a.hl.Line(path, content)
	}
	switch l.Kind {
	case diff.Added:
		if a.hl != nil {
			return a.pal.added.Sprint(prefix) + content
		}
		return a.pal.added.Sprint(prefix + content)
	case diff.Removed:
		if a.hl != nil {
			return a.pal.removed.Sprint(prefix) + content
		}
		return a.pal.removed.Sprint(prefix + content)
	default:
		return prefix + content
	}
}

func (a *app) printStat(d diff.Diff) {
	width := 0
	for _, f := range d.Files {
		width = max(width, len(f.Path))
	}
	for _, f := range d.Files {
		added, removed := diff.Diff{Files: []diff.FileDiff{f}}.Stats()
		fmt.Fprintf(a.stdout, " %-*s | %s %s\n", width, f.Path,
			a.pal.added.Sprintf("+%d", added), a.pal.removed.Sprintf("-%d", removed))
	}
	added, removed := d.Stats()
	fmt.Fprintf(a.stdout, " %d %s changed, %d %s(+), %d %s(-)\n",
		len(d.Files), pluralize(len(d.Files), "file", "files"),
		added, pluralize(added, "insertion", "insertions"),
		removed, pluralize(removed, "deletion", "deletions"))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (a *app) printCommit(info vcs.CommitInfo, out diffOutput) {
	a.pal.commit.Fprintf(a.stdout, "commit %s\n", info.CommitID)
	if info.ChangeID != "" {
		fmt.Fprintf(a.stdout, "Change-Id: %s\n", info.ChangeID)
	}
	fmt.Fprintf(a.stdout, "Author: %s\n", info.Author)
	fmt.Fprintf(a.stdout, "Date:   %s\n", info.Date)
	fmt.Fprintln(a.stdout)
	for _, line := range strings.Split(info.Message, "\n") {
		fmt.Fprintf(a.stdout, "    %s\n", line)
	}
	fmt.Fprintln(a.stdout)
	a.printDiff(info.Diff, out)
}

func (a *app) printLines(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(a.stdout, l)
	}
}
