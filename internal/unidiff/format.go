// Package unidiff turns pairs of text blobs into unified-diff text for
// backends that have no patch printer of their own.
package unidiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// Hunk is a formatted change region. Lines carry their " ", "-" or "+"
// prefix; the counts always equal the lines of each kind.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []string
}

func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

type hunkBuilder struct {
	oldStart int
	newStart int
	oldLines int
	newLines int
	lines    []string
}

func (hb *hunkBuilder) context(line string) {
	hb.lines = append(hb.lines, " "+line)
	hb.oldLines++
	hb.newLines++
}

func (hb *hunkBuilder) removed(line string) {
	hb.lines = append(hb.lines, "-"+line)
	hb.oldLines++
}

func (hb *hunkBuilder) added(line string) {
	hb.lines = append(hb.lines, "+"+line)
	hb.newLines++
}

func (hb *hunkBuilder) build() Hunk {
	return Hunk{
		OldStart: headerStart(hb.oldStart, hb.oldLines),
		OldLines: hb.oldLines,
		NewStart: headerStart(hb.newStart, hb.newLines),
		NewLines: hb.newLines,
		Lines:    hb.lines,
	}
}

// headerStart converts a 0-based offset to the 1-based value used in hunk
// headers. An empty side names the line before it, as git does.
func headerStart(offset, count int) int {
	if count == 0 {
		return offset
	}
	return offset + 1
}

// SplitLines splits text into lines without their terminating newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Hunks computes the hunks turning old into new.
func Hunks(old, new string) []Hunk {
	a, b := SplitLines(old), SplitLines(new)
	ops := difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes()

	var (
		hunks []Hunk
		cur   *hunkBuilder
	)
	for k, op := range ops {
		if op.Tag == 'e' {
			if cur == nil {
				continue
			}
			n := op.I2 - op.I1
			last := k == len(ops)-1
			if !last && n <= 2*ContextLines {
				for _, line := range a[op.I1:op.I2] {
					cur.context(line)
				}
				continue
			}
			for _, line := range a[op.I1 : op.I1+min(n, ContextLines)] {
				cur.context(line)
			}
			hunks = append(hunks, cur.build())
			cur = nil
			continue
		}
		if cur == nil {
			lead := max(op.I1-ContextLines, 0)
			cur = &hunkBuilder{oldStart: lead, newStart: op.J1 - (op.I1 - lead)}
			for _, line := range a[lead:op.I1] {
				cur.context(line)
			}
		}
		for _, line := range a[op.I1:op.I2] {
			cur.removed(line)
		}
		for _, line := range b[op.J1:op.J2] {
			cur.added(line)
		}
	}
	if cur != nil {
		hunks = append(hunks, cur.build())
	}
	if len(hunks) == 0 && old != new {
		hunks = append(hunks, wholeHunk(a, b))
	}
	return hunks
}

// wholeHunk replaces everything, for inputs whose lines compare equal while
// the texts do not (a missing final newline, for instance).
func wholeHunk(a, b []string) Hunk {
	hb := &hunkBuilder{}
	for _, line := range a {
		hb.removed(line)
	}
	for _, line := range b {
		hb.added(line)
	}
	return hb.build()
}

// WriteHunks appends the hunks turning old into new to sb.
func WriteHunks(sb *strings.Builder, old, new string) {
	for _, h := range Hunks(old, new) {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, line := range h.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
}

// Format returns just the hunks for old and new, without file headers.
func Format(old, new string) string {
	var sb strings.Builder
	WriteHunks(&sb, old, new)
	return sb.String()
}
