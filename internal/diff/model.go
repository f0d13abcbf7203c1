// Package diff holds the structured form of a unified diff and converts it to
// and from text.
package diff

import "fmt"

type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

func (k LineKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

// Prefix returns the character that introduces a line of this kind in
// unified-diff text.
func (k LineKind) Prefix() byte {
	switch k {
	case Added:
		return '+'
	case Removed:
		return '-'
	default:
		return ' '
	}
}

// Line is one row of a hunk. Added lines carry only a new line number,
// removed lines only an old one, and context lines both.
type Line struct {
	Kind       LineKind
	Content    string
	OldLineNum *int
	NewLineNum *int
}

type Hunk struct {
	OldStart int
	NewStart int
	Lines    []Line
}

// OldLineCount counts the context and removed lines of the hunk.
func (h Hunk) OldLineCount() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind != Added {
			n++
		}
	}
	return n
}

// NewLineCount counts the context and added lines of the hunk.
func (h Hunk) NewLineCount() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind != Removed {
			n++
		}
	}
	return n
}

// Header regenerates the "@@ -a,b +c,d @@" line from the hunk content.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLineCount(), h.NewStart, h.NewLineCount())
}

type FileDiff struct {
	Path  string
	Hunks []Hunk
}

type Diff struct {
	Files []FileDiff
}

// LineID addresses a single line inside the Diff it was taken from. It is not
// meaningful against any other Diff, including a re-parse of the same text.
type LineID struct {
	File int
	Hunk int
	Line int
}

func (id LineID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.File, id.Hunk, id.Line)
}

// Line looks up the line addressed by id.
func (d Diff) Line(id LineID) (Line, bool) {
	if id.File < 0 || id.File >= len(d.Files) {
		return Line{}, false
	}
	f := d.Files[id.File]
	if id.Hunk < 0 || id.Hunk >= len(f.Hunks) {
		return Line{}, false
	}
	h := f.Hunks[id.Hunk]
	if id.Line < 0 || id.Line >= len(h.Lines) {
		return Line{}, false
	}
	return h.Lines[id.Line], true
}

// LineIDs returns the address of every line in document order.
func (d Diff) LineIDs() []LineID {
	var ids []LineID
	for fi, f := range d.Files {
		for hi, h := range f.Hunks {
			for li := range h.Lines {
				ids = append(ids, LineID{File: fi, Hunk: hi, Line: li})
			}
		}
	}
	return ids
}

// Stats reports the number of added and removed lines across the diff.
func (d Diff) Stats() (added, removed int) {
	for _, f := range d.Files {
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				switch l.Kind {
				case Added:
					added++
				case Removed:
					removed++
				}
			}
		}
	}
	return added, removed
}
