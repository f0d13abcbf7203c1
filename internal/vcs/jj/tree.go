package jj

import (
	"strings"
)

// Kind is the type of a path's value in a jj tree.
type Kind int

const (
	KindAbsent Kind = iota
	KindFile
	KindSymlink
	KindSubmodule
	KindTree
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindSubmodule:
		return "submodule"
	case KindTree:
		return "tree"
	case KindConflict:
		return "conflict"
	default:
		return "absent"
	}
}

// kindFromLetter decodes one letter of "jj diff --types" output.
func kindFromLetter(c byte) Kind {
	switch c {
	case 'F':
		return KindFile
	case 'L':
		return KindSymlink
	case 'G':
		return KindSubmodule
	case 'C':
		return KindConflict
	case 'T':
		return KindTree
	default:
		return KindAbsent
	}
}

// TreeValue is the value of one path at one revision. Only File and
// Conflict values have textual content.
type TreeValue struct {
	Kind Kind
}

func (v TreeValue) HasContent() bool {
	return v.Kind == KindFile || v.Kind == KindConflict
}

// pathChange is one line of "jj diff --types".
type pathChange struct {
	Path   string
	Before TreeValue
	After  TreeValue
}

// parseTypes decodes "jj diff --types" output. Renames and copies, printed
// as "prefix{old => new}suffix", are split into a removal of the old path
// and an addition of the new one, so every entry describes a single path.
func parseTypes(out string) []pathChange {
	var changes []pathChange
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 || line[2] != ' ' {
			continue
		}
		before := TreeValue{Kind: kindFromLetter(line[0])}
		after := TreeValue{Kind: kindFromLetter(line[1])}
		path := line[3:]
		if oldPath, newPath, ok := splitRename(path); ok {
			changes = append(changes,
				pathChange{Path: oldPath, Before: before},
				pathChange{Path: newPath, After: after},
			)
			continue
		}
		changes = append(changes, pathChange{Path: path, Before: before, After: after})
	}
	return changes
}

func splitRename(path string) (oldPath, newPath string, ok bool) {
	open := strings.Index(path, "{")
	if open < 0 {
		return "", "", false
	}
	end := strings.Index(path[open:], "}")
	if end < 0 {
		return "", "", false
	}
	end += open
	from, to, found := strings.Cut(path[open+1:end], " => ")
	if !found {
		return "", "", false
	}
	prefix, suffix := path[:open], path[end+1:]
	return cleanJoin(prefix, from, suffix), cleanJoin(prefix, to, suffix), true
}

// cleanJoin joins the pieces of a braced rename, dropping the doubled slash
// left behind when one side of the braces is empty.
func cleanJoin(prefix, middle, suffix string) string {
	p := prefix + middle + suffix
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.TrimPrefix(p, "/")
}
