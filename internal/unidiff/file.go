package unidiff

import (
	"bytes"
	"strings"

	"github.com/thiagokokada/vcsdiff/internal/diff"
)

const (
	newFileMode     = "new file mode 100644"
	deletedFileMode = "deleted file mode 100644"
	devNull         = "/dev/null"
)

// WriteFile appends a git-style section for path. A nil side means the file
// is absent there. It reports whether anything was written; identical or
// doubly absent content produces nothing.
func WriteFile(sb *strings.Builder, path string, old, new *string) bool {
	switch {
	case old == nil && new == nil:
		return false
	case old == nil:
		writeHeader(sb, path, newFileMode, devNull, "b/"+path)
		WriteHunks(sb, "", *new)
	case new == nil:
		writeHeader(sb, path, deletedFileMode, "a/"+path, devNull)
		WriteHunks(sb, *old, "")
	default:
		if *old == *new {
			return false
		}
		writeHeader(sb, path, "", "a/"+path, "b/"+path)
		WriteHunks(sb, *old, *new)
	}
	return true
}

// WriteBinaryFile appends a section whose body is git's binary marker.
func WriteBinaryFile(sb *strings.Builder, path string, oldExists, newExists bool) {
	mode, from, to := "", "a/"+path, "b/"+path
	switch {
	case !oldExists:
		mode, from = newFileMode, devNull
	case !newExists:
		mode, to = deletedFileMode, devNull
	}
	sb.WriteString("diff --git " + diff.QuotePath("a/"+path) + " " + diff.QuotePath("b/"+path) + "\n")
	if mode != "" {
		sb.WriteString(mode + "\n")
	}
	sb.WriteString("Binary files " + diff.QuotePath(from) + " and " + diff.QuotePath(to) + " differ\n")
}

func writeHeader(sb *strings.Builder, path, mode, from, to string) {
	sb.WriteString("diff --git " + diff.QuotePath("a/"+path) + " " + diff.QuotePath("b/"+path) + "\n")
	if mode != "" {
		sb.WriteString(mode + "\n")
	}
	sb.WriteString("--- " + diff.QuotePath(from) + "\n")
	sb.WriteString("+++ " + diff.QuotePath(to) + "\n")
}

// binarySniffLen matches the prefix git inspects when guessing binariness.
const binarySniffLen = 8000

// IsBinary reports whether content looks like binary data.
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
