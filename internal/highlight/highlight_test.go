package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

func TestLineHighlightsKnownLanguage(t *testing.T) {
	t.Parallel()

	h, err := New("", 8)
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle, h.StyleName())

	out := h.Line("main.go", "func main() {}")
	assert.Contains(t, out, "\x1b[")
	assert.NotContains(t, out, "\n")
	assert.Equal(t, "func main() {}", vcs.StripDisplayHints(out))
}

func TestLineLeavesUnknownFilesAlone(t *testing.T) {
	t.Parallel()

	h, err := New("github", 8)
	require.NoError(t, err)
	assert.Equal(t, "plain words", h.Line("notes.unknown-ext", "plain words"))
	assert.Equal(t, "", h.Line("main.go", ""))
	assert.Equal(t, 0, h.CacheLen())
}

func TestLineCache(t *testing.T) {
	t.Parallel()

	h, err := New("github", 2)
	require.NoError(t, err)
	first := h.Line("a.go", "x := 1")
	second := h.Line("b.go", "x := 1")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.CacheLen())

	h.Line("a.go", "y := 2")
	h.Line("a.go", "z := 3")
	assert.Equal(t, 2, h.CacheLen())
}

func TestUnknownStyleFallsBack(t *testing.T) {
	t.Parallel()

	h, err := New("no-such-style", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, h.StyleName())
	out := h.Line("x.py", "print('hi')")
	assert.True(t, strings.Contains(vcs.StripDisplayHints(out), "print"))
}

func TestNewRejectsEmptyCache(t *testing.T) {
	t.Parallel()

	_, err := New("", 0)
	assert.Error(t, err)
}
