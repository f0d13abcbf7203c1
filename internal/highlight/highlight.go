// Package highlight colours source lines for terminal output.
package highlight

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultStyle = "github-dark"

type cacheKey struct {
	lexer string
	sum   [sha256.Size]byte
}

// Highlighter is safe for concurrent use. Results are cached by lexer and
// content hash, so repeated context lines are formatted once.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	cache     *lru.Cache[cacheKey, string]
}

func New(styleName string, cacheSize int) (*Highlighter, error) {
	cache, err := lru.New[cacheKey, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("highlight cache: %w", err)
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &Highlighter{
		style:     styleByName(styleName),
		formatter: formatter,
		cache:     cache,
	}, nil
}

func styleByName(name string) *chroma.Style {
	if name == "" {
		name = DefaultStyle
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// LexerFor returns nil when nothing better than plain text matches path.
func LexerFor(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

// Line highlights a single line of code from path. Lines from unknown
// file types and lines the lexer rejects come back unchanged.
func (h *Highlighter) Line(path, code string) string {
	if code == "" {
		return code
	}
	lexer := LexerFor(path)
	if lexer == nil {
		return code
	}
	key := cacheKey{lexer: lexer.Config().Name, sum: sha256.Sum256([]byte(code))}
	if out, ok := h.cache.Get(key); ok {
		return out
	}
	out, err := h.format(lexer, code)
	if err != nil {
		slog.Debug("highlight failed", slog.String("path", path), slog.Any("error", err))
		return code
	}
	h.cache.Add(key, out)
	return out
}

func (h *Highlighter) format(lexer chroma.Lexer, code string) (string, error) {
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, iterator); err != nil {
		return "", err
	}
	// Lexers that ensure a trailing newline would otherwise break the
	// caller's line layout.
	return strings.ReplaceAll(sb.String(), "\n", ""), nil
}

func (h *Highlighter) CacheLen() int {
	return h.cache.Len()
}
