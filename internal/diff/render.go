package diff

import (
	"strings"
)

// Render writes d back as unified-diff text using the same header
// conventions Parse understands, so Parse(Render(d)) reproduces d.
func Render(d Diff) string {
	var b strings.Builder
	for _, f := range d.Files {
		writeFile(&b, f)
	}
	return b.String()
}

func writeFile(b *strings.Builder, f FileDiff) {
	a, bb := QuotePath("a/"+f.Path), QuotePath("b/"+f.Path)
	b.WriteString(gitHeaderPrefix + a + " " + bb + "\n")
	b.WriteString("--- " + a + "\n")
	b.WriteString("+++ " + bb + "\n")
	for _, h := range f.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteByte(l.Kind.Prefix())
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
}

// QuotePath applies git's C-style quoting when p contains characters that
// would make a header line ambiguous.
func QuotePath(p string) string {
	if !strings.ContainsAny(p, "\"\\\t\n") {
		return p
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(p); i++ {
		switch ch := p[i]; ch {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}
