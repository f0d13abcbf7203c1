package diff

import "strings"

const gitHeaderPrefix = "diff --git "

// headerPath extracts the post-image path from a "diff --git a/X b/Y" line.
func headerPath(line string) string {
	if !strings.HasPrefix(line, gitHeaderPrefix) {
		return ""
	}
	rest := strings.TrimSpace(line[len(gitHeaderPrefix):])
	if rest == "" {
		return ""
	}
	if rest[0] != '"' && !strings.HasSuffix(rest, `"`) {
		if p, ok := symmetricPath(rest); ok {
			return p
		}
		if idx := strings.LastIndex(rest, " b/"); idx >= 0 {
			return rest[idx+len(" b/"):]
		}
	}
	tokens := lineTokens(rest)
	if len(tokens) < 2 {
		return ""
	}
	return strings.TrimPrefix(tokens[len(tokens)-1], "b/")
}

// symmetricPath handles the common unquoted case where both sides name the
// same path, which may itself contain spaces.
func symmetricPath(rest string) (string, bool) {
	if len(rest)%2 == 0 {
		return "", false
	}
	half := len(rest) / 2
	if rest[half] != ' ' {
		return "", false
	}
	a, b := rest[:half], rest[half+1:]
	if !strings.HasPrefix(a, "a/") || !strings.HasPrefix(b, "b/") || a[2:] != b[2:] {
		return "", false
	}
	return b[2:], true
}

// lineTokens splits on blanks while honouring git's C-style quoting.
func lineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			var buf strings.Builder
			escaped := false
			i := 1
			for i < len(s) {
				ch := s[i]
				if escaped {
					buf.WriteByte(unescape(ch))
					escaped = false
					i++
					continue
				}
				if ch == '\\' {
					escaped = true
					i++
					continue
				}
				if ch == '"' {
					i++
					break
				}
				buf.WriteByte(ch)
				i++
			}
			tokens = append(tokens, buf.String())
			s = s[i:]
			continue
		}
		j := 0
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}
		tokens = append(tokens, s[:j])
		s = s[j:]
	}
	return tokens
}

func unescape(ch byte) byte {
	switch ch {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	default:
		return ch
	}
}
