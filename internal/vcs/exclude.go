package vcs

import (
	"path"
	"slices"
	"strings"
)

var (
	excludedFiles    = []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Cargo.lock"}
	excludedPatterns = []string{"node_modules/"}
)

// ShouldExclude reports whether p is hidden from every diff and changed-file
// listing.
func ShouldExclude(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	if slices.Contains(excludedFiles, path.Base(p)) {
		return true
	}
	for _, pattern := range excludedPatterns {
		if strings.Contains(p, pattern) {
			return true
		}
	}
	return false
}

// FilterPaths drops excluded paths, keeping order.
func FilterPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !ShouldExclude(p) {
			out = append(out, p)
		}
	}
	return out
}
