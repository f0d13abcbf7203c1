package jj

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Minimum jj release whose CLI provides every flag and template method used
// here (notably "--config NAME=VALUE" and "jj file show").
var minVersion = version{major: 0, minor: 25, patch: 0}

type version struct {
	major int
	minor int
	patch int
}

func MinVersion() string {
	return minVersion.String()
}

func (v version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v version) less(other version) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseVersionOutput understands "jj 0.25.0", "jj 0.30.0-6ae1a3d8c6" and
// bare version numbers.
func parseVersionOutput(out string) (version, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "jj"))
	if s == "" {
		return version{}, false
	}
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return version{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return version{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return version{}, false
	}
	patch := 0
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			patch = p
		}
	}
	return version{major: major, minor: minor, patch: patch}, true
}

func validateVersionOutput(out string) error {
	got, ok := parseVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse jj version output: %q", strings.TrimSpace(out))
	}
	if got.less(minVersion) {
		return fmt.Errorf("jj %s is too old; vcsdiff requires jj >= %s", got, minVersion)
	}
	return nil
}

var (
	versionOnce sync.Once
	versionOut  string
	versionErr  error
)

// ensureMinVersion asks run for the version once per process.
func ensureMinVersion(run Runner) error {
	versionOnce.Do(func() {
		out, err := run("", []string{"--version"})
		versionOut = strings.TrimSpace(out)
		if err != nil {
			versionErr = fmt.Errorf("jj --version: %w", err)
			return
		}
		versionErr = validateVersionOutput(out)
	})
	return versionErr
}

// Version returns the output of "jj --version" as seen by the first Open.
func Version() (string, error) {
	return versionOut, versionErr
}
