package jj

import (
	"errors"
	"strings"
	"testing"
)

const fakeRoot = "/work/repo"

// fakeJJ answers jj invocations from a table keyed by the subcommand and its
// arguments, without the global flags.
type fakeJJ struct {
	t         *testing.T
	responses map[string]string
	failures  map[string]string
	calls     []string
	ignoring  []bool
}

func newFakeJJ(t *testing.T) *fakeJJ {
	f := &fakeJJ{t: t, responses: map[string]string{}, failures: map[string]string{}}
	f.on(revisionKey("@"), revisionOutput("wc00000000000000000000000000000000000000", "wcchange", []string{"p1"}, ""))
	return f
}

func (f *fakeJJ) on(key, out string) { f.responses[key] = out }

func (f *fakeJJ) fail(key, stderr string) { f.failures[key] = stderr }

func (f *fakeJJ) run(dir string, args []string) (string, error) {
	switch {
	case len(args) == 1 && args[0] == "--version":
		return "jj 0.30.0-6ae1a3d8c6\n", nil
	case len(args) == 1 && args[0] == "root":
		return fakeRoot + "\n", nil
	}
	global := []string{"--repository", fakeRoot, "--no-pager", "--color", "never"}
	if len(args) < len(global) || strings.Join(args[:len(global)], " ") != strings.Join(global, " ") {
		f.t.Fatalf("missing global flags: %q", args)
	}
	if dir != fakeRoot {
		f.t.Fatalf("command run in %q", dir)
	}
	rest := args[len(global):]
	ignoring := len(rest) > 0 && rest[0] == "--ignore-working-copy"
	if ignoring {
		rest = rest[1:]
	}
	key := strings.Join(rest, " ")
	f.calls = append(f.calls, key)
	f.ignoring = append(f.ignoring, ignoring)
	if stderr, ok := f.failures[key]; ok {
		return "", &CommandError{Args: rest, Stderr: stderr, Err: errors.New("exit status 1")}
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", &CommandError{Args: rest, Stderr: "Error: unexpected command", Err: errors.New("exit status 1")}
}

func (f *fakeJJ) open() *Backend {
	f.t.Helper()
	b, err := Open(fakeRoot, Options{Runner: f.run})
	if err != nil {
		f.t.Fatalf("Open: %v", err)
	}
	return b
}

func revisionKey(revset string) string {
	return strings.Join([]string{"log", "-r", revset, "--no-graph", "--limit", "1", "-T", revisionTemplate}, " ")
}

func revisionOutput(commitID, changeID string, parents []string, description string) string {
	return strings.Join([]string{
		commitID,
		changeID,
		strings.Join(parents, " "),
		"Alice",
		"alice@example.com",
		"2024-05-01 12:00:00",
		description,
	}, "\n")
}

func typesKey(from, to string, filesets ...string) string {
	return strings.Join(append([]string{"diff", "--from", from, "--to", to, "--types"}, filesets...), " ")
}

func showKey(rev, path string) string {
	return strings.Join([]string{"file", "show", "-r", rev, "--config", "ui.conflict-marker-style=git", rootFile(path)}, " ")
}
