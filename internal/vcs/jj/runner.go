package jj

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes the jj binary in dir and returns its standard output.
type Runner func(dir string, args []string) (string, error)

// CommandError is returned when jj exits unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("jj %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Stderr)
	}
	return fmt.Sprintf("jj %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Message returns jj's own error text without the "Error: " prefix.
func (e *CommandError) Message() string {
	msg := e.Stderr
	if msg == "" {
		return e.Err.Error()
	}
	line, _, _ := strings.Cut(msg, "\n")
	return strings.TrimPrefix(line, "Error: ")
}

// ExecRunner runs binary through os/exec.
func ExecRunner(binary string) Runner {
	return func(dir string, args []string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Dir = dir
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return "", fmt.Errorf("%s executable not found: %w", binary, err)
			}
			return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
		}
		return stdout.String(), nil
	}
}
