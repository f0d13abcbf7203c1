package jj

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

const revisionTemplate = `commit_id ++ "\n" ++ change_id ++ "\n" ++ ` +
	`parents.map(|c| c.commit_id()).join(" ") ++ "\n" ++ ` +
	`author.name() ++ "\n" ++ author.email() ++ "\n" ++ ` +
	`author.timestamp().utc().format("%Y-%m-%d %H:%M:%S") ++ "\n" ++ description`

// revision is a single resolved commit.
type revision struct {
	CommitID    string
	ChangeID    string
	Parents     []string
	AuthorName  string
	AuthorEmail string
	Date        string
	Description string
}

// base is the revision diffs of r are taken against: its first parent, or
// the root commit when it has none.
func (r revision) base() string {
	if len(r.Parents) == 0 {
		return RootRef
	}
	return r.Parents[0]
}

func parseRevision(out string) (revision, bool) {
	fields := strings.SplitN(out, "\n", 7)
	if len(fields) < 6 || fields[0] == "" {
		return revision{}, false
	}
	r := revision{
		CommitID:    fields[0],
		ChangeID:    fields[1],
		Parents:     strings.Fields(fields[2]),
		AuthorName:  fields[3],
		AuthorEmail: fields[4],
		Date:        fields[5],
	}
	if len(fields) == 7 {
		r.Description = fields[6]
	}
	return r, true
}

// gitSyntaxHint suggests the jj spelling of git-style HEAD references.
func gitSyntaxHint(ref string) string {
	s := strings.TrimSpace(ref)
	switch s {
	case "HEAD":
		return "@-"
	case "HEAD~", "HEAD^":
		return "@--"
	}
	for _, prefix := range []string{"HEAD~", "HEAD^"} {
		rest, ok := strings.CutPrefix(s, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.ParseUint(rest, 10, 32); err == nil {
			return "@" + strings.Repeat("-", int(n)+1)
		}
	}
	return ""
}

// refError builds the error for a revset that did not resolve. The first
// of refs that looks like git syntax turns it into a hint.
func refError(revset, reason string, err error, refs ...string) error {
	for _, ref := range refs {
		if hint := gitSyntaxHint(ref); hint != "" {
			return &vcs.RefError{Ref: strings.TrimSpace(ref), Hint: hint, Reason: reason, Err: err}
		}
	}
	return &vcs.RefError{Ref: revset, Reason: reason, Err: err}
}

func commandMessage(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Message()
	}
	return err.Error()
}

func (b *Backend) resolve(ref string) (revision, error) {
	return b.resolveRevset(strings.TrimSpace(ref), ref)
}

// resolveRevset evaluates revset to its first commit. refs are the user
// inputs it was built from and are checked for git syntax on failure.
func (b *Backend) resolveRevset(revset string, refs ...string) (revision, error) {
	if err := validateRefs(refs...); err != nil {
		return revision{}, err
	}
	out, err := b.jj("log", "-r", revset, "--no-graph", "--limit", "1", "-T", revisionTemplate)
	if err != nil {
		return revision{}, refError(revset, commandMessage(err), err, refs...)
	}
	rev, ok := parseRevision(out)
	if !ok {
		return revision{}, refError(revset, fmt.Sprintf("revision '%s' not found", revset), nil, refs...)
	}
	return rev, nil
}

func validateRefs(refs ...string) error {
	for _, ref := range refs {
		if err := vcs.ValidateRef(ref); err != nil {
			return err
		}
	}
	return nil
}

// rootFile builds a fileset matching exactly path from the workspace root.
func rootFile(path string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(path)
	return `root-file:"` + escaped + `"`
}
