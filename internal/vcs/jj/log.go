package jj

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

const (
	fzfTemplate      = `change_id.short(12) ++ " " ++ commit_id.short(12) ++ " " ++ description.first_line() ++ " " ++ committer.timestamp().ago() ++ "\n"`
	stackTemplate    = `commit_id ++ " " ++ change_id ++ " " ++ description.first_line() ++ "\n"`
	bookmarkTemplate = `local_bookmarks.map(|b| b.name()).join("\n")`
)

func (b *Backend) ResolveRef(ref string) (string, error) {
	rev, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	return rev.CommitID, nil
}

// CurrentBranch reports the first local bookmark pointing at the working
// copy commit.
func (b *Backend) CurrentBranch() (string, bool, error) {
	out, err := b.jj("log", "-r", "@", "--no-graph", "--limit", "1", "-T", bookmarkTemplate)
	if err != nil {
		return "", false, fmt.Errorf("list bookmarks: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name, true, nil
		}
	}
	return "", false, nil
}

func (b *Backend) CommitLogForFzf() (string, error) {
	out, err := b.jj("log", "-r", "all()", "--no-graph", "--limit", fmt.Sprint(vcs.MaxLogEntries), "-T", fzfTemplate)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	return out, nil
}

func (b *Backend) MergeBase(ref1, ref2 string) (string, error) {
	revset := fmt.Sprintf("heads(::(%s) & ::(%s))", strings.TrimSpace(ref1), strings.TrimSpace(ref2))
	rev, err := b.resolveRevset(revset, ref1, ref2)
	if err != nil {
		return "", err
	}
	return rev.CommitID, nil
}

// ParentRefOrEmpty returns "<ref>-", or the root commit when ref has no
// parent.
func (b *Backend) ParentRefOrEmpty(ref string) (string, error) {
	rev, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	if len(rev.Parents) == 0 {
		return RootRef, nil
	}
	return strings.TrimSpace(ref) + "-", nil
}

// CommitsInRange lists the commits between from (exclusive) and to, oldest
// first, skipping those that change no visible file.
func (b *Backend) CommitsInRange(from, to string) ([]vcs.StackedCommitInfo, error) {
	if err := validateRefs(from, to); err != nil {
		return nil, err
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	revset := fmt.Sprintf("(%s::%s) ~ (%s)", from, to, from)
	out, err := b.jj("log", "-r", revset, "--no-graph", "-T", stackTemplate)
	if err != nil {
		return nil, refError(revset, fmt.Sprintf("invalid range: %s..%s", from, to), err, from, to)
	}

	var entries []vcs.StackedCommitInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, " ", 3)
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		entry := vcs.StackedCommitInfo{
			CommitID: fields[0],
			ShortID:  vcs.ShortID(fields[0], shortIDLen),
			ChangeID: fields[1],
		}
		if len(fields) == 3 {
			entry.Summary = fields[2]
		}
		entries = append(entries, entry)
	}
	slices.Reverse(entries)

	kept := []vcs.StackedCommitInfo{}
	for _, entry := range entries {
		files, err := b.ChangedFiles(entry.CommitID)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}
