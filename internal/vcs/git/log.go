package git

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/thiagokokada/vcsdiff/internal/vcs"
)

const (
	ansiYellow = "\x1b[33m"
	ansiGray   = "\x1b[90m"
	ansiReset  = "\x1b[0m"
)

// walkHead calls fn for at most limit commits reachable from HEAD, most
// recent committer time first. An unborn HEAD yields nothing.
func (b *Backend) walkHead(limit int, fn func(*object.Commit)) error {
	head, err := b.headCommit()
	if err != nil || head == nil {
		return err
	}
	iter, err := b.repo.Log(&gitlib.LogOptions{From: head.Hash, Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()
	n := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if n >= limit {
			return storer.ErrStop
		}
		fn(c)
		n++
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return fmt.Errorf("walk history: %w", err)
	}
	return nil
}

func (b *Backend) CommitLogForFzf() (string, error) {
	now := b.now()
	var sb strings.Builder
	err := b.walkHead(vcs.MaxLogEntries, func(c *object.Commit) {
		fmt.Fprintf(&sb, "%s%s%s %s %s%s%s\n",
			ansiYellow, vcs.ShortID(c.Hash.String(), shortIDLen), ansiReset,
			summary(c.Message),
			ansiGray, vcs.RelativeTime(now, c.Committer.When), ansiReset)
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// History lists up to limit commits from HEAD. A limit below one is
// treated as one.
func (b *Backend) History(limit int) ([]vcs.HistoryCommit, error) {
	limit = max(limit, 1)
	now := b.now()
	out := []vcs.HistoryCommit{}
	err := b.walkHead(limit, func(c *object.Commit) {
		id := c.Hash.String()
		out = append(out, vcs.HistoryCommit{
			CommitID:     id,
			ShortID:      vcs.ShortID(id, shortIDLen),
			Summary:      summary(c.Message),
			Author:       c.Author.Name,
			RelativeTime: vcs.RelativeTime(now, c.Author.When),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) CommitsInRange(from, to string) ([]vcs.StackedCommitInfo, error) {
	if err := validateRefs(from, to); err != nil {
		return nil, err
	}
	tip, err := b.resolveCommit(to)
	if err != nil {
		return nil, err
	}
	seen := map[plumbing.Hash]bool{}
	if strings.TrimSpace(from) != EmptyTreeHash {
		base, err := b.resolveCommit(from)
		if err != nil {
			return nil, err
		}
		if err := collectAncestors(base, nil, func(c *object.Commit) { seen[c.Hash] = true }); err != nil {
			return nil, err
		}
	}
	var commits []*object.Commit
	if err := collectAncestors(tip, seen, func(c *object.Commit) { commits = append(commits, c) }); err != nil {
		return nil, err
	}

	out := []vcs.StackedCommitInfo{}
	for _, c := range topoOldestFirst(commits) {
		files, err := commitChangedFiles(c)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		id := c.Hash.String()
		out = append(out, vcs.StackedCommitInfo{
			CommitID: id,
			ShortID:  vcs.ShortID(id, shortIDLen),
			Summary:  summary(c.Message),
		})
	}
	return out, nil
}

func collectAncestors(start *object.Commit, seen map[plumbing.Hash]bool, fn func(*object.Commit)) error {
	iter := object.NewCommitPreorderIter(start, seen, nil)
	defer iter.Close()
	err := iter.ForEach(func(c *object.Commit) error {
		fn(c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk ancestors of %s: %w", start.Hash, err)
	}
	return nil
}

// topoOldestFirst orders commits so every parent in the set precedes its
// children. Ties go to the earlier committer time, then the smaller hash.
func topoOldestFirst(commits []*object.Commit) []*object.Commit {
	inSet := make(map[plumbing.Hash]bool, len(commits))
	for _, c := range commits {
		inSet[c.Hash] = true
	}
	pending := make(map[plumbing.Hash]int, len(commits))
	children := make(map[plumbing.Hash][]*object.Commit, len(commits))
	var ready []*object.Commit
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if inSet[p] {
				pending[c.Hash]++
				children[p] = append(children[p], c)
			}
		}
		if pending[c.Hash] == 0 {
			ready = append(ready, c)
		}
	}

	out := make([]*object.Commit, 0, len(commits))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			ti, tj := ready[i].Committer.When, ready[j].Committer.When
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return ready[i].Hash.String() < ready[j].Hash.String()
		})
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)
		for _, child := range children[next.Hash] {
			pending[child.Hash]--
			if pending[child.Hash] == 0 {
				ready = append(ready, child)
			}
		}
	}
	return out
}
