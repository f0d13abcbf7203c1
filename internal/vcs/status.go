package vcs

// StatusFlags describes how a path differs between HEAD, the index and the
// worktree.
type StatusFlags uint16

const (
	IndexNew StatusFlags = 1 << iota
	IndexModified
	IndexDeleted
	IndexRenamed
	IndexTypeChange
	WtNew
	WtModified
	WtDeleted
	WtRenamed
	WtTypeChange
	Conflicted
)

const (
	indexMask    = IndexNew | IndexModified | IndexDeleted | IndexRenamed | IndexTypeChange
	worktreeMask = WtModified | WtDeleted | WtRenamed | WtTypeChange
)

const (
	LabelUnmerged    = "unmerged"
	LabelAdded       = "added"
	LabelDeleted     = "deleted"
	LabelRenamed     = "renamed"
	LabelCopied      = "copied"
	LabelTypeChanged = "type-changed"
	LabelModified    = "modified"
	LabelUntracked   = "untracked"
)

func (f StatusFlags) Has(flag StatusFlags) bool {
	return f&flag != 0
}

func (f StatusFlags) HasIndexChanges() bool {
	return f&indexMask != 0
}

func (f StatusFlags) HasWorktreeChanges() bool {
	return f&worktreeMask != 0
}

// Label picks the status label for f. The first matching rule wins:
// unmerged, added, deleted, renamed, type-changed, then modified.
func Label(f StatusFlags) string {
	switch {
	case f.Has(Conflicted):
		return LabelUnmerged
	case f.Has(IndexNew | WtNew):
		return LabelAdded
	case f.Has(IndexDeleted | WtDeleted):
		return LabelDeleted
	case f.Has(IndexRenamed | WtRenamed):
		return LabelRenamed
	case f.Has(IndexTypeChange | WtTypeChange):
		return LabelTypeChanged
	default:
		return LabelModified
	}
}

// BucketEntry is one classification result of Classify.
type BucketEntry struct {
	Bucket DiffBucket
	Status string
}

// Classify maps a flag set to the buckets the path belongs to. A path can be
// staged and unstaged at the same time; each bucket is labelled only from
// its own side of the flags.
func Classify(f StatusFlags) []BucketEntry {
	if f.Has(WtNew) && !f.HasIndexChanges() && !f.Has(Conflicted) {
		return []BucketEntry{{Bucket: BucketUntracked, Status: LabelUntracked}}
	}
	var out []BucketEntry
	if f.HasIndexChanges() || f.Has(Conflicted) {
		out = append(out, BucketEntry{Bucket: BucketStaged, Status: Label(f & (indexMask | Conflicted))})
	}
	if f.HasWorktreeChanges() || f.Has(Conflicted) {
		out = append(out, BucketEntry{Bucket: BucketUnstaged, Status: Label(f & (worktreeMask | Conflicted))})
	}
	return out
}

// Delta is the kind of change between two trees.
type Delta int

const (
	DeltaModified Delta = iota
	DeltaAdded
	DeltaDeleted
	DeltaRenamed
	DeltaCopied
	DeltaTypeChanged
	DeltaConflicted
)

func DeltaLabel(d Delta) string {
	switch d {
	case DeltaAdded:
		return LabelAdded
	case DeltaDeleted:
		return LabelDeleted
	case DeltaRenamed:
		return LabelRenamed
	case DeltaCopied:
		return LabelCopied
	case DeltaTypeChanged:
		return LabelTypeChanged
	case DeltaConflicted:
		return LabelUnmerged
	default:
		return LabelModified
	}
}
