package changes

import "github.com/gogpu/pixdoc/document"

// Change is a reversible document edit.
type Change interface {
	// Initialize captures what Revert needs. It must not mutate the
	// document. A false result means the change does not apply (missing
	// target, no-op) and must be disposed without applying.
	Initialize(doc *document.Document) bool

	// Apply mutates the document. The returned info may be nil. When
	// ignoreInUndo is true the edit stays applied but gets no undo entry.
	Apply(doc *document.Document) (info Info, ignoreInUndo bool)

	// Revert exactly undoes the last Apply.
	Revert(doc *document.Document) Info

	// IsMergeableWith reports whether next edits the same target and can
	// be folded into this change. Mergeable changes implement Merger.
	IsMergeableWith(next Change) bool

	// Dispose releases resources held for undo. It is idempotent.
	Dispose()
}

// Merger is implemented by changes that can absorb a following change, so
// that reverting the merged change restores the state before the first one.
type Merger interface {
	Merge(next Change)
}

// UpdateableChange is a change driven by a continuous interaction.
//
// After Initialize it is previewed with ApplyTemporarily, typically after
// each concrete Update call, then either applied once (one undo entry for
// the whole interaction) or discarded.
type UpdateableChange interface {
	Change

	// ApplyTemporarily shows the current state without committing it.
	ApplyTemporarily(doc *document.Document) Info

	// Discard drops the preview, leaving the last committed state.
	Discard(doc *document.Document) Info
}

// notMergeable is embedded by changes that never merge.
type notMergeable struct{}

func (notMergeable) IsMergeableWith(Change) bool { return false }
