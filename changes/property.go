package changes

import (
	"math"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/document"
)

// memberProperty changes one property of a member.
type memberProperty[T comparable] struct {
	lifecycle

	id       uuid.UUID
	kind     Kind
	newValue T
	oldValue T

	get  func(*document.MemberBase) T
	set  func(*document.MemberBase, T)
	info func(uuid.UUID, T) Info

	// alwaysIgnoreInUndo keeps the edit out of history even when it
	// changes something.
	alwaysIgnoreInUndo bool
	mergeable          bool
}

func (c *memberProperty[T]) Initialize(doc *document.Document) bool {
	c.initialize()
	m, ok := doc.FindMember(c.id)
	if !ok {
		return false
	}
	c.oldValue = c.get(m.Base())
	return true
}

func (c *memberProperty[T]) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	if c.newValue == c.oldValue {
		return nil, true
	}
	c.set(doc.MustFindMember(c.id).Base(), c.newValue)
	return c.info(c.id, c.newValue), c.alwaysIgnoreInUndo
}

func (c *memberProperty[T]) Revert(doc *document.Document) Info {
	c.revert()
	c.set(doc.MustFindMember(c.id).Base(), c.oldValue)
	return c.info(c.id, c.oldValue)
}

func (c *memberProperty[T]) IsMergeableWith(next Change) bool {
	n, ok := next.(*memberProperty[T])
	return ok && c.mergeable && n.id == c.id && n.kind == c.kind
}

func (c *memberProperty[T]) Merge(next Change) {
	c.newValue = next.(*memberProperty[T]).newValue
}

func (c *memberProperty[T]) isNoop() bool { return c.newValue == c.oldValue }

func (c *memberProperty[T]) Dispose() { c.dispose() }

// NewRenameMember renames a member. Consecutive renames of the same member
// merge.
func NewRenameMember(id uuid.UUID, name string) Change {
	return &memberProperty[string]{
		id:        id,
		kind:      KindNameChanged,
		newValue:  document.SanitizeName(name),
		get:       func(b *document.MemberBase) string { return b.Name },
		set:       func(b *document.MemberBase, v string) { b.Name = v },
		info:      func(id uuid.UUID, v string) Info { return NameChanged{ID: id, Name: v} },
		mergeable: true,
	}
}

// NewSetVisibility shows or hides a member. Visibility toggles are kept out
// of the undo history.
func NewSetVisibility(id uuid.UUID, visible bool) Change {
	return &memberProperty[bool]{
		id:                 id,
		kind:               KindVisibilityChanged,
		newValue:           visible,
		get:                func(b *document.MemberBase) bool { return b.Visible },
		set:                func(b *document.MemberBase, v bool) { b.Visible = v },
		info:               func(id uuid.UUID, v bool) Info { return VisibilityChanged{ID: id, Visible: v} },
		alwaysIgnoreInUndo: true,
	}
}

// NewSetBlendMode changes the blend mode of a member. Unknown modes fall
// back to normal.
func NewSetBlendMode(id uuid.UUID, mode pixdoc.BlendMode) Change {
	if !mode.Valid() {
		mode = pixdoc.BlendNormal
	}
	return &memberProperty[pixdoc.BlendMode]{
		id:       id,
		kind:     KindBlendModeChanged,
		newValue: mode,
		get:      func(b *document.MemberBase) pixdoc.BlendMode { return b.Blend },
		set:      func(b *document.MemberBase, v pixdoc.BlendMode) { b.Blend = v },
		info:     func(id uuid.UUID, v pixdoc.BlendMode) Info { return BlendModeChanged{ID: id, Blend: v} },
	}
}

// NewSetClipToBelow toggles clipping a member to the member below it.
func NewSetClipToBelow(id uuid.UUID, clip bool) Change {
	return &memberProperty[bool]{
		id:       id,
		kind:     KindClipToBelowChanged,
		newValue: clip,
		get:      func(b *document.MemberBase) bool { return b.ClipToBelow },
		set:      func(b *document.MemberBase, v bool) { b.ClipToBelow = v },
		info:     func(id uuid.UUID, v bool) Info { return ClipToBelowChanged{ID: id, Clip: v} },
	}
}

// OpacityChange sets the opacity of a member. It backs the opacity slider:
// Update moves the value while dragging and the whole drag becomes one undo
// entry. Consecutive opacity changes of the same member merge.
type OpacityChange struct {
	memberProperty[float64]
}

// NewSetOpacity returns an opacity change. The value is clamped to [0, 1];
// NaN becomes 0.
func NewSetOpacity(id uuid.UUID, opacity float64) *OpacityChange {
	return &OpacityChange{memberProperty[float64]{
		id:        id,
		kind:      KindOpacityChanged,
		newValue:  clampUnit(opacity),
		get:       func(b *document.MemberBase) float64 { return b.Opacity },
		set:       func(b *document.MemberBase, v float64) { b.Opacity = v },
		info:      func(id uuid.UUID, v float64) Info { return OpacityChanged{ID: id, Opacity: v} },
		mergeable: true,
	}}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}

// Update sets the value shown by the next ApplyTemporarily or Apply.
func (c *OpacityChange) Update(opacity float64) {
	c.newValue = clampUnit(opacity)
}

// ApplyTemporarily implements UpdateableChange.
func (c *OpacityChange) ApplyTemporarily(doc *document.Document) Info {
	c.applyTemporarily()
	c.set(doc.MustFindMember(c.id).Base(), c.newValue)
	return c.info(c.id, c.newValue)
}

// Discard implements UpdateableChange.
func (c *OpacityChange) Discard(doc *document.Document) Info {
	c.set(doc.MustFindMember(c.id).Base(), c.oldValue)
	return c.info(c.id, c.oldValue)
}

// IsMergeableWith implements Change.
func (c *OpacityChange) IsMergeableWith(next Change) bool {
	n, ok := next.(*OpacityChange)
	return ok && n.id == c.id
}

// Merge implements Merger.
func (c *OpacityChange) Merge(next Change) {
	c.newValue = next.(*OpacityChange).newValue
}
