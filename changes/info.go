package changes

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
)

// Kind discriminates Info variants.
type Kind uint8

const (
	KindNameChanged Kind = iota + 1
	KindVisibilityChanged
	KindOpacityChanged
	KindBlendModeChanged
	KindClipToBelowChanged
	KindMaskChanged
	KindMemberCreated
	KindMemberDeleted
	KindMemberMoved
	KindSizeChanged
	KindLayerImageChanged
	KindMaskImageChanged
	KindSelectionChanged
)

var kindNames = [...]string{
	KindNameChanged:        "name-changed",
	KindVisibilityChanged:  "visibility-changed",
	KindOpacityChanged:     "opacity-changed",
	KindBlendModeChanged:   "blend-mode-changed",
	KindClipToBelowChanged: "clip-to-below-changed",
	KindMaskChanged:        "mask-changed",
	KindMemberCreated:      "member-created",
	KindMemberDeleted:      "member-deleted",
	KindMemberMoved:        "member-moved",
	KindSizeChanged:        "size-changed",
	KindLayerImageChanged:  "layer-image-changed",
	KindMaskImageChanged:   "mask-image-changed",
	KindSelectionChanged:   "selection-changed",
}

// Kinds returns every Info kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := KindNameChanged; int(k) < len(kindNames); k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Info describes what an Apply or Revert altered, so observers can patch
// their own state. Switch on Kind, or on the concrete type.
type Info interface {
	Kind() Kind
}

type (
	NameChanged struct {
		ID   uuid.UUID
		Name string
	}
	VisibilityChanged struct {
		ID      uuid.UUID
		Visible bool
	}
	OpacityChanged struct {
		ID      uuid.UUID
		Opacity float64
	}
	BlendModeChanged struct {
		ID    uuid.UUID
		Blend pixdoc.BlendMode
	}
	ClipToBelowChanged struct {
		ID   uuid.UUID
		Clip bool
	}
	MaskChanged struct {
		ID      uuid.UUID
		HasMask bool
	}
	MemberCreated struct {
		ID, ParentID uuid.UUID
		Index        int
	}
	MemberDeleted struct {
		ID uuid.UUID
	}
	MemberMoved struct {
		ID, ParentID uuid.UUID
		Index        int
	}
	SizeChanged struct {
		Size image.Point
	}
	// LayerImageChanged lists the chunks of a layer image that must be
	// re-rendered.
	LayerImageChanged struct {
		ID     uuid.UUID
		Chunks chunky.ChunkSet
	}
	MaskImageChanged struct {
		ID     uuid.UUID
		Chunks chunky.ChunkSet
	}
	SelectionChanged struct {
		Selection image.Rectangle
	}
)

func (NameChanged) Kind() Kind        { return KindNameChanged }
func (VisibilityChanged) Kind() Kind  { return KindVisibilityChanged }
func (OpacityChanged) Kind() Kind     { return KindOpacityChanged }
func (BlendModeChanged) Kind() Kind   { return KindBlendModeChanged }
func (ClipToBelowChanged) Kind() Kind { return KindClipToBelowChanged }
func (MaskChanged) Kind() Kind        { return KindMaskChanged }
func (MemberCreated) Kind() Kind      { return KindMemberCreated }
func (MemberDeleted) Kind() Kind      { return KindMemberDeleted }
func (MemberMoved) Kind() Kind        { return KindMemberMoved }
func (SizeChanged) Kind() Kind        { return KindSizeChanged }
func (LayerImageChanged) Kind() Kind  { return KindLayerImageChanged }
func (MaskImageChanged) Kind() Kind   { return KindMaskImageChanged }
func (SelectionChanged) Kind() Kind   { return KindSelectionChanged }

// IsStructural reports whether the info changes the member tree, which
// invalidates any graph built from it.
func IsStructural(i Info) bool {
	switch i.Kind() {
	case KindMemberCreated, KindMemberDeleted, KindMemberMoved:
		return true
	default:
		return false
	}
}

func appendInfo(infos []Info, i Info) []Info {
	if i == nil {
		return infos
	}
	return append(infos, i)
}
