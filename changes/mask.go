package changes

import (
	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/document"
)

// CreateMask gives a member an empty mask.
type CreateMask struct {
	lifecycle
	notMergeable

	ID uuid.UUID
}

// NewCreateMask returns a change adding a mask to the member.
func NewCreateMask(id uuid.UUID) *CreateMask { return &CreateMask{ID: id} }

func (c *CreateMask) Initialize(doc *document.Document) bool {
	c.initialize()
	m, ok := doc.FindMember(c.ID)
	return ok && m.Base().Mask == nil
}

func (c *CreateMask) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	doc.MustFindMember(c.ID).Base().Mask = doc.NewImage()
	return MaskChanged{ID: c.ID, HasMask: true}, false
}

func (c *CreateMask) Revert(doc *document.Document) Info {
	c.revert()
	b := doc.MustFindMember(c.ID).Base()
	b.Mask.Dispose()
	b.Mask = nil
	return MaskChanged{ID: c.ID}
}

func (c *CreateMask) Dispose() { c.dispose() }

// DeleteMask removes the mask of a member, keeping a copy for undo.
type DeleteMask struct {
	lifecycle
	notMergeable

	ID uuid.UUID

	saved *chunky.Image
}

// NewDeleteMask returns a change removing the member's mask.
func NewDeleteMask(id uuid.UUID) *DeleteMask { return &DeleteMask{ID: id} }

func (c *DeleteMask) Initialize(doc *document.Document) bool {
	c.initialize()
	m, ok := doc.FindMember(c.ID)
	return ok && m.Base().Mask != nil
}

func (c *DeleteMask) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	b := doc.MustFindMember(c.ID).Base()
	c.saved = b.Mask
	b.Mask = nil
	return MaskChanged{ID: c.ID}, false
}

func (c *DeleteMask) Revert(doc *document.Document) Info {
	c.revert()
	doc.MustFindMember(c.ID).Base().Mask = c.saved
	c.saved = nil
	return MaskChanged{ID: c.ID, HasMask: true}
}

func (c *DeleteMask) Dispose() {
	if c.dispose() && c.saved != nil {
		c.saved.Dispose()
		c.saved = nil
	}
}
