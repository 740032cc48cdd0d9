package changes

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/document"
)

// MemberType selects what CreateMember creates.
type MemberType uint8

const (
	LayerMember MemberType = iota
	FolderMember
)

// CreateMember inserts a new empty layer or folder.
type CreateMember struct {
	lifecycle
	notMergeable

	ParentID uuid.UUID
	Index    int
	Type     MemberType
	Name     string

	// ID is assigned on construction so callers can refer to the member
	// before it exists, and reapplying recreates the same identity.
	ID uuid.UUID
}

// NewCreateMember returns a change creating a member at index (bottom to
// top) inside parent.
func NewCreateMember(parent uuid.UUID, index int, typ MemberType, name string) *CreateMember {
	return &CreateMember{ParentID: parent, Index: index, Type: typ, Name: name, ID: uuid.New()}
}

func (c *CreateMember) Initialize(doc *document.Document) bool {
	c.initialize()
	m, ok := doc.FindMember(c.ParentID)
	if !ok {
		return false
	}
	if _, ok := m.(*document.Folder); !ok {
		return false
	}
	_, exists := doc.FindMember(c.ID)
	return !exists
}

func (c *CreateMember) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	var m document.Member
	switch c.Type {
	case FolderMember:
		f := document.NewFolder(c.Name)
		f.ID = c.ID
		m = f
	default:
		l := document.NewLayer(c.Name, doc.NewImage())
		l.ID = c.ID
		m = l
	}
	parent := doc.MustFindFolder(c.ParentID)
	parent.Insert(c.Index, m)
	doc.Touch()
	return MemberCreated{ID: c.ID, ParentID: c.ParentID, Index: parent.IndexOf(c.ID)}, false
}

func (c *CreateMember) Revert(doc *document.Document) Info {
	c.revert()
	parent, index := doc.MustFindParent(c.ID)
	document.DisposeMember(parent.Remove(index))
	doc.Touch()
	return MemberDeleted{ID: c.ID}
}

func (c *CreateMember) Dispose() { c.dispose() }

// DeleteMember removes a member and its subtree.
//
// The change owns a deep clone of the removed subtree while it is applied.
// Revert hands that clone back to the document; the next Apply clones again.
type DeleteMember struct {
	lifecycle
	notMergeable

	ID uuid.UUID

	parentID uuid.UUID
	index    int
	saved    document.Member
}

// NewDeleteMember returns a change deleting the member with the given id.
func NewDeleteMember(id uuid.UUID) *DeleteMember {
	return &DeleteMember{ID: id}
}

func (c *DeleteMember) Initialize(doc *document.Document) bool {
	c.initialize()
	parent, index, ok := doc.FindParent(c.ID)
	if !ok {
		return false
	}
	c.parentID = parent.ID
	c.index = index
	c.saved = document.CloneMember(parent.Children[index])
	return true
}

func (c *DeleteMember) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	parent := doc.MustFindFolder(c.parentID)
	index := parent.IndexOf(c.ID)
	if index < 0 {
		panic(fmt.Errorf("%w: %s is not in folder %s", document.ErrMemberNotFound, c.ID, c.parentID))
	}
	removed := parent.Remove(index)
	if c.saved == nil {
		c.saved = document.CloneMember(removed)
	}
	document.DisposeMember(removed)
	doc.Touch()
	return MemberDeleted{ID: c.ID}, false
}

func (c *DeleteMember) Revert(doc *document.Document) Info {
	c.revert()
	parent := doc.MustFindFolder(c.parentID)
	parent.Insert(c.index, c.saved)
	c.saved = nil
	doc.Touch()
	return MemberCreated{ID: c.ID, ParentID: c.parentID, Index: c.index}
}

func (c *DeleteMember) Dispose() {
	if c.dispose() && c.saved != nil {
		document.DisposeMember(c.saved)
		c.saved = nil
	}
}

// MoveMember moves a member into a folder at a given index.
type MoveMember struct {
	lifecycle
	notMergeable

	ID          uuid.UUID
	NewParentID uuid.UUID
	NewIndex    int

	oldParentID uuid.UUID
	oldIndex    int
}

// NewMoveMember returns a change moving id into parent at index. The index
// refers to the parent's children after the member was taken out.
func NewMoveMember(id, parent uuid.UUID, index int) *MoveMember {
	return &MoveMember{ID: id, NewParentID: parent, NewIndex: index}
}

func (c *MoveMember) Initialize(doc *document.Document) bool {
	c.initialize()
	oldParent, oldIndex, ok := doc.FindParent(c.ID)
	if !ok {
		return false
	}
	target, ok := doc.FindMember(c.NewParentID)
	if !ok {
		return false
	}
	if _, ok := target.(*document.Folder); !ok {
		return false
	}
	// a folder cannot be moved into its own subtree
	inside := false
	document.Walk(oldParent.Children[oldIndex], func(m document.Member) bool {
		inside = m.Base().ID == c.NewParentID
		return !inside
	})
	if inside {
		return false
	}
	c.oldParentID, c.oldIndex = oldParent.ID, oldIndex
	return true
}

func (c *MoveMember) move(doc *document.Document, parentID uuid.UUID, index int) Info {
	from, i := doc.MustFindParent(c.ID)
	m := from.Remove(i)
	to := doc.MustFindFolder(parentID)
	to.Insert(index, m)
	doc.Touch()
	return MemberMoved{ID: c.ID, ParentID: parentID, Index: to.IndexOf(c.ID)}
}

func (c *MoveMember) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	if c.NewParentID == c.oldParentID && c.NewIndex == c.oldIndex {
		return nil, true
	}
	return c.move(doc, c.NewParentID, c.NewIndex), false
}

func (c *MoveMember) Revert(doc *document.Document) Info {
	c.revert()
	return c.move(doc, c.oldParentID, c.oldIndex)
}

func (c *MoveMember) Dispose() { c.dispose() }
