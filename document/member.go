package document

import (
	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
)

// MemberBase holds the properties shared by layers and folders.
type MemberBase struct {
	ID      uuid.UUID
	Name    string
	Visible bool
	Opacity float64 // in [0, 1]
	Blend   pixdoc.BlendMode

	// Mask limits the member to the alpha of the mask image. Nil means no
	// mask.
	Mask *chunky.Image

	// ClipToBelow clips the member to the member directly below it in the
	// same folder.
	ClipToBelow bool
}

func newBase(name string) MemberBase {
	return MemberBase{
		ID:      uuid.New(),
		Name:    SanitizeName(name),
		Visible: true,
		Opacity: 1,
		Blend:   pixdoc.BlendNormal,
	}
}

// Base returns the shared properties.
func (b *MemberBase) Base() *MemberBase { return b }

// Member is a node of the structure tree: *Layer or *Folder.
type Member interface {
	Base() *MemberBase
	member()
}

// Layer is a leaf member owning a raster image.
type Layer struct {
	MemberBase
	Image *chunky.Image
}

func (*Layer) member() {}

// Folder groups members. Children are ordered bottom to top.
type Folder struct {
	MemberBase
	Children []Member
}

func (*Folder) member() {}

// NewLayer creates a visible, fully opaque layer with a fresh ID.
func NewLayer(name string, img *chunky.Image) *Layer {
	return &Layer{MemberBase: newBase(name), Image: img}
}

// NewFolder creates an empty visible folder with a fresh ID.
func NewFolder(name string) *Folder {
	return &Folder{MemberBase: newBase(name)}
}

// IndexOf returns the position of the child with the given id, or -1.
func (f *Folder) IndexOf(id uuid.UUID) int {
	for i, c := range f.Children {
		if c.Base().ID == id {
			return i
		}
	}
	return -1
}

// Insert places m at index, clamped to the valid range.
func (f *Folder) Insert(index int, m Member) {
	index = min(max(index, 0), len(f.Children))
	f.Children = append(f.Children, nil)
	copy(f.Children[index+1:], f.Children[index:])
	f.Children[index] = m
}

// Remove detaches the child at index and returns it.
func (f *Folder) Remove(index int) Member {
	m := f.Children[index]
	f.Children = append(f.Children[:index], f.Children[index+1:]...)
	return m
}

// Walk visits m and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func Walk(m Member, fn func(Member) bool) bool {
	if !fn(m) {
		return false
	}
	if f, ok := m.(*Folder); ok {
		for _, c := range f.Children {
			if !Walk(c, fn) {
				return false
			}
		}
	}
	return true
}

// CloneMember deep-copies m and its subtree, keeping IDs. Images are
// cloned from their committed state and share chunks until written.
func CloneMember(m Member) Member {
	switch m := m.(type) {
	case *Layer:
		l := &Layer{MemberBase: cloneBase(m.MemberBase)}
		if m.Image != nil {
			l.Image = m.Image.CloneFromCommitted()
		}
		return l
	case *Folder:
		f := &Folder{MemberBase: cloneBase(m.MemberBase)}
		f.Children = make([]Member, len(m.Children))
		for i, c := range m.Children {
			f.Children[i] = CloneMember(c)
		}
		return f
	default:
		panic("document: unknown member type")
	}
}

func cloneBase(b MemberBase) MemberBase {
	if b.Mask != nil {
		b.Mask = b.Mask.CloneFromCommitted()
	}
	return b
}

// DisposeMember releases every image in the subtree.
func DisposeMember(m Member) {
	Walk(m, func(m Member) bool {
		if mask := m.Base().Mask; mask != nil {
			mask.Dispose()
		}
		if l, ok := m.(*Layer); ok && l.Image != nil {
			l.Image.Dispose()
		}
		return true
	})
}
