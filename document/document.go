package document

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/chunky"
)

// Document is the root of the structure tree.
//
// A Document is not safe for concurrent mutation. Changes are applied by a
// single writer; renderers treat it as a read-only snapshot for the
// duration of one pass.
type Document struct {
	Root *Folder

	// Selection is the selected pixel rectangle. Empty means nothing is
	// selected.
	Selection image.Rectangle

	size      image.Point
	chunkOpts []chunky.Option
	version   uint64
}

// New creates a document of the given size with an empty root folder.
// opts configure every image created through NewImage.
func New(size image.Point, opts ...chunky.Option) *Document {
	return &Document{
		Root:      &Folder{MemberBase: MemberBase{ID: uuid.New(), Name: "Root", Visible: true, Opacity: 1}},
		size:      size,
		chunkOpts: opts,
	}
}

// Size returns the canvas size.
func (d *Document) Size() image.Point { return d.size }

// SetSize changes the canvas size. Images are resized by the caller.
func (d *Document) SetSize(size image.Point) {
	d.size = size
	d.Touch()
}

// ChunkSize returns the chunk size of images created through NewImage.
func (d *Document) ChunkSize() int { return chunky.ChunkSizeOf(d.chunkOpts...) }

// NewImage creates an empty image matching the canvas size and the
// document's chunk options.
func (d *Document) NewImage() *chunky.Image {
	return chunky.New(d.size, d.chunkOpts...)
}

// Version is incremented by every structural change. Renderers use it to
// know when a cached graph is stale.
func (d *Document) Version() uint64 { return d.version }

// Touch marks the structure as changed.
func (d *Document) Touch() { d.version++ }

// FindMember returns the member with the given id.
func (d *Document) FindMember(id uuid.UUID) (Member, bool) {
	var found Member
	Walk(d.Root, func(m Member) bool {
		if m.Base().ID == id {
			found = m
			return false
		}
		return true
	})
	return found, found != nil
}

// MustFindMember is like FindMember but panics with an error wrapping
// ErrMemberNotFound when the member does not exist.
func (d *Document) MustFindMember(id uuid.UUID) Member {
	m, ok := d.FindMember(id)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrMemberNotFound, id))
	}
	return m
}

// MustFindLayer returns the layer with the given id. It panics when the
// member is missing or is a folder.
func (d *Document) MustFindLayer(id uuid.UUID) *Layer {
	l, ok := d.MustFindMember(id).(*Layer)
	if !ok {
		panic(fmt.Errorf("%w: %s is not a layer", ErrWrongMemberType, id))
	}
	return l
}

// MustFindFolder returns the folder with the given id. It panics when the
// member is missing or is a layer.
func (d *Document) MustFindFolder(id uuid.UUID) *Folder {
	f, ok := d.MustFindMember(id).(*Folder)
	if !ok {
		panic(fmt.Errorf("%w: %s is not a folder", ErrWrongMemberType, id))
	}
	return f
}

// FindParent returns the folder containing the member and its index there.
func (d *Document) FindParent(id uuid.UUID) (*Folder, int, bool) {
	var (
		parent *Folder
		index  = -1
	)
	Walk(d.Root, func(m Member) bool {
		f, ok := m.(*Folder)
		if !ok {
			return true
		}
		if i := f.IndexOf(id); i >= 0 {
			parent, index = f, i
			return false
		}
		return true
	})
	return parent, index, parent != nil
}

// MustFindParent is FindParent that panics with an error wrapping
// ErrMemberNotFound.
func (d *Document) MustFindParent(id uuid.UUID) (*Folder, int) {
	f, i, ok := d.FindParent(id)
	if !ok {
		panic(fmt.Errorf("%w: parent of %s", ErrMemberNotFound, id))
	}
	return f, i
}

// Layers returns every layer, bottom to top in compositing order.
func (d *Document) Layers() []*Layer {
	var out []*Layer
	Walk(d.Root, func(m Member) bool {
		if l, ok := m.(*Layer); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// Dispose releases every image of the document.
func (d *Document) Dispose() {
	DisposeMember(d.Root)
}
