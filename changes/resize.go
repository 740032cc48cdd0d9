package changes

import (
	"image"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/document"
)

// Anchor is the point of the old canvas that stays fixed when the canvas
// is resized.
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorTop
	AnchorTopRight
	AnchorLeft
	AnchorCenter
	AnchorRight
	AnchorBottomLeft
	AnchorBottom
	AnchorBottomRight
)

// Offset returns where the old content lands in the new canvas.
func (a Anchor) Offset(oldSize, newSize image.Point) image.Point {
	d := newSize.Sub(oldSize)
	var p image.Point
	switch a % 3 {
	case 1:
		p.X = d.X / 2
	case 2:
		p.X = d.X
	}
	switch a / 3 {
	case 1:
		p.Y = d.Y / 2
	case 2:
		p.Y = d.Y
	}
	return p
}

type imageKey struct {
	id   uuid.UUID
	mask bool
}

// resizeChange resizes the canvas and rewrites every image through place.
// All committed chunks are saved on the first Apply.
type resizeChange struct {
	lifecycle
	notMergeable

	size    image.Point
	oldSize image.Point
	place   func(snapshot *image.RGBA, oldSize, newSize image.Point) (*image.RGBA, image.Point)
	saved   map[imageKey]*chunky.ChunkStorage
}

func (c *resizeChange) Initialize(doc *document.Document) bool {
	c.initialize()
	if c.size.X <= 0 || c.size.Y <= 0 || c.size == doc.Size() {
		return false
	}
	c.oldSize = doc.Size()
	return true
}

// eachImage calls fn for every layer image and mask of the document.
func eachImage(doc *document.Document, fn func(imageKey, *chunky.Image)) {
	document.Walk(doc.Root, func(m document.Member) bool {
		b := m.Base()
		if b.Mask != nil {
			fn(imageKey{id: b.ID, mask: true}, b.Mask)
		}
		if l, ok := m.(*document.Layer); ok && l.Image != nil {
			fn(imageKey{id: b.ID}, l.Image)
		}
		return true
	})
}

func (c *resizeChange) Apply(doc *document.Document) (Info, bool) {
	first := c.apply()
	if first {
		c.saved = make(map[imageKey]*chunky.ChunkStorage)
	}
	eachImage(doc, func(k imageKey, img *chunky.Image) {
		snap, err := img.Snapshot()
		if err != nil {
			pixdoc.Logger().Warn("changes: resize skipped image", "member", k.id, "err", err)
			return
		}
		if first {
			c.saved[k] = chunky.SaveAll(img)
		}
		src, at := c.place(snap, c.oldSize, c.size)
		img.CancelChanges()
		if err := img.Resize(c.size); err != nil {
			panic(err)
		}
		img.EnqueueOperation(chunky.Clear{})
		img.EnqueueOperation(chunky.NewImageBlit(src, at, chunky.Paint{Mode: chunky.PaintReplace}))
		img.CommitChanges()
	})
	doc.SetSize(c.size)
	return SizeChanged{Size: c.size}, false
}

func (c *resizeChange) Revert(doc *document.Document) Info {
	c.revert()
	eachImage(doc, func(k imageKey, img *chunky.Image) {
		storage, ok := c.saved[k]
		if !ok {
			return
		}
		img.CancelChanges()
		if err := img.Resize(c.oldSize); err != nil {
			panic(err)
		}
		img.EnqueueOperation(chunky.Clear{})
		storage.ApplyChunksToImage(img)
		img.CommitChanges()
	})
	doc.SetSize(c.oldSize)
	return SizeChanged{Size: c.oldSize}
}

func (c *resizeChange) Dispose() {
	if c.dispose() {
		for _, s := range c.saved {
			s.Dispose()
		}
		c.saved = nil
	}
}

// ResizeCanvas changes the canvas size without scaling content. The old
// content keeps its position relative to Anchor; whatever falls outside
// is cropped.
type ResizeCanvas struct {
	resizeChange
	Anchor Anchor
}

// NewResizeCanvas returns a canvas resize change.
func NewResizeCanvas(size image.Point, anchor Anchor) *ResizeCanvas {
	c := &ResizeCanvas{Anchor: anchor}
	c.resizeChange = resizeChange{
		size: size,
		place: func(snap *image.RGBA, oldSize, newSize image.Point) (*image.RGBA, image.Point) {
			return snap, c.Anchor.Offset(oldSize, newSize)
		},
	}
	return c
}

// ResizeImage scales every image to the new canvas size with
// nearest-neighbour sampling.
type ResizeImage struct {
	resizeChange
}

// NewResizeImage returns an image resample change.
func NewResizeImage(size image.Point) *ResizeImage {
	return &ResizeImage{resizeChange{
		size: size,
		place: func(snap *image.RGBA, _, newSize image.Point) (*image.RGBA, image.Point) {
			return chunky.Resample(snap, newSize), image.Point{}
		},
	}}
}
