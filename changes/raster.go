package changes

import (
	"fmt"
	"image"

	"github.com/google/uuid"
	"golang.org/x/image/font"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/document"
)

// Target names the image a raster change draws on: a layer's image, or
// the mask of any member.
type Target struct {
	Member uuid.UUID
	Mask   bool
}

// LayerTarget targets the image of a layer.
func LayerTarget(id uuid.UUID) Target { return Target{Member: id} }

// MaskTarget targets the mask of a member.
func MaskTarget(id uuid.UUID) Target { return Target{Member: id, Mask: true} }

func (t Target) image(doc *document.Document) (*chunky.Image, bool) {
	m, ok := doc.FindMember(t.Member)
	if !ok {
		return nil, false
	}
	if t.Mask {
		return m.Base().Mask, m.Base().Mask != nil
	}
	l, ok := m.(*document.Layer)
	if !ok {
		return nil, false
	}
	return l.Image, l.Image != nil
}

func (t Target) mustImage(doc *document.Document) *chunky.Image {
	img, ok := t.image(doc)
	if !ok {
		panic(fmt.Errorf("%w: no image for %+v", document.ErrMemberNotFound, t))
	}
	return img
}

func (t Target) info(chunks chunky.ChunkSet) Info {
	if t.Mask {
		return MaskImageChanged{ID: t.Member, Chunks: chunks}
	}
	return LayerImageChanged{ID: t.Member, Chunks: chunks}
}

// rasterChange draws a list of operations on one image. The committed
// chunks it overwrites are saved on the first Apply so Revert restores
// exact pixels; later Applies replay the operations.
type rasterChange struct {
	lifecycle
	notMergeable

	target  Target
	ops     []chunky.Operation
	storage *chunky.ChunkStorage

	previewed chunky.ChunkSet
}

func (c *rasterChange) Initialize(doc *document.Document) bool {
	c.initialize()
	_, ok := c.target.image(doc)
	return ok
}

func (c *rasterChange) enqueue(img *chunky.Image) {
	img.CancelChanges()
	for _, op := range c.ops {
		img.EnqueueOperation(op)
	}
}

func (c *rasterChange) Apply(doc *document.Document) (Info, bool) {
	first := c.apply()
	img := c.target.mustImage(doc)
	c.enqueue(img)
	if first {
		c.storage = chunky.NewChunkStorage(img, img.FindAffectedChunks())
	}
	chunks := img.CommitChanges()
	pixdoc.Logger().Debug("changes: raster apply", "target", c.target.Member, "chunks", len(chunks))

	chunks.Union(c.previewed)
	c.previewed = nil
	if len(chunks) == 0 {
		return nil, true
	}
	return c.target.info(chunks), false
}

func (c *rasterChange) Revert(doc *document.Document) Info {
	c.revert()
	img := c.target.mustImage(doc)
	img.CancelChanges()
	c.storage.ApplyChunksToImage(img)
	return c.target.info(img.CommitChanges())
}

func (c *rasterChange) Dispose() {
	if c.dispose() && c.storage != nil {
		c.storage.Dispose()
		c.storage = nil
	}
}

// drawChange is a rasterChange whose operations change during an
// interaction.
type drawChange struct {
	rasterChange
}

func (c *drawChange) ApplyTemporarily(doc *document.Document) Info {
	c.applyTemporarily()
	img := c.target.mustImage(doc)
	c.enqueue(img)
	area := img.FindAffectedChunks()
	chunks := area.Clone()
	chunks.Union(c.previewed)
	c.previewed = area
	return c.target.info(chunks)
}

func (c *drawChange) Discard(doc *document.Document) Info {
	img := c.target.mustImage(doc)
	img.CancelChanges()
	chunks := c.previewed
	c.previewed = nil
	if len(chunks) == 0 {
		return nil
	}
	return c.target.info(chunks)
}

// ClearLayer erases a whole image.
type ClearLayer struct{ rasterChange }

// NewClearLayer returns a change erasing the target image.
func NewClearLayer(t Target) *ClearLayer {
	return &ClearLayer{rasterChange{target: t, ops: []chunky.Operation{chunky.Clear{}}}}
}

// ClearSelectedArea erases the selected rectangle of an image. With no
// selection it is a no-op that stays out of the history.
type ClearSelectedArea struct{ rasterChange }

// NewClearSelectedArea returns a change erasing the document selection on
// the target image.
func NewClearSelectedArea(t Target) *ClearSelectedArea {
	return &ClearSelectedArea{rasterChange{target: t}}
}

func (c *ClearSelectedArea) Initialize(doc *document.Document) bool {
	if !c.rasterChange.Initialize(doc) {
		return false
	}
	if sel := doc.Selection.Canon(); !sel.Empty() {
		c.ops = []chunky.Operation{chunky.ClearRegion{Rect: sel}}
	}
	return true
}

func (c *ClearSelectedArea) Apply(doc *document.Document) (Info, bool) {
	if len(c.ops) == 0 {
		c.apply()
		return nil, true
	}
	return c.rasterChange.Apply(doc)
}

// PasteImage draws a raster image onto the target.
type PasteImage struct{ rasterChange }

// NewPasteImage returns a change drawing src with its corner at at.
func NewPasteImage(t Target, src image.Image, at image.Point, paint chunky.Paint) *PasteImage {
	return &PasteImage{rasterChange{target: t, ops: []chunky.Operation{chunky.NewImageBlit(src, at, paint)}}}
}

// DrawText draws a string with a bitmap font.
type DrawText struct{ rasterChange }

// NewDrawText returns a text change. A nil face uses the default bitmap
// font.
func NewDrawText(t Target, text string, at image.Point, c pixdoc.Color, face font.Face) *DrawText {
	op := chunky.NewText(text, at, c, face, chunky.Paint{})
	return &DrawText{rasterChange{target: t, ops: []chunky.Operation{op}}}
}

// ShapeStyle describes how shapes are filled and outlined.
type ShapeStyle struct {
	Fill        pixdoc.Color
	Stroke      pixdoc.Color
	StrokeWidth int
	Paint       chunky.Paint
}

// DrawRectangle draws a rectangle whose bounds follow the pointer.
type DrawRectangle struct {
	drawChange
	Style ShapeStyle
}

// NewDrawRectangle returns a rectangle change with initial bounds r.
func NewDrawRectangle(t Target, r image.Rectangle, style ShapeStyle) *DrawRectangle {
	c := &DrawRectangle{drawChange: drawChange{rasterChange{target: t}}, Style: style}
	c.Update(r)
	return c
}

// Update moves the rectangle.
func (c *DrawRectangle) Update(r image.Rectangle) {
	c.ops = []chunky.Operation{chunky.Rectangle{
		Rect:        r.Canon(),
		Fill:        c.Style.Fill,
		Stroke:      c.Style.Stroke,
		StrokeWidth: c.Style.StrokeWidth,
		Paint:       c.Style.Paint,
	}}
}

// DrawEllipse draws an ellipse inscribed in bounds that follow the pointer.
type DrawEllipse struct {
	drawChange
	Style ShapeStyle
}

// NewDrawEllipse returns an ellipse change with initial bounds r.
func NewDrawEllipse(t Target, r image.Rectangle, style ShapeStyle) *DrawEllipse {
	c := &DrawEllipse{drawChange: drawChange{rasterChange{target: t}}, Style: style}
	c.Update(r)
	return c
}

// Update moves the ellipse bounds.
func (c *DrawEllipse) Update(r image.Rectangle) {
	c.ops = []chunky.Operation{chunky.NewEllipse(r, c.Style.Fill, c.Style.Stroke, c.Style.Paint)}
}

// DrawLine is a pencil stroke: a polyline extended point by point.
type DrawLine struct {
	drawChange
	Color  pixdoc.Color
	Paint  chunky.Paint
	points []image.Point
}

// NewDrawLine starts a stroke at p.
func NewDrawLine(t Target, p image.Point, c pixdoc.Color, paint chunky.Paint) *DrawLine {
	d := &DrawLine{drawChange: drawChange{rasterChange{target: t}}, Color: c, Paint: paint}
	d.Update(p)
	return d
}

// Update extends the stroke to p.
func (c *DrawLine) Update(p image.Point) {
	c.points = append(c.points, p)
	c.ops = []chunky.Operation{chunky.NewPolyline(c.points, c.Color, c.Paint)}
}

// Points returns the stroke so far.
func (c *DrawLine) Points() []image.Point { return c.points }
