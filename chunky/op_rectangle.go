package chunky

import (
	"image"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// Rectangle fills and/or strokes an axis-aligned rectangle.
//
// The stroke is drawn inside Rect with the given width. A transparent Fill
// leaves the interior untouched.
type Rectangle struct {
	Rect        image.Rectangle
	Fill        pixdoc.Color
	Stroke      pixdoc.Color
	StrokeWidth int
	Paint       Paint
}

// regions returns the pixel rectangles the operation covers.
func (r Rectangle) regions() []image.Rectangle {
	rect := r.Rect.Canon()
	if rect.Empty() {
		return nil
	}
	var out []image.Rectangle
	if r.strokes() {
		w := r.StrokeWidth
		if 2*w >= rect.Dx() || 2*w >= rect.Dy() {
			return []image.Rectangle{rect}
		}
		out = append(out,
			image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+w),
			image.Rect(rect.Min.X, rect.Max.Y-w, rect.Max.X, rect.Max.Y),
			image.Rect(rect.Min.X, rect.Min.Y+w, rect.Min.X+w, rect.Max.Y-w),
			image.Rect(rect.Max.X-w, rect.Min.Y+w, rect.Max.X, rect.Max.Y-w),
		)
	}
	if r.fills() {
		if r.strokes() {
			out = append(out, rect.Inset(r.StrokeWidth))
		} else {
			out = append(out, rect)
		}
	}
	return out
}

func (r Rectangle) strokes() bool {
	return r.StrokeWidth > 0 && (!r.Stroke.IsTransparent() || r.Paint.Mode == PaintReplace)
}

func (r Rectangle) fills() bool {
	return !r.Fill.IsTransparent() || r.Paint.Mode == PaintReplace
}

// AffectedArea implements Operation.
func (r Rectangle) AffectedArea(chunkSize int) AffectedArea {
	area := AffectedArea{Chunks: ChunkSet{}}
	for _, reg := range r.regions() {
		addRect(area.Chunks, reg, chunkSize)
		area.Bounds = area.Bounds.Union(reg)
	}
	return area
}

// DrawOnChunk implements Operation.
func (r Rectangle) DrawOnChunk(c *Chunk, pos image.Point) {
	fn := r.Paint.fn()
	rect := r.Rect.Canon()
	if r.strokes() {
		stroke := paintColor(r.Stroke)
		w := r.StrokeWidth
		if 2*w >= rect.Dx() || 2*w >= rect.Dy() {
			blend.FillRect(c.Surface(), localRect(rect, c, pos), stroke, fn)
			return
		}
		for _, reg := range r.regions()[:4] {
			blend.FillRect(c.Surface(), localRect(reg, c, pos), stroke, fn)
		}
		rect = rect.Inset(w)
	}
	if r.fills() {
		blend.FillRect(c.Surface(), localRect(rect, c, pos), paintColor(r.Fill), fn)
	}
}
