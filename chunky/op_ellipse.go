package chunky

import (
	"image"
	"math"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// Ellipse draws a pixel-art ellipse inscribed in Bounds.
//
// A pixel belongs to the ellipse when its center lies inside the ellipse
// through the centers of the border pixels, widened by half a pixel. The
// outline is the one pixel wide 4-connected border of that shape.
type Ellipse struct {
	Bounds image.Rectangle
	Fill   pixdoc.Color
	Stroke pixdoc.Color
	Paint  Paint

	spans []span
}

// span is the inclusive pixel range [l, r] covered on row y.
type span struct {
	y, l, r int
}

// NewEllipse precomputes the rows of an ellipse operation.
func NewEllipse(bounds image.Rectangle, fill, stroke pixdoc.Color, paint Paint) *Ellipse {
	e := &Ellipse{Bounds: bounds.Canon(), Fill: fill, Stroke: stroke, Paint: paint}
	e.spans = ellipseSpans(e.Bounds)
	return e
}

func ellipseSpans(b image.Rectangle) []span {
	if b.Empty() {
		return nil
	}
	cx := float64(b.Min.X+b.Max.X-1) / 2
	cy := float64(b.Min.Y+b.Max.Y-1) / 2
	rx := float64(b.Dx()-1)/2 + 0.5
	ry := float64(b.Dy()-1)/2 + 0.5

	spans := make([]span, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := (float64(y) - cy) / ry
		hw := rx * math.Sqrt(max(0, 1-dy*dy))
		l := max(b.Min.X, int(math.Ceil(cx-hw-1e-9)))
		r := min(b.Max.X-1, int(math.Floor(cx+hw+1e-9)))
		if l > r {
			// degenerate rows still get their center pixel
			l = int(math.Round(cx))
			r = l
		}
		spans = append(spans, span{y: y, l: l, r: r})
	}
	return spans
}

// outline returns the ranges of row i that belong to the border.
func (e *Ellipse) outline(i int) [][2]int {
	s := e.spans[i]
	out := [][2]int{{s.l, s.l}, {s.r, s.r}}
	for _, j := range [2]int{i - 1, i + 1} {
		if j < 0 || j >= len(e.spans) {
			out = append(out, [2]int{s.l, s.r})
			continue
		}
		n := e.spans[j]
		if n.l > s.l {
			out = append(out, [2]int{s.l, min(s.r, n.l-1)})
		}
		if n.r < s.r {
			out = append(out, [2]int{max(s.l, n.r+1), s.r})
		}
	}
	return out
}

func (e *Ellipse) strokes() bool {
	return !e.Stroke.IsTransparent() || e.Paint.Mode == PaintReplace
}

func (e *Ellipse) fills() bool {
	return !e.Fill.IsTransparent() || e.Paint.Mode == PaintReplace
}

// AffectedArea implements Operation.
func (e *Ellipse) AffectedArea(chunkSize int) AffectedArea {
	area := AffectedArea{Chunks: ChunkSet{}}
	for i, s := range e.spans {
		switch {
		case e.fills():
			addRect(area.Chunks, image.Rect(s.l, s.y, s.r+1, s.y+1), chunkSize)
		case e.strokes():
			for _, rg := range e.outline(i) {
				addRect(area.Chunks, image.Rect(rg[0], s.y, rg[1]+1, s.y+1), chunkSize)
			}
		default:
			continue
		}
	}
	if !area.IsEmpty() {
		area.Bounds = e.Bounds
	}
	return area
}

// DrawOnChunk implements Operation.
func (e *Ellipse) DrawOnChunk(c *Chunk, pos image.Point) {
	fn := e.Paint.fn()
	origin := chunkOrigin(c, pos)
	size := c.Size()
	fill, stroke := paintColor(e.Fill), paintColor(e.Stroke)

	for i, s := range e.spans {
		ly := s.y - origin.Y
		if ly < 0 || ly >= size {
			continue
		}
		ranges := e.outline(i)
		for x := max(s.l, origin.X); x <= min(s.r, origin.X+size-1); x++ {
			onOutline := false
			for _, rg := range ranges {
				if x >= rg[0] && x <= rg[1] {
					onOutline = true
					break
				}
			}
			p := image.Pt(x-origin.X, ly)
			switch {
			case onOutline && e.strokes():
				blend.BlendPixel(c.Surface(), p, stroke, fn)
			case e.fills():
				blend.BlendPixel(c.Surface(), p, fill, fn)
			}
		}
	}
}
