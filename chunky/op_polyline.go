package chunky

import (
	"image"
	"sync"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// Polyline draws one pixel wide Bresenham segments through Points. Every
// pixel is painted once even where segments overlap, so translucent
// strokes do not darken at the joints. A single point draws a dot.
type Polyline struct {
	Points []image.Point
	Color  pixdoc.Color
	Paint  Paint

	pixels  []image.Point
	mu      sync.Mutex
	byChunk map[int]map[image.Point][]image.Point // chunkSize -> chunk -> pixels
}

// NewPolyline rasterizes the segments through points.
func NewPolyline(points []image.Point, c pixdoc.Color, paint Paint) *Polyline {
	p := &Polyline{Points: append([]image.Point(nil), points...), Color: c, Paint: paint}
	seen := make(map[image.Point]struct{})
	add := func(q image.Point) {
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		p.pixels = append(p.pixels, q)
	}
	switch len(points) {
	case 0:
	case 1:
		add(points[0])
	default:
		for i := 1; i < len(points); i++ {
			bresenham(points[i-1], points[i], add)
		}
	}
	return p
}

// NewPixels paints the given points without connecting them.
func NewPixels(points []image.Point, c pixdoc.Color, paint Paint) *Polyline {
	p := &Polyline{Points: append([]image.Point(nil), points...), Color: c, Paint: paint}
	seen := make(map[image.Point]struct{}, len(points))
	for _, q := range points {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		p.pixels = append(p.pixels, q)
	}
	return p
}

// NewLine returns a Polyline with a single segment.
func NewLine(from, to image.Point, c pixdoc.Color, paint Paint) *Polyline {
	return NewPolyline([]image.Point{from, to}, c, paint)
}

// Pixels returns the rasterized pixels in drawing order.
func (p *Polyline) Pixels() []image.Point { return p.pixels }

func bresenham(a, b image.Point, plot func(image.Point)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		plot(image.Pt(x, y))
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (p *Polyline) visible() bool {
	return !p.Color.IsTransparent() || p.Paint.Mode == PaintReplace
}

func (p *Polyline) grouped(chunkSize int) map[image.Point][]image.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.byChunk[chunkSize]; ok {
		return g
	}
	g := make(map[image.Point][]image.Point)
	for _, px := range p.pixels {
		pos := ChunkAt(px, chunkSize)
		g[pos] = append(g[pos], px)
	}
	if p.byChunk == nil {
		p.byChunk = make(map[int]map[image.Point][]image.Point)
	}
	p.byChunk[chunkSize] = g
	return g
}

// AffectedArea implements Operation.
func (p *Polyline) AffectedArea(chunkSize int) AffectedArea {
	area := AffectedArea{Chunks: ChunkSet{}}
	if !p.visible() {
		return area
	}
	for pos, pixels := range p.grouped(chunkSize) {
		area.Chunks.Add(pos)
		for _, px := range pixels {
			area.Bounds = area.Bounds.Union(image.Rectangle{Min: px, Max: px.Add(image.Pt(1, 1))})
		}
	}
	return area
}

// DrawOnChunk implements Operation.
func (p *Polyline) DrawOnChunk(c *Chunk, pos image.Point) {
	if !p.visible() {
		return
	}
	fn := p.Paint.fn()
	col := paintColor(p.Color)
	origin := chunkOrigin(c, pos)
	for _, px := range p.grouped(c.Size())[pos] {
		blend.BlendPixel(c.Surface(), px.Sub(origin), col, fn)
	}
}
