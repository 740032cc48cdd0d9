package chunky

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// ImageBlit draws a raster image with its top-left corner at At.
//
// The source is converted to premultiplied RGBA once, so later changes to
// the caller's image do not affect the operation.
type ImageBlit struct {
	At    image.Point
	Paint Paint

	src   *image.RGBA
	mu    sync.Mutex
	areas map[int]AffectedArea
}

// NewImageBlit copies src into a new blit operation.
func NewImageBlit(src image.Image, at image.Point, paint Paint) *ImageBlit {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Copy(rgba, image.Point{}, src, b, draw.Src, nil)
	return &ImageBlit{At: at, Paint: paint, src: rgba}
}

// NewChunkyBlit copies the committed content of another chunky image.
func NewChunkyBlit(src *Image, at image.Point, paint Paint) (*ImageBlit, error) {
	snap, err := src.Snapshot()
	if err != nil {
		return nil, err
	}
	return &ImageBlit{At: at, Paint: paint, src: snap}, nil
}

// Source returns the pixels drawn by the operation.
func (o *ImageBlit) Source() *image.RGBA { return o.src }

func (o *ImageBlit) dest() image.Rectangle {
	return o.src.Rect.Add(o.At)
}

// touches reports whether drawing on the chunk rectangle changes anything.
func (o *ImageBlit) touches(chunk image.Rectangle) bool {
	r := chunk.Intersect(o.dest())
	if r.Empty() {
		return false
	}
	if o.Paint.Mode == PaintReplace {
		return true
	}
	r = r.Sub(o.At)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := o.src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, off = x+1, off+4 {
			if o.src.Pix[off+3] != 0 {
				return true
			}
		}
	}
	return false
}

// AffectedArea implements Operation.
func (o *ImageBlit) AffectedArea(chunkSize int) AffectedArea {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a, ok := o.areas[chunkSize]; ok {
		return AffectedArea{Chunks: a.Chunks.Clone(), Bounds: a.Bounds}
	}
	area := AffectedArea{Chunks: ChunkSet{}}
	for pos := range ChunksInRect(o.dest(), chunkSize) {
		if o.touches(ChunkRect(pos, chunkSize)) {
			area.Chunks.Add(pos)
		}
	}
	if !area.IsEmpty() {
		area.Bounds = o.dest()
	}
	if o.areas == nil {
		o.areas = make(map[int]AffectedArea)
	}
	o.areas[chunkSize] = area
	return AffectedArea{Chunks: area.Chunks.Clone(), Bounds: area.Bounds}
}

// DrawOnChunk implements Operation.
func (o *ImageBlit) DrawOnChunk(c *Chunk, pos image.Point) {
	origin := chunkOrigin(c, pos)
	r := ChunkRect(pos, c.Size()).Intersect(o.dest())
	if r.Empty() {
		return
	}
	fn := o.Paint.fn()
	dst := c.Surface()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := o.src.PixOffset(r.Min.X-o.At.X, y-o.At.Y)
		do := dst.PixOffset(r.Min.X-origin.X, y-origin.Y)
		for x := r.Min.X; x < r.Max.X; x, so, do = x+1, so+4, do+4 {
			s := o.src.Pix[so : so+4 : so+4]
			d := dst.Pix[do : do+4 : do+4]
			if fn == nil {
				copy(d, s)
				continue
			}
			if s[3] == 0 {
				continue
			}
			d[0], d[1], d[2], d[3] = fn(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
		}
	}
}
