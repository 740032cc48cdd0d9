package chunky

import (
	"image"
	"image/color"

	"github.com/gogpu/pixdoc/internal/blend"
)

// Clear erases the whole image. It affects exactly the chunks that exist
// when it is drawn, so its area is resolved by the image.
type Clear struct{}

// AffectedArea implements Operation. The result is always empty; the
// image substitutes the chunks that currently hold data.
func (Clear) AffectedArea(int) AffectedArea { return AffectedArea{Chunks: ChunkSet{}} }

// DrawOnChunk implements Operation.
func (Clear) DrawOnChunk(c *Chunk, _ image.Point) { clear(c.Surface().Pix) }

func (Clear) affectsExistingChunks() bool { return true }

// ClearRegion erases the pixels inside Rect.
type ClearRegion struct {
	Rect image.Rectangle
}

// AffectedArea implements Operation.
func (r ClearRegion) AffectedArea(chunkSize int) AffectedArea {
	rect := r.Rect.Canon()
	return AffectedArea{Chunks: ChunksInRect(rect, chunkSize), Bounds: rect}
}

// DrawOnChunk implements Operation.
func (r ClearRegion) DrawOnChunk(c *Chunk, pos image.Point) {
	blend.FillRect(c.Surface(), localRect(r.Rect.Canon(), c, pos), color.RGBA{}, nil)
}
