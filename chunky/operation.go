package chunky

import (
	"image"
	"image/color"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// AffectedArea is the exact set of chunks an operation writes to, plus the
// pixel bounds of the written region.
type AffectedArea struct {
	Chunks ChunkSet
	Bounds image.Rectangle
}

// Union merges other into a.
func (a *AffectedArea) Union(other AffectedArea) {
	if a.Chunks == nil {
		a.Chunks = ChunkSet{}
	}
	a.Chunks.Union(other.Chunks)
	a.Bounds = a.Bounds.Union(other.Bounds)
}

// IsEmpty reports whether no chunk is affected.
func (a AffectedArea) IsEmpty() bool { return len(a.Chunks) == 0 }

// Operation is a reversible drawing primitive.
//
// AffectedArea must report every chunk DrawOnChunk can modify, and no
// other. DrawOnChunk must be deterministic: the same operation drawn on the
// same starting chunk always produces the same pixels. Operations draw at
// Full resolution; clipping happens per chunk.
type Operation interface {
	AffectedArea(chunkSize int) AffectedArea
	DrawOnChunk(c *Chunk, chunkPos image.Point)
}

// imageWideOperation is implemented by operations whose reach depends on
// which chunks the image holds, such as Clear.
type imageWideOperation interface {
	Operation
	affectsExistingChunks() bool
}

// sizeOperation changes the image size when committed.
type sizeOperation interface {
	Operation
	targetSize() image.Point
}

// PaintMode selects how an operation's pixels combine with the chunk.
type PaintMode uint8

const (
	// PaintBlend composites with the operation's blend mode.
	PaintBlend PaintMode = iota
	// PaintReplace overwrites the destination pixels.
	PaintReplace
	// PaintErase removes destination coverage where the operation draws.
	PaintErase
)

// Paint describes how pixels are applied.
type Paint struct {
	Mode  PaintMode
	Blend pixdoc.BlendMode
}

func (p Paint) fn() blend.Func {
	switch p.Mode {
	case PaintReplace:
		return nil
	case PaintErase:
		return blend.DestinationOut
	default:
		return blend.Get(p.Blend)
	}
}

// chunkOrigin returns the pixel position of the chunk's top-left corner.
func chunkOrigin(c *Chunk, pos image.Point) image.Point {
	return pos.Mul(c.Size())
}

// localRect converts a pixel-space rectangle into chunk-local coordinates.
func localRect(r image.Rectangle, c *Chunk, pos image.Point) image.Rectangle {
	return r.Sub(chunkOrigin(c, pos))
}

// paintColor returns the premultiplied color drawn for a straight color.
func paintColor(c pixdoc.Color) color.RGBA {
	return c.Premultiplied()
}
