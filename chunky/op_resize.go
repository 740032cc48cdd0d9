package chunky

import "image"

// Resize changes the image size when committed. Chunks falling outside the
// new size are dropped and edge chunks are cropped; no pixel is resampled.
type Resize struct {
	Size image.Point
}

// AffectedArea implements Operation. The image resolves the cropped chunks
// itself since they depend on the current content.
func (Resize) AffectedArea(int) AffectedArea { return AffectedArea{Chunks: ChunkSet{}} }

// DrawOnChunk implements Operation.
func (Resize) DrawOnChunk(*Chunk, image.Point) {}

func (r Resize) targetSize() image.Point { return r.Size }
