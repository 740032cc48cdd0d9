package chunky

import (
	"image"

	"golang.org/x/image/draw"
)

// Resample scales src to size with nearest-neighbour sampling, which keeps
// pixel art hard-edged.
func Resample(src *image.RGBA, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	if size.X <= 0 || size.Y <= 0 || src.Rect.Empty() {
		return dst
	}
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}
