package blend

import (
	"image"
	"image/color"

	"github.com/gogpu/pixdoc"
)

// opacityFactor converts an opacity in [0, 1] into a fixed-point factor in
// [0, 256] for scaleByte.
func opacityFactor(opacity float64) uint16 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 256
	}
	return uint16(opacity*256 + 0.5)
}

// Composite blends src onto dst with the given mode and opacity.
// Both surfaces are walked from their own Rect.Min; the overlapping size
// is the smaller of the two.
func Composite(dst, src *image.RGBA, mode pixdoc.BlendMode, opacity float64) {
	factor := opacityFactor(opacity)
	if factor == 0 {
		return
	}
	fn := Get(mode)
	w := min(dst.Rect.Dx(), src.Rect.Dx())
	h := min(dst.Rect.Dy(), src.Rect.Dy())

	for y := range h {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		for x := 0; x < w; x, so, do = x+1, so+4, do+4 {
			sr, sg, sb, sa := src.Pix[so], src.Pix[so+1], src.Pix[so+2], src.Pix[so+3]
			if sa == 0 {
				continue
			}
			if factor < 256 {
				sr, sg, sb, sa = scaleByte(sr, factor), scaleByte(sg, factor), scaleByte(sb, factor), scaleByte(sa, factor)
			}
			p := dst.Pix[do : do+4 : do+4]
			p[0], p[1], p[2], p[3] = fn(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// MaskAlpha multiplies every dst pixel by the alpha of the matching mask
// pixel (Porter-Duff destination-in). Used for member masks and for
// clipping a member to the one below it.
func MaskAlpha(dst, mask *image.RGBA) {
	w := min(dst.Rect.Dx(), mask.Rect.Dx())
	h := min(dst.Rect.Dy(), mask.Rect.Dy())
	for y := range h {
		mo := mask.PixOffset(mask.Rect.Min.X, mask.Rect.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		for x := 0; x < w; x, mo, do = x+1, mo+4, do+4 {
			p := dst.Pix[do : do+4 : do+4]
			p[0], p[1], p[2], p[3] = DestinationIn(0, 0, 0, mask.Pix[mo+3], p[0], p[1], p[2], p[3])
		}
	}
	// rows or columns outside the mask are fully masked out
	for y := range dst.Rect.Dy() {
		row := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		start := 0
		if y < h {
			start = w
		}
		clear(dst.Pix[row+start*4 : row+dst.Rect.Dx()*4])
	}
}

// ScaleOpacity multiplies every pixel of dst by opacity.
func ScaleOpacity(dst *image.RGBA, opacity float64) {
	factor := opacityFactor(opacity)
	if factor == 256 {
		return
	}
	if factor == 0 {
		clear(dst.Pix)
		return
	}
	for i, v := range dst.Pix {
		dst.Pix[i] = scaleByte(v, factor)
	}
}

// FillRect blends a premultiplied color over r (in dst coordinates).
// A nil fn replaces the pixels.
func FillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA, fn Func) {
	r = r.Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, o = x+1, o+4 {
			p := dst.Pix[o : o+4 : o+4]
			if fn == nil {
				p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
				continue
			}
			p[0], p[1], p[2], p[3] = fn(c.R, c.G, c.B, c.A, p[0], p[1], p[2], p[3])
		}
	}
}

// BlendPixel blends c onto the dst pixel at p. Points outside dst are
// ignored. A nil fn replaces the pixel.
func BlendPixel(dst *image.RGBA, p image.Point, c color.RGBA, fn Func) {
	if !p.In(dst.Rect) {
		return
	}
	o := dst.PixOffset(p.X, p.Y)
	px := dst.Pix[o : o+4 : o+4]
	if fn == nil {
		px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
		return
	}
	px[0], px[1], px[2], px[3] = fn(c.R, c.G, c.B, c.A, px[0], px[1], px[2], px[3])
}
