package chunky

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/pixdoc"
)

// Text draws a string with a bitmap font face. Origin is the top-left
// corner of the first line; "\n" starts a new line.
type Text struct {
	*ImageBlit

	Content string
	Color   pixdoc.Color
}

// NewText rasterizes content once. A nil face uses the 7x13 basic font.
func NewText(content string, origin image.Point, c pixdoc.Color, face font.Face, paint Paint) *Text {
	if face == nil {
		face = basicfont.Face7x13
	}
	mask := textMask(content, face)
	src := image.NewRGBA(mask.Rect)
	draw.DrawMask(src, src.Rect, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Src)
	return &Text{
		ImageBlit: &ImageBlit{At: origin, Paint: paint, src: src},
		Content:   content,
		Color:     c,
	}
}

func textMask(content string, face font.Face) *image.Alpha {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	lineHeight := max(m.Height.Ceil(), (m.Ascent + m.Descent).Ceil())
	lines := strings.Split(content, "\n")

	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	mask := image.NewAlpha(image.Rect(0, 0, width, lineHeight*len(lines)))
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for i, line := range lines {
		d.Dot = fixed.P(0, ascent+i*lineHeight)
		d.DrawString(line)
	}
	return mask
}
