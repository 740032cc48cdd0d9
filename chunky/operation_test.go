package chunky

import (
	"bytes"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// changedChunks draws op on every chunk of window (chunk coordinates), each
// starting filled with bg, and returns the chunks whose pixels changed.
func changedChunks(op Operation, chunkSize int, window image.Rectangle, bg pixdoc.Color) ChunkSet {
	pool := NewPool(0)
	got := ChunkSet{}
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			pos := image.Pt(x, y)
			c := newChunk(pool, chunkSize, Full)
			blend.FillRect(c.Surface(), c.Surface().Rect, bg.Premultiplied(), nil)
			before := bytes.Clone(c.Surface().Pix)
			op.DrawOnChunk(c, pos)
			if !bytes.Equal(before, c.Surface().Pix) {
				got.Add(pos)
			}
			c.release()
		}
	}
	return got
}

func TestAffectedAreaIsExact(t *testing.T) {
	const chunkSize = 8
	window := image.Rect(-3, -3, 8, 8)

	dot := image.NewRGBA(image.Rect(0, 0, 12, 12))
	dot.Set(11, 0, pixdoc.Blue)

	tests := []struct {
		name string
		op   Operation
		bg   pixdoc.Color
	}{
		{"filled rectangle", Rectangle{Rect: image.Rect(3, 3, 20, 9), Fill: pixdoc.Red}, pixdoc.Transparent},
		{"stroked rectangle", Rectangle{Rect: image.Rect(0, 0, 40, 40), Stroke: pixdoc.Red, StrokeWidth: 1}, pixdoc.Transparent},
		{"thick stroke covers small rectangle", Rectangle{Rect: image.Rect(-6, -6, 2, 2), Stroke: pixdoc.Green, StrokeWidth: 4}, pixdoc.Transparent},
		{"invisible rectangle", Rectangle{Rect: image.Rect(0, 0, 20, 20)}, pixdoc.Transparent},
		{"erase rectangle", Rectangle{Rect: image.Rect(5, 5, 9, 9), Fill: pixdoc.Black, Paint: Paint{Mode: PaintErase}}, pixdoc.White},
		{"filled ellipse", NewEllipse(image.Rect(2, 2, 30, 20), pixdoc.Red, pixdoc.Transparent, Paint{}), pixdoc.Transparent},
		{"ellipse outline", NewEllipse(image.Rect(0, 0, 40, 40), pixdoc.Transparent, pixdoc.Blue, Paint{}), pixdoc.Transparent},
		{"tiny ellipse", NewEllipse(image.Rect(7, 7, 9, 8), pixdoc.Red, pixdoc.Blue, Paint{}), pixdoc.Transparent},
		{"polyline", NewPolyline([]image.Point{{-5, -3}, {30, 17}, {2, 40}}, pixdoc.Green, Paint{}), pixdoc.Transparent},
		{"pixels", NewPixels([]image.Point{{0, 0}, {-1, -1}, {33, 2}, {33, 2}}, pixdoc.Red, Paint{}), pixdoc.Transparent},
		{"sparse image blit", NewImageBlit(dot, image.Pt(5, 5), Paint{}), pixdoc.Transparent},
		{"replace image blit", NewImageBlit(dot, image.Pt(-4, -4), Paint{Mode: PaintReplace}), pixdoc.White},
		{"clear region", ClearRegion{Rect: image.Rect(4, 4, 9, 9)}, pixdoc.Red},
		{"text", NewText("Hi", image.Pt(3, 3), pixdoc.Black, nil, Paint{}), pixdoc.Transparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := changedChunks(tt.op, chunkSize, window, tt.bg)
			got := tt.op.AffectedArea(chunkSize).Chunks
			if diff := cmp.Diff(want.Sorted(), got.Sorted()); diff != "" {
				t.Errorf("AffectedArea mismatch (-brute force +reported):\n%s", diff)
			}
		})
	}
}

func TestOperationsAreDeterministic(t *testing.T) {
	ops := []Operation{
		NewEllipse(image.Rect(1, 1, 14, 11), pixdoc.Color{R: 10, G: 200, B: 30, A: 128}, pixdoc.Black, Paint{Blend: pixdoc.BlendMultiply}),
		NewPolyline([]image.Point{{0, 0}, {15, 9}}, pixdoc.Color{R: 200, A: 100}, Paint{}),
		NewText("ok", image.Pt(0, 0), pixdoc.White, nil, Paint{Blend: pixdoc.BlendDifference}),
	}
	draw := func() []byte {
		c := newChunk(NewPool(0), 16, Full)
		blend.FillRect(c.Surface(), c.Surface().Rect, pixdoc.Color{R: 90, G: 40, B: 200, A: 255}.Premultiplied(), nil)
		for _, op := range ops {
			op.DrawOnChunk(c, image.Point{})
		}
		return bytes.Clone(c.Surface().Pix)
	}
	if !bytes.Equal(draw(), draw()) {
		t.Error("drawing the same operations twice produced different pixels")
	}
}

func TestPolylineDrawsEachPixelOnce(t *testing.T) {
	half := pixdoc.Color{R: 255, A: 128}
	// the segments overlap on the way back
	op := NewPolyline([]image.Point{{0, 0}, {5, 0}, {0, 0}}, half, Paint{})
	if got := len(op.Pixels()); got != 6 {
		t.Fatalf("len(Pixels()) = %d, want 6", got)
	}
	c := newChunk(NewPool(0), 8, Full)
	op.DrawOnChunk(c, image.Point{})
	for x := range 6 {
		if a := c.Surface().RGBAAt(x, 0).A; a != 128 {
			t.Errorf("alpha at (%d,0) = %d, want 128", x, a)
		}
	}
}

func TestEllipseSpans(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		want   []span
	}{
		{"single pixel", image.Rect(3, 3, 4, 4), []span{{3, 3, 3}}},
		{"horizontal bar", image.Rect(0, 0, 5, 1), []span{{0, 0, 4}}},
		{"2x2", image.Rect(0, 0, 2, 2), []span{{0, 0, 1}, {1, 0, 1}}},
		{"5x5 circle", image.Rect(0, 0, 5, 5), []span{{0, 1, 3}, {1, 0, 4}, {2, 0, 4}, {3, 0, 4}, {4, 1, 3}}},
		{"empty", image.Rect(0, 0, 0, 4), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ellipseSpans(tt.bounds)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(span{})); diff != "" {
				t.Errorf("ellipseSpans(%v) mismatch (-want +got):\n%s", tt.bounds, diff)
			}
		})
	}
}

func TestResample(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, pixdoc.Red)
	src.Set(1, 0, pixdoc.Blue)

	dst := Resample(src, image.Pt(4, 2))
	want := map[image.Point]pixdoc.Color{
		{0, 0}: pixdoc.Red, {1, 1}: pixdoc.Red,
		{2, 0}: pixdoc.Blue, {3, 1}: pixdoc.Blue,
	}
	for p, c := range want {
		if got := pixdoc.FromColor(dst.At(p.X, p.Y)); got != c {
			t.Errorf("pixel %v = %v, want %v", p, got, c)
		}
	}
}
