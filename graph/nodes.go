package graph

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/internal/blend"
)

// Output marks the graph result. Its Background input is the composited
// chunk.
type Output struct{}

func (*Output) Name() string    { return "Output" }
func (*Output) Inputs() []Port  { return []Port{{Name: "Background", Kind: KindImage}} }
func (*Output) Outputs() []Port { return nil }

func (*Output) Execute(*Context, []any) ([]any, error) { return nil, nil }

// SolidColor fills the chunk with one color.
type SolidColor struct{}

func (*SolidColor) Name() string { return "Solid Color" }

func (*SolidColor) Inputs() []Port {
	return []Port{{Name: "Color", Kind: KindColor, Default: pixdoc.Transparent}}
}

func (*SolidColor) Outputs() []Port { return []Port{{Name: "Image", Kind: KindImage}} }

func (*SolidColor) Execute(ctx *Context, in []any) ([]any, error) {
	c := colorIn(in[0])
	if c.IsTransparent() {
		return []any{(*image.RGBA)(nil)}, nil
	}
	dst := ctx.NewSurface()
	blend.FillRect(dst, dst.Rect, c.Premultiplied(), nil)
	return []any{dst}, nil
}

// Merge composites Top over Bottom with a blend mode.
type Merge struct {
	Mode pixdoc.BlendMode
}

func (n *Merge) Name() string { return "Merge (" + n.Mode.String() + ")" }

func (*Merge) Inputs() []Port {
	return []Port{
		{Name: "Bottom", Kind: KindImage},
		{Name: "Top", Kind: KindImage},
		{Name: "Opacity", Kind: KindFloat, Default: 1.0},
	}
}

func (*Merge) Outputs() []Port { return []Port{{Name: "Image", Kind: KindImage}} }

func (n *Merge) Execute(ctx *Context, in []any) ([]any, error) {
	bottom, top := imageIn(in[0]), imageIn(in[1])
	if top == nil {
		return []any{bottom}, nil
	}
	dst := copySurface(ctx, bottom)
	blend.Composite(dst, top, n.Mode, floatIn(in[2]))
	return []any{dst}, nil
}

// Opacity scales the alpha of an image.
type Opacity struct{}

func (*Opacity) Name() string { return "Opacity" }

func (*Opacity) Inputs() []Port {
	return []Port{
		{Name: "Image", Kind: KindImage},
		{Name: "Opacity", Kind: KindFloat, Default: 1.0},
	}
}

func (*Opacity) Outputs() []Port { return []Port{{Name: "Image", Kind: KindImage}} }

func (*Opacity) Execute(ctx *Context, in []any) ([]any, error) {
	src, opacity := imageIn(in[0]), floatIn(in[1])
	if src == nil || opacity >= 1 {
		return []any{src}, nil
	}
	if opacity <= 0 {
		return []any{(*image.RGBA)(nil)}, nil
	}
	dst := copySurface(ctx, src)
	blend.ScaleOpacity(dst, opacity)
	return []any{dst}, nil
}

// MathOp is the operator of a Math node.
type MathOp uint8

const (
	MathAdd MathOp = iota
	MathSubtract
	MathMultiply
	MathMin
	MathMax
)

func (op MathOp) String() string {
	switch op {
	case MathAdd:
		return "add"
	case MathSubtract:
		return "subtract"
	case MathMultiply:
		return "multiply"
	case MathMin:
		return "min"
	case MathMax:
		return "max"
	default:
		return fmt.Sprintf("MathOp(%d)", uint8(op))
	}
}

// Math combines two numbers.
type Math struct {
	Op MathOp
}

func (n *Math) Name() string { return "Math (" + n.Op.String() + ")" }

func (*Math) Inputs() []Port {
	return []Port{
		{Name: "A", Kind: KindFloat, Default: 0.0},
		{Name: "B", Kind: KindFloat, Default: 0.0},
	}
}

func (*Math) Outputs() []Port { return []Port{{Name: "Result", Kind: KindFloat}} }

func (n *Math) Execute(_ *Context, in []any) ([]any, error) {
	a, b := floatIn(in[0]), floatIn(in[1])
	var r float64
	switch n.Op {
	case MathAdd:
		r = a + b
	case MathSubtract:
		r = a - b
	case MathMultiply:
		r = a * b
	case MathMin:
		r = min(a, b)
	case MathMax:
		r = max(a, b)
	default:
		return nil, fmt.Errorf("unknown operator %v", n.Op)
	}
	return []any{r}, nil
}

// Frame outputs the frame being evaluated.
type Frame struct{}

func (*Frame) Name() string    { return "Frame" }
func (*Frame) Inputs() []Port  { return nil }
func (*Frame) Outputs() []Port { return []Port{{Name: "Frame", Kind: KindFloat}} }

func (*Frame) Execute(ctx *Context, _ []any) ([]any, error) {
	return []any{float64(ctx.Frame)}, nil
}

// RepeatStart opens a loop region. Inside the loop it outputs the value of
// the previous iteration and the iteration index; elsewhere it passes Value
// through with index 0.
type RepeatStart struct{}

func (*RepeatStart) Name() string { return "Repeat Start" }

func (*RepeatStart) Inputs() []Port {
	return []Port{
		{Name: "Value", Kind: KindImage},
		{Name: "Count", Kind: KindFloat, Default: 1.0},
	}
}

func (*RepeatStart) Outputs() []Port {
	return []Port{
		{Name: "Value", Kind: KindImage},
		{Name: "Iteration", Kind: KindFloat},
	}
}

func (*RepeatStart) Execute(_ *Context, in []any) ([]any, error) {
	return []any{in[0], 0.0}, nil
}

// RepeatEnd closes the loop region opened by Start. Its output is the value
// reaching it after the last iteration, or the start value when Count is
// not positive.
type RepeatEnd struct {
	Start NodeID
}

func (*RepeatEnd) Name() string    { return "Repeat End" }
func (*RepeatEnd) Inputs() []Port  { return []Port{{Name: "Value", Kind: KindImage}} }
func (*RepeatEnd) Outputs() []Port { return []Port{{Name: "Value", Kind: KindImage}} }

func (*RepeatEnd) Execute(_ *Context, in []any) ([]any, error) {
	return []any{in[0]}, nil
}

// copySurface returns a chunk surface holding src, or a transparent one.
func copySurface(ctx *Context, src *image.RGBA) *image.RGBA {
	dst := ctx.NewSurface()
	if src != nil {
		draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Src)
	}
	return dst
}
