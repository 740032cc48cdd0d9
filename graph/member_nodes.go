package graph

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/internal/blend"
)

// MemberNode is implemented by nodes backed by a structure member.
type MemberNode interface {
	Node
	MemberID() uuid.UUID
}

// ImageLayer outputs the pixels of a layer. Member properties such as
// opacity and mask are applied by the enclosing Folder node.
type ImageLayer struct {
	Layer *document.Layer
}

func (n *ImageLayer) Name() string        { return "Layer: " + n.Layer.Name }
func (n *ImageLayer) MemberID() uuid.UUID { return n.Layer.ID }
func (*ImageLayer) Inputs() []Port        { return nil }
func (*ImageLayer) Outputs() []Port       { return []Port{{Name: "Image", Kind: KindImage}} }

func (n *ImageLayer) Execute(ctx *Context, _ []any) ([]any, error) {
	img, err := readChunk(ctx, n.Layer.Image)
	if err != nil {
		return nil, err
	}
	return []any{img}, nil
}

// readChunk copies the chunk the context asks for. It returns nil when the
// chunk holds no data.
func readChunk(ctx *Context, img *chunky.Image) (*image.RGBA, error) {
	if img == nil {
		return nil, nil
	}
	dst := ctx.NewSurface()
	read := img.DrawCommittedChunkOn
	if ctx.Latest {
		read = img.DrawMostUpToDateChunkOn
	}
	ok, err := read(ctx.Chunk, ctx.Resolution, dst, image.Point{})
	if err != nil || !ok {
		return nil, err
	}
	return dst, nil
}

// Folder composites the children of a folder bottom to top. It has one
// input per child; member properties are read when the node executes, so
// property changes need no graph rebuild.
type Folder struct {
	Folder *document.Folder

	inputs []Port
}

// NewFolder returns a folder node with an input for each current child.
func NewFolder(f *document.Folder) *Folder {
	n := &Folder{Folder: f}
	for i := range f.Children {
		n.inputs = append(n.inputs, Port{Name: fmt.Sprintf("Child %d", i), Kind: KindImage})
	}
	return n
}

func (n *Folder) Name() string        { return "Folder: " + n.Folder.Name }
func (n *Folder) MemberID() uuid.UUID { return n.Folder.ID }
func (n *Folder) Inputs() []Port      { return n.inputs }
func (*Folder) Outputs() []Port       { return []Port{{Name: "Image", Kind: KindImage}} }

func (n *Folder) Execute(ctx *Context, in []any) ([]any, error) {
	var (
		dst  *image.RGBA
		base *image.RGBA // last member that is not clipped
	)
	children := n.Folder.Children
	for i := range min(len(children), len(in)) {
		b := children[i].Base()
		if !b.ClipToBelow {
			base = nil
		}
		if !b.Visible {
			continue
		}
		src := imageIn(in[i])
		if src == nil {
			continue
		}
		if b.ClipToBelow && base == nil {
			continue
		}
		img := copySurface(ctx, src)
		if b.Mask != nil {
			mask, err := readChunk(ctx, b.Mask)
			if err != nil {
				return nil, err
			}
			if mask == nil {
				continue
			}
			blend.MaskAlpha(img, mask)
		}
		if b.ClipToBelow {
			blend.MaskAlpha(img, base)
		} else {
			base = img
		}
		if dst == nil {
			dst = ctx.NewSurface()
		}
		blend.Composite(dst, img, b.Blend, b.Opacity)
	}
	return []any{dst}, nil
}
