package graph

import (
	"fmt"
	"image"

	"github.com/gogpu/pixdoc"
)

// ValueKind is the type of value carried by a port.
type ValueKind uint8

const (
	// KindImage values are *image.RGBA chunk surfaces. Nil is a fully
	// transparent chunk.
	KindImage ValueKind = iota
	// KindFloat values are float64.
	KindFloat
	// KindColor values are pixdoc.Color.
	KindColor
)

func (k ValueKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFloat:
		return "float"
	case KindColor:
		return "color"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// accepts reports whether v can be stored in a port of kind k.
func (k ValueKind) accepts(v any) bool {
	switch v.(type) {
	case nil:
		return k == KindImage
	case *image.RGBA:
		return k == KindImage
	case float64:
		return k == KindFloat
	case pixdoc.Color:
		return k == KindColor
	default:
		return false
	}
}

// Port declares an input or output of a node.
type Port struct {
	Name    string
	Kind    ValueKind
	Default any // used by unconnected inputs
}

func portIndex(ports []Port, name string) int {
	for i, p := range ports {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func imageIn(v any) *image.RGBA {
	img, _ := v.(*image.RGBA)
	return img
}

func floatIn(v any) float64 {
	f, _ := v.(float64)
	return f
}

func colorIn(v any) pixdoc.Color {
	c, _ := v.(pixdoc.Color)
	return c
}
