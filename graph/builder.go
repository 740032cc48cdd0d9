package graph

import (
	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/document"
)

// FromDocument builds the compositing graph of a document: a node per
// member, folders fed by their children and the root folder feeding the
// output. The graph must be rebuilt after structural changes.
func FromDocument(doc *document.Document) (*Graph, error) {
	g := New()
	root, err := addMember(g, doc.Root)
	if err != nil {
		return nil, err
	}
	out := g.Add(&Output{})
	if err := g.Connect(root, "Image", out, "Background"); err != nil {
		return nil, err
	}
	if err := g.SetOutput(out); err != nil {
		return nil, err
	}
	return g, nil
}

func addMember(g *Graph, m document.Member) (NodeID, error) {
	switch m := m.(type) {
	case *document.Layer:
		return g.Add(&ImageLayer{Layer: m}), nil
	case *document.Folder:
		n := NewFolder(m)
		children := make([]NodeID, len(m.Children))
		for i, c := range m.Children {
			id, err := addMember(g, c)
			if err != nil {
				return None, err
			}
			children[i] = id
		}
		id := g.Add(n)
		for i, c := range children {
			if err := g.Connect(c, "Image", id, n.inputs[i].Name); err != nil {
				return None, err
			}
		}
		return id, nil
	default:
		return None, document.ErrWrongMemberType
	}
}

// FindMember returns the node backed by the member with the given id.
func (g *Graph) FindMember(id uuid.UUID) (NodeID, bool) {
	for i, n := range g.nodes {
		if m, ok := n.(MemberNode); ok && m.MemberID() == id {
			return NodeID(i), true
		}
	}
	return None, false
}

// IncludeMembers returns an include filter keeping the layers listed in ids
// and the layers inside listed folders. Folder and non-member nodes are
// always kept so the selection composites in place.
func IncludeMembers(doc *document.Document, ids []uuid.UUID) func(Node) bool {
	layers := make(map[uuid.UUID]bool)
	for _, id := range ids {
		m, ok := doc.FindMember(id)
		if !ok {
			continue
		}
		document.Walk(m, func(m document.Member) bool {
			if _, ok := m.(*document.Layer); ok {
				layers[m.Base().ID] = true
			}
			return true
		})
	}
	return func(n Node) bool {
		l, ok := n.(*ImageLayer)
		return !ok || layers[l.Layer.ID]
	}
}
