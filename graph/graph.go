package graph

import (
	"fmt"
	"slices"
)

// NodeID identifies a node within one Graph.
type NodeID int

// None is the NodeID of no node.
const None NodeID = -1

// Node is a unit of work in the graph.
//
// Execute receives one value per input port, in port order, and returns one
// value per output port. It must not modify its inputs: an output may be
// shared by several consumers.
type Node interface {
	Name() string
	Inputs() []Port
	Outputs() []Port
	Execute(ctx *Context, in []any) ([]any, error)
}

type link struct {
	node   NodeID
	output int
}

var unlinked = link{node: None}

// Graph is an arena of nodes joined output-to-input.
//
// A Graph is acyclic: Connect rejects edges that would close a cycle.
// Mutation is not safe for concurrent use; evaluation only reads the graph
// and may run concurrently once the graph is built.
type Graph struct {
	nodes    []Node
	links    [][]link
	defaults [][]any
	output   NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{output: None}
}

// Add inserts n and returns its id. Unconnected inputs take the port
// defaults.
func (g *Graph) Add(n Node) NodeID {
	in := n.Inputs()
	links := make([]link, len(in))
	defaults := make([]any, len(in))
	for i, p := range in {
		links[i] = unlinked
		defaults[i] = p.Default
	}
	g.nodes = append(g.nodes, n)
	g.links = append(g.links, links)
	g.defaults = append(g.defaults, defaults)
	return NodeID(len(g.nodes) - 1)
}

// Remove deletes a node and every edge touching it. Ids of other nodes do
// not change.
func (g *Graph) Remove(id NodeID) error {
	if !g.valid(id) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	g.nodes[id] = nil
	g.links[id] = nil
	for to := range g.links {
		for i, l := range g.links[to] {
			if l.node == id {
				g.links[to][i] = unlinked
			}
		}
	}
	if g.output == id {
		g.output = None
	}
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.valid(id) {
		return nil, false
	}
	return g.nodes[id], true
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	n := 0
	for _, node := range g.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// IDs returns the ids of all live nodes in ascending order.
func (g *Graph) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id, n := range g.nodes {
		if n != nil {
			ids = append(ids, NodeID(id))
		}
	}
	return ids
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id] != nil
}

func (g *Graph) port(id NodeID, name string, input bool) (int, Port, error) {
	if !g.valid(id) {
		return 0, Port{}, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	ports := g.nodes[id].Outputs()
	if input {
		ports = g.nodes[id].Inputs()
	}
	i := portIndex(ports, name)
	if i < 0 {
		return 0, Port{}, fmt.Errorf("%w: %s has no port %q", ErrUnknownPort, g.nodes[id].Name(), name)
	}
	return i, ports[i], nil
}

// Connect links output port out of node from to input port in of node to,
// replacing any existing link into that input.
func (g *Graph) Connect(from NodeID, out string, to NodeID, in string) error {
	oi, op, err := g.port(from, out, false)
	if err != nil {
		return err
	}
	ii, ip, err := g.port(to, in, true)
	if err != nil {
		return err
	}
	if op.Kind != ip.Kind {
		return fmt.Errorf("%w: %s.%s is %s, %s.%s is %s", ErrKindMismatch,
			g.nodes[from].Name(), out, op.Kind, g.nodes[to].Name(), in, ip.Kind)
	}
	if from == to || g.reaches(to, from) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, g.nodes[from].Name(), g.nodes[to].Name())
	}
	g.links[to][ii] = link{node: from, output: oi}
	return nil
}

// Disconnect removes the link into an input port.
func (g *Graph) Disconnect(to NodeID, in string) error {
	ii, _, err := g.port(to, in, true)
	if err != nil {
		return err
	}
	g.links[to][ii] = unlinked
	return nil
}

// SetDefault sets the value an input takes while unconnected.
func (g *Graph) SetDefault(id NodeID, in string, v any) error {
	ii, ip, err := g.port(id, in, true)
	if err != nil {
		return err
	}
	if !ip.Kind.accepts(v) {
		return fmt.Errorf("%w: %T for %s input %q", ErrKindMismatch, v, ip.Kind, in)
	}
	g.defaults[id][ii] = v
	return nil
}

// SetOutput marks the node whose first input is the graph result.
func (g *Graph) SetOutput(id NodeID) error {
	if !g.valid(id) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	g.output = id
	return nil
}

// Output returns the output node id, or None.
func (g *Graph) Output() NodeID { return g.output }

// Source returns the node and output index linked into input in of id.
func (g *Graph) Source(id NodeID, in int) (NodeID, int, bool) {
	if !g.valid(id) || in < 0 || in >= len(g.links[id]) {
		return None, 0, false
	}
	l := g.links[id][in]
	return l.node, l.output, l.node != None
}

// inputs returns the distinct upstream nodes of id in input order.
func (g *Graph) inputs(id NodeID) []NodeID {
	var ids []NodeID
	for _, l := range g.links[id] {
		if l.node != None && !slices.Contains(ids, l.node) {
			ids = append(ids, l.node)
		}
	}
	return ids
}

// consumers returns the distinct downstream nodes of id in ascending order.
func (g *Graph) consumers(id NodeID) []NodeID {
	var ids []NodeID
	for to, links := range g.links {
		for _, l := range links {
			if l.node == id {
				ids = append(ids, NodeID(to))
				break
			}
		}
	}
	return ids
}

// TraverseBackwards visits from and every node upstream of it, breadth
// first, each once. Returning false from visit stops the traversal.
func (g *Graph) TraverseBackwards(from NodeID, visit func(NodeID) bool) {
	g.traverse(from, g.inputs, visit)
}

// TraverseForwards visits from and every node downstream of it, breadth
// first, each once. Returning false from visit stops the traversal.
func (g *Graph) TraverseForwards(from NodeID, visit func(NodeID) bool) {
	g.traverse(from, g.consumers, visit)
}

func (g *Graph) traverse(from NodeID, next func(NodeID) []NodeID, visit func(NodeID) bool) {
	if !g.valid(from) {
		return
	}
	seen := map[NodeID]bool{from: true}
	queue := []NodeID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !visit(id) {
			return
		}
		for _, n := range next(id) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
}

// reaches reports whether to is downstream of from.
func (g *Graph) reaches(from, to NodeID) bool {
	found := false
	g.TraverseForwards(from, func(id NodeID) bool {
		found = id == to
		return !found
	})
	return found
}

func (g *Graph) reachable(from NodeID, forwards bool) map[NodeID]bool {
	set := make(map[NodeID]bool)
	visit := func(id NodeID) bool {
		set[id] = true
		return true
	}
	if forwards {
		g.TraverseForwards(from, visit)
	} else {
		g.TraverseBackwards(from, visit)
	}
	return set
}

// ExecutionOrder returns the nodes the output depends on in topological
// order, inputs first. Nodes for which include returns false are left out
// together with everything only they depend on; their consumers see the
// port defaults instead. A nil include keeps every node.
func (g *Graph) ExecutionOrder(include func(Node) bool) ([]NodeID, error) {
	if !g.valid(g.output) {
		return nil, ErrNoOutput
	}
	var order []NodeID
	seen := make(map[NodeID]bool)
	var visit func(NodeID)
	visit = func(id NodeID) {
		seen[id] = true
		for _, up := range g.inputs(id) {
			if seen[up] || (include != nil && !include(g.nodes[up])) {
				continue
			}
			visit(up)
		}
		order = append(order, id)
	}
	visit(g.output)
	return order, nil
}
