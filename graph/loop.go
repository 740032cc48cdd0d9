package graph

import (
	"fmt"
	"slices"
)

// MaxIterations caps the Count of a repeat loop.
const MaxIterations = 4096

// Region is the set of nodes enclosed by a RepeatStart/RepeatEnd pair.
type Region struct {
	Start NodeID
	End   NodeID

	// Nodes are downstream of Start and upstream of End, Start and End
	// excluded, in ascending order.
	Nodes []NodeID
}

// Contains reports whether id is enclosed by the region.
func (r Region) Contains(id NodeID) bool {
	_, ok := slices.BinarySearch(r.Nodes, id)
	return ok
}

// LoopRegion computes the region closed by the RepeatEnd node end.
func (g *Graph) LoopRegion(end NodeID) (Region, error) {
	n, ok := g.Node(end)
	if !ok {
		return Region{}, fmt.Errorf("%w: %d", ErrUnknownNode, end)
	}
	re, ok := n.(*RepeatEnd)
	if !ok {
		return Region{}, fmt.Errorf("%w: %s is not a repeat end", ErrInvalidLoop, n.Name())
	}
	start, ok := g.Node(re.Start)
	if _, isStart := start.(*RepeatStart); !ok || !isStart {
		return Region{}, fmt.Errorf("%w: %s does not pair with a repeat start", ErrInvalidLoop, n.Name())
	}
	up := g.reachable(end, false)
	if !up[re.Start] {
		return Region{}, fmt.Errorf("%w: repeat start %d is not upstream of end %d", ErrInvalidLoop, re.Start, end)
	}
	r := Region{Start: re.Start, End: end}
	for id := range g.reachable(re.Start, true) {
		if id != re.Start && id != end && up[id] {
			r.Nodes = append(r.Nodes, id)
		}
	}
	slices.Sort(r.Nodes)
	return r, nil
}

// loops binds every node in a loop to the innermost region enclosing it.
type loops struct {
	regions map[NodeID]Region // by end node
	owner   map[NodeID]NodeID // node -> end of innermost region
}

func (g *Graph) findLoops(order []NodeID) (loops, error) {
	l := loops{regions: make(map[NodeID]Region), owner: make(map[NodeID]NodeID)}
	var ends []NodeID
	for _, id := range order {
		if _, ok := g.nodes[id].(*RepeatEnd); !ok {
			continue
		}
		r, err := g.LoopRegion(id)
		if err != nil {
			return loops{}, err
		}
		l.regions[id] = r
		ends = append(ends, id)
	}

	// Regions must nest or be disjoint.
	for i, a := range ends {
		for _, b := range ends[i+1:] {
			ra, rb := l.regions[a], l.regions[b]
			if overlap(ra, rb) && !within(ra, rb) && !within(rb, ra) {
				return loops{}, fmt.Errorf("%w: regions of %d and %d overlap", ErrInvalidLoop, a, b)
			}
		}
	}

	for _, end := range ends {
		r := l.regions[end]
		for _, id := range r.Nodes {
			cur, ok := l.owner[id]
			if !ok || len(r.Nodes) < len(l.regions[cur].Nodes) {
				l.owner[id] = end
			}
		}
	}
	return l, nil
}

func overlap(a, b Region) bool {
	for _, id := range a.Nodes {
		if b.Contains(id) {
			return true
		}
	}
	return false
}

// within reports whether a lies inside b, its start and end included.
func within(a, b Region) bool {
	if !b.Contains(a.Start) || !b.Contains(a.End) {
		return false
	}
	for _, id := range a.Nodes {
		if !b.Contains(id) {
			return false
		}
	}
	return true
}

// handled returns the nodes the loop ending at end runs itself: the nodes
// it owns plus its start.
func (l loops) handled(end NodeID) []NodeID {
	r := l.regions[end]
	ids := []NodeID{r.Start}
	for _, id := range r.Nodes {
		if l.owner[id] == end {
			ids = append(ids, id)
		}
	}
	return ids
}
