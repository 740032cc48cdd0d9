package graph

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
)

// Context carries the request a graph is evaluated for.
type Context struct {
	Frame      int
	Chunk      image.Point
	Resolution chunky.ChunkResolution

	// ChunkSize is the Full resolution chunk size of the document.
	ChunkSize int

	// Latest reads images with their queued operations applied, for
	// previews of a change in progress.
	Latest bool

	// Include restricts evaluation to the nodes it accepts. Nil accepts
	// every node.
	Include func(Node) bool
}

// PixelSize is the edge length of the chunk surfaces nodes produce.
func (c *Context) PixelSize() int { return c.Resolution.PixelSize(c.ChunkSize) }

// NewSurface returns a transparent chunk surface.
func (c *Context) NewSurface() *image.RGBA {
	s := c.PixelSize()
	return image.NewRGBA(image.Rect(0, 0, s, s))
}

// ChunkResult is the composited chunk. Empty results carry no image and
// render as transparent; they are also returned when an image backing the
// graph was disposed during evaluation.
type ChunkResult struct {
	Image *image.RGBA
	Empty bool
}

// Plan is a graph resolved for evaluation: execution order and loop
// regions. A plan is immutable and may be evaluated concurrently.
type Plan struct {
	g      *Graph
	output NodeID
	loops  loops
	scopes map[NodeID][]NodeID // loop end (or None) -> nodes it runs, in order
}

// Plan resolves the execution order for include.
func (g *Graph) Plan(include func(Node) bool) (*Plan, error) {
	order, err := g.ExecutionOrder(include)
	if err != nil {
		return nil, err
	}
	l, err := g.findLoops(order)
	if err != nil {
		return nil, err
	}
	p := &Plan{g: g, output: g.output, loops: l, scopes: make(map[NodeID][]NodeID)}
	for _, id := range order {
		if _, owned := l.owner[id]; !owned && id != p.output {
			p.scopes[None] = append(p.scopes[None], id)
		}
	}
	for end := range l.regions {
		// the start is seeded by the loop, not run by it
		handled := l.handled(end)[1:]
		for _, id := range order {
			if slices.Contains(handled, id) {
				p.scopes[end] = append(p.scopes[end], id)
			}
		}
	}
	return p, nil
}

// Evaluate runs the graph for one chunk. It is Plan followed by
// Plan.Evaluate.
func (g *Graph) Evaluate(ctx *Context) (ChunkResult, error) {
	p, err := g.Plan(ctx.Include)
	if err != nil {
		return ChunkResult{}, err
	}
	return p.Evaluate(ctx)
}

// Evaluate runs the plan for one chunk. Reading a disposed image yields an
// empty result rather than an error.
func (p *Plan) Evaluate(ctx *Context) (ChunkResult, error) {
	run := &evaluation{plan: p, ctx: ctx, values: make(map[NodeID][]any)}
	if err := run.scope(None); err != nil {
		if errors.Is(err, chunky.ErrDisposed) {
			pixdoc.Logger().Warn("graph: image disposed during evaluation", "chunk", ctx.Chunk)
			return ChunkResult{Empty: true}, nil
		}
		return ChunkResult{}, err
	}
	in := run.gather(p.output)
	if len(in) == 0 {
		return ChunkResult{Empty: true}, nil
	}
	img := imageIn(in[0])
	if img == nil {
		return ChunkResult{Empty: true}, nil
	}
	return ChunkResult{Image: img}, nil
}

type evaluation struct {
	plan   *Plan
	ctx    *Context
	values map[NodeID][]any
}

// gather collects the input values of id, falling back to the defaults of
// unconnected or unevaluated inputs.
func (e *evaluation) gather(id NodeID) []any {
	g := e.plan.g
	in := make([]any, len(g.links[id]))
	for i, l := range g.links[id] {
		in[i] = g.defaults[id][i]
		if l.node == None {
			continue
		}
		if out, ok := e.values[l.node]; ok && l.output < len(out) {
			in[i] = out[l.output]
		}
	}
	return in
}

func (e *evaluation) scope(end NodeID) error {
	for _, id := range e.plan.scopes[end] {
		if err := e.exec(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluation) exec(id NodeID) error {
	n := e.plan.g.nodes[id]
	if _, ok := n.(*RepeatEnd); ok {
		return e.loop(id)
	}
	out, err := n.Execute(e.ctx, e.gather(id))
	if err != nil {
		return fmt.Errorf("%s: %w", n.Name(), err)
	}
	e.values[id] = out
	return nil
}

// loop runs the region closed by end Count times, feeding the value that
// reaches end back into the start.
func (e *evaluation) loop(end NodeID) error {
	start := e.plan.loops.regions[end].Start
	initial := e.gather(start)
	value := initial[0]
	count := iterations(floatIn(initial[1]))
	for i := range count {
		e.values[start] = []any{value, float64(i)}
		if err := e.scope(end); err != nil {
			return err
		}
		value = e.gather(end)[0]
	}
	e.values[start] = []any{initial[0], 0.0}
	e.values[end] = []any{value}
	return nil
}

func iterations(count float64) int {
	if math.IsNaN(count) || count <= 0 {
		return 0
	}
	return int(min(math.Floor(count), MaxIterations))
}
