package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the graph to Graphviz DOT. Edges are labelled with the
// ports they join; the output node is drawn bold.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, id := range g.IDs() {
		attrs := fmt.Sprintf("label=%q", g.nodes[id].Name())
		if id == g.output {
			attrs += ", penwidth=2"
		}
		if _, ok := g.nodes[id].(*RepeatStart); ok {
			attrs += ", fillcolor=lightgrey"
		}
		if _, ok := g.nodes[id].(*RepeatEnd); ok {
			attrs += ", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  \"n%d\" [%s];\n", id, attrs)
	}

	buf.WriteString("\n")
	for _, to := range g.IDs() {
		in := g.nodes[to].Inputs()
		for i, l := range g.links[to] {
			if l.node == None {
				continue
			}
			out := g.nodes[l.node].Outputs()[l.output]
			fmt.Fprintf(&buf, "  \"n%d\" -> \"n%d\" [label=%q];\n", l.node, to, out.Name+" -> "+in[i].Name)
		}
		if end, ok := g.nodes[to].(*RepeatEnd); ok && g.valid(end.Start) {
			fmt.Fprintf(&buf, "  \"n%d\" -> \"n%d\" [style=dashed, constraint=false];\n", to, end.Start)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
