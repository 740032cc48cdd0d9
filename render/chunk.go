// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/graph"
)

// ChunkRequest selects what ChunkRenderer renders.
type ChunkRequest struct {
	Chunk      image.Point
	Resolution chunky.ChunkResolution
	Frame      int

	// Latest includes queued operations, showing changes in progress.
	Latest bool

	// Members restricts rendering to these members and their descendants.
	// Empty renders every member.
	Members []uuid.UUID
}

// ChunkRenderer evaluates the compositing graph of a document one chunk at
// a time.
//
// Thread safety: ChunkRenderer is safe for concurrent use as long as the
// document is not mutated during a render.
type ChunkRenderer struct {
	doc *document.Document

	mu      sync.Mutex
	graph   *graph.Graph
	plan    *graph.Plan // every member, for the graph's version
	version uint64
}

// NewChunkRenderer creates a renderer for doc.
func NewChunkRenderer(doc *document.Document) *ChunkRenderer {
	return &ChunkRenderer{doc: doc}
}

// Document returns the rendered document.
func (r *ChunkRenderer) Document() *document.Document { return r.doc }

// Graph returns the compositing graph, rebuilding it when the document
// structure changed since the last call.
func (r *ChunkRenderer) Graph() (*graph.Graph, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current()
}

func (r *ChunkRenderer) current() (*graph.Graph, error) {
	if r.graph != nil && r.version == r.doc.Version() {
		return r.graph, nil
	}
	g, err := graph.FromDocument(r.doc)
	if err != nil {
		return nil, err
	}
	r.graph, r.plan, r.version = g, nil, r.doc.Version()
	pixdoc.Logger().Debug("render: graph rebuilt", "nodes", g.Len(), "version", r.version)
	return g, nil
}

// Plan resolves the graph for the given members. Plans for all members are
// cached until the structure changes.
func (r *ChunkRenderer) Plan(members []uuid.UUID) (*graph.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.current()
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		return g.Plan(graph.IncludeMembers(r.doc, members))
	}
	if r.plan == nil {
		if r.plan, err = g.Plan(nil); err != nil {
			return nil, err
		}
	}
	return r.plan, nil
}

// RenderChunk renders one chunk.
func (r *ChunkRenderer) RenderChunk(req ChunkRequest) (graph.ChunkResult, error) {
	p, err := r.Plan(req.Members)
	if err != nil {
		return graph.ChunkResult{}, err
	}
	return p.Evaluate(r.context(req))
}

func (r *ChunkRenderer) context(req ChunkRequest) *graph.Context {
	return &graph.Context{
		Frame:      req.Frame,
		Chunk:      req.Chunk,
		Resolution: req.Resolution,
		ChunkSize:  r.doc.ChunkSize(),
		Latest:     req.Latest,
	}
}
