// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"image"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/internal/cache"
	"github.com/gogpu/pixdoc/internal/parallel"
)

// DefaultCacheCapacity is the number of chunk bitmaps SceneRenderer keeps.
const DefaultCacheCapacity = 1024

// Config configures a Renderer.
type Config struct {
	// Workers is the number of render goroutines. 0 uses GOMAXPROCS.
	Workers int

	// CacheCapacity bounds the SceneRenderer chunk cache. 0 uses
	// DefaultCacheCapacity.
	CacheCapacity int
}

// Renderer bundles the renderers of one document around a shared worker
// pool.
type Renderer struct {
	Chunks   *ChunkRenderer
	Document *DocumentRenderer
	Scene    *SceneRenderer
	Previews *PreviewBatcher

	pool *parallel.WorkerPool
}

// New creates the renderers for doc and starts their worker pool.
// Close must be called to stop it.
func New(doc *document.Document, cfg Config) *Renderer {
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DefaultCacheCapacity
	}
	pool := parallel.NewWorkerPool(cfg.Workers)
	chunks := NewChunkRenderer(doc)
	docs := &DocumentRenderer{chunks: chunks, pool: pool}
	return &Renderer{
		Chunks:   chunks,
		Document: docs,
		Scene: &SceneRenderer{
			chunks:    chunks,
			pool:      pool,
			cache:     cache.New[chunkKey, *image.RGBA](cfg.CacheCapacity),
			viewports: make(map[uuid.UUID]*viewport),
		},
		Previews: &PreviewBatcher{docs: docs, pending: make(map[PreviewKey]*previewBatch)},
		pool:     pool,
	}
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Close stops the worker pool. Renders started afterwards fail with
// ErrClosed.
func (r *Renderer) Close() { r.pool.Close() }

func run(ctx context.Context, pool *parallel.WorkerPool, jobs []parallel.Job) error {
	err := pool.Run(ctx, jobs)
	if errors.Is(err, parallel.ErrClosed) {
		return ErrClosed
	}
	return err
}
