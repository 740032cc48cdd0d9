// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/document"
)

// PreviewElement selects which part of a member a preview shows.
type PreviewElement uint8

const (
	// PreviewMember shows the member composited on its own.
	PreviewMember PreviewElement = iota
	// PreviewMask shows the member's mask.
	PreviewMask
)

func (e PreviewElement) String() string {
	switch e {
	case PreviewMember:
		return "member"
	case PreviewMask:
		return "mask"
	default:
		return fmt.Sprintf("PreviewElement(%d)", uint8(e))
	}
}

// PreviewKey identifies a preview. Requests with equal keys are rendered
// once per flush.
type PreviewKey struct {
	Member  uuid.UUID
	Frame   int
	Element PreviewElement
}

type previewBatch struct {
	size int
	done []func(*image.RGBA, error)
}

// PreviewBatcher coalesces preview requests between flushes. Each key is
// rendered once, at the largest size requested for it.
type PreviewBatcher struct {
	docs *DocumentRenderer

	mu      sync.Mutex
	pending map[PreviewKey]*previewBatch
	order   []PreviewKey
}

// Request queues a preview of at most size x size pixels. done is called by
// Flush.
func (b *PreviewBatcher) Request(key PreviewKey, size int, done func(*image.RGBA, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch, ok := b.pending[key]
	if !ok {
		batch = &previewBatch{}
		b.pending[key] = batch
		b.order = append(b.order, key)
	}
	batch.size = max(batch.size, size)
	if done != nil {
		batch.done = append(batch.done, done)
	}
}

// Pending returns the number of distinct previews waiting for Flush.
func (b *PreviewBatcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Flush renders every pending preview in request order and returns how
// many were rendered. Render errors go to the callbacks; Flush itself only
// fails when ctx is done.
func (b *PreviewBatcher) Flush(ctx context.Context) (int, error) {
	b.mu.Lock()
	pending, order := b.pending, b.order
	b.pending, b.order = make(map[PreviewKey]*previewBatch), nil
	b.mu.Unlock()

	for i, key := range order {
		if err := ctx.Err(); err != nil {
			for _, k := range order[i:] {
				notify(pending[k], nil, err)
			}
			return i, err
		}
		batch := pending[key]
		img, err := b.render(ctx, key, batch.size)
		notify(batch, img, err)
	}
	if len(order) > 0 {
		pixdoc.Logger().Debug("render: previews flushed", "count", len(order))
	}
	return len(order), nil
}

func notify(batch *previewBatch, img *image.RGBA, err error) {
	for _, done := range batch.done {
		done(img, err)
	}
}

func (b *PreviewBatcher) render(ctx context.Context, key PreviewKey, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	doc := b.docs.chunks.Document()
	m, ok := doc.FindMember(key.Member)
	if !ok {
		return nil, fmt.Errorf("%w: %s", document.ErrMemberNotFound, key.Member)
	}
	switch key.Element {
	case PreviewMember:
		return b.docs.RenderThumbnail(ctx, size, Options{Frame: key.Frame, Members: []uuid.UUID{key.Member}})
	case PreviewMask:
		mask := m.Base().Mask
		if mask == nil {
			return nil, fmt.Errorf("render: member %s has no mask", key.Member)
		}
		snap, err := mask.Snapshot()
		if err != nil {
			return nil, err
		}
		return fit(snap, size), nil
	default:
		return nil, fmt.Errorf("render: unknown preview element %v", key.Element)
	}
}
