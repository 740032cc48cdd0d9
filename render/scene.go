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
	"github.com/gogpu/pixdoc/changes"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/internal/cache"
	"github.com/gogpu/pixdoc/internal/parallel"
)

// ViewportInfo registers a display surface with the SceneRenderer.
type ViewportInfo struct {
	ID uuid.UUID

	// Rect is the visible canvas area in Full resolution pixels.
	Rect       image.Rectangle
	Resolution chunky.ChunkResolution

	// Delayed viewports collect damage until FlushDelayed, for surfaces
	// where refreshing on every change is too expensive.
	Delayed bool

	// Invalidate receives the re-rendered chunks.
	Invalidate func(ViewportUpdate)
}

// ViewportUpdate carries freshly rendered chunks to a viewport. A nil image
// means the chunk is transparent.
type ViewportUpdate struct {
	Viewport   uuid.UUID
	Resolution chunky.ChunkResolution
	Chunks     map[image.Point]*image.RGBA
}

type chunkKey struct {
	pos image.Point
	res chunky.ChunkResolution
}

type viewport struct {
	info    ViewportInfo
	pending Damage
}

// SceneRenderer keeps registered viewports up to date with the document.
// Rendered chunks are cached per resolution, including queued operations
// so changes in progress show up.
type SceneRenderer struct {
	chunks *ChunkRenderer
	pool   *parallel.WorkerPool
	cache  *cache.Cache[chunkKey, *image.RGBA]

	mu        sync.Mutex
	viewports map[uuid.UUID]*viewport
	frame     int
}

// SetFrame changes the frame viewports show and redraws them.
func (s *SceneRenderer) SetFrame(ctx context.Context, frame int) error {
	s.mu.Lock()
	if s.frame == frame {
		s.mu.Unlock()
		return nil
	}
	s.frame = frame
	s.mu.Unlock()
	s.cache.Clear()
	var all Damage
	all.InvalidateAll()
	return s.apply(ctx, all)
}

// AddViewport registers a viewport and renders its visible chunks, or
// schedules them when it is delayed. A zero ID is replaced by a new one.
func (s *SceneRenderer) AddViewport(ctx context.Context, info ViewportInfo) (uuid.UUID, error) {
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}
	s.mu.Lock()
	v := &viewport{info: info}
	v.pending.InvalidateAll()
	s.viewports[info.ID] = v
	s.mu.Unlock()
	if info.Delayed {
		return info.ID, nil
	}
	return info.ID, s.flush(ctx, v)
}

// UpdateViewport replaces the position, size, resolution or callback of a
// viewport and redraws it.
func (s *SceneRenderer) UpdateViewport(ctx context.Context, info ViewportInfo) error {
	s.mu.Lock()
	v, ok := s.viewports[info.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownViewport, info.ID)
	}
	v.info = info
	v.pending.InvalidateAll()
	s.mu.Unlock()
	if info.Delayed {
		return nil
	}
	return s.flush(ctx, v)
}

// RemoveViewport unregisters a viewport. It reports whether it existed.
func (s *SceneRenderer) RemoveViewport(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.viewports[id]
	delete(s.viewports, id)
	return ok
}

// Viewports returns the registered viewports.
func (s *SceneRenderer) Viewports() []ViewportInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ViewportInfo, 0, len(s.viewports))
	for _, v := range s.viewports {
		out = append(out, v.info)
	}
	return out
}

// Update re-renders what infos changed. Only viewports showing a damaged
// chunk are invalidated; delayed viewports keep the damage until
// FlushDelayed.
func (s *SceneRenderer) Update(ctx context.Context, infos []changes.Info) error {
	d := DamageFrom(infos)
	if d.IsEmpty() {
		return nil
	}
	if d.NeedsFullRedraw() {
		s.cache.Clear()
	} else {
		dirty := d.Chunks()
		s.cache.DeleteFunc(func(k chunkKey) bool { return dirty.Has(k.pos) })
	}
	return s.apply(ctx, d)
}

func (s *SceneRenderer) apply(ctx context.Context, d Damage) error {
	s.mu.Lock()
	var now []*viewport
	for _, v := range s.viewports {
		hit := d.Within(s.visible(v.info))
		if len(hit) == 0 {
			continue
		}
		v.pending.Invalidate(hit)
		if !v.info.Delayed {
			now = append(now, v)
		}
	}
	s.mu.Unlock()

	for _, v := range now {
		if err := s.flush(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// FlushDelayed renders the damage collected by delayed viewports.
func (s *SceneRenderer) FlushDelayed(ctx context.Context) error {
	s.mu.Lock()
	var delayed []*viewport
	for _, v := range s.viewports {
		if v.info.Delayed && !v.pending.IsEmpty() {
			delayed = append(delayed, v)
		}
	}
	s.mu.Unlock()

	for _, v := range delayed {
		if err := s.flush(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// visible returns the chunks of the canvas inside the viewport.
func (s *SceneRenderer) visible(info ViewportInfo) chunky.ChunkSet {
	doc := s.chunks.Document()
	cs := doc.ChunkSize()
	r := info.Rect.Intersect(image.Rectangle{Max: doc.Size()})
	if r.Empty() {
		return chunky.ChunkSet{}
	}
	return chunky.ChunksInRect(r, cs)
}

func (s *SceneRenderer) flush(ctx context.Context, v *viewport) error {
	s.mu.Lock()
	info := v.info
	hit := v.pending.Within(s.visible(info))
	v.pending.Reset()
	frame := s.frame
	s.mu.Unlock()
	if len(hit) == 0 {
		return nil
	}

	positions := hit.Sorted()
	images := make([]*image.RGBA, len(positions))
	jobs := make([]parallel.Job, len(positions))
	for i, pos := range positions {
		jobs[i] = func(context.Context) error {
			img, err := s.chunk(pos, info.Resolution, frame)
			images[i] = img
			return err
		}
	}
	if err := run(ctx, s.pool, jobs); err != nil {
		return err
	}

	update := ViewportUpdate{Viewport: info.ID, Resolution: info.Resolution, Chunks: make(map[image.Point]*image.RGBA, len(positions))}
	for i, pos := range positions {
		update.Chunks[pos] = images[i]
	}
	pixdoc.Logger().Debug("render: viewport updated", "viewport", info.ID, "chunks", len(positions))
	if info.Invalidate != nil {
		info.Invalidate(update)
	}
	return nil
}

// Chunk returns the composited chunk as viewports see it, from the cache
// when possible. The returned image must not be modified.
func (s *SceneRenderer) Chunk(pos image.Point, res chunky.ChunkResolution) (*image.RGBA, error) {
	s.mu.Lock()
	frame := s.frame
	s.mu.Unlock()
	return s.chunk(pos, res, frame)
}

func (s *SceneRenderer) chunk(pos image.Point, res chunky.ChunkResolution, frame int) (*image.RGBA, error) {
	key := chunkKey{pos: pos, res: res}
	if img, ok := s.cache.Get(key); ok {
		return img, nil
	}
	r, err := s.chunks.RenderChunk(ChunkRequest{Chunk: pos, Resolution: res, Frame: frame, Latest: true})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, r.Image)
	return r.Image, nil
}

// CacheStats describes the chunk cache of a SceneRenderer.
type CacheStats = cache.Stats

// CacheStats returns statistics of the chunk cache.
func (s *SceneRenderer) CacheStats() CacheStats { return s.cache.Stats() }
