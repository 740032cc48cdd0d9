package chunky

import (
	"image"
	"sync/atomic"
)

// Chunk is a square tile of premultiplied RGBA pixels at one resolution.
//
// Chunks are reference counted: a committed chunk may be shared between an
// image and its clones, and is copied before being written to while shared.
// The surface returns to its pool when the last reference is released.
type Chunk struct {
	surface    *image.RGBA
	resolution ChunkResolution
	pool       *Pool
	refs       atomic.Int32
}

func newChunk(pool *Pool, size int, res ChunkResolution) *Chunk {
	c := &Chunk{surface: pool.Get(size), resolution: res, pool: pool}
	c.refs.Store(1)
	return c
}

// Surface returns the pixel buffer. Its bounds start at (0, 0).
func (c *Chunk) Surface() *image.RGBA { return c.surface }

// Resolution returns the resolution of the chunk.
func (c *Chunk) Resolution() ChunkResolution { return c.resolution }

// Size returns the edge length of the chunk in pixels.
func (c *Chunk) Size() int { return c.surface.Rect.Dx() }

// IsEmpty reports whether every pixel is fully transparent.
func (c *Chunk) IsEmpty() bool {
	pix := c.surface.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return false
		}
	}
	return true
}

func (c *Chunk) retain() *Chunk {
	c.refs.Add(1)
	return c
}

func (c *Chunk) release() {
	if c.refs.Add(-1) == 0 {
		c.pool.Put(c.surface)
		c.surface = nil
	}
}

func (c *Chunk) shared() bool { return c.refs.Load() > 1 }

func (c *Chunk) clone() *Chunk {
	n := newChunk(c.pool, c.Size(), c.resolution)
	copy(n.surface.Pix, c.surface.Pix)
	return n
}
