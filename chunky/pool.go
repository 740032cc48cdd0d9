package chunky

import (
	"image"
	"sync"
)

// Pool recycles chunk surfaces, grouped by edge length.
//
// Thread safety: all methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[int][]*image.RGBA
	maxSize int // max surfaces per bucket, 0 = unlimited
}

// NewPool creates a pool keeping at most maxPerBucket surfaces of each size.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[int][]*image.RGBA),
		maxSize: maxPerBucket,
	}
}

var defaultPool = NewPool(256)

// DefaultPool returns the process-wide chunk pool.
func DefaultPool() *Pool { return defaultPool }

// Get returns a cleared size x size surface with its origin at (0, 0).
func (p *Pool) Get(size int) *image.RGBA {
	p.mu.Lock()
	bucket := p.buckets[size]
	if n := len(bucket); n > 0 {
		img := bucket[n-1]
		p.buckets[size] = bucket[:n-1]
		p.mu.Unlock()
		clear(img.Pix)
		return img
	}
	p.mu.Unlock()
	return image.NewRGBA(image.Rect(0, 0, size, size))
}

// Put returns a surface to the pool. Surfaces that are not square or do
// not start at the origin are dropped.
func (p *Pool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) || img.Rect.Dx() != img.Rect.Dy() {
		return
	}
	size := img.Rect.Dx()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxSize > 0 && len(p.buckets[size]) >= p.maxSize {
		return
	}
	p.buckets[size] = append(p.buckets[size], img)
}

// Len returns the number of pooled surfaces of the given size.
func (p *Pool) Len(size int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[size])
}
