package chunky

import (
	"cmp"
	"image"
	"maps"
	"slices"
)

// ChunkSet is a set of chunk grid coordinates.
type ChunkSet map[image.Point]struct{}

// NewChunkSet returns a set holding the given positions.
func NewChunkSet(positions ...image.Point) ChunkSet {
	s := make(ChunkSet, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s ChunkSet) Add(p image.Point) { s[p] = struct{}{} }

// Has reports whether p is in the set.
func (s ChunkSet) Has(p image.Point) bool {
	_, ok := s[p]
	return ok
}

// Union adds every position of other to s.
func (s ChunkSet) Union(other ChunkSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Intersects reports whether the two sets share a position.
func (s ChunkSet) Intersects(other ChunkSet) bool {
	a, b := s, other
	if len(b) < len(a) {
		a, b = b, a
	}
	for p := range a {
		if b.Has(p) {
			return true
		}
	}
	return false
}

// Intersection returns the positions present in both sets.
func (s ChunkSet) Intersection(other ChunkSet) ChunkSet {
	out := ChunkSet{}
	for p := range s {
		if other.Has(p) {
			out.Add(p)
		}
	}
	return out
}

// Clone returns a copy of the set.
func (s ChunkSet) Clone() ChunkSet {
	if s == nil {
		return ChunkSet{}
	}
	return maps.Clone(s)
}

// Sorted returns the positions in row-major order (top to bottom, then
// left to right), which keeps iteration deterministic.
func (s ChunkSet) Sorted() []image.Point {
	out := slices.Collect(maps.Keys(s))
	slices.SortFunc(out, comparePoints)
	return out
}

func comparePoints(a, b image.Point) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ChunkAt returns the chunk containing the pixel p.
func ChunkAt(p image.Point, chunkSize int) image.Point {
	return image.Pt(floorDiv(p.X, chunkSize), floorDiv(p.Y, chunkSize))
}

// ChunkRect returns the pixel rectangle covered by the chunk at pos.
func ChunkRect(pos image.Point, chunkSize int) image.Rectangle {
	min := pos.Mul(chunkSize)
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(chunkSize, chunkSize))}
}

// ChunksInRect returns every chunk touched by the pixel rectangle r,
// including partially covered edge chunks.
func ChunksInRect(r image.Rectangle, chunkSize int) ChunkSet {
	s := ChunkSet{}
	addRect(s, r, chunkSize)
	return s
}

func addRect(s ChunkSet, r image.Rectangle, chunkSize int) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	lo := ChunkAt(r.Min, chunkSize)
	hi := ChunkAt(r.Max.Sub(image.Pt(1, 1)), chunkSize)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			s.Add(image.Pt(x, y))
		}
	}
}

// ChunksInSize returns every chunk of an image of the given pixel size.
func ChunksInSize(size image.Point, chunkSize int) ChunkSet {
	return ChunksInRect(image.Rectangle{Max: size}, chunkSize)
}
