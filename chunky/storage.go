package chunky

import (
	"image"
	"sync"
)

// ChunkStorage keeps the committed Full resolution chunks of an image for a
// set of positions, so that a change can restore exact pixel data on
// revert. Positions that held no chunk are remembered too and are cleared
// on restore.
//
// Saved chunks share memory with the image until either side writes, at
// which point the image copies the chunk.
type ChunkStorage struct {
	mu        sync.Mutex
	chunkSize int
	size      image.Point
	chunks    map[image.Point]*Chunk
	disposed  bool
}

// NewChunkStorage saves the committed chunks of img at positions.
func NewChunkStorage(img *Image, positions ChunkSet) *ChunkStorage {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.mustBeAlive("save chunks")

	s := &ChunkStorage{
		chunkSize: img.chunkSize,
		size:      img.size,
		chunks:    make(map[image.Point]*Chunk, len(positions)),
	}
	for pos := range positions {
		if c := img.committed[Full][pos]; c != nil {
			s.chunks[pos] = c.retain()
		} else {
			s.chunks[pos] = nil
		}
	}
	return s
}

// SaveAll saves every committed chunk of img.
func SaveAll(img *Image) *ChunkStorage {
	return NewChunkStorage(img, img.FindCommittedChunks())
}

// Size returns the image size at the time the chunks were saved.
func (s *ChunkStorage) Size() image.Point { return s.size }

// Chunks returns the saved positions.
func (s *ChunkStorage) Chunks() ChunkSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(ChunkSet, len(s.chunks))
	for pos := range s.chunks {
		out.Add(pos)
	}
	return out
}

// Pixels returns a copy of the saved chunk at pos, or nil when the
// position held no data.
func (s *ChunkStorage) Pixels(pos image.Point) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chunks[pos]
	if c == nil {
		return nil
	}
	out := image.NewRGBA(c.surface.Rect)
	copy(out.Pix, c.surface.Pix)
	return out
}

// ApplyChunksToImage queues an operation on img that puts the saved pixels
// back. The caller commits.
func (s *ChunkStorage) ApplyChunksToImage(img *Image) {
	img.EnqueueOperation(&restoreOperation{storage: s})
}

// Dispose releases the saved chunks. It is idempotent.
func (s *ChunkStorage) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	for pos, c := range s.chunks {
		if c != nil {
			c.release()
		}
		delete(s.chunks, pos)
	}
	s.disposed = true
}

// restoreOperation overwrites the stored positions with the saved pixels.
type restoreOperation struct {
	storage *ChunkStorage
}

func (o *restoreOperation) AffectedArea(chunkSize int) AffectedArea {
	area := AffectedArea{Chunks: ChunkSet{}}
	if chunkSize != o.storage.chunkSize {
		return area
	}
	area.Chunks = o.storage.Chunks()
	for pos := range area.Chunks {
		area.Bounds = area.Bounds.Union(ChunkRect(pos, chunkSize))
	}
	return area
}

func (o *restoreOperation) DrawOnChunk(c *Chunk, pos image.Point) {
	o.storage.mu.Lock()
	defer o.storage.mu.Unlock()
	saved, ok := o.storage.chunks[pos]
	if !ok {
		return
	}
	if saved == nil {
		clear(c.surface.Pix)
		return
	}
	copy(c.surface.Pix, saved.surface.Pix)
}
