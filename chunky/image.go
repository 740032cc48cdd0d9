package chunky

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/pixdoc"
)

// Image is a sparse raster made of square chunks (a ChunkyImage).
//
// The committed state is always complete and renderable. Queued operations
// are kept aside until CommitChanges; readers that want to see them
// materialize one chunk at a time.
//
// Thread safety: all methods are safe for concurrent use. Commit and cancel
// hold the image lock for their whole duration, so no reader observes a
// partially applied queue.
type Image struct {
	mu        sync.Mutex
	chunkSize int
	pool      *Pool

	size       image.Point // committed
	latestSize image.Point // after the queue is applied

	committed [resolutionCount]map[image.Point]*Chunk

	queue        []queuedOp
	queuedArea   ChunkSet
	materialized [resolutionCount]map[image.Point]*Chunk // nil value: materialized as empty

	disposed bool
}

type queuedOp struct {
	op   Operation
	area AffectedArea
}

// New creates an empty image of the given pixel size.
func New(size image.Point, opts ...Option) *Image {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	size = image.Pt(max(0, size.X), max(0, size.Y))
	img := &Image{
		chunkSize:  o.chunkSize,
		pool:       o.pool,
		size:       size,
		latestSize: size,
		queuedArea: ChunkSet{},
	}
	for r := range resolutionCount {
		img.committed[r] = make(map[image.Point]*Chunk)
		img.materialized[r] = make(map[image.Point]*Chunk)
	}
	return img
}

// ChunkSize returns the Full resolution chunk edge length.
func (img *Image) ChunkSize() int { return img.chunkSize }

// Size returns the committed pixel size.
func (img *Image) Size() image.Point {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.size
}

// LatestSize returns the size the image will have after the queue is
// committed.
func (img *Image) LatestSize() image.Point {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.latestSize
}

// QueueLength returns the number of queued operations.
func (img *Image) QueueLength() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return len(img.queue)
}

// IsDisposed reports whether Dispose has been called.
func (img *Image) IsDisposed() bool {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.disposed
}

func (img *Image) mustBeAlive(op string) {
	if img.disposed {
		panic(fmt.Errorf("chunky: %s: %w", op, ErrDisposed))
	}
}

// EnqueueOperation queues op without touching committed chunks.
// It panics if the image is disposed.
func (img *Image) EnqueueOperation(op Operation) {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.mustBeAlive("enqueue")

	area := img.resolveArea(op)
	if s, ok := op.(sizeOperation); ok {
		img.latestSize = s.targetSize()
	}
	img.queue = append(img.queue, queuedOp{op: op, area: area})
	img.queuedArea.Union(area.Chunks)
	img.invalidateMaterialized(area.Chunks)
}

// Resize queues a size change. Chunks outside the new bounds are dropped on
// commit; nothing is resampled.
func (img *Image) Resize(size image.Point) error {
	if size.X < 0 || size.Y < 0 {
		return fmt.Errorf("chunky: resize to %v: %w", size, ErrInvalidSize)
	}
	img.EnqueueOperation(Resize{Size: size})
	return nil
}

// resolveArea computes the chunks op touches given the latest state.
// Caller holds the lock.
func (img *Image) resolveArea(op Operation) AffectedArea {
	switch o := op.(type) {
	case sizeOperation:
		bounds := image.Rectangle{Max: o.targetSize()}
		area := AffectedArea{Chunks: ChunkSet{}}
		for pos := range img.latestChunks() {
			if !ChunkRect(pos, img.chunkSize).In(bounds) {
				area.Chunks.Add(pos)
			}
		}
		return area
	case imageWideOperation:
		if o.affectsExistingChunks() {
			chunks := img.latestChunks()
			return AffectedArea{Chunks: chunks, Bounds: image.Rectangle{Max: img.latestSize}}
		}
	}
	area := op.AffectedArea(img.chunkSize)
	inside := ChunksInSize(img.latestSize, img.chunkSize)
	area.Chunks = area.Chunks.Intersection(inside)
	area.Bounds = area.Bounds.Intersect(image.Rectangle{Max: img.latestSize})
	return area
}

// latestChunks returns every chunk that may hold data once the queue is
// applied. Caller holds the lock.
func (img *Image) latestChunks() ChunkSet {
	s := ChunkSet{}
	for pos := range img.committed[Full] {
		s.Add(pos)
	}
	s.Union(img.queuedArea)
	return s
}

func (img *Image) invalidateMaterialized(chunks ChunkSet) {
	for r := range resolutionCount {
		m := img.materialized[r]
		for pos := range chunks {
			if c, ok := m[pos]; ok {
				if c != nil {
					c.release()
				}
				delete(m, pos)
			}
		}
	}
}

func (img *Image) dropMaterialized() {
	for r := range resolutionCount {
		for pos, c := range img.materialized[r] {
			if c != nil {
				c.release()
			}
			delete(img.materialized[r], pos)
		}
	}
}

// replay applies the queued operations that touch pos to c, in order.
// size is the image size before the first operation.
func (img *Image) replay(c *Chunk, pos image.Point, size image.Point) {
	for _, q := range img.queue {
		s, resize := q.op.(sizeOperation)
		if resize {
			size = s.targetSize()
		}
		if !q.area.Chunks.Has(pos) {
			continue
		}
		if !resize {
			q.op.DrawOnChunk(c, pos)
		}
		clearOutside(c, pos, size)
	}
}

// clearOutside erases the pixels of c that lie outside an image of the
// given size.
func clearOutside(c *Chunk, pos image.Point, size image.Point) {
	bounds := image.Rectangle{Max: size}
	rect := ChunkRect(pos, c.Size())
	if rect.In(bounds) {
		return
	}
	inside := rect.Intersect(bounds).Sub(rect.Min)
	s := c.surface
	for y := range c.Size() {
		row := s.Pix[s.PixOffset(0, y) : s.PixOffset(0, y)+c.Size()*4]
		if inside.Empty() || y < inside.Min.Y || y >= inside.Max.Y {
			clear(row)
			continue
		}
		clear(row[:inside.Min.X*4])
		clear(row[inside.Max.X*4:])
	}
}

// CommitChanges applies the queue to the committed chunks and returns the
// chunks that were affected. Downsampled resolutions of those chunks are
// discarded and regenerated on the next read.
func (img *Image) CommitChanges() ChunkSet {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.mustBeAlive("commit")
	if len(img.queue) == 0 {
		return ChunkSet{}
	}

	affected := img.queuedArea.Clone()
	full := img.committed[Full]
	for _, pos := range affected.Sorted() {
		c := full[pos]
		switch {
		case c == nil:
			c = newChunk(img.pool, img.chunkSize, Full)
		case c.shared():
			n := c.clone()
			c.release()
			c = n
		}
		img.replay(c, pos, img.size)
		if c.IsEmpty() {
			c.release()
			delete(full, pos)
		} else {
			full[pos] = c
		}
		for r := Half; r < resolutionCount; r++ {
			if lc, ok := img.committed[r][pos]; ok {
				lc.release()
				delete(img.committed[r], pos)
			}
		}
	}

	pixdoc.Logger().Debug("chunky: commit",
		"ops", len(img.queue), "chunks", len(affected), "size", img.latestSize)

	img.size = img.latestSize
	img.clearQueue()
	return affected
}

// CancelChanges drops every queued operation. Committed data is untouched.
func (img *Image) CancelChanges() {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed {
		return
	}
	img.latestSize = img.size
	img.clearQueue()
}

func (img *Image) clearQueue() {
	clear(img.queue)
	img.queue = img.queue[:0]
	img.queuedArea = ChunkSet{}
	img.dropMaterialized()
}

// FindAffectedArea returns the union of the areas of the queued operations
// starting at fromOperation.
func (img *Image) FindAffectedArea(fromOperation int) AffectedArea {
	img.mu.Lock()
	defer img.mu.Unlock()
	area := AffectedArea{Chunks: ChunkSet{}}
	for i := max(0, fromOperation); i < len(img.queue); i++ {
		area.Union(img.queue[i].area)
	}
	return area
}

// FindAffectedChunks returns the chunks touched by the whole queue.
func (img *Image) FindAffectedChunks() ChunkSet {
	return img.FindAffectedArea(0).Chunks
}

// FindCommittedChunks returns the chunks holding committed data.
func (img *Image) FindCommittedChunks() ChunkSet {
	img.mu.Lock()
	defer img.mu.Unlock()
	s := make(ChunkSet, len(img.committed[Full]))
	for pos := range img.committed[Full] {
		s.Add(pos)
	}
	return s
}

// FindAllChunks returns the committed chunks plus every chunk the queue
// may write to.
func (img *Image) FindAllChunks() ChunkSet {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.latestChunks()
}

// committedChunk returns the committed chunk at pos and res, downsampling
// lazily. Caller holds the lock.
func (img *Image) committedChunk(pos image.Point, res ChunkResolution) *Chunk {
	if res == Full {
		return img.committed[Full][pos]
	}
	if c, ok := img.committed[res][pos]; ok {
		return c
	}
	parent := img.committedChunk(pos, res-1)
	if parent == nil {
		return nil
	}
	c := downsample(parent)
	img.committed[res][pos] = c
	return c
}

// latestChunk returns the chunk at pos and res with the queue applied,
// materializing only that chunk. Caller holds the lock.
func (img *Image) latestChunk(pos image.Point, res ChunkResolution) *Chunk {
	if !img.queuedArea.Has(pos) {
		return img.committedChunk(pos, res)
	}
	if c, ok := img.materialized[res][pos]; ok {
		return c
	}
	var c *Chunk
	if res == Full {
		c = newChunk(img.pool, img.chunkSize, Full)
		if base := img.committed[Full][pos]; base != nil {
			copy(c.surface.Pix, base.surface.Pix)
		}
		img.replay(c, pos, img.size)
		if c.IsEmpty() {
			c.release()
			c = nil
		}
	} else if parent := img.latestChunk(pos, res-1); parent != nil {
		c = downsample(parent)
	}
	img.materialized[res][pos] = c
	return c
}

func pixelAt(c *Chunk, p image.Point) pixdoc.Color {
	if c == nil {
		return pixdoc.Transparent
	}
	o := c.surface.PixOffset(p.X, p.Y)
	px := c.surface.Pix[o : o+4 : o+4]
	return pixdoc.FromPremultiplied(px[0], px[1], px[2], px[3])
}

// GetCommittedPixel returns the committed color at p. Pixels outside the
// image, or of a disposed image, are transparent.
func (img *Image) GetCommittedPixel(p image.Point) pixdoc.Color {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed || !p.In(image.Rectangle{Max: img.size}) {
		return pixdoc.Transparent
	}
	pos := ChunkAt(p, img.chunkSize)
	return pixelAt(img.committed[Full][pos], p.Sub(pos.Mul(img.chunkSize)))
}

// GetMostUpToDatePixel returns the color at p with queued operations
// applied. Only the chunk containing p is materialized.
func (img *Image) GetMostUpToDatePixel(p image.Point) pixdoc.Color {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed || !p.In(image.Rectangle{Max: img.latestSize}) {
		return pixdoc.Transparent
	}
	pos := ChunkAt(p, img.chunkSize)
	return pixelAt(img.latestChunk(pos, Full), p.Sub(pos.Mul(img.chunkSize)))
}

// DrawCommittedChunkOn copies the committed chunk at pos and res into dst
// with its top-left corner at at. It reports false, leaving dst untouched,
// when the chunk holds no data.
func (img *Image) DrawCommittedChunkOn(pos image.Point, res ChunkResolution, dst *image.RGBA, at image.Point) (bool, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed {
		return false, ErrDisposed
	}
	return drawChunk(img.committedChunk(pos, res), dst, at), nil
}

// DrawMostUpToDateChunkOn is DrawCommittedChunkOn with queued operations
// applied.
func (img *Image) DrawMostUpToDateChunkOn(pos image.Point, res ChunkResolution, dst *image.RGBA, at image.Point) (bool, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed {
		return false, ErrDisposed
	}
	return drawChunk(img.latestChunk(pos, res), dst, at), nil
}

func drawChunk(c *Chunk, dst *image.RGBA, at image.Point) bool {
	if c == nil {
		return false
	}
	src := c.surface
	r := src.Rect.Add(at).Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := src.PixOffset(r.Min.X-at.X, y-at.Y)
		do := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[do:do+r.Dx()*4], src.Pix[so:so+r.Dx()*4])
	}
	return true
}

// Snapshot returns the committed pixels as one premultiplied RGBA image.
func (img *Image) Snapshot() (*image.RGBA, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed {
		return nil, ErrDisposed
	}
	dst := image.NewRGBA(image.Rectangle{Max: img.size})
	for pos, c := range img.committed[Full] {
		drawChunk(c, dst, pos.Mul(img.chunkSize))
	}
	return dst, nil
}

// At implements image.Image over the committed state, so an Image can be
// handed to encoders and x/image/draw directly.
func (img *Image) At(x, y int) color.Color {
	return img.GetCommittedPixel(image.Pt(x, y))
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rectangle{Max: img.Size()}
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model { return color.NRGBAModel }

// CloneFromCommitted returns a new image holding the committed state and no
// queue. Chunks are shared and copied on the first write to either image.
func (img *Image) CloneFromCommitted() *Image {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.mustBeAlive("clone")

	clone := New(img.size, WithChunkSize(img.chunkSize), WithPool(img.pool))
	for r := range resolutionCount {
		for pos, c := range img.committed[r] {
			clone.committed[r][pos] = c.retain()
		}
	}
	return clone
}

// Dispose releases every chunk. Later reads report ErrDisposed or
// transparent pixels; later writes panic. Dispose is idempotent.
func (img *Image) Dispose() {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.disposed {
		return
	}
	img.clearQueue()
	for r := range resolutionCount {
		for pos, c := range img.committed[r] {
			c.release()
			delete(img.committed[r], pos)
		}
	}
	img.disposed = true
}
