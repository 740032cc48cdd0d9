package chunky

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/pixdoc"
)

func newTestImage(size image.Point) *Image {
	return New(size, WithChunkSize(4), WithPool(NewPool(0)))
}

func mustSnapshot(t *testing.T, img *Image) *image.RGBA {
	t.Helper()
	snap, err := img.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return snap
}

func TestImageCommit(t *testing.T) {
	img := newTestImage(image.Pt(10, 10))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(4, 4, 6, 6), Fill: pixdoc.Red})

	if got := img.GetCommittedPixel(image.Pt(5, 5)); got != pixdoc.Transparent {
		t.Errorf("committed pixel before commit = %v, want transparent", got)
	}
	if got := img.GetMostUpToDatePixel(image.Pt(5, 5)); got != pixdoc.Red {
		t.Errorf("latest pixel before commit = %v, want red", got)
	}
	if got := img.QueueLength(); got != 1 {
		t.Errorf("QueueLength() = %d, want 1", got)
	}

	affected := img.CommitChanges()
	if diff := cmp.Diff([]image.Point{{1, 1}}, affected.Sorted()); diff != "" {
		t.Errorf("CommitChanges() chunks mismatch (-want +got):\n%s", diff)
	}
	if got := img.GetCommittedPixel(image.Pt(5, 5)); got != pixdoc.Red {
		t.Errorf("committed pixel after commit = %v, want red", got)
	}
	if got := img.GetCommittedPixel(image.Pt(6, 6)); got != pixdoc.Transparent {
		t.Errorf("pixel next to the rectangle = %v, want transparent", got)
	}
	if got := img.QueueLength(); got != 0 {
		t.Errorf("QueueLength() after commit = %d, want 0", got)
	}
}

func TestImageCancelLeavesCommittedDataUntouched(t *testing.T) {
	img := newTestImage(image.Pt(10, 10))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 7, 3), Fill: pixdoc.Green})
	img.CommitChanges()
	before := mustSnapshot(t, img)
	chunksBefore := img.FindCommittedChunks()

	img.EnqueueOperation(Clear{})
	img.EnqueueOperation(NewEllipse(image.Rect(0, 0, 10, 10), pixdoc.Blue, pixdoc.Red, Paint{}))
	if err := img.Resize(image.Pt(3, 3)); err != nil {
		t.Fatal(err)
	}
	img.EnqueueOperation(ClearRegion{Rect: image.Rect(0, 0, 2, 2)})
	_ = img.GetMostUpToDatePixel(image.Pt(1, 1))
	img.CancelChanges()

	after := mustSnapshot(t, img)
	if !bytes.Equal(before.Pix, after.Pix) {
		t.Error("committed pixels changed after CancelChanges")
	}
	if diff := cmp.Diff(chunksBefore.Sorted(), img.FindCommittedChunks().Sorted()); diff != "" {
		t.Errorf("committed chunks changed (-before +after):\n%s", diff)
	}
	if got := img.LatestSize(); got != image.Pt(10, 10) {
		t.Errorf("LatestSize() = %v, want 10x10", got)
	}
}

func TestImageMaterializesSingleChunk(t *testing.T) {
	img := newTestImage(image.Pt(16, 16))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 16, 16), Fill: pixdoc.Red})

	if got := img.GetMostUpToDatePixel(image.Pt(9, 9)); got != pixdoc.Red {
		t.Fatalf("GetMostUpToDatePixel = %v, want red", got)
	}
	if got := len(img.materialized[Full]); got != 1 {
		t.Errorf("materialized chunks = %d, want 1", got)
	}
	if got := len(img.committed[Full]); got != 0 {
		t.Errorf("committed chunks = %d, want 0", got)
	}
}

func TestImageLatestMatchesCommitted(t *testing.T) {
	img := newTestImage(image.Pt(12, 12))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(1, 1, 11, 11), Fill: pixdoc.Color{R: 40, G: 90, B: 200, A: 180}})
	img.EnqueueOperation(NewEllipse(image.Rect(2, 0, 12, 9), pixdoc.Color{R: 255, G: 200, A: 90}, pixdoc.Black, Paint{Blend: pixdoc.BlendScreen}))
	img.EnqueueOperation(NewLine(image.Pt(0, 11), image.Pt(11, 0), pixdoc.White, Paint{Mode: PaintErase}))

	latest := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for pos := range ChunksInSize(image.Pt(12, 12), 4) {
		if _, err := img.DrawMostUpToDateChunkOn(pos, Full, latest, pos.Mul(4)); err != nil {
			t.Fatal(err)
		}
	}
	img.CommitChanges()
	if committed := mustSnapshot(t, img); !bytes.Equal(latest.Pix, committed.Pix) {
		t.Error("materialized queue differs from committed result")
	}
}

func TestImageLowerResolutionsAreLazy(t *testing.T) {
	img := newTestImage(image.Pt(8, 8))
	img.EnqueueOperation(dotAt(image.Pt(0, 0), pixdoc.Red))
	img.CommitChanges()

	half := image.NewRGBA(image.Rect(0, 0, 2, 2))
	ok, err := img.DrawCommittedChunkOn(image.Pt(0, 0), Half, half, image.Point{})
	if err != nil || !ok {
		t.Fatalf("DrawCommittedChunkOn = %v, %v", ok, err)
	}
	if got := half.Pix[:4]; !bytes.Equal(got, []byte{63, 0, 0, 63}) {
		t.Errorf("half resolution pixel = %v, want [63 0 0 63]", got)
	}

	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 4, 4), Fill: pixdoc.Blue})
	img.CommitChanges()
	if _, ok := img.committed[Half][image.Pt(0, 0)]; ok {
		t.Error("stale half resolution chunk kept after commit")
	}
	if _, err := img.DrawCommittedChunkOn(image.Pt(0, 0), Half, half, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := half.Pix[:4]; !bytes.Equal(got, []byte{0, 0, 255, 255}) {
		t.Errorf("regenerated half pixel = %v, want [0 0 255 255]", got)
	}

	eighth := image.NewRGBA(image.Rect(0, 0, 1, 1))
	ok, _ = img.DrawCommittedChunkOn(image.Pt(1, 1), Eighth, eighth, image.Point{})
	if ok {
		t.Error("DrawCommittedChunkOn reported data for an empty chunk")
	}
}

// dotAt paints a single pixel.
func dotAt(p image.Point, c pixdoc.Color) Operation {
	return NewPixels([]image.Point{p}, c, Paint{})
}

func TestImageResizeCrops(t *testing.T) {
	img := newTestImage(image.Pt(10, 10))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 10, 10), Fill: pixdoc.Red})
	img.CommitChanges()

	if err := img.Resize(image.Pt(6, 6)); err != nil {
		t.Fatal(err)
	}
	if got := img.GetMostUpToDatePixel(image.Pt(7, 7)); got != pixdoc.Transparent {
		t.Errorf("pixel outside the queued size = %v, want transparent", got)
	}
	img.CommitChanges()
	if got := img.Size(); got != image.Pt(6, 6) {
		t.Fatalf("Size() = %v, want 6x6", got)
	}

	if err := img.Resize(image.Pt(10, 10)); err != nil {
		t.Fatal(err)
	}
	img.CommitChanges()
	if got := img.GetCommittedPixel(image.Pt(5, 5)); got != pixdoc.Red {
		t.Errorf("pixel kept by the crop = %v, want red", got)
	}
	if got := img.GetCommittedPixel(image.Pt(7, 7)); got != pixdoc.Transparent {
		t.Errorf("cropped pixel = %v, want transparent", got)
	}
	want := []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	if diff := cmp.Diff(want, img.FindCommittedChunks().Sorted()); diff != "" {
		t.Errorf("chunks after crop mismatch (-want +got):\n%s", diff)
	}

	if err := img.Resize(image.Pt(-1, 4)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(-1, 4) error = %v, want ErrInvalidSize", err)
	}
}

func TestImageClearDropsChunks(t *testing.T) {
	img := newTestImage(image.Pt(10, 10))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(1, 1, 9, 9), Fill: pixdoc.Red})
	img.CommitChanges()

	img.EnqueueOperation(Clear{})
	if diff := cmp.Diff(img.FindCommittedChunks().Sorted(), img.FindAffectedChunks().Sorted()); diff != "" {
		t.Errorf("Clear area differs from existing chunks:\n%s", diff)
	}
	img.CommitChanges()
	if got := len(img.FindCommittedChunks()); got != 0 {
		t.Errorf("chunks after clear = %d, want 0", got)
	}
}

func TestFindAffectedAreaFromOperation(t *testing.T) {
	img := newTestImage(image.Pt(16, 16))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 2, 2), Fill: pixdoc.Red})
	img.EnqueueOperation(Rectangle{Rect: image.Rect(12, 12, 20, 20), Fill: pixdoc.Red})

	if diff := cmp.Diff([]image.Point{{3, 3}}, img.FindAffectedArea(1).Chunks.Sorted()); diff != "" {
		t.Errorf("FindAffectedArea(1) mismatch (-want +got):\n%s", diff)
	}
	if got := img.FindAffectedArea(1).Bounds; got != image.Rect(12, 12, 16, 16) {
		t.Errorf("bounds clipped to the image = %v, want (12,12)-(16,16)", got)
	}
	if got := len(img.FindAllChunks()); got != 2 {
		t.Errorf("FindAllChunks() = %d chunks, want 2", got)
	}
}

func TestCloneFromCommittedCopiesOnWrite(t *testing.T) {
	img := newTestImage(image.Pt(8, 8))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 8, 8), Fill: pixdoc.Red})
	img.CommitChanges()

	clone := img.CloneFromCommitted()
	if !img.committed[Full][image.Pt(0, 0)].shared() {
		t.Fatal("clone does not share chunks")
	}

	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 2, 2), Fill: pixdoc.Blue})
	img.CommitChanges()

	if got := img.GetCommittedPixel(image.Pt(1, 1)); got != pixdoc.Blue {
		t.Errorf("original pixel = %v, want blue", got)
	}
	if got := clone.GetCommittedPixel(image.Pt(1, 1)); got != pixdoc.Red {
		t.Errorf("clone pixel = %v, want red", got)
	}
	if clone.committed[Full][image.Pt(0, 0)].shared() {
		t.Error("clone chunk still shared after the original was written")
	}
	clone.Dispose()
	if got := img.GetCommittedPixel(image.Pt(5, 5)); got != pixdoc.Red {
		t.Errorf("original after disposing the clone = %v, want red", got)
	}
}

func TestDisposedImage(t *testing.T) {
	img := newTestImage(image.Pt(8, 8))
	img.EnqueueOperation(Rectangle{Rect: image.Rect(0, 0, 8, 8), Fill: pixdoc.Red})
	img.CommitChanges()
	img.Dispose()
	img.Dispose()

	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if _, err := img.DrawCommittedChunkOn(image.Pt(0, 0), Full, dst, image.Point{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("DrawCommittedChunkOn error = %v, want ErrDisposed", err)
	}
	if _, err := img.DrawMostUpToDateChunkOn(image.Pt(0, 0), Half, dst, image.Point{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("DrawMostUpToDateChunkOn error = %v, want ErrDisposed", err)
	}
	if got := img.GetCommittedPixel(image.Pt(1, 1)); got != pixdoc.Transparent {
		t.Errorf("GetCommittedPixel = %v, want transparent", got)
	}

	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, ErrDisposed) {
			t.Errorf("EnqueueOperation panic = %v, want ErrDisposed", err)
		}
	}()
	img.EnqueueOperation(Clear{})
}

func TestChunkStorageRestoresExactPixels(t *testing.T) {
	img := newTestImage(image.Pt(10, 10))
	img.EnqueueOperation(NewEllipse(image.Rect(0, 0, 7, 9), pixdoc.Color{R: 12, G: 34, B: 56, A: 200}, pixdoc.Black, Paint{}))
	img.CommitChanges()
	before := mustSnapshot(t, img)

	op := Rectangle{Rect: image.Rect(2, 2, 10, 10), Fill: pixdoc.Green}
	img.EnqueueOperation(op)
	storage := NewChunkStorage(img, img.FindAffectedChunks())
	defer storage.Dispose()
	img.CommitChanges()

	if pix := storage.Pixels(image.Pt(2, 2)); pix != nil {
		t.Error("storage holds pixels for a chunk that did not exist")
	}
	if pix := storage.Pixels(image.Pt(0, 0)); pix == nil {
		t.Error("storage lost an existing chunk")
	}

	storage.ApplyChunksToImage(img)
	img.CommitChanges()
	if after := mustSnapshot(t, img); !bytes.Equal(before.Pix, after.Pix) {
		t.Error("restored pixels differ from the saved state")
	}
	if img.committed[Full][image.Pt(2, 2)] != nil {
		t.Error("chunk created by the change survived the restore")
	}
}

func TestImageAsImageImage(t *testing.T) {
	img := newTestImage(image.Pt(3, 2))
	img.EnqueueOperation(dotAt(image.Pt(2, 1), pixdoc.Green))
	img.CommitChanges()

	var _ image.Image = img
	if got := img.Bounds(); got != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds() = %v", got)
	}
	if got := pixdoc.FromColor(img.At(2, 1)); got != pixdoc.Green {
		t.Errorf("At(2, 1) = %v, want green", got)
	}
}
