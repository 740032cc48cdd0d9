package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/changes"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/config"
	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/render"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	doc := document.New(image.Pt(8, 8), chunky.WithChunkSize(4))
	s := New(doc, Options{UndoLimit: 10, Render: render.Config{Workers: 2}})
	t.Cleanup(s.Close)
	return s
}

// addLayer creates a layer at the top of the root folder.
func addLayer(t *testing.T, s *Session, name string) uuid.UUID {
	t.Helper()
	c := changes.NewCreateMember(s.Document().Root.ID, len(s.Document().Root.Children), changes.LayerMember, name)
	if err := s.Apply(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func fill(id uuid.UUID, r image.Rectangle, c pixdoc.Color) changes.Change {
	return changes.NewDrawRectangle(changes.LayerTarget(id), r, changes.ShapeStyle{Fill: c})
}

func pixel(t *testing.T, s *Session, x, y int) pixdoc.Color {
	t.Helper()
	img, err := s.Render(context.Background(), render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return pixdoc.FromColor(img.RGBAAt(x, y))
}

func kinds(infos []changes.Info) []changes.Kind {
	out := make([]changes.Kind, len(infos))
	for i, info := range infos {
		out[i] = info.Kind()
	}
	return out
}

func TestApplyNotifiesObservers(t *testing.T) {
	s := newSession(t)
	var got []changes.Kind
	s.Subscribe(func(infos []changes.Info) { got = append(got, kinds(infos)...) })

	id := addLayer(t, s, "layer")
	if err := s.Apply(context.Background(), fill(id, image.Rect(0, 0, 2, 2), pixdoc.Red)); err != nil {
		t.Fatal(err)
	}

	want := []changes.Kind{changes.KindMemberCreated, changes.KindLayerImageChanged}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("observed kinds mismatch (-want +got):\n%s", diff)
	}
	if c := pixel(t, s, 1, 1); c != pixdoc.Red {
		t.Errorf("pixel = %v, want red", c)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := newSession(t)
	calls := 0
	unsubscribe := s.Subscribe(func([]changes.Info) { calls++ })
	addLayer(t, s, "a")
	unsubscribe()
	addLayer(t, s, "b")
	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
}

func TestUndoRedo(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	id := addLayer(t, s, "layer")
	if err := s.Boundary(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(ctx, fill(id, image.Rect(0, 0, 8, 8), pixdoc.Blue)); err != nil {
		t.Fatal(err)
	}

	if err := s.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if c := pixel(t, s, 3, 3); c != pixdoc.Transparent {
		t.Errorf("after undo pixel = %v, want transparent", c)
	}
	if !s.CanUndo() || !s.CanRedo() {
		t.Errorf("CanUndo() = %v, CanRedo() = %v, want both", s.CanUndo(), s.CanRedo())
	}

	if err := s.Redo(ctx); err != nil {
		t.Fatal(err)
	}
	if c := pixel(t, s, 3, 3); c != pixdoc.Blue {
		t.Errorf("after redo pixel = %v, want blue", c)
	}
	if s.CanRedo() {
		t.Error("CanRedo() after redo = true")
	}
}

func TestInteractiveChange(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	id := addLayer(t, s, "layer")
	s.Boundary(ctx)

	start := func() changes.UpdateableChange {
		return changes.NewDrawRectangle(changes.LayerTarget(id), image.Rect(0, 0, 1, 1), changes.ShapeStyle{Fill: pixdoc.Green})
	}
	grow := func(c changes.UpdateableChange) {
		c.(*changes.DrawRectangle).Update(image.Rect(0, 0, 6, 6))
	}

	t.Run("cancel", func(t *testing.T) {
		if err := s.StartOrUpdate(ctx, start, grow); err != nil {
			t.Fatal(err)
		}
		if err := s.StartOrUpdate(ctx, start, grow); err != nil {
			t.Fatal(err)
		}
		if err := s.Cancel(ctx); err != nil {
			t.Fatal(err)
		}
		if c := pixel(t, s, 0, 0); c != pixdoc.Transparent {
			t.Errorf("cancelled change left pixel %v", c)
		}
	})

	t.Run("end", func(t *testing.T) {
		before := s.tracker.History().UndoCount()
		s.StartOrUpdate(ctx, start, grow)
		s.StartOrUpdate(ctx, start, grow)
		if err := s.End(ctx); err != nil {
			t.Fatal(err)
		}
		if c := pixel(t, s, 5, 5); c != pixdoc.Green {
			t.Errorf("pixel = %v, want green", c)
		}
		if got := s.tracker.History().UndoCount(); got != before+1 {
			t.Errorf("UndoCount() = %d, want %d", got, before+1)
		}
	})
}

func TestActionsFromObserverRunInOrder(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	id := addLayer(t, s, "layer")

	var log []changes.Kind
	nested := true
	s.Subscribe(func(infos []changes.Info) {
		log = append(log, kinds(infos)...)
		if nested {
			nested = false
			// queued behind the running batch
			if err := s.Apply(ctx, changes.NewRenameMember(id, "renamed")); err != nil {
				t.Errorf("nested Apply() error = %v", err)
			}
			log = append(log, changes.KindSelectionChanged)
		}
	})

	if err := s.Apply(ctx, changes.NewSetOpacity(id, 0.5)); err != nil {
		t.Fatal(err)
	}
	want := []changes.Kind{changes.KindOpacityChanged, changes.KindSelectionChanged, changes.KindNameChanged}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := s.Document().MustFindMember(id).Base().Name; got != "renamed" {
		t.Errorf("Name = %q, want renamed", got)
	}
}

func TestViewportFollowsChanges(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	id := addLayer(t, s, "layer")

	var mu sync.Mutex
	var updates []render.ViewportUpdate
	_, err := s.Renderer().Scene.AddViewport(ctx, render.ViewportInfo{
		Rect: image.Rect(0, 0, 4, 4),
		Invalidate: func(u render.ViewportUpdate) {
			mu.Lock()
			defer mu.Unlock()
			updates = append(updates, u)
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// outside the viewport
	if err := s.Apply(ctx, fill(id, image.Rect(5, 5, 7, 7), pixdoc.Red)); err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}

	if err := s.Apply(ctx, fill(id, image.Rect(0, 0, 2, 2), pixdoc.Red)); err != nil {
		t.Fatal(err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	img := updates[1].Chunks[image.Pt(0, 0)]
	if img == nil || img.RGBAAt(0, 0) != pixdoc.Red.Premultiplied() {
		t.Errorf("viewport chunk not updated")
	}
}

func TestThumbnail(t *testing.T) {
	s := newSession(t)
	img, err := s.Thumbnail(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect != image.Rect(0, 0, 4, 4) {
		t.Errorf("bounds = %v, want 4x4", img.Rect)
	}
}

func TestClose(t *testing.T) {
	s := newSession(t)
	id := addLayer(t, s, "layer")
	layer := s.Document().MustFindLayer(id)

	s.Close()
	s.Close()
	if err := s.Undo(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Undo() after Close error = %v, want %v", err, ErrClosed)
	}
	if !layer.Image.IsDisposed() {
		t.Error("layer image not disposed")
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Default()
	cfg.Document = config.Document{Width: 16, Height: 8}
	cfg.ChunkSize = 8
	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got := s.Document().Size(); got != image.Pt(16, 8) {
		t.Errorf("Size() = %v, want 16x8", got)
	}
	if got := s.Document().ChunkSize(); got != 8 {
		t.Errorf("ChunkSize() = %d, want 8", got)
	}

	cfg.ChunkSize = 10
	if _, err := Open(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Open() error = %v, want %v", err, config.ErrInvalid)
	}
}

func TestAccumulatorSingleDrainer(t *testing.T) {
	var inFlight, maxInFlight, processed atomic.Int32
	acc := NewAccumulator(func(_ context.Context, batch []changes.Action) error {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		processed.Add(int32(len(batch)))
		inFlight.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				acc.Add(context.Background(), changes.ChangeBoundary{})
			}
		}()
	}
	wg.Wait()

	if got := processed.Load(); got != 160 {
		t.Errorf("processed %d actions, want 160", got)
	}
	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("%d batches ran concurrently, want 1", got)
	}
	if acc.Executing() || acc.Len() != 0 {
		t.Errorf("Executing() = %v, Len() = %d after drain", acc.Executing(), acc.Len())
	}
}

func TestAccumulatorReportsFirstError(t *testing.T) {
	errFirst := errors.New("first")
	calls := 0
	var acc *Accumulator
	acc = NewAccumulator(func(ctx context.Context, _ []changes.Action) error {
		calls++
		if calls == 1 {
			acc.Add(ctx, changes.Undo{})
			return errFirst
		}
		return errors.New("second")
	})
	if err := acc.Add(context.Background(), changes.Redo{}); !errors.Is(err, errFirst) {
		t.Errorf("Add() error = %v, want %v", err, errFirst)
	}
	if calls != 2 {
		t.Errorf("process called %d times, want 2", calls)
	}
}

func TestSessionUsableAfterLifecycleViolation(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	id := addLayer(t, s, "layer")
	if err := s.Boundary(ctx); err != nil {
		t.Fatal(err)
	}
	c := fill(id, image.Rect(0, 0, 8, 8), pixdoc.Blue)
	if err := s.Apply(ctx, c); err != nil {
		t.Fatal(err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("applying a change twice did not panic")
			}
		}()
		_ = s.Apply(ctx, c)
	}()

	done := make(chan error, 1)
	go func() {
		if !s.CanUndo() {
			done <- errors.New("CanUndo() = false")
			return
		}
		if err := s.Undo(ctx); err != nil {
			done <- err
			return
		}
		s.Close()
		done <- nil
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session blocked after a panicking change")
	}
	if !errors.Is(s.Undo(ctx), ErrClosed) {
		t.Error("Undo() after Close did not report ErrClosed")
	}
}
