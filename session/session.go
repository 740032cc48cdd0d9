package session

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/changes"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/config"
	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/render"
)

// Observer receives the infos of every drained batch that changed
// something.
type Observer func([]changes.Info)

// Options configures a Session.
type Options struct {
	// UndoLimit bounds the undo history. <= 0 means unlimited.
	UndoLimit int
	Render    render.Config
}

// Session owns one open document: its change tracker, action queue,
// renderers and observers.
//
// Document mutation is single-writer. Actions are drained in FIFO order
// under the write lock; renders started through the session hold the read
// lock, so a render pass never sees a half-applied batch.
type Session struct {
	doc      *document.Document
	tracker  *changes.Tracker
	renderer *render.Renderer
	acc      *Accumulator

	// rw guards the document against renders during a drain.
	rw sync.RWMutex

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
	closed    bool
}

// New opens a session on doc. The session takes ownership of doc and
// disposes it on Close.
func New(doc *document.Document, opts Options) *Session {
	s := &Session{
		doc:       doc,
		tracker:   changes.NewTracker(doc, opts.UndoLimit),
		renderer:  render.New(doc, opts.Render),
		observers: make(map[int]Observer),
	}
	s.acc = NewAccumulator(s.process)
	pixdoc.Logger().Info("session: opened", "size", doc.Size(), "chunkSize", doc.ChunkSize(), "workers", s.renderer.Workers())
	return s
}

// Open creates an empty document as described by cfg and opens a session
// on it.
func Open(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	doc := document.New(image.Pt(cfg.Document.Width, cfg.Document.Height), chunky.WithChunkSize(cfg.ChunkSize))
	return New(doc, Options{
		UndoLimit: cfg.UndoLimit,
		Render: render.Config{
			Workers:       cfg.Render.Workers,
			CacheCapacity: cfg.Render.CacheCapacity,
		},
	}), nil
}

// Document returns the session's document. Callers must not mutate it
// directly; queue changes instead.
func (s *Session) Document() *document.Document { return s.doc }

// Renderer returns the session's renderers, for registering viewports.
func (s *Session) Renderer() *render.Renderer { return s.renderer }

// Subscribe registers an observer and returns a function removing it.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Do queues actions. They have been applied when Do returns, unless Do was
// called while the queue is being drained, e.g. from an observer; then the
// running drain applies them after the current batch.
func (s *Session) Do(ctx context.Context, actions ...changes.Action) error {
	return s.acc.Add(ctx, actions...)
}

// Apply queues a MakeChange action for each change.
func (s *Session) Apply(ctx context.Context, cs ...changes.Change) error {
	actions := make([]changes.Action, len(cs))
	for i, c := range cs {
		actions[i] = changes.MakeChange{Change: c}
	}
	return s.Do(ctx, actions...)
}

// StartOrUpdate starts an updateable change with newChange, or adjusts the
// one in progress with update.
func (s *Session) StartOrUpdate(ctx context.Context, newChange func() changes.UpdateableChange, update func(changes.UpdateableChange)) error {
	return s.Do(ctx, changes.StartOrUpdate{New: newChange, Update: update})
}

// End applies the updateable change in progress.
func (s *Session) End(ctx context.Context) error { return s.Do(ctx, changes.EndChange{}) }

// Cancel discards the updateable change in progress.
func (s *Session) Cancel(ctx context.Context) error { return s.Do(ctx, changes.ForceStop{}) }

// Boundary closes the current undo entry.
func (s *Session) Boundary(ctx context.Context) error { return s.Do(ctx, changes.ChangeBoundary{}) }

// Undo reverts the newest undo entry.
func (s *Session) Undo(ctx context.Context) error { return s.Do(ctx, changes.Undo{}) }

// Redo reapplies the newest undone entry.
func (s *Session) Redo(ctx context.Context) error { return s.Do(ctx, changes.Redo{}) }

// CanUndo reports whether there is anything to undo.
func (s *Session) CanUndo() bool {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.tracker.History().UndoCount() > 0
}

// CanRedo reports whether there is anything to redo.
func (s *Session) CanRedo() bool {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.tracker.History().RedoCount() > 0
}

func (s *Session) process(ctx context.Context, batch []changes.Action) error {
	infos := s.processLocked(batch)

	pixdoc.Logger().Debug("session: batch processed", "actions", len(batch), "infos", len(infos))
	if len(infos) == 0 {
		return nil
	}

	s.rw.RLock()
	err := s.renderer.Scene.Update(ctx, infos)
	s.rw.RUnlock()

	s.notify(infos)
	if err != nil {
		return fmt.Errorf("session: update viewports: %w", err)
	}
	return nil
}

// processLocked runs the batch under the write lock. A lifecycle violation
// panics inside the tracker; the lock must not outlive it.
func (s *Session) processLocked(batch []changes.Action) []changes.Info {
	s.rw.Lock()
	defer s.rw.Unlock()
	return s.tracker.Process(batch...)
}

func (s *Session) notify(infos []changes.Info) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	// subscription order
	slices.Sort(ids)
	for _, id := range ids {
		s.mu.Lock()
		o, ok := s.observers[id]
		s.mu.Unlock()
		if ok {
			o(infos)
		}
	}
}

// Render renders the committed document.
func (s *Session) Render(ctx context.Context, opts render.Options) (*image.RGBA, error) {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.renderer.Document.Render(ctx, opts)
}

// Thumbnail renders the committed document scaled to fit maxSize.
func (s *Session) Thumbnail(ctx context.Context, maxSize int) (*image.RGBA, error) {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.renderer.Document.RenderThumbnail(ctx, maxSize, render.Options{})
}

// FlushPreviews renders the previews requested since the last flush.
func (s *Session) FlushPreviews(ctx context.Context) (int, error) {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.renderer.Previews.Flush(ctx)
}

// FlushDelayed brings delayed viewports up to date.
func (s *Session) FlushDelayed(ctx context.Context) error {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.renderer.Scene.FlushDelayed(ctx)
}

// Close rejects further actions, discards any change in progress and
// releases the history, the document and the render workers. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.observers = make(map[int]Observer)
	s.mu.Unlock()

	s.acc.Close()
	s.rw.Lock()
	s.tracker.Dispose()
	s.doc.Dispose()
	s.rw.Unlock()
	s.renderer.Close()
	pixdoc.Logger().Info("session: closed")
}
