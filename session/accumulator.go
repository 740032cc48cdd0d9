package session

import (
	"context"
	"errors"
	"sync"

	"github.com/gogpu/pixdoc/changes"
)

// ErrClosed is returned when actions are queued on a closed session.
var ErrClosed = errors.New("session: closed")

// Accumulator queues actions and drains them strictly in FIFO order. Only
// one caller drains at a time: actions added while a drain is running,
// including from within the drain itself, are picked up by that drain
// instead of starting a second one.
type Accumulator struct {
	process func(context.Context, []changes.Action) error

	mu        sync.Mutex
	queue     []changes.Action
	executing bool
	closed    bool
}

// NewAccumulator returns an accumulator handing each drained batch to
// process.
func NewAccumulator(process func(context.Context, []changes.Action) error) *Accumulator {
	return &Accumulator{process: process}
}

// Add queues actions and drains the queue unless a drain is already in
// progress. It returns the first error of the batches it drained itself.
func (a *Accumulator) Add(ctx context.Context, actions ...changes.Action) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.queue = append(a.queue, actions...)
	if a.executing {
		a.mu.Unlock()
		return nil
	}
	a.executing = true
	a.mu.Unlock()

	return a.drain(ctx)
}

func (a *Accumulator) drain(ctx context.Context) (err error) {
	idle := false
	defer func() {
		// process panicked
		if !idle {
			a.mu.Lock()
			a.executing = false
			a.mu.Unlock()
		}
	}()
	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			a.executing, idle = false, true
			a.mu.Unlock()
			return err
		}
		batch := a.queue
		a.queue = nil
		a.mu.Unlock()

		if perr := a.process(ctx, batch); perr != nil && err == nil {
			err = perr
		}
	}
}

// Executing reports whether a drain is in progress.
func (a *Accumulator) Executing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.executing
}

// Len returns the number of queued actions.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Close drops queued actions and rejects new ones.
func (a *Accumulator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.queue = nil
}
