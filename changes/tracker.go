package changes

import (
	"fmt"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/document"
)

// Tracker applies actions to a document and records the resulting changes
// in its History. It is not safe for concurrent use; the session drains
// actions from a single goroutine.
type Tracker struct {
	doc     *document.Document
	history *History
	active  UpdateableChange
}

// NewTracker creates a tracker for doc with the given undo limit.
func NewTracker(doc *document.Document, undoLimit int) *Tracker {
	return &Tracker{doc: doc, history: NewHistory(undoLimit)}
}

// Document returns the tracked document.
func (t *Tracker) Document() *document.Document { return t.doc }

// History returns the undo history.
func (t *Tracker) History() *History { return t.history }

// Active returns the UpdateableChange in progress, or nil.
func (t *Tracker) Active() UpdateableChange { return t.active }

// Process runs actions in order and returns the infos they produced.
func (t *Tracker) Process(actions ...Action) []Info {
	var infos []Info
	for _, a := range actions {
		infos = append(infos, t.process(a)...)
	}
	return infos
}

func (t *Tracker) process(a Action) []Info {
	switch a := a.(type) {
	case MakeChange:
		infos := t.endActive()
		return append(infos, t.make(a.Change)...)
	case StartOrUpdate:
		return t.startOrUpdate(a)
	case EndChange:
		return t.endActive()
	case ForceStop:
		return t.forceStop()
	case ChangeBoundary:
		t.history.CloseTransaction()
		return nil
	case Undo:
		infos := t.endActive()
		return append(infos, t.history.Undo(t.doc)...)
	case Redo:
		infos := t.endActive()
		return append(infos, t.history.Redo(t.doc)...)
	default:
		panic(fmt.Sprintf("changes: unknown action %T", a))
	}
}

func (t *Tracker) make(c Change) []Info {
	if !c.Initialize(t.doc) {
		pixdoc.Logger().Debug("changes: change skipped", "change", fmt.Sprintf("%T", c))
		c.Dispose()
		return nil
	}
	return t.apply(c)
}

func (t *Tracker) apply(c Change) []Info {
	info, ignoreInUndo := c.Apply(t.doc)
	if ignoreInUndo {
		c.Dispose()
	} else {
		t.history.Push(c)
	}
	return appendInfo(nil, info)
}

func (t *Tracker) startOrUpdate(a StartOrUpdate) []Info {
	if t.active == nil {
		if a.New == nil {
			return nil
		}
		c := a.New()
		if !c.Initialize(t.doc) {
			c.Dispose()
			return nil
		}
		t.active = c
	} else if a.Update != nil {
		a.Update(t.active)
	}
	return appendInfo(nil, t.active.ApplyTemporarily(t.doc))
}

func (t *Tracker) endActive() []Info {
	if t.active == nil {
		return nil
	}
	c := t.active
	t.active = nil
	return t.apply(c)
}

func (t *Tracker) forceStop() []Info {
	if t.active == nil {
		return nil
	}
	c := t.active
	t.active = nil
	info := c.Discard(t.doc)
	c.Dispose()
	return appendInfo(nil, info)
}

// Dispose discards the active change and releases the history.
func (t *Tracker) Dispose() {
	t.forceStop()
	t.history.Dispose()
}
