package changes

import (
	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/document"
)

// packet is one undo entry: changes applied together, reverted together.
type packet []Change

func (p packet) dispose() {
	for _, c := range p {
		c.Dispose()
	}
}

// History holds the undo and redo stacks.
//
// Changes pushed while a packet is open join it; CloseTransaction starts a
// new entry for the next push. Pushing clears the redo stack.
type History struct {
	undo  []packet
	redo  []packet
	open  bool
	limit int
}

// NewHistory creates a history keeping at most limit undo entries.
// A limit <= 0 means unlimited.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int { return len(h.redo) }

// noop is implemented by changes that can end up restoring the value they
// started from once merged.
type noop interface {
	isNoop() bool
}

// Push records an applied change. If the open entry ends with a change
// that can absorb c, c is merged into it and disposed. A merged change that
// no longer changes anything is dropped.
func (h *History) Push(c Change) {
	h.clearRedo()
	if h.open && len(h.undo) > 0 {
		top := h.undo[len(h.undo)-1]
		last := top[len(top)-1]
		if m, ok := last.(Merger); ok && last.IsMergeableWith(c) {
			m.Merge(c)
			c.Dispose()
			if n, ok := last.(noop); ok && n.isNoop() {
				h.dropLast()
			}
			return
		}
		h.undo[len(h.undo)-1] = append(top, c)
		return
	}
	h.undo = append(h.undo, packet{c})
	h.open = true
	if h.limit > 0 && len(h.undo) > h.limit {
		evicted := h.undo[0]
		h.undo[0] = nil
		h.undo = h.undo[1:]
		evicted.dispose()
		pixdoc.Logger().Warn("changes: undo limit reached, dropped oldest entry", "limit", h.limit)
	}
}

// dropLast removes the last change of the open entry, and the entry itself
// once it is empty.
func (h *History) dropLast() {
	i := len(h.undo) - 1
	top := h.undo[i]
	top[len(top)-1].Dispose()
	top[len(top)-1] = nil
	if top = top[:len(top)-1]; len(top) > 0 {
		h.undo[i] = top
		return
	}
	h.undo[i] = nil
	h.undo = h.undo[:i]
	h.open = false
}

// CloseTransaction ends the open entry.
func (h *History) CloseTransaction() { h.open = false }

// Undo reverts the newest entry, newest change first.
func (h *History) Undo(doc *document.Document) []Info {
	h.open = false
	if len(h.undo) == 0 {
		return nil
	}
	p := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	var infos []Info
	for i := len(p) - 1; i >= 0; i-- {
		infos = appendInfo(infos, p[i].Revert(doc))
	}
	h.redo = append(h.redo, p)
	return infos
}

// Redo reapplies the newest undone entry.
func (h *History) Redo(doc *document.Document) []Info {
	h.open = false
	if len(h.redo) == 0 {
		return nil
	}
	p := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	var infos []Info
	for _, c := range p {
		info, _ := c.Apply(doc)
		infos = appendInfo(infos, info)
	}
	h.undo = append(h.undo, p)
	return infos
}

func (h *History) clearRedo() {
	for _, p := range h.redo {
		p.dispose()
	}
	clear(h.redo)
	h.redo = h.redo[:0]
}

// Dispose releases every change on both stacks.
func (h *History) Dispose() {
	for _, p := range h.undo {
		p.dispose()
	}
	h.undo = nil
	h.clearRedo()
	h.redo = nil
}
