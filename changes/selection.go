package changes

import (
	"image"

	"github.com/gogpu/pixdoc/document"
)

// SetSelection replaces the document selection. Consecutive selection
// changes merge.
type SetSelection struct {
	lifecycle

	Selection image.Rectangle
	old       image.Rectangle
}

// NewSetSelection returns a change selecting r. An empty r deselects.
func NewSetSelection(r image.Rectangle) *SetSelection {
	return &SetSelection{Selection: r.Canon()}
}

func (c *SetSelection) Initialize(doc *document.Document) bool {
	c.initialize()
	c.Selection = c.Selection.Intersect(image.Rectangle{Max: doc.Size()})
	c.old = doc.Selection
	return true
}

func (c *SetSelection) Apply(doc *document.Document) (Info, bool) {
	c.apply()
	if c.Selection == c.old {
		return nil, true
	}
	doc.Selection = c.Selection
	return SelectionChanged{Selection: c.Selection}, false
}

func (c *SetSelection) Revert(doc *document.Document) Info {
	c.revert()
	doc.Selection = c.old
	return SelectionChanged{Selection: c.old}
}

func (c *SetSelection) IsMergeableWith(next Change) bool {
	_, ok := next.(*SetSelection)
	return ok
}

func (c *SetSelection) Merge(next Change) {
	c.Selection = next.(*SetSelection).Selection
}

func (c *SetSelection) Dispose() { c.dispose() }
