// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/pixdoc/changes"
	"github.com/gogpu/pixdoc/chunky"
)

// maxDirtyChunks is the threshold after which damage switches to a full
// redraw.
const maxDirtyChunks = 1024

// Damage accumulates the chunks that need re-rendering.
type Damage struct {
	chunks chunky.ChunkSet
	full   bool
}

// Invalidate marks chunks as needing a redraw. Once more than
// maxDirtyChunks accumulate, the damage becomes a full redraw.
func (d *Damage) Invalidate(chunks chunky.ChunkSet) {
	if d.full || len(chunks) == 0 {
		return
	}
	if d.chunks == nil {
		d.chunks = chunky.NewChunkSet()
	}
	d.chunks.Union(chunks)
	if len(d.chunks) > maxDirtyChunks {
		d.InvalidateAll()
	}
}

// InvalidateAll marks everything as needing a redraw.
func (d *Damage) InvalidateAll() {
	d.full = true
	d.chunks = nil
}

// NeedsFullRedraw reports whether everything must be redrawn.
func (d *Damage) NeedsFullRedraw() bool { return d.full }

// Chunks returns the damaged chunks. It is nil for a full redraw.
func (d *Damage) Chunks() chunky.ChunkSet { return d.chunks }

// IsEmpty reports whether nothing needs a redraw.
func (d *Damage) IsEmpty() bool { return !d.full && len(d.chunks) == 0 }

// Within returns the damaged chunks among visible.
func (d *Damage) Within(visible chunky.ChunkSet) chunky.ChunkSet {
	if d.full {
		return visible.Clone()
	}
	return visible.Intersection(d.chunks)
}

// Reset clears the damage.
func (d *Damage) Reset() { *d = Damage{} }

// DamageFrom returns the damage described by infos. Pixel edits damage
// their chunks; property and structure changes damage everything; names
// and selections damage nothing. It panics on a kind it does not know.
func DamageFrom(infos []changes.Info) Damage {
	var d Damage
	for _, info := range infos {
		switch k := info.Kind(); k {
		case changes.KindLayerImageChanged:
			d.Invalidate(info.(changes.LayerImageChanged).Chunks)
		case changes.KindMaskImageChanged:
			d.Invalidate(info.(changes.MaskImageChanged).Chunks)
		case changes.KindNameChanged, changes.KindSelectionChanged:
		case changes.KindVisibilityChanged, changes.KindOpacityChanged, changes.KindBlendModeChanged,
			changes.KindClipToBelowChanged, changes.KindMaskChanged, changes.KindMemberCreated,
			changes.KindMemberDeleted, changes.KindMemberMoved, changes.KindSizeChanged:
			d.InvalidateAll()
		default:
			panic(fmt.Sprintf("render: no damage rule for %v", k))
		}
	}
	return d
}
