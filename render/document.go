// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/internal/parallel"
)

// Options configures a full document render.
type Options struct {
	Resolution chunky.ChunkResolution
	Frame      int
	Latest     bool

	// Members restricts the render to these members. Empty renders all.
	Members []uuid.UUID
}

// DocumentRenderer renders whole documents, one worker job per chunk.
type DocumentRenderer struct {
	chunks *ChunkRenderer
	pool   *parallel.WorkerPool
}

// Render composites every chunk of the canvas into one image. At lower
// resolutions the image is scaled down accordingly, rounding up.
func (r *DocumentRenderer) Render(ctx context.Context, opts Options) (*image.RGBA, error) {
	doc := r.chunks.Document()
	size, cs := doc.Size(), doc.ChunkSize()
	px := opts.Resolution.PixelSize(cs)
	shift := uint(opts.Resolution)
	dst := image.NewRGBA(image.Rect(0, 0, ceilShift(size.X, shift), ceilShift(size.Y, shift)))

	p, err := r.chunks.Plan(opts.Members)
	if err != nil {
		return nil, err
	}

	positions := chunky.ChunksInSize(size, cs).Sorted()
	jobs := make([]parallel.Job, len(positions))
	for i, pos := range positions {
		jobs[i] = func(context.Context) error {
			res, err := p.Evaluate(r.chunks.context(ChunkRequest{
				Chunk:      pos,
				Resolution: opts.Resolution,
				Frame:      opts.Frame,
				Latest:     opts.Latest,
			}))
			if err != nil {
				return fmt.Errorf("render chunk %v: %w", pos, err)
			}
			if !res.Empty {
				at := pos.Mul(px)
				// chunks cover disjoint parts of dst
				draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(image.Pt(px, px))}, res.Image, image.Point{}, draw.Src)
			}
			return nil
		}
	}
	if err := run(ctx, r.pool, jobs); err != nil {
		return nil, err
	}
	pixdoc.Logger().Debug("render: document rendered", "chunks", len(positions), "resolution", opts.Resolution)
	return dst, nil
}

// RenderThumbnail renders the document and scales it to fit a
// maxSize x maxSize box, keeping the aspect ratio.
func (r *DocumentRenderer) RenderThumbnail(ctx context.Context, maxSize int, opts Options) (*image.RGBA, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, maxSize)
	}
	full, err := r.Render(ctx, opts)
	if err != nil {
		return nil, err
	}
	return fit(full, maxSize), nil
}

// fit scales src to fit a size x size box. Pixel art is enlarged with
// nearest neighbour and reduced bilinearly.
func fit(src *image.RGBA, size int) *image.RGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	tw, th := size, size
	if w > h {
		th = max(1, h*size/w)
	} else {
		tw = max(1, w*size/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	var scaler draw.Scaler = draw.ApproxBiLinear
	if tw >= w {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

func ceilShift(v int, shift uint) int {
	return (v + (1 << shift) - 1) >> shift
}
