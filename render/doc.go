// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns a document into pixels.
//
// Rendering is layered:
//
//   - ChunkRenderer evaluates the document's node graph for one chunk at one
//     resolution. It rebuilds the graph after structural changes.
//   - DocumentRenderer composites every chunk of the canvas on a worker pool
//     for exports and thumbnails.
//   - SceneRenderer keeps viewports up to date: after each batch of changes
//     it re-renders only the visible chunks that changed and hands them to
//     the viewport's Invalidate callback.
//   - PreviewBatcher coalesces member thumbnail requests between flushes.
//
// # Key Principle
//
// A render pass treats the document as a read-only snapshot. Callers must
// not apply changes while a pass is running; the session enforces this by
// holding a read lock for every pass and the write lock while it drains
// its action queue.
//
// Images disposed while a pass is in flight render as transparent chunks.
package render
