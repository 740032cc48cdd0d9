// Package pixdoc is the document engine of a pixel-art editor.
//
// # Overview
//
// pixdoc keeps a layered raster document that can be edited, previewed at
// several zoom resolutions, incrementally re-rendered and perfectly undone.
// It is headless: views, tools and file formats live elsewhere and talk to
// the engine through change records and viewport registrations.
//
// # Architecture
//
// The module is organized leaf-first:
//   - chunky: sparse multi-resolution tile store with queued/committed
//     transactions, and the drawing Operations that feed it
//   - document: the Layer/Folder structure tree, each Layer owning an image
//   - changes: reversible edits, undo/redo history and the action tracker
//   - graph: DAG of compositing nodes evaluated one chunk at a time
//   - render: incremental viewport rendering, full renders and previews
//   - session: one explicit object per open document owning the action queue
//   - config: TOML settings for sessions and the pixdoc command
//
// # Quick Start
//
//	s, err := session.Open(config.Default())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	create := changes.NewCreateMember(s.Document().Root.ID, 0, changes.LayerMember, "Sketch")
//	rect := changes.NewDrawRectangle(changes.LayerTarget(create.ID), image.Rect(4, 4, 6, 6),
//	    changes.ShapeStyle{Fill: pixdoc.Red})
//	if err := s.Apply(ctx, create, rect); err != nil {
//	    return err
//	}
//	err = s.Undo(ctx)
//
// # Coordinate System
//
// Pixel coordinates have their origin at the top-left corner, X grows to the
// right and Y grows down. Chunk coordinates are floor(pixel / chunkSize).
//
// # Logging
//
// The engine logs through log/slog and is silent by default; see SetLogger.
package pixdoc

// Version is the current version of the module.
const Version = "0.1.0"
