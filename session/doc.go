// Package session ties a document to its undo history, renderers and
// observers.
//
// All edits go through a Session as changes.Actions. They are queued in an
// Accumulator and drained in FIFO order by whichever caller finds the queue
// idle, so the document has a single writer at any time. After each
// drained batch the session refreshes the viewports registered with its
// SceneRenderer and then hands the batch's infos to observers. Observers
// may queue further actions; those run after the current batch.
//
//	s := session.New(doc, session.Options{UndoLimit: 100})
//	defer s.Close()
//
//	create := changes.NewCreateMember(doc.Root.ID, 0, changes.LayerMember, "ink")
//	err := s.Apply(ctx, create)
package session
