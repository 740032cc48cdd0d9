// Package changes implements reversible document edits and the undo
// history built from them.
//
// A Change is single-use: it is initialized once, then applied and
// reverted alternately. Lifecycle violations (applying twice, reverting
// before applying, initializing twice) are programmer errors and panic
// with an error wrapping ErrLifecycle.
//
// UpdateableChanges back continuous interactions such as dragging a shape
// or an opacity slider. They are previewed with ApplyTemporarily any number
// of times and produce a single undo entry when applied.
//
// The Tracker turns a stream of Actions into applied changes, undo packets
// and Info records for observers.
package changes
