// Package chunky implements ChunkyImage, a sparse multi-resolution raster
// stored as square chunks, together with the drawing Operations applied to
// it.
//
// # Transactions
//
// Edits are queued with EnqueueOperation and never touch committed pixels
// until CommitChanges applies the whole queue in order. CancelChanges drops
// the queue. Readers choose between the committed state
// (GetCommittedPixel, DrawCommittedChunkOn) and the most up-to-date state,
// which materializes queued operations for a single chunk on demand
// (GetMostUpToDatePixel, DrawMostUpToDateChunkOn).
//
// # Resolutions
//
// Operations only ever draw at Full resolution. Half, Quarter and Eighth
// chunks are box-downsampled from Full lazily, the first time they are read
// after the Full chunk changed.
//
// # Chunk grid
//
// A pixel (x, y) lives in chunk (floor(x/size), floor(y/size)). Every
// operation reports the exact set of chunks it writes to; the image uses
// that set for dirty tracking and undo snapshots.
package chunky
