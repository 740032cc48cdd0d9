package chunky

import "errors"

var (
	// ErrDisposed is returned by render-path reads of a disposed image.
	// Mutating a disposed image panics with an error wrapping it.
	ErrDisposed = errors.New("chunky: image is disposed")

	// ErrInvalidSize is returned when an image or chunk size is not positive.
	ErrInvalidSize = errors.New("chunky: invalid size")
)
