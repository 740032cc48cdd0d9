// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrUnknownViewport is returned when a viewport id is not registered.
	ErrUnknownViewport = errors.New("render: unknown viewport")

	// ErrInvalidSize is returned for a non-positive thumbnail or preview
	// size.
	ErrInvalidSize = errors.New("render: invalid size")

	// ErrClosed is returned by renderers used after Close.
	ErrClosed = errors.New("render: renderer is closed")
)
