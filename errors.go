// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import "errors"

// The error taxonomy shared by all engines. Engines wrap these with
// context; callers test with [errors.Is].
var (
	// ErrInvalidState indicates an operation was called in the wrong
	// lifecycle phase: enabling an enabled engine, ending a paint that
	// was never started, and so on.
	ErrInvalidState = errors.New("render: invalid state")

	// ErrNoTarget indicates an operation that needs a display target
	// was called before one was bound.
	ErrNoTarget = errors.New("render: no display target")

	// ErrDevice indicates a graphics API failure during resource
	// creation, drawing, or presentation.
	ErrDevice = errors.New("render: device error")

	// ErrFontNotFound indicates the requested font family is not in
	// the system font collection. It is recoverable: callers supply a
	// fallback family and retry.
	ErrFontNotFound = errors.New("render: font not found")

	// ErrNotImplemented indicates an enumerator (such as a cursor
	// style) the engine does not recognize.
	ErrNotImplemented = errors.New("render: not implemented")
)
