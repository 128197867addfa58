// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render defines the contract for text-grid rendering engines:
// components that turn a rectangular grid of character cells into pixels
// (or bytes) on a display target, tracking which parts of the target
// changed so that only those are re-presented.
//
// The concrete engines live in subpackages: gpurender draws with WebGPU
// onto a window surface, conrender drives a low-level console display
// device, and vtrender emits a terminal byte stream. Callers hold an
// [Engine] and never depend on the concrete variant.
package render

import (
	"image"
	"image/color"
)

// Engine is the call surface shared by all rendering backends.
//
// The calling model is single threaded and cooperative: the owner of the
// character grid invalidates regions as the grid changes, brackets a frame
// with StartPaint/EndPaint, issues paint calls in between, and later calls
// Present to push the finished frame to the display. EndPaint is cheap and
// only captures state; Present does the expensive target access and is safe
// to call outside whatever lock protects the grid model.
//
// Rectangles in cell space are inclusive of their Max cell (the rectangle
// (2,3)-(4,5) covers cells 2..4 by 3..5); rectangles in pixel space follow
// the usual exclusive-Max convention of [image.Rectangle].
type Engine interface {

	// Enable allows painting and presentation to occur.
	// Enabling an already enabled engine is an invalid-state error.
	Enable() error

	// Disable prevents painting and presentation, releasing any
	// display resources held. Disabling an already disabled engine
	// is an invalid-state error.
	Disable() error

	// Invalidate adds the given cell-space rectangle to the dirty region.
	Invalidate(region image.Rectangle) error

	// InvalidateCursor invalidates the single cell at the given position.
	InvalidateCursor(pos image.Point) error

	// InvalidateSystem adds the given pixel-space rectangle to the
	// dirty region directly, without cell scaling.
	InvalidateSystem(pixels image.Rectangle) error

	// InvalidateSelection invalidates each of the given cell-space
	// rectangles, typically the rows of a selection area.
	InvalidateSelection(regions []image.Rectangle) error

	// InvalidateScroll shifts the existing dirty region by the given
	// cell delta (positive Y is down) and invalidates the area of the
	// display revealed by the scroll. A zero delta is a no-op.
	InvalidateScroll(delta image.Point) error

	// InvalidateAll marks the entire display as dirty.
	InvalidateAll() error

	// StartPaint prepares the target for drawing and begins a draw batch.
	// It is an invalid-state error to start a paint while painting, and a
	// no-target error if no display target is bound.
	StartPaint() error

	// EndPaint ends the draw batch and captures the state needed for
	// presentation. It is an invalid-state error when not painting.
	EndPaint() error

	// Present pushes the completed frame to the display target.
	// It is a no-op when no frame is ready.
	Present() error

	// PaintBackground fills the dirty region with the background brush.
	PaintBackground() error

	// PaintBufferLine draws one line of text at the given cell position.
	// widths holds the expected cell width of each rune; trimLeft asks for
	// the left half of a leading double-wide rune to be clipped, and
	// wrapped indicates the line continued from the previous row.
	PaintBufferLine(line []rune, widths []int, pos image.Point, trimLeft, wrapped bool) error

	// PaintBufferGridLines draws the requested cell-edge lines in the
	// given color for length cells, starting at the given cell and
	// proceeding rightward.
	PaintBufferGridLines(lines GridLines, clr color.RGBA, length int, pos image.Point) error

	// PaintSelection draws a translucent selection overlay over the
	// given cell-space rectangle.
	PaintSelection(region image.Rectangle) error

	// PaintCursor draws the cursor at the given cell. heightPercent
	// applies to [CursorLegacy] and is clamped to the engine's allowed
	// range; doubleWidth widens the cursor to two cells. A non-nil clr
	// overrides the default cursor color for this call only.
	PaintCursor(pos image.Point, heightPercent int, doubleWidth bool, style CursorStyle, clr *color.RGBA) error

	// UpdateDrawingBrushes sets the foreground and background brush
	// colors used by subsequent paint calls.
	UpdateDrawingBrushes(fg, bg color.RGBA) error

	// UpdateFont resolves the desired font and makes it the engine's
	// current font, returning what was actually chosen.
	UpdateFont(desired FontDesired) (FontInfo, error)

	// UpdateTitle notifies the display target that the title changed.
	UpdateTitle(title string) error

	// GetDirtyRectInChars returns the current dirty region in cell
	// coordinates, inclusive of its Max cell.
	GetDirtyRectInChars() image.Rectangle

	// GetFontSize returns the pixel size of one character cell.
	GetFontSize() image.Point

	// IsGlyphWideByFont reports whether the current font renders the
	// given rune as a double-wide glyph.
	IsGlyphWideByFont(r rune) bool
}

// Target is a display target an engine draws to. It is deliberately
// minimal: backends that need more (a window surface, a device handle)
// declare their own extension of it.
type Target interface {

	// ClientSize returns the current size in pixels of the drawable
	// client area of the target.
	ClientSize() image.Point

	// PostTitleChange notifies the target that the owning application
	// changed its title.
	PostTitleChange()
}
