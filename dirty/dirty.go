// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dirty tracks the invalid region of a pixel display surface:
// the single rectangle that must be repainted before the next present,
// plus the pixel scroll accumulated since the last completed frame.
//
// The region is kept as one union-merged rectangle rather than a list,
// so repeated invalidation is O(1) with bounded precision loss: the
// tracker may over-invalidate, never under-invalidate.
package dirty

import "image"

// Tracker accumulates invalidation for one display surface.
// All rectangles are in pixel space unless a method says otherwise;
// cell-space rectangles are inclusive of their Max cell.
type Tracker struct {

	// DisplaySize is the size of the display surface in pixels.
	// The invalid region is always clipped to it.
	DisplaySize image.Point

	// CellSize is the size of one character cell in pixels.
	// It must be positive before any cell-space operation is used.
	CellSize image.Point

	// invalid is the union of all invalidation since the last Reset.
	invalid image.Rectangle

	// used is true once anything has been invalidated.
	used bool

	// scroll is the pixel delta accumulated by InvalidateScroll
	// since the last Reset.
	scroll image.Point
}

// DisplayRect returns the origin-placed rectangle covering the display.
func (tr *Tracker) DisplayRect() image.Rectangle {
	return image.Rectangle{Max: tr.DisplaySize}
}

// Invalid returns the current invalid region and whether anything
// has been invalidated.
func (tr *Tracker) Invalid() (image.Rectangle, bool) {
	return tr.invalid, tr.used
}

// Scroll returns the accumulated pixel scroll delta.
func (tr *Tracker) Scroll() image.Point {
	return tr.scroll
}

// Reset clears the invalid region and the scroll accumulator,
// consuming the frame's invalidation state.
func (tr *Tracker) Reset() {
	tr.invalid = image.Rectangle{}
	tr.used = false
	tr.scroll = image.Point{}
}

// InvalidateCells adds the given cell-space rectangle, inclusive of its
// Max cell, to the invalid region.
func (tr *Tracker) InvalidateCells(region image.Rectangle) {
	tr.InvalidatePixels(ScaleByCell(region, tr.CellSize))
}

// InvalidatePixels unions the given pixel rectangle into the invalid
// region, clipped to the display bounds.
func (tr *Tracker) InvalidatePixels(pixels image.Rectangle) {
	if tr.used {
		tr.invalid = tr.invalid.Union(pixels)
	} else {
		tr.invalid = pixels
		tr.used = true
	}
	tr.invalid = tr.invalid.Intersect(tr.DisplayRect())
}

// InvalidateAll marks the entire display as invalid.
func (tr *Tracker) InvalidateAll() {
	tr.InvalidatePixels(tr.DisplayRect())
}

// InvalidateScroll shifts the existing invalid region by the given cell
// delta, accumulates the pixel delta, and invalidates the display area
// revealed by the scroll. A zero delta is a no-op.
//
// The revealed area is computed independently for the horizontal and
// vertical components. When both are nonzero the true revealed region is
// an L shape that a single rectangle subtraction cannot produce, so the
// corner is over-invalidated; callers must tolerate the looseness.
func (tr *Tracker) InvalidateScroll(delta image.Point) {
	if delta == (image.Point{}) {
		return
	}
	px := image.Point{X: delta.X * tr.CellSize.X, Y: delta.Y * tr.CellSize.Y}

	tr.offsetInvalid(px)
	tr.scroll = tr.scroll.Add(px)

	display := tr.DisplayRect()

	reveal := display.Add(image.Point{X: px.X}).Intersect(display)
	if r := Subtract(display, reveal); !r.Empty() {
		tr.InvalidatePixels(r)
	}

	reveal = display.Add(image.Point{Y: px.Y}).Intersect(display)
	if r := Subtract(display, reveal); !r.Empty() {
		tr.InvalidatePixels(r)
	}
}

// offsetInvalid shifts the existing invalid region by the given pixel
// delta and re-clips it to the display. A no-op when nothing is invalid.
func (tr *Tracker) offsetInvalid(delta image.Point) {
	if !tr.used {
		return
	}
	tr.invalid = tr.invalid.Add(delta).Intersect(tr.DisplayRect())
}

// DirtyRectInCells returns the invalid region converted to cell
// coordinates, inclusive of its Max cell: pixel edges are floored to
// cell indices and the exclusive bottom/right edges become inclusive
// by stepping back one cell.
func (tr *Tracker) DirtyRectInCells() image.Rectangle {
	r := image.Rectangle{
		Min: image.Point{X: tr.invalid.Min.X / tr.CellSize.X, Y: tr.invalid.Min.Y / tr.CellSize.Y},
		Max: image.Point{X: tr.invalid.Max.X / tr.CellSize.X, Y: tr.invalid.Max.Y / tr.CellSize.Y},
	}
	r.Max.X--
	r.Max.Y--
	return r
}
