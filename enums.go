// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

// CursorStyle selects the shape drawn by [Engine.PaintCursor].
type CursorStyle int32

const (
	// CursorFullBox fills the entire character cell.
	CursorFullBox CursorStyle = iota

	// CursorLegacy fills the bottom portion of the cell, sized by the
	// height percentage passed to PaintCursor.
	CursorLegacy

	// CursorVerticalBar fills the leftmost pixel column of the cell.
	CursorVerticalBar

	// CursorUnderscore fills the bottommost pixel row of the cell.
	CursorUnderscore

	// CursorEmptyBox outlines the cell without filling it.
	CursorEmptyBox
)

// GridLines is a bit set of cell edges drawn by
// [Engine.PaintBufferGridLines].
type GridLines int32

const (
	GridLinesTop GridLines = 1 << iota
	GridLinesLeft
	GridLinesBottom
	GridLinesRight

	GridLinesNone GridLines = 0
)

// Has reports whether all edges in the given flags are set.
func (gl GridLines) Has(flags GridLines) bool {
	return gl&flags == flags
}
