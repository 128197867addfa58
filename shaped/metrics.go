// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaped

import (
	"image"

	"github.com/chewxy/math32"
)

// faceMetrics holds the design-unit measurements of a face that cell
// geometry is solved from.
type faceMetrics struct {

	// upem is the face's design units per em.
	upem float32

	// ascent and descent are design units, both positive.
	ascent  float32
	descent float32

	// spaceAdvance is the advance width of the space glyph in
	// design units.
	spaceAdvance float32
}

// cellMetrics is the solved monospace cell geometry for one em size.
type cellMetrics struct {

	// fontSize is the em size in pixels, back-solved so that the space
	// advance lands on an integer pixel width.
	fontSize float32

	// cell is the integer cell size in pixels.
	cell image.Point

	// baselineRatio is descent over units-per-em.
	baselineRatio float32

	// lineBaseline is the baseline's distance in pixels from the cell
	// top, with the glyph centered vertically in the integer cell.
	lineBaseline float32
}

// solveCellMetrics computes the monospace cell geometry for the given
// desired cell height. The requested height is treated as an em size
// estimate: the space advance it implies is rounded to a whole pixel
// and the em size is then re-derived from that width, so every glyph
// advance is an exact integer number of pixels.
func solveCellMetrics(heightPx float32, fm faceMetrics) cellMetrics {
	widthAdvance := fm.spaceAdvance / fm.upem
	widthExact := math32.Round(heightPx * widthAdvance)
	fontSize := widthExact / widthAdvance

	cell := image.Point{
		X: int(widthExact),
		Y: int(math32.Ceil(fontSize)),
	}

	ascentPx := fontSize * fm.ascent / fm.upem
	descentPx := fontSize * fm.descent / fm.upem

	return cellMetrics{
		fontSize:      fontSize,
		cell:          cell,
		baselineRatio: fm.descent / fm.upem,
		lineBaseline:  ascentPx + (float32(cell.Y)-(ascentPx+descentPx))/2,
	}
}
