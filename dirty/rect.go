// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dirty

import "image"

// ScaleByCell converts a cell-space rectangle, inclusive of its Max
// cell, to the pixel-space rectangle covering those cells.
func ScaleByCell(region image.Rectangle, cell image.Point) image.Rectangle {
	r := image.Rectangle{
		Min: image.Point{X: region.Min.X * cell.X, Y: region.Min.Y * cell.Y},
		Max: image.Point{X: region.Max.X * cell.X, Y: region.Max.Y * cell.Y},
	}
	// The input Max cell is included, so cover it too.
	r.Max.X += cell.X
	r.Max.Y += cell.Y
	return r
}

// Subtract returns a minus b when the result is itself a rectangle:
// the intersection must span a's full width or full height and touch
// one of its edges. Otherwise a is returned unchanged. An empty
// rectangle results when b covers a entirely.
func Subtract(a, b image.Rectangle) image.Rectangle {
	is := a.Intersect(b)
	if is.Empty() {
		return a
	}
	if is == a {
		return image.Rectangle{}
	}
	if is.Min.X <= a.Min.X && is.Max.X >= a.Max.X {
		switch {
		case is.Min.Y <= a.Min.Y:
			return image.Rect(a.Min.X, is.Max.Y, a.Max.X, a.Max.Y)
		case is.Max.Y >= a.Max.Y:
			return image.Rect(a.Min.X, a.Min.Y, a.Max.X, is.Min.Y)
		}
	}
	if is.Min.Y <= a.Min.Y && is.Max.Y >= a.Max.Y {
		switch {
		case is.Min.X <= a.Min.X:
			return image.Rect(is.Max.X, a.Min.Y, a.Max.X, a.Max.Y)
		case is.Max.X >= a.Max.X:
			return image.Rect(a.Min.X, a.Min.Y, is.Min.X, a.Max.Y)
		}
	}
	return a
}
