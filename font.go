// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import "image"

// FontDesired describes the font a caller wants an engine to use.
type FontDesired struct {

	// Family is the font family name to look for.
	Family string

	// Size is the desired character cell size in pixels.
	// Only the height (Y) is honored by engines that derive the
	// width from the font's own advance metrics.
	Size image.Point
}

// FontInfo describes the font an engine actually chose.
type FontInfo struct {

	// Family is the family name of the chosen face.
	Family string

	// Weight is the chosen face weight (400 = normal).
	Weight int

	// Size is the resulting character cell size in pixels.
	Size image.Point
}
