// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpurender

import (
	"image"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/shaping"
	"github.com/textmode/render/shaped"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// fillRect fills the rectangle with the source image, clipped to dst.
func fillRect(dst *image.RGBA, r image.Rectangle, src image.Image) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
}

// blendRect composites the source over the rectangle, so translucent
// overlays keep what is underneath.
func blendRect(dst *image.RGBA, r image.Rectangle, src image.Image) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
}

// strokeRect draws a one-pixel outline of the rectangle.
func strokeRect(dst *image.RGBA, r image.Rectangle, src image.Image) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), src)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), src)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), src)
	fillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), src)
}

// drawSimpleRun draws a fast-path run: one glyph per cell, advancing
// exactly one cell width each, baselines aligned at y.
func drawSimpleRun(dst *image.RGBA, clip image.Rectangle, src image.Image, f *shaped.Font, glyphs []font.GID, x int, y float32) {
	scale := f.Size / float32(f.Face.Upem())
	for i, gid := range glyphs {
		fillGlyph(dst, clip, src, f.Face, gid, scale, float32(x+i*f.CellSize.X), y)
	}
}

// drawOutputs draws fully shaped segments, advancing the pen by each
// glyph's shaped advance and honoring its offsets.
func drawOutputs(dst *image.RGBA, clip image.Rectangle, src image.Image, outs []shaping.Output, x, y float32) {
	for _, out := range outs {
		scale := fromFixed(out.Size) / float32(out.Face.Upem())
		for _, g := range out.Glyphs {
			fillGlyph(dst, clip, src, out.Face, g.GlyphID, scale,
				x+fromFixed(g.XOffset), y-fromFixed(g.YOffset))
			x += fromFixed(g.XAdvance)
		}
	}
}

// fillGlyph rasterizes one glyph outline with its origin at (x, y) on
// the baseline. Glyphs without outline data (bitmap or SVG faces) are
// skipped.
func fillGlyph(dst *image.RGBA, clip image.Rectangle, src image.Image, face *font.Face, gid font.GID, scale, x, y float32) {
	outline, ok := face.GlyphData(gid).(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		return
	}

	// Outline coordinates are design units with y up; flip and scale
	// into pixel space around the baseline origin.
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	visit := func(px, py float32) {
		minX = math32.Min(minX, px)
		minY = math32.Min(minY, py)
		maxX = math32.Max(maxX, px)
		maxY = math32.Max(maxY, py)
	}
	for _, s := range outline.Segments {
		for _, p := range s.Args[:segArgs(s.Op)] {
			visit(p.X*scale+x, -p.Y*scale+y)
		}
	}

	ib := image.Rect(
		int(math32.Floor(minX)), int(math32.Floor(minY)),
		int(math32.Ceil(maxX))+1, int(math32.Ceil(maxY))+1,
	).Intersect(clip).Intersect(dst.Bounds())
	if ib.Empty() {
		return
	}

	ox, oy := x-float32(ib.Min.X), y-float32(ib.Min.Y)
	rz := vector.NewRasterizer(ib.Dx(), ib.Dy())
	for _, s := range outline.Segments {
		p0x, p0y := s.Args[0].X*scale+ox, -s.Args[0].Y*scale+oy
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			rz.MoveTo(p0x, p0y)
		case opentype.SegmentOpLineTo:
			rz.LineTo(p0x, p0y)
		case opentype.SegmentOpQuadTo:
			rz.QuadTo(p0x, p0y, s.Args[1].X*scale+ox, -s.Args[1].Y*scale+oy)
		case opentype.SegmentOpCubeTo:
			rz.CubeTo(p0x, p0y,
				s.Args[1].X*scale+ox, -s.Args[1].Y*scale+oy,
				s.Args[2].X*scale+ox, -s.Args[2].Y*scale+oy)
		}
	}
	rz.Draw(dst, ib, src, image.Point{})
}

// segArgs returns how many of a segment's points its operation uses.
func segArgs(op opentype.SegmentOp) int {
	switch op {
	case opentype.SegmentOpQuadTo:
		return 2
	case opentype.SegmentOpCubeTo:
		return 3
	}
	return 1
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
