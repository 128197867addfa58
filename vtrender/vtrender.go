// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vtrender implements the rendering engine contract as a
// terminal escape-sequence emitter: paint calls become cursor moves,
// color changes, and text written to an output stream, for hosts that
// relay the grid to another terminal rather than drawing pixels.
//
// Cells are the only geometry the stream knows, so the engine reports
// a 1x1 pixel font and tracks its dirty region in cell space directly.
package vtrender

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/textmode/render"
)

// Engine emits a terminal byte stream for a character grid.
type Engine struct {
	w *bufio.Writer

	// size is the grid size in cells.
	size image.Point

	// invalid is the dirty region in cell space, exclusive Max.
	invalid image.Rectangle
	used    bool

	enabled  bool
	painting bool

	fg, bg color.RGBA

	// colorsSet tracks whether the stream has been told the current
	// colors, so SGR is only emitted on change.
	colorsSet bool
}

var _ render.Engine = (*Engine)(nil)

// NewEngine returns an engine writing to w for a grid of the given
// cell size.
func NewEngine(w io.Writer, size image.Point) *Engine {
	return &Engine{
		w:    bufio.NewWriter(w),
		size: size,
	}
}

// SetDisplaySize updates the grid size after the receiving end
// resized, and marks everything dirty.
func (e *Engine) SetDisplaySize(size image.Point) {
	e.size = size
	e.orRect(image.Rectangle{Max: size})
}

// Enable allows emission.
func (e *Engine) Enable() error {
	if e.enabled {
		return fmt.Errorf("already enabled: %w", render.ErrInvalidState)
	}
	e.enabled = true
	return nil
}

// Disable stops emission and flushes what was already written.
func (e *Engine) Disable() error {
	if !e.enabled {
		return fmt.Errorf("already disabled: %w", render.ErrInvalidState)
	}
	e.enabled = false
	return e.w.Flush()
}

// orRect widens the dirty region to include r, in cell space.
func (e *Engine) orRect(r image.Rectangle) {
	r = r.Intersect(image.Rectangle{Max: e.size})
	if !e.used {
		e.invalid = r
		e.used = true
		return
	}
	e.invalid = e.invalid.Union(r)
}

// Invalidate adds the cell rectangle, inclusive of its Max cell, to
// the dirty region.
func (e *Engine) Invalidate(region image.Rectangle) error {
	region.Max = region.Max.Add(image.Point{X: 1, Y: 1})
	e.orRect(region)
	return nil
}

// InvalidateCursor invalidates the cursor's cell.
func (e *Engine) InvalidateCursor(pos image.Point) error {
	return e.Invalidate(image.Rectangle{Min: pos, Max: pos})
}

// InvalidateSystem treats the pixel rectangle as cells: the stream's
// font is one pixel per cell.
func (e *Engine) InvalidateSystem(pixels image.Rectangle) error {
	e.orRect(pixels)
	return nil
}

// InvalidateSelection invalidates each given cell rectangle.
func (e *Engine) InvalidateSelection(regions []image.Rectangle) error {
	for _, r := range regions {
		if err := e.Invalidate(r); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateScroll handles a scroll of the receiving grid. Vertical
// scrolls shift the dirty region and dirty the revealed rows;
// horizontal scrolls have no cheap stream encoding, so everything is
// redrawn.
func (e *Engine) InvalidateScroll(delta image.Point) error {
	if delta == (image.Point{}) {
		return nil
	}
	if delta.X != 0 {
		return e.InvalidateAll()
	}
	if e.used {
		e.invalid = e.invalid.Add(image.Point{Y: delta.Y}).
			Intersect(image.Rectangle{Max: e.size})
	}
	if delta.Y > 0 {
		e.orRect(image.Rect(0, 0, e.size.X, delta.Y))
	} else {
		e.orRect(image.Rect(0, e.size.Y+delta.Y, e.size.X, e.size.Y))
	}
	return nil
}

// InvalidateAll marks the whole grid dirty.
func (e *Engine) InvalidateAll() error {
	e.orRect(image.Rectangle{Max: e.size})
	return nil
}

// StartPaint begins a frame. Disabled engines absorb the cycle
// without entering the painting state.
func (e *Engine) StartPaint() error {
	if e.painting {
		return fmt.Errorf("start paint: already painting: %w", render.ErrInvalidState)
	}
	if !e.enabled {
		return nil
	}
	e.painting = true
	return nil
}

// EndPaint closes the frame and consumes the dirty region. The bytes
// stay buffered until Present.
func (e *Engine) EndPaint() error {
	if !e.painting {
		return fmt.Errorf("end paint: not painting: %w", render.ErrInvalidState)
	}
	e.painting = false
	e.invalid = image.Rectangle{}
	e.used = false
	return nil
}

// Present flushes the frame's bytes to the output stream.
func (e *Engine) Present() error {
	return e.w.Flush()
}

// PaintBackground clears the receiving screen when the whole grid is
// dirty; partial repaints rely on the per-line emission instead.
func (e *Engine) PaintBackground() error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	if e.invalid == (image.Rectangle{Max: e.size}) {
		e.emitColors()
		e.w.WriteString("\x1b[2J")
	}
	return nil
}

// PaintBufferLine moves the cursor to the cell and writes the text.
func (e *Engine) PaintBufferLine(line []rune, widths []int, pos image.Point, trimLeft, wrapped bool) error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	e.moveCursor(pos)
	e.emitColors()
	e.w.WriteString(string(line))
	return nil
}

// PaintBufferGridLines has no stream encoding.
func (e *Engine) PaintBufferGridLines(lines render.GridLines, clr color.RGBA, length int, pos image.Point) error {
	return nil
}

// PaintSelection has no stream encoding; the receiving terminal owns
// its selection rendering.
func (e *Engine) PaintSelection(region image.Rectangle) error { return nil }

// PaintCursor moves the receiving terminal's cursor to the cell and
// sets its shape.
func (e *Engine) PaintCursor(pos image.Point, heightPercent int, doubleWidth bool, style render.CursorStyle, clr *color.RGBA) error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	var shape int
	switch style {
	case render.CursorFullBox, render.CursorLegacy, render.CursorEmptyBox:
		shape = 2 // steady block
	case render.CursorUnderscore:
		shape = 4 // steady underline
	case render.CursorVerticalBar:
		shape = 6 // steady bar
	default:
		return fmt.Errorf("cursor style %d: %w", style, render.ErrNotImplemented)
	}
	e.moveCursor(pos)
	fmt.Fprintf(e.w, "\x1b[%d q", shape)
	return nil
}

// UpdateDrawingBrushes records the colors; the matching SGR is emitted
// before the next text.
func (e *Engine) UpdateDrawingBrushes(fg, bg color.RGBA) error {
	if fg != e.fg || bg != e.bg {
		e.fg = fg
		e.bg = bg
		e.colorsSet = false
	}
	return nil
}

// UpdateFont accepts any font: the stream draws no glyphs. The
// reported cell is one pixel square so pixel and cell space coincide.
func (e *Engine) UpdateFont(desired render.FontDesired) (render.FontInfo, error) {
	return render.FontInfo{Family: desired.Family, Weight: 400, Size: image.Point{X: 1, Y: 1}}, nil
}

// UpdateTitle emits an OSC title change.
func (e *Engine) UpdateTitle(title string) error {
	fmt.Fprintf(e.w, "\x1b]0;%s\x07", title)
	return nil
}

// GetDirtyRectInChars returns the dirty region, inclusive of its Max
// cell.
func (e *Engine) GetDirtyRectInChars() image.Rectangle {
	r := e.invalid
	r.Max.X--
	r.Max.Y--
	return r
}

// GetFontSize reports the 1x1 stream font.
func (e *Engine) GetFontSize() image.Point { return image.Point{X: 1, Y: 1} }

// IsGlyphWideByFont reports false; width is the receiving terminal's
// concern.
func (e *Engine) IsGlyphWideByFont(r rune) bool { return false }

// moveCursor emits CUP for the zero-based cell position.
func (e *Engine) moveCursor(pos image.Point) {
	fmt.Fprintf(e.w, "\x1b[%d;%dH", pos.Y+1, pos.X+1)
}

// emitColors emits the truecolor SGR pair if the stream is out of
// date.
func (e *Engine) emitColors() {
	if e.colorsSet {
		return
	}
	fmt.Fprintf(e.w, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
		e.fg.R, e.fg.G, e.fg.B, e.bg.R, e.bg.G, e.bg.B)
	e.colorsSet = true
}
