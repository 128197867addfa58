// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conrender implements the rendering engine contract on a
// low-level console display device: a driver that accepts whole rows
// of characters with legacy 16-color attributes and does its own glyph
// drawing. The device has no pixel access and no invalidation
// interface, so this engine repaints the full display every frame and
// reports everything as always dirty.
package conrender

import (
	"fmt"
	"image"
	"image/color"

	"github.com/textmode/render"
)

// Fixed raster font geometry of the console device, in pixels.
var fontSize = image.Point{X: 8, Y: 12}

// Cell is one character position as the display device consumes it.
type Cell struct {
	Rune rune

	// Attr is the legacy attribute byte: foreground color index in the
	// low nibble, background in the high nibble.
	Attr uint16
}

// Device is the console display driver this engine renders through.
type Device interface {

	// DisplaySize returns the display dimensions in character cells.
	DisplaySize() (image.Point, error)

	// EnableDisplayAccess turns the engine's ownership of the display
	// on or off.
	EnableDisplayAccess(enable bool) error

	// BeginUpdateDisplay and EndUpdateDisplay bracket one frame of row
	// updates.
	BeginUpdateDisplay() error
	EndUpdateDisplay() error

	// UpdateDisplayRow replaces one full row of the display.
	UpdateDisplayRow(row int, cells []Cell) error
}

// Engine renders a character grid through a console display device.
type Engine struct {
	dev Device

	// size is the display size in cells, fixed at initialization.
	size image.Point

	// cur is the frame being built; prev holds the previously
	// displayed contents and is recycled row by row.
	cur  [][]Cell
	prev [][]Cell

	enabled  bool
	painting bool

	// attr is the legacy attribute derived from the current brushes.
	attr uint16
}

var _ render.Engine = (*Engine)(nil)

// NewEngine returns an engine bound to the given display device,
// sized to the device's current display. Binding the same device (or
// engine) twice is the caller holding two owners of one display and
// is rejected.
func NewEngine(dev Device) (*Engine, error) {
	size, err := dev.DisplaySize()
	if err != nil {
		return nil, fmt.Errorf("querying display size: %w: %w", render.ErrDevice, err)
	}
	e := &Engine{
		dev:  dev,
		size: size,
		attr: 0x07, // gray on black
	}
	e.cur = makeRows(size)
	e.prev = makeRows(size)
	return e, nil
}

func makeRows(size image.Point) [][]Cell {
	rows := make([][]Cell, size.Y)
	for i := range rows {
		rows[i] = make([]Cell, size.X)
		for j := range rows[i] {
			rows[i][j] = Cell{Rune: ' ', Attr: 0x07}
		}
	}
	return rows
}

// Enable takes ownership of the display.
func (e *Engine) Enable() error {
	if e.enabled {
		return fmt.Errorf("already enabled: %w", render.ErrInvalidState)
	}
	if err := e.dev.EnableDisplayAccess(true); err != nil {
		return fmt.Errorf("enabling display access: %w: %w", render.ErrDevice, err)
	}
	e.enabled = true
	return nil
}

// Disable releases ownership of the display.
func (e *Engine) Disable() error {
	if !e.enabled {
		return fmt.Errorf("already disabled: %w", render.ErrInvalidState)
	}
	if err := e.dev.EnableDisplayAccess(false); err != nil {
		return fmt.Errorf("disabling display access: %w: %w", render.ErrDevice, err)
	}
	e.enabled = false
	return nil
}

// The device tracks no damage, so invalidation is accepted and
// discarded; every frame repaints in full.

func (e *Engine) Invalidate(region image.Rectangle) error        { return nil }
func (e *Engine) InvalidateCursor(pos image.Point) error         { return nil }
func (e *Engine) InvalidateSystem(pixels image.Rectangle) error  { return nil }
func (e *Engine) InvalidateSelection(rs []image.Rectangle) error { return nil }
func (e *Engine) InvalidateScroll(delta image.Point) error       { return nil }
func (e *Engine) InvalidateAll() error                           { return nil }

// StartPaint opens a row-update batch on the device. When disabled it
// succeeds without entering the painting state.
func (e *Engine) StartPaint() error {
	if e.painting {
		return fmt.Errorf("start paint: already painting: %w", render.ErrInvalidState)
	}
	if !e.enabled {
		return nil
	}
	if err := e.dev.BeginUpdateDisplay(); err != nil {
		return fmt.Errorf("beginning display update: %w: %w", render.ErrDevice, err)
	}
	e.painting = true
	return nil
}

// EndPaint closes the row-update batch.
func (e *Engine) EndPaint() error {
	if !e.painting {
		return fmt.Errorf("end paint: not painting: %w", render.ErrInvalidState)
	}
	e.painting = false
	if err := e.dev.EndUpdateDisplay(); err != nil {
		return fmt.Errorf("ending display update: %w: %w", render.ErrDevice, err)
	}
	return nil
}

// Present is a no-op: the device displays rows as they are updated.
func (e *Engine) Present() error { return nil }

// PaintBackground starts the new frame's contents: the frame just
// shown becomes the recycle buffer and the working frame is blanked.
func (e *Engine) PaintBackground() error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	e.cur, e.prev = e.prev, e.cur
	for _, row := range e.cur {
		for i := range row {
			row[i] = Cell{Rune: ' ', Attr: e.attr}
		}
	}
	return nil
}

// PaintBufferLine writes one line of text into the working frame and
// flushes that row to the device.
func (e *Engine) PaintBufferLine(line []rune, widths []int, pos image.Point, trimLeft, wrapped bool) error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	if pos.Y < 0 || pos.Y >= e.size.Y {
		return nil
	}
	row := e.cur[pos.Y]
	col := pos.X
	for i, r := range line {
		w := 1
		if i < len(widths) {
			w = widths[i]
		}
		if col >= 0 && col < e.size.X {
			row[col] = Cell{Rune: r, Attr: e.attr}
		}
		// Wide characters own their trailing cell too.
		for k := 1; k < w; k++ {
			if col+k >= 0 && col+k < e.size.X {
				row[col+k] = Cell{Rune: ' ', Attr: e.attr}
			}
		}
		col += w
	}
	if err := e.dev.UpdateDisplayRow(pos.Y, row); err != nil {
		return fmt.Errorf("updating row %d: %w: %w", pos.Y, render.ErrDevice, err)
	}
	return nil
}

// The device draws its own glyphs and cursor; decorations beyond plain
// text do not exist on it.

func (e *Engine) PaintBufferGridLines(lines render.GridLines, clr color.RGBA, length int, pos image.Point) error {
	return nil
}
func (e *Engine) PaintSelection(region image.Rectangle) error { return nil }
func (e *Engine) PaintCursor(pos image.Point, heightPercent int, doubleWidth bool, style render.CursorStyle, clr *color.RGBA) error {
	return nil
}

// UpdateDrawingBrushes folds the colors down to the nearest entries of
// the 16-color console palette.
func (e *Engine) UpdateDrawingBrushes(fg, bg color.RGBA) error {
	e.attr = nearestLegacyIndex(fg) | nearestLegacyIndex(bg)<<4
	return nil
}

// UpdateFont reports the device's fixed raster font; there is nothing
// to resolve.
func (e *Engine) UpdateFont(desired render.FontDesired) (render.FontInfo, error) {
	return render.FontInfo{Family: "Terminal", Weight: 400, Size: fontSize}, nil
}

// UpdateTitle is a no-op: the device has no title surface.
func (e *Engine) UpdateTitle(title string) error { return nil }

// GetDirtyRectInChars always reports the whole display, inclusive of
// its Max cell: every frame repaints everything.
func (e *Engine) GetDirtyRectInChars() image.Rectangle {
	return image.Rect(0, 0, e.size.X-1, e.size.Y-1)
}

// GetFontSize returns the fixed raster font cell size.
func (e *Engine) GetFontSize() image.Point { return fontSize }

// IsGlyphWideByFont reports false: the raster font has no wide glyphs.
func (e *Engine) IsGlyphWideByFont(r rune) bool { return false }

// legacyPalette is the classic 16-color console palette.
var legacyPalette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x80, 0xff},
	{0x00, 0x80, 0x00, 0xff}, {0x00, 0x80, 0x80, 0xff},
	{0x80, 0x00, 0x00, 0xff}, {0x80, 0x00, 0x80, 0xff},
	{0x80, 0x80, 0x00, 0xff}, {0xc0, 0xc0, 0xc0, 0xff},
	{0x80, 0x80, 0x80, 0xff}, {0x00, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff}, {0x00, 0xff, 0xff, 0xff},
	{0xff, 0x00, 0x00, 0xff}, {0xff, 0x00, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff}, {0xff, 0xff, 0xff, 0xff},
}

// nearestLegacyIndex returns the palette index closest to the color by
// squared distance.
func nearestLegacyIndex(c color.RGBA) uint16 {
	best, bestDist := 0, 1<<31
	for i, p := range legacyPalette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint16(best)
}
