// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpurender implements the rendering engine contract on a
// WebGPU window surface. Frames are drawn into a CPU back buffer and
// uploaded to the swap chain on present; the GPU device, surface
// configuration, and frame buffers are created lazily and rebuilt from
// scratch whenever the target resizes or the device fails.
package gpurender

import (
	"fmt"
	"image"
	"image/color"

	"github.com/textmode/render"
	"github.com/textmode/render/dirty"
	"github.com/textmode/render/shaped"
)

// Cursor height bounds for the legacy percent style, in percent of the
// cell height.
const (
	minCursorHeightPercent = 25
	maxCursorHeightPercent = 100
)

// Engine renders a character grid onto a WebGPU surface.
// All methods must be called from a single goroutine; the engine does
// no internal locking.
type Engine struct {
	target Target
	shaper *shaped.Shaper
	font   *shaped.Font

	// software forces the fallback (software) adapter.
	software bool

	enabled      bool
	painting     bool
	presentReady bool

	dirty dirty.Tracker
	res   *deviceResources
	plan  presentPlan

	fg, bg color.RGBA

	// drawErr is the first draw failure of the frame in progress;
	// once set, remaining paint calls fail fast and EndPaint tears
	// the device down.
	drawErr error

	title string
}

var _ render.Engine = (*Engine)(nil)

// NewEngine returns an engine that resolves fonts and shapes text with
// the given shaper. No device resources are created until the first
// paint against a bound target.
func NewEngine(sh *shaped.Shaper) *Engine {
	return &Engine{
		shaper: sh,
		fg:     defaultFg,
		bg:     defaultBg,
	}
}

// SetTarget binds the display target. Must be called before painting.
func (e *Engine) SetTarget(t Target) {
	e.target = t
	e.dirty.DisplaySize = t.ClientSize()
}

// SetSoftwareRendering forces the fallback software adapter for the
// next device resource creation.
func (e *Engine) SetSoftwareRendering(on bool) {
	e.software = on
}

// Enable allows painting and presentation.
func (e *Engine) Enable() error {
	if e.enabled {
		return fmt.Errorf("already enabled: %w", render.ErrInvalidState)
	}
	e.enabled = true
	return nil
}

// Disable stops painting and presentation and releases all device
// resources immediately.
func (e *Engine) Disable() error {
	if !e.enabled {
		return fmt.Errorf("already disabled: %w", render.ErrInvalidState)
	}
	e.enabled = false
	e.presentReady = false
	e.releaseDeviceResources()
	return nil
}

// Invalidate adds the given cell-space rectangle, inclusive of its Max
// cell, to the dirty region.
func (e *Engine) Invalidate(region image.Rectangle) error {
	e.dirty.InvalidateCells(region)
	return nil
}

// InvalidateCursor invalidates the single cell at the given position.
func (e *Engine) InvalidateCursor(pos image.Point) error {
	e.dirty.InvalidateCells(image.Rectangle{Min: pos, Max: pos})
	return nil
}

// InvalidateSystem adds the given pixel-space rectangle to the dirty
// region without cell scaling.
func (e *Engine) InvalidateSystem(pixels image.Rectangle) error {
	e.dirty.InvalidatePixels(pixels)
	return nil
}

// InvalidateSelection invalidates each of the given cell-space
// rectangles.
func (e *Engine) InvalidateSelection(regions []image.Rectangle) error {
	for _, r := range regions {
		e.dirty.InvalidateCells(r)
	}
	return nil
}

// InvalidateScroll shifts the dirty region by the given cell delta and
// invalidates the revealed area.
func (e *Engine) InvalidateScroll(delta image.Point) error {
	e.dirty.InvalidateScroll(delta)
	return nil
}

// InvalidateAll marks the whole display dirty.
func (e *Engine) InvalidateAll() error {
	e.dirty.InvalidateAll()
	return nil
}

// StartPaint begins a frame. When the engine is disabled it succeeds
// without entering the painting state, so a disabled engine absorbs
// the caller's paint cycle without drawing.
func (e *Engine) StartPaint() error {
	if e.target == nil {
		return fmt.Errorf("start paint: %w", render.ErrNoTarget)
	}
	if e.painting {
		return fmt.Errorf("start paint: already painting: %w", render.ErrInvalidState)
	}
	if !e.enabled {
		return nil
	}
	if e.res == nil || e.res.back == nil || e.res.size != e.target.ClientSize() {
		if err := e.createDeviceResources(true); err != nil {
			return err
		}
	}
	e.drawErr = nil
	e.painting = true
	return nil
}

// EndPaint closes the frame. On success it captures the present plan;
// on a draw failure it releases the device resources, since the render
// target contents are no longer trustworthy, and the next StartPaint
// rebuilds them. Either way the dirty region and scroll accumulator
// are consumed.
func (e *Engine) EndPaint() error {
	if !e.painting {
		return fmt.Errorf("end paint: not painting: %w", render.ErrInvalidState)
	}
	e.painting = false

	var err error
	if e.drawErr != nil {
		err = e.drawErr
		e.drawErr = nil
		e.presentReady = false
		e.releaseDeviceResources()
	} else {
		e.plan = e.capturePlan()
		e.presentReady = true
	}
	e.dirty.Reset()
	return err
}

// capturePlan derives the present parameters from the frame's final
// dirty region and accumulated scroll.
func (e *Engine) capturePlan() presentPlan {
	invalid, _ := e.dirty.Invalid()
	plan := presentPlan{dirty: invalid}
	if scroll := e.dirty.Scroll(); scroll != (image.Point{}) {
		// Everything outside the dirty region still matches the front
		// buffer shifted by the scroll; tell the presenter to move it
		// rather than redraw it.
		keep := dirty.Subtract(e.dirty.DisplayRect(), invalid)
		if !keep.Empty() {
			plan.scrollRect = keep
			plan.scrollOffset = scroll
			plan.hasScroll = true
		}
	}
	return plan
}

// PaintBackground fills the dirty region with the background brush.
func (e *Engine) PaintBackground() error {
	if err := e.paintable(); err != nil {
		return err
	}
	invalid, _ := e.dirty.Invalid()
	fillRect(e.res.back, invalid, e.res.bgBrush)
	return nil
}

// PaintBufferLine draws one line of text at the given cell position:
// the cell backgrounds first, then the shaped glyphs on top, so
// attribute-colored backgrounds hold up under partially covering
// glyphs. widths gives the cell width of each rune; trimLeft clips
// away the first cell, used when the left half of a leading
// double-wide rune belongs to the previous region.
func (e *Engine) PaintBufferLine(line []rune, widths []int, pos image.Point, trimLeft, wrapped bool) error {
	if err := e.paintable(); err != nil {
		return err
	}
	cell := e.font.CellSize
	total := 0
	for i := range line {
		w := 1
		if i < len(widths) {
			w = widths[i]
		}
		total += w
	}

	origin := image.Point{X: pos.X * cell.X, Y: pos.Y * cell.Y}
	area := image.Rectangle{
		Min: origin,
		Max: image.Point{X: origin.X + total*cell.X, Y: origin.Y + cell.Y},
	}
	clip := area
	if trimLeft {
		clip.Min.X += cell.X
	}

	fillRect(e.res.back, clip, e.res.bgBrush)

	run := e.shaper.ShapeRun(line, e.font)
	baseline := float32(origin.Y) + e.font.LineBaseline
	if run.Simple() {
		drawSimpleRun(e.res.back, clip, e.res.fgBrush, e.font, run.Glyphs, origin.X, baseline)
	} else {
		drawOutputs(e.res.back, clip, e.res.fgBrush, run.Outputs, float32(origin.X), baseline)
	}
	return nil
}

// PaintBufferGridLines draws the requested cell-edge lines for length
// cells starting at the given cell, in the given color.
func (e *Engine) PaintBufferGridLines(lines render.GridLines, clr color.RGBA, length int, pos image.Point) error {
	if err := e.paintable(); err != nil {
		return err
	}
	cell := e.font.CellSize
	brush := image.NewUniform(clr)
	for i := 0; i < length; i++ {
		x := (pos.X + i) * cell.X
		y := pos.Y * cell.Y
		if lines.Has(render.GridLinesTop) {
			fillRect(e.res.back, image.Rect(x, y, x+cell.X, y+1), brush)
		}
		if lines.Has(render.GridLinesBottom) {
			fillRect(e.res.back, image.Rect(x, y+cell.Y-1, x+cell.X, y+cell.Y), brush)
		}
		if lines.Has(render.GridLinesLeft) {
			fillRect(e.res.back, image.Rect(x, y, x+1, y+cell.Y), brush)
		}
		if lines.Has(render.GridLinesRight) {
			fillRect(e.res.back, image.Rect(x+cell.X-1, y, x+cell.X, y+cell.Y), brush)
		}
	}
	return nil
}

// PaintSelection blends a half-transparent foreground overlay over the
// given cell-space rectangle.
func (e *Engine) PaintSelection(region image.Rectangle) error {
	if err := e.paintable(); err != nil {
		return err
	}
	// Half the foreground, premultiplied.
	clr := color.RGBA{R: e.fg.R / 2, G: e.fg.G / 2, B: e.fg.B / 2, A: e.fg.A / 2}
	blendRect(e.res.back, dirty.ScaleByCell(region, e.font.CellSize), image.NewUniform(clr))
	return nil
}

// PaintCursor draws the cursor at the given cell position.
func (e *Engine) PaintCursor(pos image.Point, heightPercent int, doubleWidth bool, style render.CursorStyle, clr *color.RGBA) error {
	if err := e.paintable(); err != nil {
		return err
	}
	cell := e.font.CellSize
	rect := image.Rectangle{
		Min: image.Point{X: pos.X * cell.X, Y: pos.Y * cell.Y},
		Max: image.Point{X: (pos.X + 1) * cell.X, Y: (pos.Y + 1) * cell.Y},
	}
	if doubleWidth {
		rect.Max.X += cell.X
	}

	brush := e.res.fgBrush
	if clr != nil {
		brush = image.NewUniform(*clr)
	}

	switch style {
	case render.CursorFullBox:
		fillRect(e.res.back, rect, brush)
	case render.CursorLegacy:
		pct := min(max(heightPercent, minCursorHeightPercent), maxCursorHeightPercent)
		rect.Min.Y = rect.Max.Y - cell.Y*pct/100
		fillRect(e.res.back, rect, brush)
	case render.CursorVerticalBar:
		rect.Max.X = rect.Min.X + 1
		fillRect(e.res.back, rect, brush)
	case render.CursorUnderscore:
		rect.Min.Y = rect.Max.Y - 1
		fillRect(e.res.back, rect, brush)
	case render.CursorEmptyBox:
		strokeRect(e.res.back, rect, brush)
	default:
		return fmt.Errorf("cursor style %d: %w", style, render.ErrNotImplemented)
	}
	return nil
}

// UpdateDrawingBrushes sets the default foreground and background
// brush colors.
func (e *Engine) UpdateDrawingBrushes(fg, bg color.RGBA) error {
	e.fg = fg
	e.bg = bg
	if e.res != nil && e.res.fgBrush != nil {
		e.res.fgBrush.C = fg
		e.res.bgBrush.C = bg
	}
	return nil
}

// UpdateFont resolves the desired font and adopts it, updating the
// cell geometry all later cell-space calls scale by.
func (e *Engine) UpdateFont(desired render.FontDesired) (render.FontInfo, error) {
	f, err := e.shaper.ResolveFont(desired.Family, desired.Size.Y)
	if err != nil {
		return render.FontInfo{}, err
	}
	e.font = f
	e.dirty.CellSize = f.CellSize
	return render.FontInfo{
		Family: f.Family,
		Weight: 400,
		Size:   f.CellSize,
	}, nil
}

// UpdateTitle records the new title and notifies the target.
func (e *Engine) UpdateTitle(title string) error {
	if e.target == nil {
		return fmt.Errorf("update title: %w", render.ErrNoTarget)
	}
	e.title = title
	e.target.PostTitleChange()
	return nil
}

// Title returns the most recently set title, for the target to fetch
// after a title-change notification.
func (e *Engine) Title() string {
	return e.title
}

// GetDirtyRectInChars returns the dirty region in cell coordinates,
// inclusive of its Max cell.
func (e *Engine) GetDirtyRectInChars() image.Rectangle {
	if e.dirty.CellSize == (image.Point{}) {
		return image.Rectangle{}
	}
	return e.dirty.DirtyRectInCells()
}

// GetFontSize returns the pixel size of one cell.
func (e *Engine) GetFontSize() image.Point {
	if e.font == nil {
		return image.Point{}
	}
	return e.font.CellSize
}

// IsGlyphWideByFont reports whether the font draws the rune double
// wide. Grid width is decided by the character classifier upstream,
// not by font metrics, so this always reports false.
func (e *Engine) IsGlyphWideByFont(r rune) bool {
	return false
}

// paintable gates the paint operations: the engine must be mid-frame
// with live resources, and a draw failure earlier in the frame fails
// the rest of it immediately.
func (e *Engine) paintable() error {
	if !e.painting {
		return fmt.Errorf("not painting: %w", render.ErrInvalidState)
	}
	if e.drawErr != nil {
		return e.drawErr
	}
	if e.res == nil || e.res.back == nil {
		return fmt.Errorf("no render target: %w", render.ErrInvalidState)
	}
	return nil
}
