// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conrender

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/textmode/render"
)

// fakeDevice records the row updates and batch calls it receives.
type fakeDevice struct {
	size    image.Point
	access  []bool
	begins  int
	ends    int
	updates map[int][]Cell
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		size:    image.Point{X: 80, Y: 25},
		updates: map[int][]Cell{},
	}
}

func (d *fakeDevice) DisplaySize() (image.Point, error) { return d.size, nil }
func (d *fakeDevice) EnableDisplayAccess(enable bool) error {
	d.access = append(d.access, enable)
	return nil
}
func (d *fakeDevice) BeginUpdateDisplay() error { d.begins++; return nil }
func (d *fakeDevice) EndUpdateDisplay() error   { d.ends++; return nil }
func (d *fakeDevice) UpdateDisplayRow(row int, cells []Cell) error {
	cp := make([]Cell, len(cells))
	copy(cp, cells)
	d.updates[row] = cp
	return nil
}

func TestEnableDisable(t *testing.T) {
	dev := newFakeDevice()
	e, err := NewEngine(dev)
	assert.NoError(t, err)

	assert.NoError(t, e.Enable())
	assert.ErrorIs(t, e.Enable(), render.ErrInvalidState)
	assert.NoError(t, e.Disable())
	assert.ErrorIs(t, e.Disable(), render.ErrInvalidState)
	assert.Equal(t, []bool{true, false}, dev.access)
}

func TestPaintFrame(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)
	assert.NoError(t, e.Enable())

	assert.NoError(t, e.StartPaint())
	assert.Equal(t, 1, dev.begins)
	assert.ErrorIs(t, e.StartPaint(), render.ErrInvalidState)

	assert.NoError(t, e.PaintBackground())
	assert.NoError(t, e.PaintBufferLine([]rune("hi"), []int{1, 1}, image.Point{X: 3, Y: 2}, false, false))

	row := dev.updates[2]
	assert.Equal(t, 'h', row[3].Rune)
	assert.Equal(t, 'i', row[4].Rune)
	assert.Equal(t, ' ', row[5].Rune)

	assert.NoError(t, e.EndPaint())
	assert.Equal(t, 1, dev.ends)
	assert.ErrorIs(t, e.EndPaint(), render.ErrInvalidState)
}

func TestWideRuneOwnsTrailingCell(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())

	assert.NoError(t, e.PaintBufferLine([]rune{'あ', 'x'}, []int{2, 1}, image.Point{}, false, false))
	row := dev.updates[0]
	assert.Equal(t, 'あ', row[0].Rune)
	assert.Equal(t, ' ', row[1].Rune)
	assert.Equal(t, 'x', row[2].Rune)
}

func TestPaintBufferLineClipsToDisplay(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())

	// Starts two cells before the right edge; the overflow is dropped.
	assert.NoError(t, e.PaintBufferLine([]rune("abcd"), []int{1, 1, 1, 1}, image.Point{X: 78}, false, false))
	row := dev.updates[0]
	assert.Equal(t, 'a', row[78].Rune)
	assert.Equal(t, 'b', row[79].Rune)
	assert.Len(t, row, 80)

	// A row entirely off the display is ignored.
	assert.NoError(t, e.PaintBufferLine([]rune("x"), []int{1}, image.Point{Y: 99}, false, false))
	_, ok := dev.updates[99]
	assert.False(t, ok)
}

func TestDisabledPaintAbsorbed(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)

	// Disabled: the paint cycle starts without effect and painting
	// stays off.
	assert.NoError(t, e.StartPaint())
	assert.Equal(t, 0, dev.begins)
	assert.ErrorIs(t, e.EndPaint(), render.ErrInvalidState)
	assert.ErrorIs(t, e.PaintBackground(), render.ErrInvalidState)
}

func TestAlwaysFullyDirty(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)

	// Invalidation is accepted and discarded.
	assert.NoError(t, e.Invalidate(image.Rect(1, 1, 2, 2)))
	assert.NoError(t, e.InvalidateScroll(image.Point{Y: 3}))
	assert.NoError(t, e.InvalidateAll())

	assert.Equal(t, image.Rect(0, 0, 79, 24), e.GetDirtyRectInChars())
}

func TestFixedFont(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)

	fi, err := e.UpdateFont(render.FontDesired{Family: "Cascadia Mono", Size: image.Point{Y: 24}})
	assert.NoError(t, err)
	assert.Equal(t, image.Point{X: 8, Y: 12}, fi.Size)
	assert.Equal(t, image.Point{X: 8, Y: 12}, e.GetFontSize())
}

func TestLegacyAttr(t *testing.T) {
	dev := newFakeDevice()
	e, _ := NewEngine(dev)
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())

	// Pure red on pure blue: bright red fg (12), bright blue bg (9).
	assert.NoError(t, e.UpdateDrawingBrushes(
		color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}))
	assert.NoError(t, e.PaintBufferLine([]rune("x"), []int{1}, image.Point{}, false, false))
	assert.Equal(t, uint16(12|9<<4), dev.updates[0][0].Attr)
}
