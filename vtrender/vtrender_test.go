// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vtrender

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/textmode/render"
)

func newEngine() (*Engine, *bytes.Buffer) {
	var buf bytes.Buffer
	e := NewEngine(&buf, image.Point{X: 80, Y: 25})
	return e, &buf
}

func TestBytesHeldUntilPresent(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())
	assert.NoError(t, e.PaintBufferLine([]rune("hi"), nil, image.Point{X: 2, Y: 1}, false, false))
	assert.NoError(t, e.EndPaint())

	assert.Empty(t, buf.String())
	assert.NoError(t, e.Present())
	assert.Contains(t, buf.String(), "\x1b[2;3H")
	assert.Contains(t, buf.String(), "hi")
}

func TestColorsEmittedOnChangeOnly(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())

	assert.NoError(t, e.UpdateDrawingBrushes(
		color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}))
	assert.NoError(t, e.PaintBufferLine([]rune("a"), nil, image.Point{}, false, false))
	assert.NoError(t, e.PaintBufferLine([]rune("b"), nil, image.Point{Y: 1}, false, false))
	assert.NoError(t, e.Present())

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\x1b[38;2;255;0;0m")))
	assert.Contains(t, buf.String(), "\x1b[48;2;0;0;255m")
}

func TestDirtyRegionCellSpace(t *testing.T) {
	e, _ := newEngine()

	assert.NoError(t, e.Invalidate(image.Rect(2, 3, 4, 5)))
	assert.Equal(t, image.Rect(2, 3, 4, 5), e.GetDirtyRectInChars())

	assert.NoError(t, e.InvalidateCursor(image.Point{X: 10, Y: 1}))
	assert.Equal(t, image.Rect(2, 1, 10, 5), e.GetDirtyRectInChars())
}

func TestInvalidateScrollVertical(t *testing.T) {
	e, _ := newEngine()

	assert.NoError(t, e.InvalidateScroll(image.Point{Y: -2}))
	// The bottom two revealed rows are dirty, inclusive bounds.
	assert.Equal(t, image.Rect(0, 23, 79, 24), e.GetDirtyRectInChars())

	assert.NoError(t, e.InvalidateScroll(image.Point{}))
	assert.Equal(t, image.Rect(0, 23, 79, 24), e.GetDirtyRectInChars())
}

func TestInvalidateScrollHorizontalRedrawsAll(t *testing.T) {
	e, _ := newEngine()
	assert.NoError(t, e.InvalidateScroll(image.Point{X: 1}))
	assert.Equal(t, image.Rect(0, 0, 79, 24), e.GetDirtyRectInChars())
}

func TestPaintBackgroundClearsWhenAllDirty(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.InvalidateAll())
	assert.NoError(t, e.StartPaint())
	assert.NoError(t, e.PaintBackground())
	assert.NoError(t, e.Present())
	assert.Contains(t, buf.String(), "\x1b[2J")
}

func TestPaintBackgroundPartialEmitsNothing(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.Invalidate(image.Rect(0, 0, 1, 1)))
	assert.NoError(t, e.StartPaint())
	assert.NoError(t, e.PaintBackground())
	assert.NoError(t, e.Present())
	assert.NotContains(t, buf.String(), "\x1b[2J")
}

func TestPaintCursorShapes(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.Enable())
	assert.NoError(t, e.StartPaint())

	assert.NoError(t, e.PaintCursor(image.Point{X: 4, Y: 4}, 0, false, render.CursorVerticalBar, nil))
	assert.NoError(t, e.Present())
	assert.Contains(t, buf.String(), "\x1b[5;5H")
	assert.Contains(t, buf.String(), "\x1b[6 q")

	err := e.PaintCursor(image.Point{}, 0, false, render.CursorStyle(99), nil)
	assert.ErrorIs(t, err, render.ErrNotImplemented)
}

func TestUpdateTitle(t *testing.T) {
	e, buf := newEngine()
	assert.NoError(t, e.UpdateTitle("shell"))
	assert.NoError(t, e.Present())
	assert.Equal(t, "\x1b]0;shell\x07", buf.String())
}

func TestStateMachine(t *testing.T) {
	e, _ := newEngine()

	// Disabled start is absorbed.
	assert.NoError(t, e.StartPaint())
	assert.ErrorIs(t, e.EndPaint(), render.ErrInvalidState)

	assert.NoError(t, e.Enable())
	assert.ErrorIs(t, e.Enable(), render.ErrInvalidState)
	assert.NoError(t, e.StartPaint())
	assert.ErrorIs(t, e.StartPaint(), render.ErrInvalidState)
	assert.NoError(t, e.EndPaint())

	// EndPaint consumed the dirty region.
	assert.NoError(t, e.InvalidateAll())
	assert.NoError(t, e.StartPaint())
	assert.NoError(t, e.EndPaint())
	assert.False(t, e.used)
}

func TestFontIsOneCell(t *testing.T) {
	e, _ := newEngine()
	fi, err := e.UpdateFont(render.FontDesired{Family: "anything"})
	assert.NoError(t, err)
	assert.Equal(t, image.Point{X: 1, Y: 1}, fi.Size)
	assert.Equal(t, image.Point{X: 1, Y: 1}, e.GetFontSize())
	assert.False(t, e.IsGlyphWideByFont('あ'))
}
