// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpurender

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/textmode/render"
)

// presentPlan is the frame state EndPaint hands to Present: which
// pixels changed, and how much of the previous frame can be reused by
// shifting instead of redrawing.
type presentPlan struct {
	dirty image.Rectangle

	// scrollRect is the destination region whose new content is the
	// previous frame shifted by scrollOffset: its pixels come from
	// scrollRect.Sub(scrollOffset) in the last presented frame. Set
	// only when a scroll was accumulated and the shift leaves anything
	// worth moving.
	scrollRect   image.Rectangle
	scrollOffset image.Point
	hasScroll    bool
}

// Present pushes the last completed frame to the display target.
// A no-op when no frame is ready, so callers may present
// unconditionally. Present is the expensive half of the frame split:
// EndPaint only captures state, so a caller holding a lock over the
// grid model during painting can release it before presenting.
//
// A flip failure is unrecoverable for the current device resources:
// they are released in full and rebuilt lazily on the next frame.
func (e *Engine) Present() error {
	if !e.presentReady {
		return nil
	}
	e.presentReady = false
	plan := e.plan
	e.plan = presentPlan{}

	res := e.res
	if res == nil || res.back == nil {
		return fmt.Errorf("present: no render target: %w", render.ErrInvalidState)
	}

	e.composeFront(plan)

	if err := e.flip(); err != nil {
		e.releaseDeviceResources()
		return err
	}

	// Mirror the presented frame into the back buffer so the next
	// frame's partial redraw composites onto what is actually on
	// screen.
	draw.Draw(res.back, res.back.Bounds(), res.front, image.Point{}, draw.Src)
	return nil
}

// composeFront builds the next on-screen frame in the front buffer:
// it reuses the previous frame where the plan says it is still valid,
// sliding those pixels into scrollRect from scrollRect.Sub(scrollOffset),
// then lays the newly drawn pixels over the dirty region.
func (e *Engine) composeFront(plan presentPlan) {
	res := e.res
	if plan.hasScroll {
		shiftRegion(res.front, plan.scrollRect.Sub(plan.scrollOffset), plan.scrollOffset)
	}
	if !plan.dirty.Empty() {
		draw.Draw(res.front, plan.dirty, res.back, plan.dirty.Min, draw.Src)
	}
}

// flip uploads the front buffer to the surface's current texture and
// presents it, swizzling to the surface byte order when needed.
func (e *Engine) flip() error {
	res := e.res
	tex, err := res.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w: %w", render.ErrDevice, err)
	}
	defer tex.Release()

	pix := res.front.Pix
	switch res.format {
	case wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		if len(res.upload) != len(pix) {
			res.upload = make([]byte, len(pix))
		}
		for i := 0; i < len(pix); i += 4 {
			res.upload[i+0] = pix[i+2]
			res.upload[i+1] = pix[i+1]
			res.upload[i+2] = pix[i+0]
			res.upload[i+3] = pix[i+3]
		}
		pix = res.upload
	}

	sz := res.size
	res.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
		},
		pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * uint32(sz.X),
			RowsPerImage: uint32(sz.Y),
		},
		&wgpu.Extent3D{
			Width:              uint32(sz.X),
			Height:             uint32(sz.Y),
			DepthOrArrayLayers: 1,
		},
	)
	res.surface.Present()
	return nil
}

// shiftRegion moves the pixels of src within img by offset, staging
// through a copy since source and destination overlap on small
// scrolls.
func shiftRegion(img *image.RGBA, src image.Rectangle, offset image.Point) {
	src = src.Intersect(img.Bounds())
	if src.Empty() {
		return
	}
	tmp := image.NewRGBA(image.Rectangle{Max: src.Size()})
	draw.Draw(tmp, tmp.Bounds(), img, src.Min, draw.Src)

	dst := src.Add(offset).Intersect(img.Bounds())
	if dst.Empty() {
		return
	}
	sp := dst.Min.Sub(offset).Sub(src.Min)
	draw.Draw(img, dst, tmp, sp, draw.Src)
}
