// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpurender

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/textmode/render"
)

// Debug enables verbose logging of device resource lifecycle events.
var Debug = false

// deviceResources owns every GPU-backed object the engine holds, plus
// the CPU frame buffers drawn into between presents. It is created as
// a whole and released as a whole: a failure partway through creation
// rolls back everything already acquired, so the engine never observes
// partial device state.
type deviceResources struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// surface is borrowed from the target and configured as the swap
	// chain; nil when resources were created without one.
	surface *wgpu.Surface
	format  wgpu.TextureFormat

	// size is the pixel size the surface was configured at, compared
	// against the target's client size to detect resizes.
	size image.Point

	// back receives all drawing for the frame in progress; front
	// mirrors what was last presented so partial redraws can
	// composite on top of it.
	back  *image.RGBA
	front *image.RGBA

	// fgBrush and bgBrush are the two default solid brushes. Transient
	// colors (cursor overrides, grid lines, selection) use one-off
	// brushes and never mutate these.
	fgBrush *image.Uniform
	bgBrush *image.Uniform

	// upload is scratch for swizzling when the surface format is not
	// byte-order RGBA.
	upload []byte
}

// createDeviceResources builds a full set of device resources sized to
// the target's current client area. Existing resources are fully
// released first; there is no incremental patching of a live set.
// When withSurface is false only the device itself is created, for
// callers that need the GPU before a window surface exists.
func (e *Engine) createDeviceResources(withSurface bool) error {
	e.releaseDeviceResources()

	res := &deviceResources{}
	ok := false
	defer func() {
		if !ok {
			res.release()
		}
	}()

	res.instance = wgpu.CreateInstance(nil)
	if res.instance == nil {
		return fmt.Errorf("creating instance: %w", render.ErrDevice)
	}

	opts := &wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: e.software,
	}
	if withSurface {
		res.surface = e.target.Surface(res.instance)
		opts.CompatibleSurface = res.surface
	}
	adapter, err := res.instance.RequestAdapter(opts)
	if err != nil {
		return fmt.Errorf("requesting adapter: %w: %w", render.ErrDevice, err)
	}
	res.adapter = adapter

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("requesting device: %w: %w", render.ErrDevice, err)
	}
	res.device = device
	res.queue = device.GetQueue()

	res.size = e.target.ClientSize()

	if withSurface {
		caps := res.surface.GetCapabilities(adapter)
		if len(caps.Formats) == 0 {
			return fmt.Errorf("surface has no formats: %w", render.ErrDevice)
		}
		res.format = caps.Formats[0]
		res.surface.Configure(adapter, device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
			Format:      res.format,
			Width:       uint32(res.size.X),
			Height:      uint32(res.size.Y),
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],
		})

		bounds := image.Rectangle{Max: res.size}
		res.back = image.NewRGBA(bounds)
		res.front = image.NewRGBA(bounds)
		res.fgBrush = image.NewUniform(e.fg)
		res.bgBrush = image.NewUniform(e.bg)
	}

	e.res = res
	e.dirty.DisplaySize = res.size
	ok = true
	if Debug {
		slog.Info("gpurender: created device resources",
			"size", res.size, "format", res.format, "surface", withSurface)
	}
	return nil
}

// releaseDeviceResources tears down the engine's device resources, in
// dependency order. Safe to call with none held.
func (e *Engine) releaseDeviceResources() {
	if e.res == nil {
		return
	}
	e.res.release()
	e.res = nil
	if Debug {
		slog.Info("gpurender: released device resources")
	}
}

// release frees everything held, brushes and buffers before the
// surface configuration, the device before the adapter, the adapter
// before the instance. The surface handle itself belongs to the target
// and is only forgotten, not released.
func (res *deviceResources) release() {
	res.fgBrush = nil
	res.bgBrush = nil
	res.back = nil
	res.front = nil
	res.upload = nil
	res.surface = nil
	res.queue = nil
	if res.device != nil {
		res.device.Release()
		res.device = nil
	}
	if res.adapter != nil {
		res.adapter.Release()
		res.adapter = nil
	}
	if res.instance != nil {
		res.instance.Release()
		res.instance = nil
	}
}

// defaultFg and defaultBg are the brush colors resources start with
// until UpdateDrawingBrushes is called.
var (
	defaultFg = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	defaultBg = color.RGBA{A: 255}
)
