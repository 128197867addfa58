// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpurender

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/textmode/render"
)

// Target is the display target this engine draws to: a window (or
// equivalent) that can expose a WebGPU surface. The surface is owned
// by the target; the engine configures it but never releases it.
type Target interface {
	render.Target

	// Surface returns the WebGPU surface of the target's window,
	// created against the given instance. Called again with a new
	// instance whenever the engine rebuilds its device.
	Surface(inst *wgpu.Instance) *wgpu.Surface
}
