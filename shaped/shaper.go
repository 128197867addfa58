// Copyright (c) 2026, The Textmode Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaped resolves font families to concrete faces with
// monospace cell metrics, and shapes text runs into glyph sequences
// ready for grid-aligned drawing, using go-text/typesetting.
package shaped

import (
	"fmt"
	"image"
	"os"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/shaping"
	"github.com/textmode/render"
	"github.com/textmode/render/base/errors"
	"golang.org/x/image/math/fixed"
)

// Font is a resolved face plus the monospace cell geometry solved for
// it. Created by [Shaper.ResolveFont]; replaced wholesale on font
// changes, never mutated.
type Font struct {

	// Family is the resolved family name.
	Family string

	// Face is the concrete face handle.
	Face *font.Face

	// Size is the em size in pixels, back-solved so glyph advances
	// land on integer pixels.
	Size float32

	// CellSize is the character cell size in integer pixels.
	CellSize image.Point

	// Baseline is the descent over units-per-em ratio.
	Baseline float32

	// LineBaseline is the baseline's pixel distance from the cell top,
	// centering the glyph vertically within the integer cell.
	LineBaseline float32
}

// Run is the shaped form of one line of text.
type Run struct {

	// Glyphs is the fast-path mapping of one glyph per input rune,
	// each advancing exactly one cell. Nil when full shaping was
	// required.
	Glyphs []font.GID

	// Outputs holds the fully shaped segments when the fast path did
	// not apply.
	Outputs []shaping.Output
}

// Simple reports whether the run took the uniform-advance fast path.
func (r *Run) Simple() bool {
	return r.Glyphs != nil
}

// Shaper resolves fonts and shapes text, from go-text/shaping.
type Shaper struct {
	shaper   shaping.HarfbuzzShaper
	fontMap  *fontscan.FontMap
	splitter shaping.Segmenter

	// families is the lowercased set of known family names, used for
	// existence checks before resolution.
	families map[string]bool

	// outBuff is the output buffer to avoid excessive memory consumption.
	outBuff []shaping.Output
}

// NewShaper returns a Shaper loaded with the system font collection.
func NewShaper() *Shaper {
	sh := &Shaper{families: map[string]bool{}}
	sh.fontMap = fontscan.NewFontMap(nil)
	str, err := os.UserCacheDir()
	errors.Log(err)
	if err := sh.fontMap.UseSystemFonts(str); err != nil {
		errors.Log(err)
	}
	for _, fp := range errors.Log1(fontscan.SystemFonts(nil, str)) {
		sh.families[strings.ToLower(fp.Family)] = true
	}
	sh.shaper.SetFontCacheSize(32)
	return sh
}

// LoadFont adds a font resource under the given family name, making it
// resolvable alongside the system collection.
func (sh *Shaper) LoadFont(resource opentype.Resource, path, family string) error {
	if err := sh.fontMap.AddFont(resource, path, family); err != nil {
		return err
	}
	sh.families[strings.ToLower(family)] = true
	return nil
}

// ResolveFont looks up the given family in the font collection and
// solves the monospace cell geometry for the requested cell height in
// pixels. A family absent from the collection is reported via
// [render.ErrFontNotFound]; callers supply a fallback family and retry.
func (sh *Shaper) ResolveFont(family string, heightPx int) (*Font, error) {
	if !sh.families[strings.ToLower(family)] {
		return nil, fmt.Errorf("%q: %w", family, render.ErrFontNotFound)
	}
	sh.fontMap.SetQuery(fontscan.Query{Families: []string{family}})
	face := sh.fontMap.ResolveFace(' ')
	if face == nil {
		return nil, fmt.Errorf("%q: %w", family, render.ErrFontNotFound)
	}

	upem := float32(face.Upem())
	ext, ok := face.FontHExtents()
	if !ok {
		return nil, fmt.Errorf("%q: face has no horizontal metrics: %w", family, render.ErrFontNotFound)
	}
	gid, ok := face.NominalGlyph(' ')
	if !ok {
		return nil, fmt.Errorf("%q: face has no space glyph: %w", family, render.ErrFontNotFound)
	}

	cm := solveCellMetrics(float32(heightPx), faceMetrics{
		upem:         upem,
		ascent:       ext.Ascender,
		descent:      -ext.Descender, // stored negative in the face
		spaceAdvance: face.HorizontalAdvance(gid),
	})

	return &Font{
		Family:       family,
		Face:         face,
		Size:         cm.fontSize,
		CellSize:     cm.cell,
		Baseline:     cm.baselineRatio,
		LineBaseline: cm.lineBaseline,
	}, nil
}

// ShapeRun shapes one line of text against the given font. Text that
// segments to a single left-to-right run on the resolved face, with a
// nominal glyph for every rune, takes the fast path: one glyph per
// rune, each advancing one cell. Everything else is fully shaped.
func (sh *Shaper) ShapeRun(text []rune, f *Font) *Run {
	if len(text) == 0 {
		return &Run{Glyphs: []font.GID{}}
	}

	in := shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: di.DirectionLTR,
		Face:      f.Face,
		Size:      fixed.Int26_6(f.Size * 64),
	}

	sh.fontMap.SetQuery(fontscan.Query{Families: []string{f.Family}})
	ins := sh.splitter.Split(in, sh.fontMap)

	if simple, glyphs := sh.classify(ins, text, f.Face); simple {
		return &Run{Glyphs: glyphs}
	}

	sh.outBuff = sh.outBuff[:0]
	for _, in := range ins {
		if in.Face == nil {
			continue
		}
		sh.outBuff = append(sh.outBuff, sh.shaper.Shape(in))
	}
	out := make([]shaping.Output, len(sh.outBuff))
	copy(out, sh.outBuff)
	return &Run{Outputs: out}
}

// classify decides the fast path: the whole text must be one
// left-to-right segment on the resolved face, and every rune must map
// directly to a glyph that stands on its own. Nonspacing marks combine
// with the previous glyph rather than occupying a cell, so they always
// force full shaping even when the face has a nominal glyph for them.
func (sh *Shaper) classify(ins []shaping.Input, text []rune, face *font.Face) (bool, []font.GID) {
	if len(ins) != 1 || ins[0].Direction != di.DirectionLTR || ins[0].Face != face {
		return false, nil
	}
	glyphs := make([]font.GID, len(text))
	for i, r := range text {
		if unicode.Is(unicode.Mn, r) {
			return false, nil
		}
		gid, ok := face.NominalGlyph(r)
		if !ok {
			return false, nil
		}
		glyphs[i] = gid
	}
	return true, glyphs
}
