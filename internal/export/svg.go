/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"scenedraw/internal/geom"
	"scenedraw/internal/scene"
)

// SVGOptions controls SVG export behavior.
// - Width/Height fix the canvas size in user units; when zero the union of
//   the item bounds plus Margin is used.
// - Background is painted as a full-canvas rect unless BackgroundNone is set.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	Width          float64
	Height         float64
	Margin         float64
	Background     scene.Color
	BackgroundNone bool
}

// SVG renders the items as a standalone SVG document. Items are drawn in
// slice order; callers that want Z ordering sort beforehand.
func SVG(items []*scene.Item, opt SVGOptions) ([]byte, error) {
	w, h := opt.Width, opt.Height
	if w <= 0 || h <= 0 {
		b := canvasBounds(items)
		w = b.X + b.W + opt.Margin
		h = b.Y + b.H + opt.Margin
	}
	bg := opt.Background
	if bg.A == 0 && bg.R == 0 && bg.G == 0 && bg.B == 0 {
		bg = scene.White
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", w, h, w, h)
	if !opt.BackgroundNone {
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", w, h, bg.Hex())
	}

	for _, it := range items {
		if it == nil || !it.Enabled {
			continue
		}
		writeItemSVG(wf, it)
	}

	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("render svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// ExportSVG writes the items to outPath, creating parent directories.
func ExportSVG(items []*scene.Item, outPath string, opt SVGOptions) error {
	data, err := SVG(items, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeItemSVG(wf func(string, ...any), it *scene.Item) {
	style := svgPaint(it)
	switch it.Kind {
	case scene.KindFreehand:
		if len(it.Points) == 0 {
			return
		}
		var d bytes.Buffer
		for i, p := range it.Points {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%g %g ", cmd, p.X+it.Pos.X, p.Y+it.Pos.Y)
		}
		wf("  <path d=\"%s\" fill=\"none\" %s/>\n", bytes.TrimSpace(d.Bytes()), style)
	case scene.KindLine:
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" %s/>\n",
			it.A.X+it.Pos.X, it.A.Y+it.Pos.Y, it.B.X+it.Pos.X, it.B.Y+it.Pos.Y, style)
	case scene.KindRect:
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" %s/>\n",
			it.Box.X+it.Pos.X, it.Box.Y+it.Pos.Y, it.Box.W, it.Box.H, svgFill(it), style)
	case scene.KindEllipse:
		cx := it.Box.X + it.Box.W/2 + it.Pos.X
		cy := it.Box.Y + it.Box.H/2 + it.Pos.Y
		wf("  <ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"%s\" %s/>\n",
			cx, cy, it.Box.W/2, it.Box.H/2, svgFill(it), style)
	case scene.KindPolygon:
		if len(it.Points) == 0 {
			return
		}
		var pts bytes.Buffer
		for _, p := range it.Points {
			fmt.Fprintf(&pts, "%g,%g ", p.X+it.Pos.X, p.Y+it.Pos.Y)
		}
		wf("  <polygon points=\"%s\" fill=\"%s\" %s/>\n", bytes.TrimSpace(pts.Bytes()), svgFill(it), style)
	}
}

func svgPaint(it *scene.Item) string {
	s := fmt.Sprintf("stroke=\"%s\" stroke-width=\"%g\"", it.Stroke.Color.Hex(), it.Stroke.Width)
	if it.Opacity < 1 {
		s += fmt.Sprintf(" opacity=\"%g\"", it.Opacity)
	}
	return s
}

func svgFill(it *scene.Item) string {
	if it.Fill.None() {
		return "none"
	}
	return it.Fill.Color.Hex()
}

func canvasBounds(items []*scene.Item) geom.Rect {
	var (
		out  geom.Rect
		seen bool
	)
	for _, it := range items {
		if it == nil {
			continue
		}
		b := it.Bounds()
		if !seen {
			out = b
			seen = true
			continue
		}
		out = out.Union(b)
	}
	return out
}
