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
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"scenedraw/internal/scene"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt); the page origin is top-left, matching the scene
// coordinate system, so item geometry maps 1:1 onto the page.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	Width  float64
	Height float64
	Margin float64
	Title  string
}

// ExportPDF writes the items to a single-page PDF at outPath.
// When Width/Height are zero the page is sized to the item bounds plus Margin.
func ExportPDF(items []*scene.Item, outPath string, opt PDFOptions) error {
	w, h := opt.Width, opt.Height
	if w <= 0 || h <= 0 {
		b := canvasBounds(items)
		w = b.X + b.W + opt.Margin
		h = b.Y + b.H + opt.Margin
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, false)
	}
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	for _, it := range items {
		if it == nil || !it.Enabled {
			continue
		}
		drawItemPDF(pdf, it)
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawItemPDF(pdf *gofpdf.Fpdf, it *scene.Item) {
	setDrawColor(pdf, it.Stroke.Color)
	pdf.SetLineWidth(it.Stroke.Width)
	if it.Opacity < 1 {
		pdf.SetAlpha(it.Opacity, "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}
	style := "D"
	if !it.Fill.None() {
		setFillColor(pdf, it.Fill.Color)
		style = "FD"
	}

	ox, oy := it.Pos.X, it.Pos.Y
	switch it.Kind {
	case scene.KindFreehand:
		for i := 1; i < len(it.Points); i++ {
			a, b := it.Points[i-1], it.Points[i]
			pdf.Line(a.X+ox, a.Y+oy, b.X+ox, b.Y+oy)
		}
	case scene.KindLine:
		pdf.Line(it.A.X+ox, it.A.Y+oy, it.B.X+ox, it.B.Y+oy)
	case scene.KindRect:
		pdf.Rect(it.Box.X+ox, it.Box.Y+oy, it.Box.W, it.Box.H, style)
	case scene.KindEllipse:
		cx := it.Box.X + it.Box.W/2 + ox
		cy := it.Box.Y + it.Box.H/2 + oy
		pdf.Ellipse(cx, cy, it.Box.W/2, it.Box.H/2, 0, style)
	case scene.KindPolygon:
		if len(it.Points) < 3 {
			return
		}
		pts := make([]gofpdf.PointType, 0, len(it.Points))
		for _, p := range it.Points {
			pts = append(pts, gofpdf.PointType{X: p.X + ox, Y: p.Y + oy})
		}
		pdf.Polygon(pts, style)
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c scene.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c scene.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
