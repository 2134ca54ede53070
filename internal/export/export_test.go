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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenedraw/internal/geom"
	"scenedraw/internal/scene"
)

func sampleItems() []*scene.Item {
	rect := scene.NewItem(scene.KindRect)
	rect.Box = geom.R(10, 20, 40, 60)
	rect.Fill = scene.Fill{Color: scene.Color{R: 255, G: 200, B: 0, A: 255}, Enabled: true}

	ell := scene.NewItem(scene.KindEllipse)
	ell.Box = geom.R(100, 20, 30, 30)

	line := scene.NewItem(scene.KindLine)
	line.A = geom.Pt{X: 0, Y: 0}
	line.B = geom.Pt{X: 50, Y: 50}

	pen := scene.NewItem(scene.KindFreehand)
	pen.Points = []geom.Pt{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 4, Y: 2}}

	poly := scene.NewItem(scene.KindPolygon)
	poly.Points = []geom.Pt{{X: 60, Y: 100}, {X: 80, Y: 140}, {X: 40, Y: 140}}

	return []*scene.Item{rect, ell, line, pen, poly}
}

func TestSVGContainsAllShapes(t *testing.T) {
	data, err := SVG(sampleItems(), SVGOptions{Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("svg: %v", err)
	}
	s := string(data)
	for _, want := range []string{"<rect", "<ellipse", "<line", "<path", "<polygon", "</svg>"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in output:\n%s", want, s)
		}
	}
	if !strings.Contains(s, "fill=\"#ffc800\"") {
		t.Fatalf("rect fill not rendered:\n%s", s)
	}
}

func TestSVGSkipsDisabledAndAppliesOffset(t *testing.T) {
	rect := scene.NewItem(scene.KindRect)
	rect.Box = geom.R(0, 0, 10, 10)
	rect.Pos = geom.Pt{X: 5, Y: 7}

	hidden := scene.NewItem(scene.KindRect)
	hidden.Box = geom.R(100, 100, 10, 10)
	hidden.Enabled = false

	data, err := SVG([]*scene.Item{rect, hidden}, SVGOptions{Width: 50, Height: 50})
	if err != nil {
		t.Fatalf("svg: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "x=\"5\" y=\"7\"") {
		t.Fatalf("pos offset not applied:\n%s", s)
	}
	if strings.Contains(s, "x=\"100\"") {
		t.Fatalf("disabled item rendered:\n%s", s)
	}
}

func TestSVGAutoSizesFromBounds(t *testing.T) {
	rect := scene.NewItem(scene.KindRect)
	rect.Box = geom.R(10, 10, 30, 20)

	data, err := SVG([]*scene.Item{rect}, SVGOptions{Margin: 5})
	if err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.Contains(string(data), "viewBox=\"0 0 45 35\"") {
		t.Fatalf("unexpected viewBox:\n%s", data)
	}
}

func TestExportSVGWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "scene.svg")
	if err := ExportSVG(sampleItems(), out, SVGOptions{Width: 200, Height: 200}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("svg empty")
	}
}

func TestExportPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "scene.pdf")
	err := ExportPDF(sampleItems(), out, PDFOptions{Width: 200, Height: 200, Title: "SceneDraw Export"})
	if err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf empty")
	}
}
