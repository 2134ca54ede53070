/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene implements the editing engine: the drawable item model, the
// structural item codec, the reversible scene commands, and the Scene itself
// with its tool state machine and clipboard operations.
package scene

import (
	"fmt"
	"strings"

	"scenedraw/internal/geom"
)

// Kind identifies the closed set of drawable item variants.
type Kind uint8

const (
	KindFreehand Kind = iota
	KindLine
	KindRect
	KindEllipse
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindFreehand:
		return "Freehand"
	case KindLine:
		return "Line"
	case KindRect:
		return "Rect"
	case KindEllipse:
		return "Ellipse"
	case KindPolygon:
		return "Polygon"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Color is an RGBA color. Items only ever serialize the RGB part; alpha zero
// on a fill means "no fill" to the codec.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// Hex returns the color as "#rrggbb". Alpha is not encoded.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rrggbb" (case-insensitive) into an opaque color.
func ParseHex(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return Color{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.ToLower(s[1:]), "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, false
	}
	return Color{r, g, b, 255}, true
}

// Stroke is the outline paint of an item.
type Stroke struct {
	Color Color
	Width float64
}

// Fill is the interior paint. Enabled=false or a zero-alpha color both mean
// the item has no fill.
type Fill struct {
	Color   Color
	Enabled bool
}

// None reports whether the fill is absent for serialization purposes.
func (f Fill) None() bool { return !f.Enabled || f.Color.A == 0 }

// Item is one drawable entity. Geometry fields are in the item's local frame;
// Pos is the only translation applied on top. Which geometry field is
// meaningful depends on Kind: Points for Freehand and Polygon, A/B for Line,
// Box for Rect and Ellipse.
type Item struct {
	Kind   Kind
	Points []geom.Pt
	A, B   geom.Pt
	Box    geom.Rect

	Pos     geom.Pt
	Stroke  Stroke
	Fill    Fill
	Z       float64
	Opacity float64

	Selectable bool
	Movable    bool
	Enabled    bool

	// Tag marks provenance, e.g. assistant-generated parts. Empty for
	// ordinary user-drawn items.
	Tag string
}

// NewItem returns an item of the given kind with interactive defaults.
func NewItem(k Kind) *Item {
	return &Item{
		Kind:       k,
		Stroke:     Stroke{Color: Black, Width: 2},
		Opacity:    1,
		Selectable: true,
		Movable:    true,
		Enabled:    true,
	}
}

// localBounds is the bounding box in the item's own frame.
func (it *Item) localBounds() geom.Rect {
	switch it.Kind {
	case KindFreehand, KindPolygon:
		return geom.BoundsOf(it.Points)
	case KindLine:
		return geom.BoundsOf([]geom.Pt{it.A, it.B})
	case KindRect, KindEllipse:
		return it.Box
	}
	return geom.Rect{}
}

// Bounds returns the item's bounding box in scene coordinates.
func (it *Item) Bounds() geom.Rect {
	return it.localBounds().Translate(it.Pos)
}

// Hit reports whether scene point p hits the item within tol units. Stroked
// outlines count as hit near the outline; filled rects/ellipses and polygons
// also hit on the interior.
func (it *Item) Hit(p geom.Pt, tol float64) bool {
	q := p.Sub(it.Pos)
	switch it.Kind {
	case KindFreehand:
		for i := 1; i < len(it.Points); i++ {
			if geom.DistToSegment(q, it.Points[i-1], it.Points[i]) <= tol {
				return true
			}
		}
		if len(it.Points) == 1 {
			return geom.Manhattan(q, it.Points[0]) <= tol
		}
		return false
	case KindLine:
		return geom.DistToSegment(q, it.A, it.B) <= tol
	case KindRect:
		outer := geom.R(it.Box.X-tol, it.Box.Y-tol, it.Box.W+2*tol, it.Box.H+2*tol)
		if !outer.Contains(q) {
			return false
		}
		if !it.Fill.None() {
			return true
		}
		inner := geom.R(it.Box.X+tol, it.Box.Y+tol, it.Box.W-2*tol, it.Box.H-2*tol)
		return inner.W <= 0 || inner.H <= 0 || !inner.Contains(q)
	case KindEllipse:
		rx, ry := it.Box.W/2, it.Box.H/2
		if rx <= 0 || ry <= 0 {
			return false
		}
		cx, cy := it.Box.X+rx, it.Box.Y+ry
		dx := (q.X - cx) / (rx + tol)
		dy := (q.Y - cy) / (ry + tol)
		if dx*dx+dy*dy > 1 {
			return false
		}
		if !it.Fill.None() {
			return true
		}
		ix := (q.X - cx) / maxf(rx-tol, 1e-9)
		iy := (q.Y - cy) / maxf(ry-tol, 1e-9)
		return ix*ix+iy*iy >= 1
	case KindPolygon:
		if geom.PointInPolygon(q, it.Points) {
			return true
		}
		n := len(it.Points)
		for i := 0; i < n; i++ {
			if geom.DistToSegment(q, it.Points[i], it.Points[(i+1)%n]) <= tol {
				return true
			}
		}
		return false
	}
	return false
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	cp := *it
	if it.Points != nil {
		cp.Points = append([]geom.Pt(nil), it.Points...)
	}
	return &cp
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
