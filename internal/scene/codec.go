/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"encoding/json"
	"fmt"

	"scenedraw/internal/geom"
)

// The codec maps an Item to a structural JSON record and back. It is the
// single source of truth for clipboard, duplication, and template files.
// Unknown kinds encode to "no record" and unknown records decode to "no
// item"; neither is an error.

// FillNone is the fill sentinel for items without a brush.
const FillNone = "none"

// PathElem is one element of a freehand path: a point plus the pen verb that
// reaches it. It serializes as the triple [x, y, op].
type PathElem struct {
	X, Y float64
	Op   string // "MoveTo" or "LineTo"
}

func (e PathElem) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.X, e.Y, e.Op})
}

func (e *PathElem) UnmarshalJSON(b []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.X); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Y); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &e.Op)
}

// Record is the structural encoding of one item. Exactly one geometry field
// is set, matching Type.
type Record struct {
	Type        string      `json:"type"`
	Pos         [2]float64  `json:"pos"`
	Stroke      string      `json:"stroke"`
	StrokeWidth float64     `json:"strokeWidth"`
	Fill        string      `json:"fill"`
	Z           float64     `json:"z"`
	Tag         string      `json:"tag,omitempty"`
	Line        []float64   `json:"line,omitempty"`
	Rect        []float64   `json:"rect,omitempty"`
	Ellipse     []float64   `json:"ellipse,omitempty"`
	Path        []PathElem  `json:"path,omitempty"`
	Polygon     [][]float64 `json:"polygon,omitempty"`
}

// Encode captures the item as a Record. The second return is false for item
// kinds the codec does not support.
func Encode(it *Item) (Record, bool) {
	rec := Record{
		Pos:         [2]float64{it.Pos.X, it.Pos.Y},
		Stroke:      it.Stroke.Color.Hex(),
		StrokeWidth: it.Stroke.Width,
		Fill:        FillNone,
		Z:           it.Z,
		Tag:         it.Tag,
	}
	if !it.Fill.None() {
		rec.Fill = it.Fill.Color.Hex()
	}
	switch it.Kind {
	case KindFreehand:
		rec.Type = "Freehand"
		for i, p := range it.Points {
			op := "LineTo"
			if i == 0 {
				op = "MoveTo"
			}
			rec.Path = append(rec.Path, PathElem{X: p.X, Y: p.Y, Op: op})
		}
	case KindLine:
		rec.Type = "Line"
		rec.Line = []float64{it.A.X, it.A.Y, it.B.X, it.B.Y}
	case KindRect:
		rec.Type = "Rect"
		rec.Rect = []float64{it.Box.X, it.Box.Y, it.Box.W, it.Box.H}
	case KindEllipse:
		rec.Type = "Ellipse"
		rec.Ellipse = []float64{it.Box.X, it.Box.Y, it.Box.W, it.Box.H}
	case KindPolygon:
		rec.Type = "Polygon"
		for _, p := range it.Points {
			rec.Polygon = append(rec.Polygon, []float64{p.X, p.Y})
		}
	default:
		return Record{}, false
	}
	return rec, true
}

// Decode rebuilds an item from a Record. Unknown type or missing geometry
// yields (nil, false). Decoded items are always selectable, movable, and
// enabled regardless of the source item's flags.
func Decode(rec Record) (*Item, bool) {
	var it *Item
	switch rec.Type {
	case "Freehand":
		if len(rec.Path) == 0 {
			return nil, false
		}
		it = NewItem(KindFreehand)
		for _, e := range rec.Path {
			it.Points = append(it.Points, geom.Pt{X: e.X, Y: e.Y})
		}
	case "Line":
		if len(rec.Line) != 4 {
			return nil, false
		}
		it = NewItem(KindLine)
		it.A = geom.Pt{X: rec.Line[0], Y: rec.Line[1]}
		it.B = geom.Pt{X: rec.Line[2], Y: rec.Line[3]}
	case "Rect":
		if len(rec.Rect) != 4 {
			return nil, false
		}
		it = NewItem(KindRect)
		it.Box = geom.R(rec.Rect[0], rec.Rect[1], rec.Rect[2], rec.Rect[3])
	case "Ellipse":
		if len(rec.Ellipse) != 4 {
			return nil, false
		}
		it = NewItem(KindEllipse)
		it.Box = geom.R(rec.Ellipse[0], rec.Ellipse[1], rec.Ellipse[2], rec.Ellipse[3])
	case "Polygon":
		if len(rec.Polygon) == 0 {
			return nil, false
		}
		it = NewItem(KindPolygon)
		for _, v := range rec.Polygon {
			if len(v) != 2 {
				return nil, false
			}
			it.Points = append(it.Points, geom.Pt{X: v[0], Y: v[1]})
		}
	default:
		return nil, false
	}
	it.Pos = geom.Pt{X: rec.Pos[0], Y: rec.Pos[1]}
	if c, ok := ParseHex(rec.Stroke); ok {
		it.Stroke.Color = c
	}
	it.Stroke.Width = rec.StrokeWidth
	if rec.Fill != "" && rec.Fill != FillNone {
		if c, ok := ParseHex(rec.Fill); ok {
			it.Fill = Fill{Color: c, Enabled: true}
		}
	}
	it.Z = rec.Z
	it.Tag = rec.Tag
	return it, true
}

// clipboardPayload is the clipboard/template item envelope.
type clipboardPayload struct {
	Items []Record `json:"items"`
}

// EncodeClipboard serializes the items as the clipboard text payload
// {"items":[...]}. Unsupported items are skipped.
func EncodeClipboard(items []*Item) (string, error) {
	p := clipboardPayload{Items: []Record{}}
	for _, it := range items {
		if rec, ok := Encode(it); ok {
			p.Items = append(p.Items, rec)
		}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode clipboard: %w", err)
	}
	return string(b), nil
}

// DecodeClipboard parses clipboard text into items. Non-JSON input, a
// missing items key, or undecodable records all degrade to fewer (possibly
// zero) items; the caller never sees an error.
func DecodeClipboard(text string) []*Item {
	var p clipboardPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil
	}
	var out []*Item
	for _, rec := range p.Items {
		if it, ok := Decode(rec); ok {
			out = append(out, it)
		}
	}
	return out
}
