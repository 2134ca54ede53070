/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package assist

import (
	"scenedraw/internal/geom"
	"scenedraw/internal/scene"
)

// Tags marking assistant-generated parts in the scene.
const (
	TagCatEar       = "assistant:cat_ear"
	TagRoofTriangle = "assistant:roof_triangle"
)

// Suggestion ids used by the built-in heuristics.
const (
	IDCatEars      = "cat_ears"
	IDRoofTriangle = "roof_triangle"
)

// Heuristics is the built-in oracle: ears for the first ellipse, a roof for
// the first rectangle. Each heuristic abstains when its target shape is
// absent, the scene already carries its parts, or the user declined it this
// session on an auto trigger.
func Heuristics() Oracle {
	return OracleFunc(func(ctx Context) *Proposal {
		skip := func(id string) bool {
			return ctx.Trigger == TriggerAuto && ctx.AutoSuppressed[id]
		}
		if ctx.HasEllipse && !ctx.HasCatEars && !skip(IDCatEars) {
			return &Proposal{
				SuggestionID:   IDCatEars,
				Label:          "Add cat ears?",
				UncertaintyPct: 18,
				Explanation: []string{
					"The scene contains an ellipse that could be a head.",
					"Round heads are often drawn with ears next.",
					"No ear shapes are present yet.",
				},
				ActionHint: "Two triangles will be placed on top of the ellipse.",
				Build:      buildCatEars,
			}
		}
		if ctx.HasRect && !ctx.HasRoofTriangle && !skip(IDRoofTriangle) {
			return &Proposal{
				SuggestionID:   IDRoofTriangle,
				Label:          "Add a roof?",
				UncertaintyPct: 24,
				Explanation: []string{
					"The scene contains a rectangle that could be a house body.",
					"Houses are usually completed with a roof.",
				},
				ActionHint: "A triangle will be placed on top of the rectangle.",
				Build:      buildRoofTriangle,
			}
		}
		return nil
	})
}

// firstUntagged returns the first live item of the given kind that is not an
// assistant-generated part.
func firstUntagged(s *scene.Scene, k scene.Kind) *scene.Item {
	for _, it := range s.Items() {
		if it.Kind == k && it.Tag == "" {
			return it
		}
	}
	return nil
}

// buildCatEars places two ear triangles on top of the first plain ellipse.
func buildCatEars(s *scene.Scene) []*scene.Item {
	head := firstUntagged(s, scene.KindEllipse)
	if head == nil {
		return nil
	}
	b := head.Box
	earW := b.W * 0.3
	earH := b.H * 0.4
	left := earTriangle(geom.Pt{X: b.X + b.W*0.1, Y: b.Y}, earW, earH)
	right := earTriangle(geom.Pt{X: b.X + b.W*0.6, Y: b.Y}, earW, earH)
	items := []*scene.Item{left, right}
	for _, it := range items {
		it.Pos = head.Pos
		it.Stroke = head.Stroke
		it.Z = head.Z + 1
		it.Tag = TagCatEar
	}
	return items
}

// earTriangle builds one upward-pointing ear with base at y=base.Y spanning
// [base.X, base.X+w].
func earTriangle(base geom.Pt, w, h float64) *scene.Item {
	it := scene.NewItem(scene.KindPolygon)
	it.Points = []geom.Pt{
		{X: base.X, Y: base.Y},
		{X: base.X + w, Y: base.Y},
		{X: base.X + w/2, Y: base.Y - h},
	}
	return it
}

// buildRoofTriangle places a roof over the first plain rectangle.
func buildRoofTriangle(s *scene.Scene) []*scene.Item {
	body := firstUntagged(s, scene.KindRect)
	if body == nil {
		return nil
	}
	b := body.Box
	roof := scene.NewItem(scene.KindPolygon)
	roof.Points = []geom.Pt{
		{X: b.X, Y: b.Y},
		{X: b.X + b.W, Y: b.Y},
		{X: b.X + b.W/2, Y: b.Y - b.H*0.6},
	}
	roof.Pos = body.Pos
	roof.Stroke = body.Stroke
	roof.Fill = body.Fill
	roof.Z = body.Z + 1
	roof.Tag = TagRoofTriangle
	return []*scene.Item{roof}
}
