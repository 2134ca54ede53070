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
	"testing"

	"scenedraw/internal/geom"
)

func drawRect(s *Scene, a, b geom.Pt) *Item {
	s.SetTool(ToolRect)
	s.PointerDown(a)
	s.PointerMove(b)
	s.PointerUp(b)
	items := s.Items()
	return items[len(items)-1]
}

func TestRectGestureNormalizes(t *testing.T) {
	s := NewScene()
	it := drawRect(s, geom.Pt{X: 50, Y: 80}, geom.Pt{X: 10, Y: 20})
	if it.Kind != KindRect {
		t.Fatalf("expected rect, got %v", it.Kind)
	}
	want := geom.R(10, 20, 40, 60)
	if it.Box != want {
		t.Fatalf("expected %+v, got %+v", want, it.Box)
	}
}

func TestInteractiveAddIsUndoable(t *testing.T) {
	s := NewScene()
	s.SetTool(ToolPen)
	s.PointerDown(geom.Pt{X: 1, Y: 1})
	s.PointerMove(geom.Pt{X: 2, Y: 2})
	s.PointerMove(geom.Pt{X: 3, Y: 1})
	if s.Len() != 1 {
		t.Fatalf("stroke must be live while drawing, len=%d", s.Len())
	}
	s.PointerUp(geom.Pt{X: 3, Y: 1})
	it := s.Items()[0]
	if it.Kind != KindFreehand || len(it.Points) != 3 {
		t.Fatalf("unexpected stroke %v with %d points", it.Kind, len(it.Points))
	}
	if s.History().Len() != 1 {
		t.Fatalf("expected one history entry, got %d", s.History().Len())
	}
	// the add was already applied, so the push must not have duplicated it
	if s.Len() != 1 {
		t.Fatalf("expected 1 item after finish, got %d", s.Len())
	}
	s.History().Undo()
	if s.Len() != 0 {
		t.Fatalf("undo must remove the stroke")
	}
	s.History().Redo()
	if s.Len() != 1 || !s.Contains(it) {
		t.Fatalf("redo must restore the stroke")
	}
}

func TestStyleCapturedAtCreation(t *testing.T) {
	s := NewScene()
	red := Color{255, 0, 0, 255}
	s.SetStrokeColor(red)
	s.SetStrokeWidth(5)
	s.SetFillColor(Color{0, 255, 0, 255})
	it := drawRect(s, geom.Pt{}, geom.Pt{X: 10, Y: 10})
	if it.Stroke.Color != red || it.Stroke.Width != 5 {
		t.Fatalf("stroke not captured: %+v", it.Stroke)
	}
	if it.Fill.None() {
		t.Fatalf("fill not captured")
	}
	// later style changes must not restyle the existing item
	s.SetStrokeColor(Black)
	s.SetNoFill()
	if it.Stroke.Color != red || it.Fill.None() {
		t.Fatalf("existing item was restyled")
	}
}

func TestEraserRemovesTopmostPerStep(t *testing.T) {
	s := NewScene()
	bottom := drawRect(s, geom.Pt{}, geom.Pt{X: 20, Y: 20})
	top := drawRect(s, geom.Pt{X: 5, Y: 5}, geom.Pt{X: 15, Y: 15})
	s.SetTool(ToolEraser)
	s.PointerDown(geom.Pt{X: 5, Y: 5}) // on top item's outline
	s.PointerUp(geom.Pt{X: 5, Y: 5})
	if s.Contains(top) || !s.Contains(bottom) {
		t.Fatalf("eraser must remove the topmost hit item only")
	}
	// each erased item is individually undoable
	s.History().Undo()
	if !s.Contains(top) {
		t.Fatalf("undo must restore the erased item")
	}
}

func TestSelectMoveEpsilon(t *testing.T) {
	s := NewScene()
	s.SetFillColor(Color{0, 0, 255, 255})
	it := drawRect(s, geom.Pt{}, geom.Pt{X: 20, Y: 20})
	base := s.History().Len()

	s.SetTool(ToolSelect)
	// displacement (1,0) is below the epsilon: a click, no undo entry
	s.PointerDown(geom.Pt{X: 10, Y: 10})
	s.PointerMove(geom.Pt{X: 11, Y: 10})
	s.PointerUp(geom.Pt{X: 11, Y: 10})
	if got := s.History().Len(); got != base {
		t.Fatalf("sub-epsilon move pushed an entry: %d != %d", got, base)
	}

	// displacement (3,0) exceeds it: exactly one MoveBatch entry
	s.PointerDown(geom.Pt{X: 11, Y: 10})
	s.PointerMove(geom.Pt{X: 14, Y: 10})
	s.PointerUp(geom.Pt{X: 14, Y: 10})
	if got := s.History().Len(); got != base+1 {
		t.Fatalf("expected one move entry, got %d", got-base)
	}
	if it.Pos.X < 3.9 || it.Pos.X > 4.1 {
		t.Fatalf("unexpected position after both drags: %+v", it.Pos)
	}
	s.History().Undo()
	if it.Pos.X != 1 {
		t.Fatalf("undo must restore the pre-drag position, got %+v", it.Pos)
	}
	s.History().Redo()
	if it.Pos.X != 4 {
		t.Fatalf("redo must reapply the drag, got %+v", it.Pos)
	}
}

func TestSelectClickSelectsAndEmptyClickClears(t *testing.T) {
	s := NewScene()
	s.SetFillColor(Color{9, 9, 9, 255})
	it := drawRect(s, geom.Pt{}, geom.Pt{X: 20, Y: 20})
	s.SetTool(ToolSelect)
	s.PointerDown(geom.Pt{X: 10, Y: 10})
	s.PointerUp(geom.Pt{X: 10, Y: 10})
	if !s.Selected(it) {
		t.Fatalf("click must select the hit item")
	}
	s.PointerDown(geom.Pt{X: 500, Y: 500})
	s.PointerUp(geom.Pt{X: 500, Y: 500})
	if len(s.Selection()) != 0 {
		t.Fatalf("empty click must clear the selection")
	}
}

func TestItemCreatedFiresOncePerInteractiveFinish(t *testing.T) {
	s := NewScene()
	var created []*Item
	s.OnItemCreated(func(it *Item) { created = append(created, it) })

	drawRect(s, geom.Pt{}, geom.Pt{X: 10, Y: 10})
	if len(created) != 1 {
		t.Fatalf("expected one notification, got %d", len(created))
	}

	// paste and duplicate insertions stay silent
	s.SelectOnly(s.Items()...)
	s.CopySelection()
	s.Paste()
	s.DuplicateSelection()
	if len(created) != 1 {
		t.Fatalf("paste/duplicate fired item-created, got %d", len(created))
	}
}

func TestPasteSpecimenOffsetAndSelection(t *testing.T) {
	s := NewScene()
	s.clip.SetText(`{"items":[{"type":"Rect","pos":[0,0],"rect":[0,0,10,10],"stroke":"#000000","strokeWidth":1,"fill":"none","z":0}]}`)
	s.Paste()
	if s.Len() != 1 {
		t.Fatalf("expected 1 pasted item, got %d", s.Len())
	}
	it := s.Items()[0]
	if it.Pos != (geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("paste offset not applied: %+v", it.Pos)
	}
	sel := s.Selection()
	if len(sel) != 1 || sel[0] != it {
		t.Fatalf("pasted item must be the sole selection")
	}
	// one undo removes the whole paste
	s.History().Undo()
	if s.Len() != 0 {
		t.Fatalf("paste must be one undo unit")
	}
}

func TestPasteMalformedIsEmpty(t *testing.T) {
	s := NewScene()
	for _, text := range []string{"", "not json", `{"other":1}`, `{"items":[{"type":"Blob"}]}`} {
		s.clip.SetText(text)
		s.Paste()
	}
	if s.Len() != 0 || s.History().Len() != 0 {
		t.Fatalf("malformed clipboard must paste nothing")
	}
}

func TestCutIsOneUndoUnit(t *testing.T) {
	s := NewScene()
	a := drawRect(s, geom.Pt{}, geom.Pt{X: 10, Y: 10})
	b := drawRect(s, geom.Pt{X: 20, Y: 20}, geom.Pt{X: 30, Y: 30})
	s.SelectOnly(a, b)
	base := s.History().Len()
	s.CutSelection()
	if s.Len() != 0 {
		t.Fatalf("cut must remove the selection")
	}
	if s.History().Len() != base+1 {
		t.Fatalf("cut must be one entry, got %d new", s.History().Len()-base)
	}
	s.History().Undo()
	if !s.Contains(a) || !s.Contains(b) {
		t.Fatalf("undo must restore both items")
	}
	// the cut also populated the clipboard
	s.ClearSelection()
	s.Paste()
	if s.Len() != 4 {
		t.Fatalf("paste after cut expected 4 items, got %d", s.Len())
	}
}

func TestDuplicateOffsetsAndSelectsCopies(t *testing.T) {
	s := NewScene()
	src := drawRect(s, geom.Pt{}, geom.Pt{X: 10, Y: 10})
	s.SelectOnly(src)
	s.DuplicateSelection()
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
	sel := s.Selection()
	if len(sel) != 1 || sel[0] == src {
		t.Fatalf("duplicate must select the copy only")
	}
	cp := sel[0]
	if cp.Pos != src.Pos.Add(geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("duplicate offset not applied: %+v", cp.Pos)
	}
	if cp.Box != src.Box {
		t.Fatalf("duplicate changed geometry: %+v vs %+v", cp.Box, src.Box)
	}
}

func TestSetToolCancelsGestureInProgress(t *testing.T) {
	s := NewScene()
	s.SetTool(ToolRect)
	s.PointerDown(geom.Pt{})
	s.PointerMove(geom.Pt{X: 10, Y: 10})
	s.SetTool(ToolPen)
	s.PointerUp(geom.Pt{X: 10, Y: 10})
	if s.History().Len() != 0 {
		t.Fatalf("aborted gesture must not push a command")
	}
	if s.Len() != 0 {
		t.Fatalf("aborted gesture must not leave the uncommitted item behind, got %d items", s.Len())
	}
}

func TestClearDropsItemsSelectionHistory(t *testing.T) {
	s := NewScene()
	it := drawRect(s, geom.Pt{}, geom.Pt{X: 10, Y: 10})
	s.SelectOnly(it)
	s.Clear()
	if s.Len() != 0 || len(s.Selection()) != 0 || s.History().CanUndo() {
		t.Fatalf("clear must reset items, selection and history")
	}
}
