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
	"scenedraw/internal/eventlog"
	"scenedraw/internal/geom"
	"scenedraw/internal/undo"
)

// Tool is the active editing mode. Transitions happen only through SetTool,
// never from input events.
type Tool uint8

const (
	ToolSelect Tool = iota
	ToolPen
	ToolEraser
	ToolLine
	ToolRect
	ToolEllipse
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPen:
		return "pen"
	case ToolEraser:
		return "eraser"
	case ToolLine:
		return "line"
	case ToolRect:
		return "rect"
	case ToolEllipse:
		return "ellipse"
	}
	return "unknown"
}

// Defaults for the presentation constants. Both are plain configuration with
// no deeper rationale, so they stay settable.
const (
	DefaultMoveEpsilon  = 2.0
	DefaultPasteOffset  = 10.0
	DefaultHitTolerance = 3.0
)

// Scene owns the live item set, the selection, the current tool and style,
// and the command history. All mutation runs on the single event-loop
// goroutine; the Scene itself does no locking.
type Scene struct {
	items    []*Item
	selected map[*Item]bool

	tool   Tool
	stroke Stroke
	fill   Fill

	history *undo.Stack
	clip    Clipboard
	events  eventlog.Logger
	created []func(*Item)

	// gesture state
	pressed  bool
	drawing  *Item
	anchor   geom.Pt
	dragLast geom.Pt
	grabbed  map[*Item]geom.Pt

	nextZ       float64
	moveEpsilon float64
	pasteOffset geom.Pt
	hitTol      float64
}

// NewScene returns an empty scene with the select tool active, a black
// 2-unit stroke, no fill, and an in-memory clipboard.
func NewScene() *Scene {
	return &Scene{
		selected:    make(map[*Item]bool),
		tool:        ToolSelect,
		stroke:      Stroke{Color: Black, Width: 2},
		history:     undo.NewStack(),
		clip:        &MemoryClipboard{},
		moveEpsilon: DefaultMoveEpsilon,
		pasteOffset: geom.Pt{X: DefaultPasteOffset, Y: DefaultPasteOffset},
		hitTol:      DefaultHitTolerance,
	}
}

// History exposes the command log. The suggestion controller and the UI
// undo/redo actions drive the same single history.
func (s *Scene) History() *undo.Stack { return s.history }

// SetClipboard swaps the clipboard backend (OS clipboard in the UI shell).
func (s *Scene) SetClipboard(c Clipboard) {
	if c != nil {
		s.clip = c
	}
}

// SetEventLogger installs a sink for interaction events. A nil logger is
// fine; events are then dropped.
func (s *Scene) SetEventLogger(l eventlog.Logger) { s.events = l }

// SetMoveEpsilon tunes the Manhattan displacement below which a SELECT
// gesture counts as a click rather than a move.
func (s *Scene) SetMoveEpsilon(e float64) { s.moveEpsilon = e }

// SetPasteOffset tunes the translation applied by paste and duplicate.
func (s *Scene) SetPasteOffset(d geom.Pt) { s.pasteOffset = d }

func (s *Scene) logEvent(event string, f eventlog.Fields) {
	if f.Tool == "" {
		f.Tool = s.tool.String()
	}
	eventlog.Emit(s.events, event, f)
}

// SetTool switches the active tool, cancelling any gesture in progress. An
// uncommitted draw item is detached again; it never reached the history, so
// leaving it live would make it impossible to undo.
func (s *Scene) SetTool(t Tool) {
	if s.tool == t {
		return
	}
	if s.drawing != nil {
		s.detach(s.drawing)
		s.drawing = nil
	}
	s.pressed = false
	s.grabbed = nil
	s.tool = t
	s.logEvent("tool_selected", eventlog.Fields{Tool: t.String()})
}

// Tool returns the active tool.
func (s *Scene) Tool() Tool { return s.tool }

// SetStrokeColor / SetStrokeWidth / SetFillColor / SetNoFill are the single
// point of truth for the style new items receive at creation time. Existing
// items are never restyled.
func (s *Scene) SetStrokeColor(c Color)   { s.stroke.Color = c }
func (s *Scene) SetStrokeWidth(w float64) { s.stroke.Width = w }
func (s *Scene) SetFillColor(c Color)     { s.fill = Fill{Color: c, Enabled: true} }
func (s *Scene) SetNoFill()               { s.fill = Fill{} }
func (s *Scene) StrokeStyle() Stroke      { return s.stroke }
func (s *Scene) FillStyle() Fill          { return s.fill }

// OnItemCreated registers a handler fired exactly once per interactively
// finished PEN/LINE/RECT/ELLIPSE item. Paste, duplicate, and ghost commits
// never fire it.
func (s *Scene) OnItemCreated(fn func(*Item)) {
	s.created = append(s.created, fn)
}

func (s *Scene) fireCreated(it *Item) {
	s.logEvent("item_created", eventlog.Fields{ItemType: it.Kind.String()})
	for _, fn := range s.created {
		fn(it)
	}
}

// --- live item set -------------------------------------------------------

func (s *Scene) contains(it *Item) bool {
	for _, x := range s.items {
		if x == it {
			return true
		}
	}
	return false
}

func (s *Scene) attach(it *Item) { s.items = append(s.items, it) }

func (s *Scene) detach(it *Item) {
	for i, x := range s.items {
		if x == it {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.selected, it)
}

func (s *Scene) allocZ() float64 {
	z := s.nextZ
	s.nextZ++
	return z
}

// AddItem inserts an externally built item (ghost previews use this). The
// caller decides whether the insertion becomes undoable.
func (s *Scene) AddItem(it *Item) {
	if !s.contains(it) {
		s.attach(it)
	}
}

// RemoveItem detaches an item without touching the history. Items already
// gone are a no-op.
func (s *Scene) RemoveItem(it *Item) {
	s.detach(it)
}

// Contains reports live-scene membership.
func (s *Scene) Contains(it *Item) bool { return s.contains(it) }

// Items returns the live items in insertion order.
func (s *Scene) Items() []*Item {
	return append([]*Item(nil), s.items...)
}

// Len returns the number of live items.
func (s *Scene) Len() int { return len(s.items) }

// ItemAt returns the topmost enabled item hit at p, by descending z with
// later insertion winning ties, or nil.
func (s *Scene) ItemAt(p geom.Pt) *Item {
	var best *Item
	for _, it := range s.items {
		if !it.Enabled || !it.Hit(p, s.hitTol) {
			continue
		}
		if best == nil || it.Z >= best.Z {
			best = it
		}
	}
	return best
}

// Clear drops every item, the selection, and the whole undo history.
func (s *Scene) Clear() {
	s.items = nil
	s.selected = make(map[*Item]bool)
	s.pressed = false
	s.drawing = nil
	s.grabbed = nil
	s.nextZ = 0
	s.history.Clear()
	s.logEvent("scene_cleared", eventlog.Fields{})
}

// --- selection -----------------------------------------------------------

// Selection returns the selected items in insertion order.
func (s *Scene) Selection() []*Item {
	var out []*Item
	for _, it := range s.items {
		if s.selected[it] {
			out = append(out, it)
		}
	}
	return out
}

// Selected reports whether it is selected.
func (s *Scene) Selected(it *Item) bool { return s.selected[it] }

// SelectOnly replaces the selection with the given items. Non-selectable or
// non-live items are skipped.
func (s *Scene) SelectOnly(items ...*Item) {
	s.selected = make(map[*Item]bool)
	for _, it := range items {
		if it.Selectable && s.contains(it) {
			s.selected[it] = true
		}
	}
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() { s.selected = make(map[*Item]bool) }

// --- tool state machine --------------------------------------------------

// PointerDown starts a gesture at p with the active tool.
func (s *Scene) PointerDown(p geom.Pt) {
	s.pressed = true
	switch s.tool {
	case ToolPen:
		it := NewItem(KindFreehand)
		it.Stroke = s.stroke
		it.Points = []geom.Pt{p}
		it.Z = s.allocZ()
		s.attach(it)
		s.drawing = it
	case ToolLine:
		it := NewItem(KindLine)
		it.Stroke = s.stroke
		it.A, it.B = p, p
		it.Z = s.allocZ()
		s.attach(it)
		s.anchor = p
		s.drawing = it
	case ToolRect, ToolEllipse:
		k := KindRect
		if s.tool == ToolEllipse {
			k = KindEllipse
		}
		it := NewItem(k)
		it.Stroke = s.stroke
		it.Fill = s.fill
		it.Box = geom.NormalizedRect(p, p)
		it.Z = s.allocZ()
		s.attach(it)
		s.anchor = p
		s.drawing = it
	case ToolEraser:
		s.eraseAt(p)
	case ToolSelect:
		hit := s.ItemAt(p)
		if hit != nil && hit.Selectable {
			if !s.selected[hit] {
				s.SelectOnly(hit)
			}
		} else {
			s.ClearSelection()
		}
		// snapshot the positions of the new selection, not the old one
		s.grabbed = make(map[*Item]geom.Pt)
		for it := range s.selected {
			s.grabbed[it] = it.Pos
		}
		s.anchor = p
		s.dragLast = p
	}
}

// PointerMove continues a gesture at p. No-op when no gesture is active.
func (s *Scene) PointerMove(p geom.Pt) {
	if !s.pressed {
		return
	}
	switch s.tool {
	case ToolPen:
		if s.drawing != nil {
			s.drawing.Points = append(s.drawing.Points, p)
		}
	case ToolLine:
		if s.drawing != nil {
			s.drawing.B = p
		}
	case ToolRect, ToolEllipse:
		if s.drawing != nil {
			s.drawing.Box = geom.NormalizedRect(s.anchor, p)
		}
	case ToolEraser:
		s.eraseAt(p)
	case ToolSelect:
		d := p.Sub(s.dragLast)
		s.dragLast = p
		for it := range s.selected {
			if it.Movable {
				it.Pos = it.Pos.Add(d)
			}
		}
	}
}

// PointerUp finishes the gesture at p.
func (s *Scene) PointerUp(p geom.Pt) {
	if !s.pressed {
		return
	}
	s.pressed = false
	switch s.tool {
	case ToolPen, ToolLine, ToolRect, ToolEllipse:
		it := s.drawing
		s.drawing = nil
		if it == nil {
			return
		}
		s.history.Push(NewAddCommand(s, it, true))
		s.fireCreated(it)
	case ToolSelect:
		grabbed := s.grabbed
		s.grabbed = nil
		if len(grabbed) == 0 {
			return
		}
		if geom.Manhattan(p, s.anchor) <= s.moveEpsilon {
			return
		}
		old := make(map[*Item]geom.Pt)
		now := make(map[*Item]geom.Pt)
		for it, before := range grabbed {
			if it.Pos != before {
				old[it] = before
				now[it] = it.Pos
			}
		}
		if len(now) == 0 {
			return
		}
		s.history.Push(NewMoveBatchCommand(s, old, now))
		s.logEvent("items_moved", eventlog.Fields{})
	}
}

// eraseAt removes the topmost item under p as its own undoable step.
func (s *Scene) eraseAt(p geom.Pt) {
	it := s.ItemAt(p)
	if it == nil {
		return
	}
	s.history.Push(NewRemoveCommand(s, it))
	s.logEvent("item_erased", eventlog.Fields{ItemType: it.Kind.String()})
}
