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

import "scenedraw/internal/eventlog"

// Clipboard abstracts the text clipboard so the engine works headless and
// the UI shell can plug in the OS clipboard.
type Clipboard interface {
	Text() string
	SetText(text string)
}

// MemoryClipboard is the in-process default.
type MemoryClipboard struct {
	text string
}

func (m *MemoryClipboard) Text() string        { return m.text }
func (m *MemoryClipboard) SetText(text string) { m.text = text }

// CopySelection encodes the selection onto the clipboard. An empty selection
// leaves the clipboard untouched.
func (s *Scene) CopySelection() {
	sel := s.Selection()
	if len(sel) == 0 {
		return
	}
	text, err := EncodeClipboard(sel)
	if err != nil {
		return
	}
	s.clip.SetText(text)
	s.logEvent("copy", eventlog.Fields{})
}

// CutSelection copies the selection, then removes it as one undo unit.
func (s *Scene) CutSelection() {
	sel := s.Selection()
	if len(sel) == 0 {
		return
	}
	s.CopySelection()
	s.history.BeginMacro("cut")
	for _, it := range sel {
		s.history.Push(NewRemoveCommand(s, it))
	}
	s.history.EndMacro()
	s.logEvent("cut", eventlog.Fields{})
}

// Paste decodes the clipboard, inserts the items shifted by the paste
// offset as one undo unit, and selects only the pasted items. Malformed
// clipboard text is an empty paste.
func (s *Scene) Paste() {
	items := DecodeClipboard(s.clip.Text())
	if len(items) == 0 {
		return
	}
	s.insertCopies(items, "paste")
}

// DuplicateSelection copies the selection within the process, bypassing the
// clipboard, and inserts the offset copies as one undo unit.
func (s *Scene) DuplicateSelection() {
	sel := s.Selection()
	if len(sel) == 0 {
		return
	}
	var items []*Item
	for _, src := range sel {
		rec, ok := Encode(src)
		if !ok {
			continue
		}
		if it, ok := Decode(rec); ok {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return
	}
	s.insertCopies(items, "duplicate")
}

func (s *Scene) insertCopies(items []*Item, label string) {
	s.history.BeginMacro(label)
	for _, it := range items {
		it.Pos = it.Pos.Add(s.pasteOffset)
		if it.Z >= s.nextZ {
			s.nextZ = it.Z + 1
		}
		s.history.Push(NewAddCommand(s, it, false))
	}
	s.history.EndMacro()
	s.SelectOnly(items...)
	s.logEvent(label, eventlog.Fields{})
}
