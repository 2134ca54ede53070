/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo provides a linear command log with macro grouping.
//
// Every scene mutation is recorded as a Command whose Redo/Undo pair must
// satisfy undo(redo(S)) == S and redo(undo(S)) == S for the state the
// command touches. Push executes the command, so constructing a command
// and pushing it is the single way to mutate through the log.
package undo

import "sync"

// Command is one reversible mutation.
type Command interface {
	// Redo applies the mutation. It is called once by Push and again on
	// every Redo of the stack; commands whose effect is already present
	// at construction time must treat their first Redo as a no-op.
	Redo()
	// Undo reverses the mutation. Must tolerate being asked to reverse
	// state that a concurrent path already reversed.
	Undo()
	// Text is the user-visible label of the command.
	Text() string
}

// macro groups commands pushed between BeginMacro and EndMacro into one
// user-visible undo unit.
type macro struct {
	label string
	cmds  []Command
}

func (m *macro) Redo() {
	for _, c := range m.cmds {
		c.Redo()
	}
}

func (m *macro) Undo() {
	for i := len(m.cmds) - 1; i >= 0; i-- {
		m.cmds[i].Undo()
	}
}

func (m *macro) Text() string { return m.label }

// Stack is the command log: an ordered command sequence with a cursor
// separating done from undone. Pushing truncates any undone tail.
type Stack struct {
	mu     sync.Mutex
	cmds   []Command
	cursor int // commands[0:cursor] are done
	open   *macro
	depth  int
}

func NewStack() *Stack { return &Stack{} }

// Push executes cmd and records it. Inside an open macro the command joins
// the macro group instead of the top-level log.
func (s *Stack) Push(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd.Redo()
	if s.open != nil {
		s.open.cmds = append(s.open.cmds, cmd)
		return
	}
	s.appendLocked(cmd)
}

func (s *Stack) appendLocked(cmd Command) {
	s.cmds = append(s.cmds[:s.cursor], cmd)
	s.cursor = len(s.cmds)
}

// BeginMacro starts a macro. Nested calls join the outermost macro.
func (s *Stack) BeginMacro(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth++
	if s.open == nil {
		s.open = &macro{label: label}
	}
}

// EndMacro closes the current macro and records it as one unit. Empty
// macros are discarded. Calling EndMacro with no open macro is a no-op,
// so a failure path may call it unconditionally.
func (s *Stack) EndMacro() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return
	}
	if s.depth > 0 {
		s.depth--
	}
	if s.depth > 0 {
		return
	}
	m := s.open
	s.open = nil
	if len(m.cmds) == 0 {
		return
	}
	s.appendLocked(m)
}

// Undo reverses the most recent done command (or macro). Returns false if
// there is nothing to undo or a macro is still open.
func (s *Stack) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != nil || s.cursor == 0 {
		return false
	}
	s.cursor--
	s.cmds[s.cursor].Undo()
	return true
}

// Redo re-applies the next undone command (or macro).
func (s *Stack) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open != nil || s.cursor >= len(s.cmds) {
		return false
	}
	s.cmds[s.cursor].Redo()
	s.cursor++
	return true
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open == nil && s.cursor > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open == nil && s.cursor < len(s.cmds)
}

// UndoText returns the label of the command Undo would reverse, or "".
func (s *Stack) UndoText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == 0 {
		return ""
	}
	return s.cmds[s.cursor-1].Text()
}

// Len reports the number of done entries (macros count as one).
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Clear drops the whole history, including any open macro.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = nil
	s.cursor = 0
	s.open = nil
	s.depth = 0
}
