/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package eventlog records interaction events for later analysis. Logging is
// strictly fire and forget: no sink error ever reaches editor control flow,
// and a nil logger is a valid logger.
package eventlog

import "time"

// Fields carries the optional context attached to an event.
type Fields struct {
	Tool     string
	ItemType string
	Notes    string
}

// Logger is the sink contract. Implementations must never block the caller
// for long and must swallow their own errors.
type Logger interface {
	Log(event string, f Fields)
}

// Event is one recorded interaction.
type Event struct {
	At    time.Time
	Name  string
	Tool  string
	Item  string
	Notes string
}

// Emit logs through l if it is non-nil.
func Emit(l Logger, event string, f Fields) {
	if l != nil {
		l.Log(event, f)
	}
}

// Multi fans an event out to several sinks.
type Multi []Logger

func (m Multi) Log(event string, f Fields) {
	for _, l := range m {
		Emit(l, event, f)
	}
}

// Memory keeps events in a slice. Used in tests and as a session buffer.
type Memory struct {
	Events []Event
}

func (m *Memory) Log(event string, f Fields) {
	m.Events = append(m.Events, Event{
		At:    time.Now(),
		Name:  event,
		Tool:  f.Tool,
		Item:  f.ItemType,
		Notes: f.Notes,
	})
}
