/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "scenedraw/internal/log"
)

// CSVLogger appends one row per event to a CSV file. Each row is flushed
// immediately; write errors are logged once per event and otherwise dropped.
type CSVLogger struct {
	f *os.File
	w *csv.Writer
}

// OpenCSV opens (or creates) the event CSV at path. A new file gets a header
// row.
func OpenCSV(path string) (*CSVLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event log dir: %w", err)
	}
	info, err := os.Stat(path)
	fresh := err != nil || info.Size() == 0
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	l := &CSVLogger{f: f, w: csv.NewWriter(f)}
	if fresh {
		if err := l.w.Write([]string{"timestamp", "event", "tool", "item_type", "notes"}); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		l.w.Flush()
	}
	return l, nil
}

func (l *CSVLogger) Log(event string, f Fields) {
	row := []string{
		time.Now().UTC().Format(time.RFC3339Nano),
		event,
		f.Tool,
		f.ItemType,
		f.Notes,
	}
	if err := l.w.Write(row); err != nil {
		applog.WithComponent("eventlog").Debug("csv write failed", "err", err)
		return
	}
	l.w.Flush()
}

func (l *CSVLogger) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// ReadCSV loads a recorded session back into memory, e.g. for a study
// upload. Rows with an unparseable timestamp are skipped.
func ReadCSV(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	out := make([]Event, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			continue
		}
		// hand-trimmed logs may lack the header row
		if i == 0 && row[0] == "timestamp" {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			continue
		}
		out = append(out, Event{At: at, Name: row[1], Tool: row[2], Item: row[3], Notes: row[4]})
	}
	return out, nil
}
