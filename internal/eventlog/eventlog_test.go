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
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestEmitNilLoggerIsSafe(t *testing.T) {
	Emit(nil, "anything", Fields{Tool: "pen"})
}

func TestMemoryAndMulti(t *testing.T) {
	a := &Memory{}
	b := &Memory{}
	m := Multi{a, nil, b}
	m.Log("item_created", Fields{Tool: "pen", ItemType: "Freehand"})
	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Fatalf("multi must fan out, got %d/%d", len(a.Events), len(b.Events))
	}
	if a.Events[0].Name != "item_created" || a.Events[0].Item != "Freehand" {
		t.Fatalf("unexpected event: %+v", a.Events[0])
	}
}

func TestCSVLoggerWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.csv")
	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Log("tool_selected", Fields{Tool: "rect"})
	l.Log("item_created", Fields{Tool: "rect", ItemType: "Rect", Notes: "n"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" {
		t.Fatalf("missing header: %v", rows[0])
	}
	if rows[2][1] != "item_created" || rows[2][3] != "Rect" || rows[2][4] != "n" {
		t.Fatalf("unexpected row: %v", rows[2])
	}
}

func TestCSVLoggerAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Log("copy", Fields{})
	_ = l.Close()

	l, err = OpenCSV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l.Log("paste", Fields{})
	_ = l.Close()

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows after append, got %d", len(rows))
	}
}

func TestReadCSVSkipsHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	l, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Log("tool_selected", Fields{Tool: "pen"})
	l.Log("item_created", Fields{Tool: "pen", ItemType: "Freehand"})
	_ = l.Close()

	events, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "tool_selected" || events[1].Item != "Freehand" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].At.IsZero() {
		t.Fatalf("timestamp not parsed")
	}
}

func TestReadCSVHeaderlessKeepsFirstRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trimmed.csv")
	body := time.Now().UTC().Format(time.RFC3339Nano) + ",copy,select,,\n" +
		time.Now().UTC().Format(time.RFC3339Nano) + ",paste,select,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("headerless log lost a row: got %d events, want 2", len(events))
	}
	if events[0].Name != "copy" {
		t.Fatalf("first event = %q, want copy", events[0].Name)
	}
}

func TestSQLiteLoggerPersistsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.sqlite")
	l, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Log("item_created", Fields{Tool: "ellipse", ItemType: "Ellipse"})
	l.Log("suggestion_accept", Fields{Notes: "cat_ears"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}
	var notes string
	if err := db.QueryRow(`SELECT notes FROM events WHERE name='suggestion_accept'`).Scan(&notes); err != nil {
		t.Fatalf("select: %v", err)
	}
	if notes != "cat_ears" {
		t.Fatalf("unexpected notes %q", notes)
	}
}

func TestSQLiteLoggerDropsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.sqlite")
	l, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// must not panic or block
	l.Log("late", Fields{})
}

func openPGForTest(t *testing.T) *PostgresLogger {
	t.Helper()
	dsn := os.Getenv("SDW_PG_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("SDW_PG_DSN not set")
	}
	l, err := OpenPostgres(dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	return l
}

func TestPostgresLoggerRoundTrip(t *testing.T) {
	l := openPGForTest(t)
	l.Log("study_event", Fields{Tool: "pen", Notes: "integration"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	dsn := os.Getenv("SDW_PG_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE name='study_event'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n == 0 {
		t.Fatalf("event not persisted")
	}
}
