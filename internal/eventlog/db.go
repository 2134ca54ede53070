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
	"log/slog"
	"sync"
	"time"

	applog "scenedraw/internal/log"
)

// dbSink is the shared core of the database-backed loggers: a bounded queue
// drained by one background goroutine, so a slow database never blocks the
// editor's event loop. Full-queue events are dropped.
type dbSink struct {
	db     *sql.DB
	insert string
	log    *slog.Logger

	q      chan Event
	closed chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newDBSink(db *sql.DB, insert, component string) *dbSink {
	s := &dbSink{
		db:     db,
		insert: insert,
		log:    applog.WithComponent(component),
		q:      make(chan Event, 256),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *dbSink) Log(event string, f Fields) {
	select {
	case <-s.closed:
		return
	default:
	}
	e := Event{At: time.Now().UTC(), Name: event, Tool: f.Tool, Item: f.ItemType, Notes: f.Notes}
	select {
	case s.q <- e:
	default:
		// queue full, drop
	}
}

func (s *dbSink) loop() {
	defer close(s.done)
	for {
		select {
		case e := <-s.q:
			s.write(e)
		case <-s.closed:
			for {
				select {
				case e := <-s.q:
					s.write(e)
				default:
					return
				}
			}
		}
	}
}

func (s *dbSink) write(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, s.insert, e.At, e.Name, e.Tool, e.Item, e.Notes); err != nil {
		s.log.Debug("event insert failed", slog.Any("err", err))
	}
}

// Close drains the queue, stops the writer, and closes the database.
func (s *dbSink) Close() error {
	s.once.Do(func() { close(s.closed) })
	<-s.done
	return s.db.Close()
}
