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
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresLogger ships events to a central Postgres database. It is meant
// for study setups where several participants' sessions are collected in one
// place; local use normally sticks to the CSV or SQLite sink.
type PostgresLogger struct {
	*dbSink
}

const pgDDL = `CREATE TABLE IF NOT EXISTS events (
	id    BIGSERIAL PRIMARY KEY,
	at    TIMESTAMPTZ NOT NULL,
	name  TEXT NOT NULL,
	tool  TEXT,
	item  TEXT,
	notes TEXT
)`

// OpenPostgres connects to dsn, verifies the connection, and ensures the
// events table exists.
func OpenPostgres(dsn string) (*PostgresLogger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, pgDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure events table: %w", err)
	}
	insert := `INSERT INTO events(at, name, tool, item, notes) VALUES($1,$2,$3,$4,$5)`
	return &PostgresLogger{dbSink: newDBSink(db, insert, "eventlog.pg")}, nil
}
