// Package sqlitesink persists flow records to an append-only SQLite table
// with lightweight transaction batching. The table mirrors the flow schema
// one column per field; state and metadata snapshots are stored as JSON text.
package sqlitesink

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hatchsim/hatchsim/sim/flow"
)

const schema = `
CREATE TABLE IF NOT EXISTS flows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	shipment_id TEXT NOT NULL,
	resource_id TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	from_state TEXT,
	to_state TEXT,
	sim_day REAL NOT NULL,
	event_ts TEXT NOT NULL,
	quantity REAL,
	metadata TEXT
)`

const insertStmt = `
INSERT INTO flows (shipment_id, resource_id, resource_type, from_state, to_state, sim_day, event_ts, quantity, metadata)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// batchSize is the number of appends committed per transaction.
const batchSize = 1000

// Sink writes flow records to SQLite, committing in batches for performance.
// Not safe for concurrent use; the cooperative scheduler appends from a
// single goroutine.
type Sink struct {
	db      *sql.DB
	tx      *sql.Tx
	pending int
}

// Open creates or appends to the flow log at path. WAL mode keeps writers
// from blocking any later reader of the table.
func Open(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("flow log path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create flows table: %w", err)
	}
	return &Sink{db: db}, nil
}

// Append buffers one record, committing the open transaction every batchSize
// appends.
func (s *Sink) Append(r flow.Record) error {
	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin flow batch: %w", err)
		}
		s.tx = tx
	}
	fromState, err := marshalState(r.FromState)
	if err != nil {
		return fmt.Errorf("marshal from_state: %w", err)
	}
	toState, err := marshalState(r.ToState)
	if err != nil {
		return fmt.Errorf("marshal to_state: %w", err)
	}
	metadata, err := marshalState(r.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if _, err := s.tx.Exec(insertStmt,
		r.ShipmentID, r.ResourceID, r.ResourceType,
		fromState, toState, r.Day, r.EventTS, r.Quantity, metadata,
	); err != nil {
		return fmt.Errorf("insert flow record: %w", err)
	}
	s.pending++
	if s.pending >= batchSize {
		if err := s.tx.Commit(); err != nil {
			return fmt.Errorf("commit flow batch: %w", err)
		}
		s.tx = nil
		s.pending = 0
	}
	return nil
}

// Close flushes any pending batch and closes the database.
//
// Close is nil-safe so callers can defer it in all startup paths.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.tx != nil {
		if err := s.tx.Commit(); err != nil {
			_ = s.db.Close()
			return fmt.Errorf("commit final flow batch: %w", err)
		}
		s.tx = nil
		s.pending = 0
	}
	return s.db.Close()
}

// marshalState returns the JSON text for a snapshot, or NULL for an absent one.
func marshalState(st flow.State) (any, error) {
	if st == nil {
		return nil, nil
	}
	b, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
