// Copyright 2025 The Seriacheck Authors
// This file is part of Seriacheck.
//
// Seriacheck is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Seriacheck is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Seriacheck. If not, see <http://www.gnu.org/licenses/>.

// Package store persists Check results to sqlite so batch runs and the CLI
// can list and re-inspect past verdicts.
package store

//go:generate mockgen -source=store.go -destination=mock_store.go -package=store

import (
	"database/sql"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one persisted Check result.
type Run struct {
	ID           string
	Label        string
	Verdict      string
	NumTxns      int
	NumProcesses int
	DurationMS   int64
	CreatedAt    int64
	OrderJSON    string
}

// Interface is what batchrun and the CLI depend on, so tests can supply a
// mock instead of a real sqlite file.
type Interface interface {
	Record(run Run) (string, error)
	Get(id string) (Run, bool, error)
	List() ([]Run, error)
	Close() error
}

// SQLiteStore is the sqlite-backed Interface implementation. A flock guards
// the database file against concurrent writers across processes; batchrun's
// own goroutines serialize through the single *sql.DB instead.
type SQLiteStore struct {
	db   *sql.DB
	lock *flock.Flock
}

// Open opens (creating if needed) the sqlite database at path and ensures
// the schema exists.
func Open(path string) (*SQLiteStore, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("store: acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store: %s is locked by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	if _, err := db.Exec(createSchema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}
	return &SQLiteStore{db: db, lock: lock}, nil
}

// Close releases the database handle and the file lock.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// Record inserts run, assigning it a fresh id if Run.ID is empty.
func (s *SQLiteStore) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO `+Runs+` (id, label, verdict, num_txns, num_processes, duration_ms, created_at, order_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.Verdict, run.NumTxns, run.NumProcesses, run.DurationMS, run.CreatedAt, run.OrderJSON,
	)
	if err != nil {
		return "", fmt.Errorf("store: recording run: %w", err)
	}
	return run.ID, nil
}

// Get looks up a run by id.
func (s *SQLiteStore) Get(id string) (Run, bool, error) {
	var run Run
	row := s.db.QueryRow(
		`SELECT id, label, verdict, num_txns, num_processes, duration_ms, created_at, order_json
		 FROM `+Runs+` WHERE id = ?`, id)
	err := row.Scan(&run.ID, &run.Label, &run.Verdict, &run.NumTxns, &run.NumProcesses, &run.DurationMS, &run.CreatedAt, &run.OrderJSON)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// List returns every recorded run, most recent first.
func (s *SQLiteStore) List() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, label, verdict, num_txns, num_processes, duration_ms, created_at, order_json
		 FROM ` + Runs + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Label, &run.Verdict, &run.NumTxns, &run.NumProcesses, &run.DurationMS, &run.CreatedAt, &run.OrderJSON); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep most recent runs, tombstoning the rest so
// Reader can report ErrRunPruned instead of a bare not-found.
func (s *SQLiteStore) Prune(keep int, prunedAt int64) error {
	rows, err := s.db.Query(`SELECT id FROM `+Runs+` ORDER BY created_at DESC LIMIT -1 OFFSET ?`, keep)
	if err != nil {
		return err
	}
	var doomed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		doomed = append(doomed, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range doomed {
		if _, err := s.db.Exec(`DELETE FROM `+Runs+` WHERE id = ?`, id); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT OR REPLACE INTO `+Tombstones+` (id, pruned_at) VALUES (?, ?)`, id, prunedAt); err != nil {
			return err
		}
	}
	return nil
}
