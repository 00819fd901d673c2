// Copyright 2024 The Erigon Authors
// (original pruning-aware reader pattern)
// Copyright 2025 The Seriacheck Authors
// (adapted for run persistence)
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

package store

import (
	"database/sql"
	"errors"
)

// ErrRunPruned is returned by Reader.Get for a run id that existed once but
// was pruned, as distinct from an id that never existed.
var ErrRunPruned = errors.New("store: run data no longer available due to pruning")

// ErrRunNotFound is returned for an id that was never recorded.
var ErrRunNotFound = errors.New("store: no such run")

// Reader wraps a SQLiteStore's raw *sql.DB to distinguish a pruned run from
// one that never existed, a distinction the Interface.Get contract does not
// make.
type Reader struct {
	db *sql.DB
}

// NewReader wraps an open SQLiteStore for tombstone-aware lookups.
func NewReader(s *SQLiteStore) *Reader { return &Reader{db: s.db} }

// Get returns the run, or ErrRunPruned / ErrRunNotFound if absent.
func (r *Reader) Get(id string) (Run, error) {
	var run Run
	row := r.db.QueryRow(
		`SELECT id, label, verdict, num_txns, num_processes, duration_ms, created_at, order_json
		 FROM `+Runs+` WHERE id = ?`, id)
	err := row.Scan(&run.ID, &run.Label, &run.Verdict, &run.NumTxns, &run.NumProcesses, &run.DurationMS, &run.CreatedAt, &run.OrderJSON)
	if err == nil {
		return run, nil
	}
	if err != sql.ErrNoRows {
		return Run{}, err
	}

	var pruned int
	err = r.db.QueryRow(`SELECT COUNT(1) FROM `+Tombstones+` WHERE id = ?`, id).Scan(&pruned)
	if err != nil {
		return Run{}, err
	}
	if pruned > 0 {
		return Run{}, ErrRunPruned
	}
	return Run{}, ErrRunNotFound
}
