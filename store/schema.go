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

package store

// SchemaVersion versions the sqlite schema below.
// 1 - initial runs/tombstones tables.
const SchemaVersion = 1

const (
	// Runs holds one row per completed Check.
	// id            - uuid, primary key
	// label         - caller-supplied name (e.g. source file path)
	// verdict       - "serializable", "cyclic", or "exhausted"
	// num_txns      - transaction count, including the root
	// num_processes - process count
	// duration_ms   - wall-clock time to check, in milliseconds
	// created_at    - creation time from the recording clock (batchrun.WallClock: unix milliseconds)
	// order_json    - JSON array of process ids in serialization order, empty if not serializable
	Runs = "runs"

	// Tombstones records run ids that existed once but were pruned, so a
	// lookup can distinguish "pruned" from "never existed".
	// id         - uuid
	// pruned_at  - unix seconds
	Tombstones = "tombstones"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS ` + Runs + ` (
	id            TEXT PRIMARY KEY,
	label         TEXT NOT NULL,
	verdict       TEXT NOT NULL,
	num_txns      INTEGER NOT NULL,
	num_processes INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	order_json    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ` + Tombstones + ` (
	id        TEXT PRIMARY KEY,
	pruned_at INTEGER NOT NULL
);
`
