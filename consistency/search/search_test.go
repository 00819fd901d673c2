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

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/seriacheck/consistency/history"
	"github.com/erigontech/seriacheck/consistency/saturate"
)

func build(t *testing.T, in history.Input) *history.Model {
	t.Helper()
	m, err := history.New(in)
	require.NoError(t, err)
	return m
}

// indexOf reports the position of tid within order.
func indexOf(order []uint32, tid uint32) int {
	for i, v := range order {
		if v == tid {
			return i
		}
	}
	return -1
}

// TestRunSingleWriter: a single process whose only transaction writes a key
// and reads nothing has exactly one linear extension.
func TestRunSingleWriter(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	order, ok := Run(m, g, 0)
	require.True(t, ok)
	assert.Equal(t, []uint32{m.PosToID(1, 0)}, order)
}

// TestRunReadFromRoot is S2: a transaction reading a key from the root must
// be emitted after the root (implicit), with no other constraint.
func TestRunReadFromRoot(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Reads: map[history.Var]history.Pos{10: history.RootPos}},
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	order, ok := Run(m, g, 0)
	require.True(t, ok)
	assert.Equal(t, []uint32{m.PosToID(1, 0)}, order)
}

// TestRunWRDependency is S3: (2,0) must be ordered after (1,0).
func TestRunWRDependency(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	order, ok := Run(m, g, 0)
	require.True(t, ok)
	w, r := m.PosToID(1, 0), m.PosToID(2, 0)
	assert.Less(t, indexOf(order, w), indexOf(order, r))
}

// TestRunWriteSkewCycle is S4: saturation itself already proves
// non-serializability, so search never runs.
func TestRunWriteSkewCycle(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {
				Reads:  map[history.Var]history.Pos{1: history.RootPos},
				Writes: map[history.Var]struct{}{2: {}},
			},
			{2, 0}: {
				Reads:  map[history.Var]history.Pos{2: history.RootPos},
				Writes: map[history.Var]struct{}{1: {}},
			},
		},
	})
	_, err := saturate.Run(m, nil)
	assert.ErrorIs(t, err, saturate.ErrCyclic)
}

// TestRunStaleRead is S5: the reader of (1,0) must land strictly before
// (1,1), which the closure already forces; search must respect it.
func TestRunStaleRead(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	order, ok := Run(m, g, 0)
	require.True(t, ok)
	t10, t11, t20 := m.PosToID(1, 0), m.PosToID(1, 1), m.PosToID(2, 0)
	assert.Less(t, indexOf(order, t10), indexOf(order, t20))
	assert.Less(t, indexOf(order, t20), indexOf(order, t11))
}

// TestRunLostUpdate is S6: saturation already detects the contradiction.
func TestRunLostUpdate(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Reads: map[history.Var]history.Pos{10: history.RootPos}},
		},
	})
	_, err := saturate.Run(m, nil)
	assert.ErrorIs(t, err, saturate.ErrCyclic)
}

// TestRunRejectsNonLastWriterRead builds a history whose visibility closure
// is acyclic (saturation infers no edge, since no two writers of a key are
// ordered) but that has no linear extension respecting last-writer-wins.
// A1 and B1 write x (10), read by ra and rb respectively; A2 and B2 write y
// (20), read by sa and sb. Whichever writer of x comes second must follow
// the other writer's reader, and likewise for y. Keys 30-60 make both
// readers of x follow both writers of y, and both readers of y follow both
// writers of x, so every choice closes a cycle: second x-writer < reader of
// y < second y-writer < reader of x < second x-writer.
func TestRunRejectsNonLastWriterRead(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 1, 1, 1, 1, 1, 1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}, 30: {}}},                       // A1
			{2, 0}: {Writes: map[history.Var]struct{}{10: {}, 40: {}}},                       // B1
			{3, 0}: {Writes: map[history.Var]struct{}{20: {}, 50: {}}},                       // A2
			{4, 0}: {Writes: map[history.Var]struct{}{20: {}, 60: {}}},                       // B2
			{5, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}, 50: {3, 0}, 60: {4, 0}}}, // ra
			{6, 0}: {Reads: map[history.Var]history.Pos{10: {2, 0}, 50: {3, 0}, 60: {4, 0}}}, // rb
			{7, 0}: {Reads: map[history.Var]history.Pos{20: {3, 0}, 30: {1, 0}, 40: {2, 0}}}, // sa
			{8, 0}: {Reads: map[history.Var]history.Pos{20: {4, 0}, 30: {1, 0}, 40: {2, 0}}}, // sb
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	_, ok := Run(m, g, 0)
	assert.False(t, ok, "every choice of which writer of x and of y comes first leaves some read stale")
}

// TestRunMemoCapacityDoesNotAffectOutcome checks that bounding the dead-cut
// memo changes only how much is re-explored, never whether a history is
// found serializable.
func TestRunMemoCapacityDoesNotAffectOutcome(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2, 2},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Reads: map[history.Var]history.Pos{10: {1, 0}}, Writes: map[history.Var]struct{}{20: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{20: history.RootPos}},
			{2, 1}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	g, err := saturate.Run(m, nil)
	require.NoError(t, err)

	_, okUnbounded := Run(m, g, 0)
	_, okBounded := Run(m, g, 1)
	assert.Equal(t, okUnbounded, okBounded)
}
