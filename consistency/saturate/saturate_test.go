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

package saturate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/seriacheck/consistency/history"
)

func build(t *testing.T, in history.Input) *history.Model {
	t.Helper()
	m, err := history.New(in)
	require.NoError(t, err)
	return m
}

// TestRunWRDependency is S3 from SPEC_FULL.md §8: (1,0) writes x, (2,0)
// reads x from (1,0). Saturation must place (1,0) before (2,0).
func TestRunWRDependency(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	g, err := Run(m, nil)
	require.NoError(t, err)
	assert.True(t, g.Contains(m.PosToID(1, 0), m.PosToID(2, 0)))
}

// TestRunWriteSkewCycle is S4: a write-skew pattern where both transactions
// read the root's initial value and write what the other read, producing a
// symmetric RW cycle.
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
	_, err := Run(m, nil)
	assert.ErrorIs(t, err, ErrCyclic)
}

// TestRunStaleRead is S5: program order plus WR forces an RW edge that
// reorders a same-process pair of writes around an intervening reader.
func TestRunStaleRead(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	g, err := Run(m, nil)
	require.NoError(t, err)

	t10, t11, t20 := m.PosToID(1, 0), m.PosToID(1, 1), m.PosToID(2, 0)
	assert.True(t, g.Contains(t10, t20), "program order + WR")
	assert.True(t, g.Contains(t20, t11), "RW inference: stale read must precede the next write")
}

// TestRunLostUpdate is S6: program order contradicts a root read.
func TestRunLostUpdate(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Reads: map[history.Var]history.Pos{10: history.RootPos}},
		},
	})
	_, err := Run(m, nil)
	assert.ErrorIs(t, err, ErrCyclic)
}

// TestRunMonotonicity checks SPEC_FULL.md §8 property 3: any edge present
// after seeding is still present after inference converges.
func TestRunMonotonicity(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{2, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{1, 1}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	seeded, err := Seed(m)
	require.NoError(t, err)
	g, err := Run(m, nil)
	require.NoError(t, err)

	for u := uint32(0); u < uint32(m.NumTxns()); u++ {
		for v := uint32(0); v < uint32(m.NumTxns()); v++ {
			if seeded.Contains(u, v) {
				assert.True(t, g.Contains(u, v), "edge %d->%d lost after saturation", u, v)
			}
		}
	}
}
