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

package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/seriacheck/consistency/history"
)

// TestCheckWRDependency is S3: a simple write-read pair is serializable,
// and ProcessOrder places the writer's process before the reader's.
func TestCheckWRDependency(t *testing.T) {
	v, err := Check(history.Input{
		NSizes: []int{1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, []history.Pos{{1, 0}, {2, 0}}, v.Order)
	assert.Equal(t, []int{1, 2}, v.ProcessOrder())
}

// TestCheckWriteSkewIsCyclic is S4: saturation itself proves the history
// non-serializable.
func TestCheckWriteSkewIsCyclic(t *testing.T) {
	_, err := Check(history.Input{
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
	}, Options{})
	assert.ErrorIs(t, err, ErrCyclic)
}

// TestCheckStaleReadViolationIsExhausted mirrors the search package's
// acyclic-but-unsatisfiable case (TestRunRejectsNonLastWriterRead),
// confirming Check surfaces ErrExhausted rather than ErrCyclic for it.
func TestCheckStaleReadViolationIsExhausted(t *testing.T) {
	_, err := Check(history.Input{
		NSizes: []int{1, 1, 1, 1, 1, 1, 1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}, 30: {}}},
			{2, 0}: {Writes: map[history.Var]struct{}{10: {}, 40: {}}},
			{3, 0}: {Writes: map[history.Var]struct{}{20: {}, 50: {}}},
			{4, 0}: {Writes: map[history.Var]struct{}{20: {}, 60: {}}},
			{5, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}, 50: {3, 0}, 60: {4, 0}}},
			{6, 0}: {Reads: map[history.Var]history.Pos{10: {2, 0}, 50: {3, 0}, 60: {4, 0}}},
			{7, 0}: {Reads: map[history.Var]history.Pos{20: {3, 0}, 30: {1, 0}, 40: {2, 0}}},
			{8, 0}: {Reads: map[history.Var]history.Pos{20: {4, 0}, 30: {1, 0}, 40: {2, 0}}},
		},
	}, Options{})
	assert.ErrorIs(t, err, ErrExhausted)
}

// TestCheckMalformedInputPropagates ensures history.New's validation error
// surfaces unchanged through Check.
func TestCheckMalformedInputPropagates(t *testing.T) {
	_, err := Check(history.Input{
		NSizes: []int{1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Reads: map[history.Var]history.Pos{10: {9, 0}}},
		},
	}, Options{})
	assert.ErrorIs(t, err, history.ErrMalformedInput)
}
