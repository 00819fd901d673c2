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

package bruteforce

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

func TestSerializableWRDependency(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
		},
	})
	order, ok := Serializable(m)
	require.True(t, ok)
	assert.Equal(t, []uint32{m.PosToID(1, 0), m.PosToID(2, 0)}, order)
}

func TestSerializableWriteSkewIsUnsatisfiable(t *testing.T) {
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
	_, ok := Serializable(m)
	assert.False(t, ok)
}

func TestSerializableStaleReadIsUnsatisfiable(t *testing.T) {
	m := build(t, history.Input{
		NSizes: []int{1, 2, 1},
		Txns: map[history.Pos]history.TxnInput{
			{1, 0}: {Writes: map[history.Var]struct{}{10: {}}},
			{2, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}}},
			{2, 1}: {Writes: map[history.Var]struct{}{10: {}, 20: {}}},
			{3, 0}: {Reads: map[history.Var]history.Pos{10: {1, 0}, 20: {2, 1}}},
		},
	})
	_, ok := Serializable(m)
	assert.False(t, ok)
}
