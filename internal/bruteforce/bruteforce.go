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

// Package bruteforce is an independent, exhaustive-permutation oracle for
// serializability, used only by tests to check the production checker for
// soundness on small histories (SPEC_FULL.md §8, property 8). It does not
// share any code path with consistency/saturate or consistency/search.
package bruteforce

import "github.com/erigontech/seriacheck/consistency/history"

// Serializable tries every permutation of m's non-root transactions and
// reports whether at least one respects both program order and
// last-writer-wins reads. Cost is factorial in transaction count; callers
// must keep histories small (spec.md's bound is 7 transactions).
func Serializable(m *history.Model) (order []uint32, ok bool) {
	n := m.NumTxns() - 1
	tids := make([]uint32, n)
	for i := range tids {
		tids[i] = uint32(i + 1)
	}

	var found []uint32
	permute(tids, 0, func(perm []uint32) bool {
		if valid(m, perm) {
			found = append([]uint32(nil), perm...)
			return true
		}
		return false
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

// permute calls visit on every permutation of items (fixing a prefix of
// length k at a time), stopping as soon as visit returns true.
func permute(items []uint32, k int, visit func([]uint32) bool) bool {
	if k == len(items) {
		return visit(items)
	}
	for i := k; i < len(items); i++ {
		items[k], items[i] = items[i], items[k]
		if permute(items, k+1, visit) {
			items[k], items[i] = items[i], items[k]
			return true
		}
		items[k], items[i] = items[i], items[k]
	}
	return false
}

// valid checks perm against program order and last-writer-wins reads.
func valid(m *history.Model, perm []uint32) bool {
	posInPerm := make(map[uint32]int, len(perm))
	for i, tid := range perm {
		posInPerm[tid] = i
	}

	for p := 1; p <= m.NumProcesses(); p++ {
		prev := -1
		for k := 0; k < m.ProcessSize(p); k++ {
			tid := m.PosToID(p, k)
			cur := posInPerm[tid]
			if cur <= prev {
				return false
			}
			prev = cur
		}
	}

	lastWriter := make(map[history.Var]uint32)
	for x := range rootWrites(m) {
		lastWriter[x] = history.RootTid
	}

	for _, tid := range perm {
		for x, src := range m.Reads(tid) {
			w, ok := lastWriter[x]
			if !ok || w != src {
				return false
			}
		}
		for x := range m.Writes(tid) {
			lastWriter[x] = tid
		}
	}
	return true
}

func rootWrites(m *history.Model) map[history.Var]struct{} { return m.Writes(history.RootTid) }
