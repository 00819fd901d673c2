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

// Package search performs the depth-first, cut-based enumeration of linear
// extensions of a saturated visibility closure, pruned by a last-writer-wins
// read check and a memoized set of dead cuts (SPEC_FULL.md §4.4).
package search

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erigontech/seriacheck/consistency/closure"
	"github.com/erigontech/seriacheck/consistency/history"
)

// lastWriterState is last_wr[x]: the current last writer of a key and the
// set of its readers that have been emitted and still impose the
// no-subsequent-writer guard.
type lastWriterState struct {
	writer  uint32
	readers map[uint32]struct{}
}

// memo is the "seen" set of dead cut vectors. A bounded LRU is safe here:
// evicting an entry cannot change correctness, only how much re-exploration
// a later visit to that cut triggers, since search state is a deterministic
// function of the cut plus the immutable closure (SPEC_FULL.md §4.4).
type memo interface {
	Has(key string) bool
	Add(key string)
}

type mapMemo map[string]struct{}

func (m mapMemo) Has(key string) bool { _, ok := m[key]; return ok }
func (m mapMemo) Add(key string)      { m[key] = struct{}{} }

type lruMemo struct{ c *lru.Cache[string, struct{}] }

func (m lruMemo) Has(key string) bool { _, ok := m.c.Get(key); return ok }
func (m lruMemo) Add(key string)      { m.c.Add(key, struct{}{}) }

func newMemo(capacity int) memo {
	if capacity <= 0 {
		return make(mapMemo)
	}
	c, err := lru.New[string, struct{}](capacity)
	if err != nil {
		// Only returned by golang-lru for a non-positive size, which is
		// excluded above.
		return make(mapMemo)
	}
	return lruMemo{c: c}
}

// searcher holds all state local to one Run invocation (SPEC_FULL.md §3,
// Lifecycle: search-time state is local to one invocation).
type searcher struct {
	m   *history.Model
	g   *closure.Graph
	cut []int // length NumProcesses()+1; cut[0] in {0,1}, cut[p] in 0..ProcessSize(p)

	activePrev map[uint32]map[uint32]struct{}
	lastWr     map[history.Var]*lastWriterState
	order      []uint32
	seen       memo
}

// Run searches for a linear extension of g compatible with last-writer-wins
// read semantics. On success it returns the Tids of every non-root
// transaction in serialization order. memoCapacity bounds the dead-cut
// memo; 0 or negative means unbounded.
func Run(m *history.Model, g *closure.Graph, memoCapacity int) ([]uint32, bool) {
	s := &searcher{
		m:          m,
		g:          g,
		cut:        make([]int, m.NumProcesses()+1),
		activePrev: make(map[uint32]map[uint32]struct{}),
		lastWr:     make(map[history.Var]*lastWriterState),
		seen:       newMemo(memoCapacity),
	}

	for tid := uint32(0); tid < uint32(m.NumTxns()); tid++ {
		preds := g.Backward(tid)
		if len(preds) == 0 {
			continue
		}
		set := make(map[uint32]struct{}, len(preds))
		for _, p := range preds {
			set[p] = struct{}{}
		}
		s.activePrev[tid] = set
	}

	if !s.dfs() {
		return nil, false
	}
	return s.order[1:], true // strip the root
}

func (s *searcher) done() bool {
	if s.cut[0] != 1 {
		return false
	}
	for p := 1; p <= s.m.NumProcesses(); p++ {
		if s.cut[p] != s.m.ProcessSize(p) {
			return false
		}
	}
	return true
}

func cutKey(cut []int) string {
	var b strings.Builder
	for i, v := range cut {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func (s *searcher) eligible(cand uint32) bool {
	preds, ok := s.activePrev[cand]
	return !ok || len(preds) == 0
}

func (s *searcher) readGuard(cand uint32) bool {
	for x, src := range s.m.Reads(cand) {
		st, ok := s.lastWr[x]
		if !ok || st.writer != src {
			return false
		}
	}
	return true
}

func (s *searcher) writeGuard(cand uint32) bool {
	for x := range s.m.Writes(cand) {
		st, ok := s.lastWr[x]
		if !ok {
			continue
		}
		for r := range st.readers {
			if r != cand {
				return false
			}
		}
	}
	return true
}

// apply emits cand: first its reads decrement/clear outstanding write
// obligations, then its writes install cand as the new last writer for each
// key (SPEC_FULL.md §9, State undo discipline: reads before writes matters
// for keys a transaction both reads and writes).
func (s *searcher) apply(cand uint32) {
	for x := range s.m.Reads(cand) {
		st := s.lastWr[x]
		if len(st.readers) == 1 {
			delete(s.lastWr, x)
		} else {
			delete(st.readers, cand)
		}
	}
	for x, readers := range s.m.WriteReadByTxn(cand) {
		cp := make(map[uint32]struct{}, len(readers))
		for r := range readers {
			cp[r] = struct{}{}
		}
		s.lastWr[x] = &lastWriterState{writer: cand, readers: cp}
	}
	for _, v := range s.g.Forward(cand) {
		if preds, ok := s.activePrev[v]; ok {
			delete(preds, cand)
		}
	}
	s.order = append(s.order, cand)
}

// undo reverses apply, in the opposite order: writes first, then reads, so
// that a key both read and written by cand ends up back in the single-
// reader-{cand} state it was in immediately before the step.
func (s *searcher) undo(cand uint32) {
	s.order = s.order[:len(s.order)-1]
	for _, v := range s.g.Forward(cand) {
		if _, ok := s.activePrev[v]; !ok {
			s.activePrev[v] = make(map[uint32]struct{})
		}
		s.activePrev[v][cand] = struct{}{}
	}
	for x := range s.m.Writes(cand) {
		delete(s.lastWr, x)
	}
	for x, src := range s.m.Reads(cand) {
		s.lastWr[x] = &lastWriterState{writer: src, readers: map[uint32]struct{}{cand: {}}}
	}
}

func (s *searcher) dfs() bool {
	if s.done() {
		return true
	}

	for p := 0; p <= s.m.NumProcesses(); p++ {
		if p == 0 {
			if s.cut[0] != 0 {
				continue
			}
		} else if s.cut[p] >= s.m.ProcessSize(p) {
			continue
		}

		s.cut[p]++
		key := cutKey(s.cut)
		if s.seen.Has(key) {
			s.cut[p]--
			continue
		}

		var cand uint32
		if p == 0 {
			cand = history.RootTid
		} else {
			cand = s.m.PosToID(p, s.cut[p]-1)
		}

		if !s.eligible(cand) || !s.readGuard(cand) || !s.writeGuard(cand) {
			s.cut[p]--
			continue
		}

		s.apply(cand)
		if s.dfs() {
			return true
		}
		s.undo(cand)
		s.seen.Add(key)
		s.cut[p]--
	}
	return false
}
