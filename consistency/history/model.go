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

// Package history is the immutable transaction index: a compact integer id
// for each transaction (including a synthetic root), per-process ordering,
// and each transaction's read set (key -> source transaction) and write
// set (keys). It is built once from an Input and never mutated afterward.
package history

import (
	"fmt"

	"github.com/pkg/errors"
)

// Var is an opaque, equality-comparable key identifier.
type Var uint64

// Pos is a transaction position: (process, index-within-process). The root
// is Pos{0, 0}; real transactions have Process in 1..P.
type Pos struct {
	Process int
	Index   int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Process, p.Index) }

// RootPos is the position of the synthetic root transaction.
var RootPos = Pos{Process: 0, Index: 0}

// RootTid is the dense id always assigned to the root transaction.
const RootTid uint32 = 0

// TxnInput is one non-root transaction as supplied by a caller: for each key
// read, the position of the transaction whose write was observed, and the
// set of keys written.
type TxnInput struct {
	Reads  map[Var]Pos
	Writes map[Var]struct{}
}

// Input is the immutable value HistoryModel is built from (spec.md §6).
type Input struct {
	NSizes []int
	Txns   map[Pos]TxnInput
}

// ErrMalformedInput is returned by New when the input violates the
// invariants of §3: a dangling read reference, or a position out of the
// range implied by NSizes. spec.md allows panicking here instead; this
// repository validates up front because historyio feeds it untrusted file
// input (see SPEC_FULL.md §7).
var ErrMalformedInput = errors.New("history: malformed input")

// Model is the built, immutable transaction index.
type Model struct {
	nSizes   []int
	posToID  [][]uint32 // posToID[p][k], p in 0..P (p=0 holds just the root)
	idToPos  []Pos
	reads    []map[Var]uint32      // reads[tid], empty for the root
	writes   []map[Var]struct{}    // writes[tid]; writes[RootTid] is derived
	wrByVar  map[Var]map[uint32]map[uint32]struct{}
	wrByTxn  map[uint32]map[Var]map[uint32]struct{}
	numTxns  int // including the root
	maxProc  int
}

// New builds a Model from in, assigning dense Tids deterministically:
// the root gets RootTid, then each process's transactions in index order,
// processes in ascending order.
func New(in Input) (*Model, error) {
	P := len(in.NSizes)
	total := 1
	for p, n := range in.NSizes {
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformedInput, "process %d has negative size %d", p+1, n)
		}
		total += n
	}

	m := &Model{
		nSizes:  append([]int(nil), in.NSizes...),
		posToID: make([][]uint32, P+1),
		idToPos: make([]Pos, 0, total),
		reads:   make([]map[Var]uint32, total),
		writes:  make([]map[Var]struct{}, total),
		wrByVar: make(map[Var]map[uint32]map[uint32]struct{}),
		wrByTxn: make(map[uint32]map[Var]map[uint32]struct{}),
		numTxns: total,
		maxProc: P,
	}

	m.posToID[0] = []uint32{0}
	m.idToPos = append(m.idToPos, RootPos)
	m.writes[RootTid] = make(map[Var]struct{})
	m.reads[RootTid] = make(map[Var]uint32)

	for p := 1; p <= P; p++ {
		n := in.NSizes[p-1]
		m.posToID[p] = make([]uint32, n)
		for k := 0; k < n; k++ {
			tid := uint32(len(m.idToPos))
			m.posToID[p][k] = tid
			m.idToPos = append(m.idToPos, Pos{Process: p, Index: k})
		}
	}

	posToID := func(pos Pos) (uint32, bool) {
		if pos.Process < 0 || pos.Process > P {
			return 0, false
		}
		if pos.Index < 0 || pos.Index >= len(m.posToID[pos.Process]) {
			return 0, false
		}
		return m.posToID[pos.Process][pos.Index], true
	}

	for p := 1; p <= P; p++ {
		for k := 0; k < in.NSizes[p-1]; k++ {
			pos := Pos{Process: p, Index: k}
			txnIn, ok := in.Txns[pos]
			if !ok {
				return nil, errors.Wrapf(ErrMalformedInput, "no transaction supplied at position %s", pos)
			}
			tid, _ := posToID(pos)

			reads := make(map[Var]uint32, len(txnIn.Reads))
			for x, srcPos := range txnIn.Reads {
				srcTid, ok := posToID(srcPos)
				if !ok {
					return nil, errors.Wrapf(ErrMalformedInput, "transaction %s reads key %v from dangling position %s", pos, x, srcPos)
				}
				reads[x] = srcTid
				if srcTid == RootTid {
					m.writes[RootTid][x] = struct{}{}
				}
			}
			m.reads[tid] = reads

			writes := make(map[Var]struct{}, len(txnIn.Writes))
			for x := range txnIn.Writes {
				writes[x] = struct{}{}
			}
			m.writes[tid] = writes
		}
	}

	for pos := range in.Txns {
		if pos.Process < 1 || pos.Process > P || pos.Index < 0 || pos.Index >= in.NSizes[pos.Process-1] {
			return nil, errors.Wrapf(ErrMalformedInput, "transaction supplied at out-of-range position %s", pos)
		}
	}

	m.buildWriteReadIndex()
	return m, nil
}

func (m *Model) buildWriteReadIndex() {
	for tid := 0; tid < m.numTxns; tid++ {
		for x, writer := range m.reads[tid] {
			m.indexReader(x, writer, uint32(tid))
		}
	}
	// Materialize an empty reader set for every (writer, key) pair so
	// saturation can iterate writers of a key without missing writers that
	// have no readers (SPEC_FULL.md §3, derived indexes).
	for tid := 0; tid < m.numTxns; tid++ {
		for x := range m.writes[tid] {
			m.indexWriterOnly(x, uint32(tid))
		}
	}
}

func (m *Model) indexReader(x Var, writer, reader uint32) {
	byWriter, ok := m.wrByVar[x]
	if !ok {
		byWriter = make(map[uint32]map[uint32]struct{})
		m.wrByVar[x] = byWriter
	}
	readers, ok := byWriter[writer]
	if !ok {
		readers = make(map[uint32]struct{})
		byWriter[writer] = readers
	}
	readers[reader] = struct{}{}

	byVar, ok := m.wrByTxn[writer]
	if !ok {
		byVar = make(map[Var]map[uint32]struct{})
		m.wrByTxn[writer] = byVar
	}
	rs, ok := byVar[x]
	if !ok {
		rs = make(map[uint32]struct{})
		byVar[x] = rs
	}
	rs[reader] = struct{}{}
}

func (m *Model) indexWriterOnly(x Var, writer uint32) {
	byWriter, ok := m.wrByVar[x]
	if !ok {
		byWriter = make(map[uint32]map[uint32]struct{})
		m.wrByVar[x] = byWriter
	}
	if _, ok := byWriter[writer]; !ok {
		byWriter[writer] = make(map[uint32]struct{})
	}

	byVar, ok := m.wrByTxn[writer]
	if !ok {
		byVar = make(map[Var]map[uint32]struct{})
		m.wrByTxn[writer] = byVar
	}
	if _, ok := byVar[x]; !ok {
		byVar[x] = make(map[uint32]struct{})
	}
}

// NumProcesses returns P, the number of non-root processes.
func (m *Model) NumProcesses() int { return m.maxProc }

// ProcessSize returns n_sizes[p] for p in 1..P.
func (m *Model) ProcessSize(p int) int { return m.nSizes[p-1] }

// NumTxns returns the total number of transactions, including the root.
func (m *Model) NumTxns() int { return m.numTxns }

// PosToID returns the Tid at (process, index). process=0 always yields the root.
func (m *Model) PosToID(process, index int) uint32 { return m.posToID[process][index] }

// IDToPos returns the position of a Tid.
func (m *Model) IDToPos(tid uint32) Pos { return m.idToPos[tid] }

// Reads returns the read map of a transaction (empty for the root).
func (m *Model) Reads(tid uint32) map[Var]uint32 { return m.reads[tid] }

// Writes returns the write set of a transaction. For the root, this is the
// union of keys observed to be read from it (SPEC_FULL.md §9, Root writes).
func (m *Model) Writes(tid uint32) map[Var]struct{} { return m.writes[tid] }

// WritersOf returns, for key x, the map from writer Tid to its set of
// readers of x. Every writer of x has an entry, possibly with an empty
// reader set.
func (m *Model) WritersOf(x Var) map[uint32]map[uint32]struct{} { return m.wrByVar[x] }

// WriteReadByTxn returns, for writer tid, the map from key to the set of
// readers that observed tid's write of that key.
func (m *Model) WriteReadByTxn(tid uint32) map[Var]map[uint32]struct{} { return m.wrByTxn[tid] }

// AllKeys returns every key with at least one writer.
func (m *Model) AllKeys() []Var {
	keys := make([]Var, 0, len(m.wrByVar))
	for x := range m.wrByVar {
		keys = append(keys, x)
	}
	return keys
}
