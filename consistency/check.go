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

// Package consistency is the entry point for deciding whether a history is
// serializable: it saturates the visibility closure and, if that succeeds,
// searches for a linear extension consistent with last-writer-wins reads.
package consistency

import (
	"github.com/pkg/errors"

	"github.com/erigontech/seriacheck/consistency/closure"
	"github.com/erigontech/seriacheck/consistency/history"
	"github.com/erigontech/seriacheck/consistency/saturate"
	"github.com/erigontech/seriacheck/consistency/search"
)

// ErrCyclic means the visibility closure itself contains a cycle: no
// ordering of transactions, regardless of read sources, can be consistent.
var ErrCyclic = saturate.ErrCyclic

// ErrExhausted means the closure saturated cleanly but no linear extension
// of it satisfies last-writer-wins reads.
var ErrExhausted = errors.New("consistency: no serialization order satisfies every read")

// Verdict is the outcome of a successful Check: either carries the
// serialization order, or (Order nil) was not reached because Check
// returned an error instead.
type Verdict struct {
	Order []history.Pos
	tids  []uint32
}

// ProcessOrder returns the process id of each transaction in serialization
// order, matching the reference checker's primary output (SPEC_FULL.md §6).
func (v Verdict) ProcessOrder() []int {
	out := make([]int, len(v.Order))
	for i, p := range v.Order {
		out[i] = p.Process
	}
	return out
}

// Tids returns the dense transaction ids in serialization order, for
// callers that need to walk the closure by id rather than position.
func (v Verdict) Tids() []uint32 { return v.tids }

// Options configures a Check run. A zero Options is valid and unbounded.
type Options struct {
	// Observer receives saturation pass notifications; nil disables it.
	Observer saturate.Observer
	// MemoCapacity bounds the search dead-cut memo; 0 or negative means
	// unbounded (see SPEC_FULL.md §4.4).
	MemoCapacity int
}

// Check decides whether in is serializable. On success it returns the
// emitted order; on failure it returns ErrCyclic or ErrExhausted, or
// history.ErrMalformedInput when in does not describe a valid history.
func Check(in history.Input, opts Options) (Verdict, error) {
	m, err := history.New(in)
	if err != nil {
		return Verdict{}, err
	}
	return CheckModel(m, opts)
}

// CheckModel is Check for a history already built into a Model, for callers
// (the property tests) that build the Model once and reuse it.
func CheckModel(m *history.Model, opts Options) (Verdict, error) {
	g, err := saturate.Run(m, opts.Observer)
	if err != nil {
		return Verdict{}, err
	}
	return checkGraph(m, g, opts)
}

func checkGraph(m *history.Model, g *closure.Graph, opts Options) (Verdict, error) {
	tids, ok := search.Run(m, g, opts.MemoCapacity)
	if !ok {
		return Verdict{}, ErrExhausted
	}

	order := make([]history.Pos, len(tids))
	for i, tid := range tids {
		order[i] = m.IDToPos(tid)
	}
	return Verdict{Order: order, tids: tids}, nil
}
