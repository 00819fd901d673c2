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

// Package saturate seeds a closure.Graph with program order and write-read
// edges, then repeatedly infers write-write and read-write edges until the
// closure is stable (a fixed point) or a cycle is proven.
package saturate

import (
	"github.com/pkg/errors"

	"github.com/erigontech/seriacheck/consistency/closure"
	"github.com/erigontech/seriacheck/consistency/history"
)

// ErrCyclic is returned when the saturated visibility relation would
// contain a cycle: a candidate edge u->v is demanded while v->u already
// holds. No partial closure is returned in this case.
var ErrCyclic = errors.New("saturate: visibility closure is cyclic")

// Observer receives progress notifications during saturation. It exists so
// metrics and tracing can hook into the inference loop without the core
// algorithm depending on a logger or a metrics client. All methods must
// tolerate being nil-checked by callers via NopObserver when unset.
type Observer interface {
	// Pass is called once per inference pass (SPEC_FULL.md §4.3.2 / §9),
	// after candidates for that pass have been computed and applied.
	Pass(passNum int, candidates int, newEdges int, converged bool)
}

type nopObserver struct{}

func (nopObserver) Pass(int, int, int, bool) {}

// NopObserver is an Observer that does nothing.
var NopObserver Observer = nopObserver{}

type edge struct{ u, v uint32 }

// Run builds the visibility closure for m and saturates it. On success it
// returns the closure with every WW/RW/WR/program-order edge implied by the
// history. On failure (ErrCyclic) the returned graph is nil.
func Run(m *history.Model, obs Observer) (*closure.Graph, error) {
	if obs == nil {
		obs = NopObserver
	}
	g := closure.New()

	if err := seed(m, g); err != nil {
		return nil, err
	}

	if err := infer(m, g, obs); err != nil {
		return nil, err
	}
	return g, nil
}

// Seed builds a closure containing only program-order and write-read edges
// (SPEC_FULL.md §4.3.1), with no WW/RW inference applied. Exposed for tests
// that check saturation monotonicity (SPEC_FULL.md §8 property 3).
func Seed(m *history.Model) (*closure.Graph, error) {
	g := closure.New()
	if err := seed(m, g); err != nil {
		return nil, err
	}
	return g, nil
}

// seed adds program-order and write-read edges (SPEC_FULL.md §4.3.1).
func seed(m *history.Model, g *closure.Graph) error {
	for p := 1; p <= m.NumProcesses(); p++ {
		n := m.ProcessSize(p)
		if n == 0 {
			continue
		}
		if err := addOrFail(g, history.RootTid, m.PosToID(p, 0)); err != nil {
			return err
		}
		for k := 0; k < n-1; k++ {
			if err := addOrFail(g, m.PosToID(p, k), m.PosToID(p, k+1)); err != nil {
				return err
			}
		}
	}

	for tid := uint32(0); tid < uint32(m.NumTxns()); tid++ {
		for _, src := range m.Reads(tid) {
			if err := addOrFail(g, src, tid); err != nil {
				return err
			}
		}
	}
	return nil
}

// addOrFail adds u->v, reporting ErrCyclic if v->u is already present. It
// never inserts self-loops; callers here never construct one (a process
// cannot read from or come after itself).
func addOrFail(g *closure.Graph, u, v uint32) error {
	if u == v {
		return nil
	}
	if g.Contains(v, u) {
		return ErrCyclic
	}
	g.AddEdge(u, v)
	return nil
}

// infer repeatedly derives write-write and read-write edges until a pass
// adds nothing (SPEC_FULL.md §4.3.2). Candidates for a pass are enumerated
// under the closure as it stood at the start of the pass, then applied —
// never applied as they're found — so one edge's insertion mid-pass cannot
// change what the rest of the pass considers a candidate (see SPEC_FULL.md
// §9, Saturation loop structure).
func infer(m *history.Model, g *closure.Graph, obs Observer) error {
	for pass := 1; ; pass++ {
		var candidates []edge

		for _, x := range m.AllKeys() {
			writers := m.WritersOf(x)
			for u, readers := range writers {
				for uPrime := range writers {
					if uPrime == u {
						continue
					}
					for v := range readers {
						if v == uPrime {
							continue
						}
						if g.Contains(u, uPrime) {
							// v read x from u; u' overwrites x after v's
							// observation, so v must precede u'.
							candidates = append(candidates, edge{v, uPrime})
						}
						if g.Contains(uPrime, v) {
							// u' must precede v, and therefore precede u
							// too, else u' could overwrite x between u and v.
							candidates = append(candidates, edge{uPrime, u})
						}
					}
				}
			}
		}

		newEdges := 0
		converged := true
		for _, c := range candidates {
			if g.Contains(c.v, c.u) {
				return ErrCyclic
			}
			if g.Contains(c.u, c.v) {
				continue
			}
			if g.AddEdge(c.u, c.v) {
				newEdges++
				converged = false
			}
		}

		obs.Pass(pass, len(candidates), newEdges, converged)

		if converged {
			return nil
		}
	}
}
