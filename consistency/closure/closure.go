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

// Package closure maintains a directed graph of transaction ids under edge
// insertion, keeping forward and backward reachability fully materialized
// (a transitive closure). Tids are dense small non-negative integers, so
// both adjacency sets are stored as Roaring bitmaps rather than Go maps.
package closure

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Graph is a transitive closure over Tids (transaction ids). The zero value
// is not usable; construct with New.
type Graph struct {
	forward  map[uint32]*roaring.Bitmap
	backward map[uint32]*roaring.Bitmap
}

// New returns an empty closure.
func New() *Graph {
	return &Graph{
		forward:  make(map[uint32]*roaring.Bitmap),
		backward: make(map[uint32]*roaring.Bitmap),
	}
}

func (g *Graph) fwd(u uint32) *roaring.Bitmap {
	b, ok := g.forward[u]
	if !ok {
		b = roaring.New()
		g.forward[u] = b
	}
	return b
}

func (g *Graph) bwd(v uint32) *roaring.Bitmap {
	b, ok := g.backward[v]
	if !ok {
		b = roaring.New()
		g.backward[v] = b
	}
	return b
}

// Contains reports whether u->v is in the current closure.
func (g *Graph) Contains(u, v uint32) bool {
	b, ok := g.forward[u]
	if !ok {
		return false
	}
	return b.Contains(v)
}

// Forward returns the set of v such that u->v, as a sorted slice.
// The caller must not mutate the returned slice's backing in place via
// closure methods; it is a snapshot.
func (g *Graph) Forward(u uint32) []uint32 {
	b, ok := g.forward[u]
	if !ok {
		return nil
	}
	return b.ToArray()
}

// Backward returns the set of u such that u->v, as a sorted slice.
func (g *Graph) Backward(v uint32) []uint32 {
	b, ok := g.backward[v]
	if !ok {
		return nil
	}
	return b.ToArray()
}

// ForwardBitmap returns the live forward bitmap for u, or nil. Exposed for
// callers (search.State) that need set operations without copying.
func (g *Graph) ForwardBitmap(u uint32) *roaring.Bitmap {
	return g.forward[u]
}

// BackwardBitmap returns the live backward bitmap for v, or nil.
func (g *Graph) BackwardBitmap(v uint32) *roaring.Bitmap {
	return g.backward[v]
}

// AddEdge inserts u->v and every edge implied by transitivity with the
// current closure. It reports whether at least one new pair was added.
//
// Given the closure is already transitive before the call, the new pairs
// are exactly:
//
//	{(p, q) : p in backward(u) U {u}, q in forward(v) U {v}} minus existing
//
// The candidate set is computed first and filtered against the existing
// closure, then committed in one pass so the insertion order within a
// single AddEdge call cannot affect the result.
func (g *Graph) AddEdge(u, v uint32) bool {
	if g.Contains(u, v) {
		return false
	}

	prevsU := g.Backward(u)
	nextsV := g.Forward(v)

	type pair struct{ p, q uint32 }
	candidates := make([]pair, 0, (len(prevsU)+1)*(len(nextsV)+1))

	for _, p := range prevsU {
		for _, q := range nextsV {
			if !g.Contains(p, q) {
				candidates = append(candidates, pair{p, q})
			}
		}
		if !g.Contains(p, v) {
			candidates = append(candidates, pair{p, v})
		}
	}
	for _, q := range nextsV {
		if !g.Contains(u, q) {
			candidates = append(candidates, pair{u, q})
		}
	}
	candidates = append(candidates, pair{u, v})

	for _, c := range candidates {
		g.fwd(c.p).Add(c.q)
		g.bwd(c.q).Add(c.p)
	}
	return true
}

// Size returns the number of transactions that appear as the source of at
// least one edge or the target of at least one edge; useful for metrics.
func (g *Graph) Size() int {
	seen := make(map[uint32]struct{}, len(g.forward))
	for u := range g.forward {
		seen[u] = struct{}{}
	}
	for v := range g.backward {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// EdgeCount returns the total number of pairs currently in the closure.
func (g *Graph) EdgeCount() uint64 {
	var n uint64
	for _, b := range g.forward {
		n += b.GetCardinality()
	}
	return n
}
