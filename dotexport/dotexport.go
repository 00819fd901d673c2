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

// Package dotexport renders a visibility closure as Graphviz DOT, for
// visually inspecting why a history was found (non-)serializable.
package dotexport

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/erigontech/seriacheck/consistency/closure"
	"github.com/erigontech/seriacheck/consistency/history"
)

// Options controls what the export includes.
type Options struct {
	// TransitiveEdges includes every closure edge, not just the ones not
	// implied by another edge already in the graph. Off by default since
	// a saturated closure is nearly complete and the transitive edges
	// clutter the picture.
	TransitiveEdges bool
}

// Graph renders m's transaction positions with edges drawn from g. Without
// TransitiveEdges, an edge u->v is drawn only when no w exists with
// u->w->v, so the picture shows the Hasse diagram of the closure.
func Graph(m *history.Model, g *closure.Graph, opts Options) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	out.Attr("rankdir", "LR")

	nodes := make(map[uint32]dot.Node, m.NumTxns())
	for tid := uint32(0); tid < uint32(m.NumTxns()); tid++ {
		pos := m.IDToPos(tid)
		label := fmt.Sprintf("(%d,%d)", pos.Process, pos.Index)
		if tid == history.RootTid {
			label = "root"
		}
		nodes[tid] = out.Node(label)
	}

	for tid := uint32(0); tid < uint32(m.NumTxns()); tid++ {
		for _, v := range g.Forward(tid) {
			if !opts.TransitiveEdges && isImplied(g, tid, v) {
				continue
			}
			out.Edge(nodes[tid], nodes[v])
		}
	}
	return out
}

// isImplied reports whether u->v is implied by some w with u->w and w->v,
// w distinct from both endpoints.
func isImplied(g *closure.Graph, u, v uint32) bool {
	for _, w := range g.Forward(u) {
		if w == v {
			continue
		}
		if g.Contains(w, v) {
			return true
		}
	}
	return false
}
