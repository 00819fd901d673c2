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

package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/erigontech/seriacheck/consistency"
)

// explainMismatch renders why two verdicts for what should be the same
// history disagree, for the "check --compare" diagnostic path. deep reports
// the divergence in exported fields (including differing Order slices);
// spew dumps each verdict in full, unexported fields included, when deep
// finds nothing.
func explainMismatch(got, want consistency.Verdict) string {
	if diffs := deep.Equal(got, want); len(diffs) > 0 {
		out := "verdict mismatch:\n"
		for _, d := range diffs {
			out += "  " + d + "\n"
		}
		return out
	}
	return fmt.Sprintf("verdicts differ in representation only:\ngot:  %s\nwant: %s", spew.Sdump(got), spew.Sdump(want))
}
