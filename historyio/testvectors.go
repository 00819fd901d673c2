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

package historyio

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/erigontech/seriacheck/consistency"
	"github.com/erigontech/seriacheck/consistency/history"
)

// Fixture is one test-vector file: a history plus the expected verdict,
// possibly under several named variants. Every variant checks the same
// history with the same options (an unbounded memo).
type Fixture struct {
	json fixtureJSON
}

// Variant selects one named expectation within a Fixture.
type Variant struct {
	Name string
}

type fixtureJSON struct {
	History wireInput               `json:"history"`
	Expect  map[string]expectedJSON `json:"expect"`
}

type expectedJSON struct {
	Serializable bool     `json:"serializable"`
	Order        [][2]int `json:"order,omitempty"`
}

func (f *Fixture) UnmarshalJSON(in []byte) error {
	return json.Unmarshal(in, &f.json)
}

// Variants lists every named expectation in the fixture.
func (f *Fixture) Variants() []Variant {
	variants := make([]Variant, 0, len(f.json.Expect))
	for name := range f.json.Expect {
		variants = append(variants, Variant{Name: name})
	}
	return variants
}

// Run decodes the fixture's history, checks it, and verifies the named
// variant's expectation. It returns the verdict even on mismatch, so
// callers can report a useful diff.
func (f *Fixture) Run(v Variant) (consistency.Verdict, error) {
	verdict, checkErr := f.RunNoVerify()

	want, ok := f.json.Expect[v.Name]
	if !ok {
		return verdict, errors.Errorf("historyio: no such variant %q", v.Name)
	}

	gotSerializable := checkErr == nil
	if gotSerializable != want.Serializable {
		return verdict, fmt.Errorf("variant %q: got serializable=%v, want %v (err=%v)", v.Name, gotSerializable, want.Serializable, checkErr)
	}
	if !want.Serializable {
		return verdict, nil
	}
	if len(want.Order) > 0 {
		if len(want.Order) != len(verdict.Order) {
			return verdict, fmt.Errorf("variant %q: order length mismatch: got %d, want %d", v.Name, len(verdict.Order), len(want.Order))
		}
		for i, pos := range verdict.Order {
			wantPos := history.Pos{Process: want.Order[i][0], Index: want.Order[i][1]}
			if pos != wantPos {
				return verdict, fmt.Errorf("variant %q: order[%d] = %s, want %s", v.Name, i, pos, wantPos)
			}
		}
	}
	return verdict, nil
}

// RunNoVerify decodes the fixture's history and runs Check without
// comparing against any expectation.
func (f *Fixture) RunNoVerify() (consistency.Verdict, error) {
	data, err := json.Marshal(f.json.History)
	if err != nil {
		return consistency.Verdict{}, err
	}
	in, err := Decode(data)
	if err != nil {
		return consistency.Verdict{}, err
	}
	return consistency.Check(in, consistency.Options{})
}
