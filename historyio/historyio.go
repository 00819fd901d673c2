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

// Package historyio reads and writes the JSON wire format for histories
// (SPEC_FULL.md §3): transactions keyed by "process,index" position
// strings, each with a read map (decimal key -> source position) and a
// write list.
package historyio

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/erigontech/seriacheck/consistency/history"
)

// ErrMalformedWire is returned for JSON that parses but doesn't describe a
// legal position or key.
var ErrMalformedWire = errors.New("historyio: malformed wire format")

type wireTxn struct {
	Reads  map[string][2]int `json:"reads,omitempty"`
	Writes []uint64          `json:"writes,omitempty"`
}

type wireInput struct {
	NSizes []int              `json:"n_sizes"`
	Txns   map[string]wireTxn `json:"txns"`
}

// Decode parses the wire format into a history.Input. It does not validate
// referential integrity beyond syntax; history.New performs that check.
func Decode(data []byte) (history.Input, error) {
	var w wireInput
	if err := json.Unmarshal(data, &w); err != nil {
		return history.Input{}, errors.Wrap(err, "historyio: decode")
	}

	in := history.Input{
		NSizes: w.NSizes,
		Txns:   make(map[history.Pos]history.TxnInput, len(w.Txns)),
	}

	for posStr, wt := range w.Txns {
		pos, err := parsePos(posStr)
		if err != nil {
			return history.Input{}, err
		}

		reads := make(map[history.Var]history.Pos, len(wt.Reads))
		for keyStr, srcPair := range wt.Reads {
			x, err := strconv.ParseUint(keyStr, 10, 64)
			if err != nil {
				return history.Input{}, errors.Wrapf(ErrMalformedWire, "txn %s: invalid read key %q", posStr, keyStr)
			}
			reads[history.Var(x)] = history.Pos{Process: srcPair[0], Index: srcPair[1]}
		}

		writes := make(map[history.Var]struct{}, len(wt.Writes))
		for _, x := range wt.Writes {
			writes[history.Var(x)] = struct{}{}
		}

		in.Txns[pos] = history.TxnInput{Reads: reads, Writes: writes}
	}

	return in, nil
}

// Encode serializes in to the wire format.
func Encode(in history.Input) ([]byte, error) {
	w := wireInput{
		NSizes: in.NSizes,
		Txns:   make(map[string]wireTxn, len(in.Txns)),
	}
	for pos, txn := range in.Txns {
		wt := wireTxn{
			Reads:  make(map[string][2]int, len(txn.Reads)),
			Writes: make([]uint64, 0, len(txn.Writes)),
		}
		for x, src := range txn.Reads {
			wt.Reads[strconv.FormatUint(uint64(x), 10)] = [2]int{src.Process, src.Index}
		}
		for x := range txn.Writes {
			wt.Writes = append(wt.Writes, uint64(x))
		}
		w.Txns[posKey(pos)] = wt
	}
	return json.Marshal(w)
}

func posKey(pos history.Pos) string {
	return strconv.Itoa(pos.Process) + "," + strconv.Itoa(pos.Index)
}

func parsePos(s string) (history.Pos, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return history.Pos{}, errors.Wrapf(ErrMalformedWire, "invalid position key %q", s)
	}
	p, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	k, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return history.Pos{}, errors.Wrapf(ErrMalformedWire, "invalid position key %q", s)
	}
	return history.Pos{Process: p, Index: k}, nil
}
