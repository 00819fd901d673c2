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

// Package batchrun checks many independent histories concurrently and
// persists each verdict (SPEC_FULL.md §5, "the sanctioned parallelism").
// Histories are wholly independent: there is no shared mutable state
// between checks, only a bounded worker count and a shared Store.
package batchrun

import (
	"context"
	"runtime"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/seriacheck/consistency"
	"github.com/erigontech/seriacheck/consistency/history"
	"github.com/erigontech/seriacheck/store"
)

// Item is one history to check, identified by a caller-supplied label
// (typically its source file path).
type Item struct {
	Label   string
	Input   history.Input
	Options consistency.Options
}

// Result pairs an Item with its outcome.
type Result struct {
	Label   string
	RunID   string
	Verdict consistency.Verdict
	Err     error
}

// Run checks every item, at most concurrency at a time, recording each
// result to s. It returns one Result per item, in the same order as items,
// and a nil error unless the context is canceled or a Store write fails —
// an individual history being non-serializable is not a Run error, it is
// recorded in that item's Result.Err.
func Run(ctx context.Context, items []Item, s store.Interface, concurrency int, clock func() int64) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		i, item := i, item
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		g.Go(func() error {
			defer func() { <-sem }()

			start := clock()
			verdict, checkErr := consistency.Check(item.Input, item.Options)
			durationMS := clock() - start

			res := Result{Label: item.Label, Verdict: verdict, Err: checkErr}

			runID, storeErr := s.Record(store.Run{
				Label:        item.Label,
				Verdict:      verdictLabel(checkErr),
				NumTxns:      len(item.Input.Txns) + 1,
				NumProcesses: len(item.Input.NSizes),
				DurationMS:   durationMS,
				CreatedAt:    clock(),
				OrderJSON:    orderJSON(verdict, checkErr),
			})
			if storeErr != nil {
				return storeErr
			}
			res.RunID = runID

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func verdictLabel(err error) string {
	switch {
	case err == nil:
		return "serializable"
	case err == consistency.ErrCyclic:
		return "cyclic"
	default:
		return "exhausted"
	}
}

func orderJSON(v consistency.Verdict, err error) string {
	if err != nil {
		return ""
	}
	data, marshalErr := json.Marshal(v.ProcessOrder())
	if marshalErr != nil {
		return ""
	}
	return string(data)
}
