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

// Package config loads run configuration from YAML and derives the search
// memo's capacity from the configured memory budget.
package config

import (
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/erigontech/seriacheck/erigon-lib/common/mathutil"
)

// Config is the top-level run configuration (SPEC_FULL.md §5, Resource
// budgets).
type Config struct {
	// MemoBudget bounds the memory the search dead-cut memo may use; the
	// actual entry capacity is derived from it by MemoCapacity.
	MemoBudget datasize.ByteSize `yaml:"memo_budget"`
	// Concurrency is the maximum number of histories batchrun checks at
	// once. 0 means use runtime.NumCPU.
	Concurrency int `yaml:"concurrency"`
	// StorePath is the sqlite database batchrun and the CLI persist
	// results to.
	StorePath string `yaml:"store_path"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MemoBudget:  64 * datasize.MB,
		Concurrency: 0,
		StorePath:   "seriacheck.db",
	}
}

// Load reads a YAML config file, falling back to Default for any field the
// file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// approxMemoEntryBytes estimates the retained size of one dead-cut memo
// entry: the cut-vector string key plus map bookkeeping overhead.
const approxMemoEntryBytes = 96

// baseOverheadBytes accounts for the LRU structure's own fixed bookkeeping
// cost, independent of entry count, folded into the budget before dividing.
const baseOverheadBytes = 512

// MemoCapacity derives the number of dead-cut entries the search memo may
// retain from the configured memory budget. The division rounds up
// (CeilDiv) so a budget that isn't an exact multiple of approxMemoEntryBytes
// isn't under-allocated by one entry; MemoBudget comes from user-supplied
// YAML and could in principle sit near uint64's range limit, so the fixed
// overhead is folded in with an overflow-checked add (SafeAdd) rather than
// a bare "+". A zero budget yields 0.
func (c Config) MemoCapacity() int {
	budget := uint64(c.MemoBudget)
	if budget == 0 {
		return 0
	}
	if total, overflow := mathutil.SafeAdd(budget, baseOverheadBytes); !overflow {
		budget = total
	}
	n := mathutil.CeilDiv(int(budget), approxMemoEntryBytes)
	if n <= 0 {
		return 0
	}
	return n
}
