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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/erigontech/seriacheck/batchrun"
	"github.com/erigontech/seriacheck/config"
	"github.com/erigontech/seriacheck/consistency"
	"github.com/erigontech/seriacheck/historyio"
	"github.com/erigontech/seriacheck/store"
)

func batchCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "check every *.json history under a directory, recording results to the store",
		ArgsUsage: "<directory>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.IntFlag{Name: "concurrency", Usage: "override configured concurrency"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("seriacheck batch: expected exactly one directory argument", 1)
			}
			return runBatch(logger, c.Args().First(), loadConfig(c), c.Int("concurrency"))
		},
	}
}

func runBatch(logger *zap.Logger, dir string, cfg config.Config, concurrencyOverride int) error {
	items, err := collectItems(dir, cfg)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return cli.Exit(fmt.Sprintf("seriacheck batch: no *.json histories found under %s", dir), 1)
	}

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("seriacheck: opening store: %w", err)
	}
	defer s.Close()

	concurrency := cfg.Concurrency
	if concurrencyOverride > 0 {
		concurrency = concurrencyOverride
	}

	logger.Info("running batch", zap.Int("histories", len(items)), zap.Int("concurrency", concurrency))

	results, err := batchrun.Run(context.Background(), items, s, concurrency, batchrun.WallClock)
	if err != nil {
		return fmt.Errorf("seriacheck: batch run: %w", err)
	}

	printBatchResults(os.Stdout, results)
	return nil
}

func collectItems(dir string, cfg config.Config) ([]batchrun.Item, error) {
	var paths []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seriacheck: walking %s: %w", dir, err)
	}
	sort.Strings(paths)

	items := make([]batchrun.Item, 0, len(paths))
	for _, path := range paths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		in, err := historyio.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("seriacheck: decoding %s: %w", path, err)
		}
		items = append(items, batchrun.Item{
			Label:   filepath.Base(path),
			Input:   in,
			Options: consistency.Options{MemoCapacity: cfg.RampMemoCapacity(numTxns(in))},
		})
	}
	return items, nil
}

func printBatchResults(w *os.File, results []batchrun.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"history", "run id", "verdict"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Label, r.RunID, verdictText(r.Err)})
	}
	t.Render()
}
