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
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/erigontech/seriacheck/config"
	"github.com/erigontech/seriacheck/consistency"
	"github.com/erigontech/seriacheck/consistency/history"
	"github.com/erigontech/seriacheck/historyio"
)

var fs afero.Fs = afero.NewOsFs()

func checkCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "check a single history file for serializability",
		ArgsUsage: "<history.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.BoolFlag{Name: "compare", Usage: "also check with an unbounded memo and report any mismatch (diagnostic)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("seriacheck check: expected exactly one history file argument", 1)
			}
			if c.Bool("compare") {
				return runCheckCompare(logger, c.Args().First(), loadConfig(c))
			}
			return runCheck(logger, c.Args().First(), loadConfig(c))
		},
	}
}

// runCheckCompare checks the same history twice, once with the configured
// memo capacity and once unbounded, and reports if the two runs disagree.
// A mismatch would indicate the memo is unsound rather than just an
// optimization, so this is a diagnostic of last resort, not part of the
// normal path.
func runCheckCompare(logger *zap.Logger, path string, cfg config.Config) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("seriacheck: reading %s: %w", path, err)
	}
	in, err := historyio.Decode(data)
	if err != nil {
		return fmt.Errorf("seriacheck: decoding %s: %w", path, err)
	}

	bounded, boundedErr := consistency.Check(in, consistency.Options{MemoCapacity: cfg.RampMemoCapacity(numTxns(in))})
	unbounded, unboundedErr := consistency.Check(in, consistency.Options{})

	if (boundedErr == nil) != (unboundedErr == nil) {
		logger.Error("memo-bounded and unbounded search disagree on serializability",
			zap.String("path", path), zap.Error(boundedErr), zap.NamedError("unbounded_err", unboundedErr))
		return cli.Exit(explainMismatch(bounded, unbounded), 1)
	}

	printVerdict(os.Stdout, path, bounded, boundedErr)
	if boundedErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func loadConfig(c *cli.Context) config.Config {
	path := c.String("config")
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Default()
	}
	return cfg
}

func runCheck(logger *zap.Logger, path string, cfg config.Config) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("seriacheck: reading %s: %w", path, err)
	}

	in, err := historyio.Decode(data)
	if err != nil {
		return fmt.Errorf("seriacheck: decoding %s: %w", path, err)
	}

	logger.Info("checking history", zap.String("path", path), zap.Int("processes", len(in.NSizes)))

	verdict, checkErr := consistency.Check(in, consistency.Options{MemoCapacity: cfg.RampMemoCapacity(numTxns(in))})
	printVerdict(os.Stdout, path, verdict, checkErr)
	if checkErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

// numTxns counts the non-root transactions in in, plus the root, matching
// what history.Model.NumTxns would report once built — used to size the
// search memo (config.RampMemoCapacity) before paying for that build.
func numTxns(in history.Input) int {
	return len(in.Txns) + 1
}

func printVerdict(w *os.File, label string, v consistency.Verdict, err error) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"history", "verdict", "order"})

	switch {
	case err == nil:
		t.AppendRow(table.Row{label, "serializable", fmt.Sprint(v.ProcessOrder())})
	default:
		t.AppendRow(table.Row{label, verdictText(err), err.Error()})
	}
	t.Render()
}

func verdictText(err error) string {
	switch err {
	case nil:
		return "serializable"
	case consistency.ErrCyclic:
		return "cyclic"
	case consistency.ErrExhausted:
		return "exhausted"
	default:
		return "error"
	}
}
