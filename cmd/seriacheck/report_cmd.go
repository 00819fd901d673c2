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

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/erigontech/seriacheck/config"
	"github.com/erigontech/seriacheck/consistency/history"
	"github.com/erigontech/seriacheck/consistency/saturate"
	"github.com/erigontech/seriacheck/dotexport"
	"github.com/erigontech/seriacheck/historyio"
	"github.com/erigontech/seriacheck/store"
	"github.com/erigontech/seriacheck/vizreport"
)

func reportCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "render a summary of recorded runs, or a closure graph for one history",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "out", Usage: "output file path", Value: "report.html"},
			&cli.StringFlag{Name: "graph", Usage: "render the visibility closure of this history file as DOT instead of the run summary"},
			&cli.BoolFlag{Name: "transitive", Usage: "include transitive edges in the DOT graph"},
		},
		Action: func(c *cli.Context) error {
			if path := c.String("graph"); path != "" {
				return runGraph(logger, path, c.String("out"), c.Bool("transitive"))
			}
			return runReport(logger, loadConfig(c), c.String("out"))
		},
	}
}

func runReport(logger *zap.Logger, cfg config.Config, outPath string) error {
	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("seriacheck: opening store: %w", err)
	}
	defer s.Close()

	runs, err := s.List()
	if err != nil {
		return fmt.Errorf("seriacheck: listing runs: %w", err)
	}

	out, err := fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("seriacheck: creating %s: %w", outPath, err)
	}
	defer out.Close()

	if err := vizreport.Render(out, runs); err != nil {
		return fmt.Errorf("seriacheck: rendering report: %w", err)
	}

	logger.Info("wrote report", zap.String("path", outPath), zap.Int("runs", len(runs)))
	return nil
}

func runGraph(logger *zap.Logger, historyPath, outPath string, transitive bool) error {
	data, err := afero.ReadFile(fs, historyPath)
	if err != nil {
		return fmt.Errorf("seriacheck: reading %s: %w", historyPath, err)
	}

	in, err := historyio.Decode(data)
	if err != nil {
		return fmt.Errorf("seriacheck: decoding %s: %w", historyPath, err)
	}

	m, err := history.New(in)
	if err != nil {
		return fmt.Errorf("seriacheck: building model: %w", err)
	}

	g, err := saturate.Run(m, nil)
	if err != nil {
		return fmt.Errorf("seriacheck: saturating closure: %w", err)
	}

	dotGraph := dotexport.Graph(m, g, dotexport.Options{TransitiveEdges: transitive})
	if err := afero.WriteFile(fs, outPath, []byte(dotGraph.String()), 0o644); err != nil {
		return fmt.Errorf("seriacheck: writing %s: %w", outPath, err)
	}

	logger.Info("wrote closure graph", zap.String("path", outPath))
	return nil
}
