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

// Package vizreport renders an HTML summary of a batch of check runs: a bar
// chart of verdicts and a timeline of check durations.
package vizreport

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/erigontech/seriacheck/store"
)

// Render writes an HTML report for runs to w.
func Render(w io.Writer, runs []store.Run) error {
	page := components.NewPage()
	page.AddCharts(verdictBar(runs), durationLine(runs))
	return page.Render(w)
}

func verdictBar(runs []store.Run) *charts.Bar {
	counts := map[string]int{}
	for _, r := range runs {
		counts[r.Verdict]++
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Verdicts"}))

	labels := []string{"serializable", "cyclic", "exhausted"}
	items := make([]opts.BarData, len(labels))
	for i, l := range labels {
		items[i] = opts.BarData{Value: counts[l]}
	}
	bar.SetXAxis(labels).AddSeries("runs", items)
	return bar
}

func durationLine(runs []store.Run) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Check duration (ms)"}))

	labels := make([]string, len(runs))
	items := make([]opts.LineData, len(runs))
	for i, r := range runs {
		labels[i] = r.Label
		items[i] = opts.LineData{Value: r.DurationMS}
	}
	line.SetXAxis(labels).AddSeries("duration_ms", items)
	return line
}
