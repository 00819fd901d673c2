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

// Package metrics instruments the consistency pipeline with Prometheus
// collectors, without the consistency packages themselves depending on a
// metrics client (SPEC_FULL.md §4.3.2).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erigontech/seriacheck/consistency/saturate"
)

// Collectors bundles every metric seriacheck registers. Callers register it
// once against a prometheus.Registerer at startup.
type Collectors struct {
	SaturationPasses prometheus.Counter
	SaturationEdges  prometheus.Counter
	ChecksTotal      *prometheus.CounterVec
	CheckDuration    prometheus.Histogram
}

// NewCollectors builds and registers Collectors against reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		SaturationPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seriacheck",
			Subsystem: "saturate",
			Name:      "passes_total",
			Help:      "Number of saturation passes executed across all checks.",
		}),
		SaturationEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seriacheck",
			Subsystem: "saturate",
			Name:      "edges_inferred_total",
			Help:      "Number of WW/RW edges inferred during saturation.",
		}),
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seriacheck",
			Name:      "checks_total",
			Help:      "Number of histories checked, labeled by verdict.",
		}, []string{"verdict"}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seriacheck",
			Name:      "check_duration_seconds",
			Help:      "Wall-clock time to check one history, end to end.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.SaturationPasses, c.SaturationEdges, c.ChecksTotal, c.CheckDuration)
	return c
}

// Observer adapts Collectors to saturate.Observer.
func (c *Collectors) Observer() saturate.Observer { return observer{c} }

type observer struct{ c *Collectors }

func (o observer) Pass(passNum, candidates, newEdges int, converged bool) {
	o.c.SaturationPasses.Inc()
	o.c.SaturationEdges.Add(float64(newEdges))
}

// ObserveVerdict records the outcome of one Check call: "serializable",
// "cyclic", or "exhausted".
func (c *Collectors) ObserveVerdict(verdict string, seconds float64) {
	c.ChecksTotal.WithLabelValues(verdict).Inc()
	c.CheckDuration.Observe(seconds)
}
