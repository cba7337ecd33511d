// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analysis

import (
	metricsutil "github.com/ebay/patterntype/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type analysisMetrics struct {
	patternsTotal             *prometheus.CounterVec
	alreadySeenTotal          prometheus.Counter
	storedPatterns            *prometheus.GaugeVec
	bestAncestorLevel         prometheus.Histogram
	patternDurationSeconds    prometheus.Summary
	checkpointDurationSeconds prometheus.Summary
}

var metrics analysisMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = analysisMetrics{
		patternsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "analysis",
			Name:      "patterns_total",
			Help:      `The number of patterns analysed by this process, by outcome.`,
		}, "outcome"),
		alreadySeenTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "analysis",
			Name:      "already_seen_total",
			Help: `The number of pattern files passed over because an earlier run already ` +
				`filed the pattern.`,
		}),
		storedPatterns: mr.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "analysis",
			Name:      "stored_patterns",
			Help:      `The number of patterns in each result collection as of the last checkpoint.`,
		}, "collection"),
		bestAncestorLevel: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "analysis",
			Name:      "best_ancestor_level",
			Help: `The deepest level at which any class combination reached the best common ` +
				`ancestor, for patterns that found one. Perfect patterns count as level 0.`,
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		patternDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "analysis",
			Name:       "pattern_duration_seconds",
			Help:       `The time it takes to load and analyse one pattern file, including remote lookups.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		checkpointDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "analysis",
			Name:       "checkpoint_duration_seconds",
			Help:       `The time it takes to write all result files to disk.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
}
