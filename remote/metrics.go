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

package remote

import (
	metricsutil "github.com/ebay/patterntype/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type remoteMetrics struct {
	requestsTotal         prometheus.Counter
	retriesTotal          prometheus.Counter
	rateLimitedTotal      prometheus.Counter
	exhaustedTotal        prometheus.Counter
	cacheHitsTotal        prometheus.Counter
	cachedClasses         prometheus.Gauge
	lookupDurationSeconds prometheus.Summary
}

var metrics remoteMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = remoteMetrics{
		requestsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      `The number of requests sent to the knowledge-base query service, including retries.`,
		}),
		retriesTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "retries_total",
			Help:      `The number of times a failed instance-of lookup was retried after backing off.`,
		}),
		rateLimitedTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "rate_limited_total",
			Help: `The number of requests the query service refused for being over its rate limit. ` +
				`Each one costs at least the rate-limit margin in backoff.`,
		}),
		exhaustedTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "exhausted_total",
			Help: `The number of instance-of lookups abandoned after running out of attempts or ` +
				`retry budget. The affected patterns are filed as modeling errors.`,
		}),
		cacheHitsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "cache_hits_total",
			Help:      `The number of instance-of lookups answered from memory without a request.`,
		}),
		cachedClasses: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "remote",
			Name:      "cached_classes",
			Help:      `The number of classes whose instance-of answer is held in memory.`,
		}),
		lookupDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "remote",
			Name:       "lookup_duration_seconds",
			Help:       `The time it takes to look up a class that isn't cached, including any backoff.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
}
