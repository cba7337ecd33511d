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

// Package tracing assists with reporting OpenTracing traces.
package tracing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ebay/patterntype/config"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// A Tracer reports OpenTracing traces to a Jaeger agent.
type Tracer struct {
	// If not nil, called by Close.
	close func()
}

// New constructs a tracer and sets it as the global opentracing tracer.
// Call this early on from main functions. If cfg is nil, the global no-op
// tracer is left in place. If err == nil, the returned tracer should be
// Closed to flush its buffer before program exit.
func New(serviceName string, cfg *config.Tracing) (*Tracer, error) {
	if cfg == nil {
		log.Debug("Skipping Jaeger setup: nil Tracing configuration")
		return &Tracer{}, nil
	}
	sampler := &jaegercfg.SamplerConfig{
		Type:  jaeger.SamplerTypeConst,
		Param: 1,
	}
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeProbabilistic,
			Param: cfg.SampleRate,
		}
	}
	jcfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler:     sampler,
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort:  cfg.AgentAddress,
			BufferFlushInterval: time.Second,
		},
	}
	logger := (*logrusAdapter)(log.WithFields(log.Fields{"component": "jaeger"}))
	tracer, closer, err := jcfg.NewTracer(
		jaegercfg.Logger(logger),
		jaegercfg.ContribObserver(&contribObserver{}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Jaeger tracer: %v", err)
	}
	opentracing.SetGlobalTracer(tracer)
	return &Tracer{
		close: func() {
			err := closer.Close()
			if err != nil {
				log.WithError(err).Warn("Error shutting down Jaeger tracer")
			}
		},
	}, nil
}

// Close stops the Tracer and flushes any buffered spans. It is not
// thread-safe.
func (t *Tracer) Close() {
	if t.close != nil {
		t.close()
	}
	t.close = nil
}

type logrusAdapter log.Entry

func (l *logrusAdapter) Error(msg string) {
	(*log.Entry)(l).Error(strings.TrimSpace(msg))
}

func (l *logrusAdapter) Infof(msg string, args ...interface{}) {
	(*log.Entry)(l).Infof(strings.TrimSpace(msg), args...)
}

type contribObserver struct{}

// OnStartSpan implements jaeger.ContribObserver.
func (*contribObserver) OnStartSpan(
	span opentracing.Span,
	operationName string,
	options opentracing.StartSpanOptions,
) (jaeger.ContribSpanObserver, bool) {
	return &spanObserver{start: options.StartTime}, true
}

// spanObserver implements jaeger.ContribSpanObserver. It feeds the span's
// duration into the metric attached by UpdateMetric, if any.
type spanObserver struct {
	start time.Time
	lock  sync.Mutex
	// If not nil, updated with the duration of the span.
	metric Metric
}

func (o *spanObserver) OnSetOperationName(name string) {}

func (o *spanObserver) OnSetTag(key string, value interface{}) {
	if key != metricTag {
		return
	}
	if m, ok := value.(stringableMetric); ok {
		o.lock.Lock()
		o.metric = m.Metric
		o.lock.Unlock()
	}
}

func (o *spanObserver) OnFinish(options opentracing.FinishOptions) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.metric != nil {
		o.metric.Observe(options.FinishTime.Sub(o.start).Seconds())
	}
}

const metricTag = "metric"

// UpdateMetric arranges for the given metric to be updated with the duration
// of the span (in seconds). It only has an effect with a tracer created by
// New.
func UpdateMetric(span opentracing.Span, metric Metric) {
	span.SetTag(metricTag, stringableMetric{metric})
}

// Metric is satisfied by prometheus.Summary and prometheus.Histogram.
type Metric interface {
	prometheus.Metric
	Observe(float64)
}

// stringableMetric reports the metric's fully-qualified name as the tag value.
type stringableMetric struct {
	Metric
}

func (m stringableMetric) String() string {
	// Desc's Stringer looks like:
	//   Desc{fqName: %q, help: %q, constLabels: {%s}, variableLabels: %v}
	s := strings.TrimPrefix(m.Desc().String(), `Desc{fqName: "`)
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	return s[:i]
}
