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
	"context"
	"time"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/util/clocks"
	"github.com/ebay/patterntype/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options control a Resolver's retry behavior. Zero fields take the values
// used by DefaultOptions.
type Options struct {
	// The number of times a lookup is attempted before giving up.
	MaxAttempts int
	// Added to a rate-limited response's Retry-After advice.
	RateLimitMargin time.Duration
	// How long to wait after any other failure.
	RetryInterval time.Duration
	// The most a single lookup will spend sleeping between attempts.
	MaxRetryWait time.Duration
	// Used for backoff. Defaults to clocks.Wall.
	Clock clocks.Source
}

// DefaultOptions are used for zero fields of Options.
var DefaultOptions = Options{
	MaxAttempts:     5,
	RateLimitMargin: 60 * time.Second,
	RetryInterval:   20 * time.Second,
	MaxRetryWait:    15 * time.Minute,
	Clock:           clocks.Wall,
}

// Resolver wraps a Service with retries and a memo of successful answers.
// It is not safe for concurrent use: the analysis looks up one class at a
// time.
type Resolver struct {
	service  Service
	opts     Options
	memo     map[classes.ID][]classes.ID
	requests int
}

// NewResolver returns a Resolver that sends lookups to service.
func NewResolver(service Service, opts Options) *Resolver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions.MaxAttempts
	}
	if opts.RateLimitMargin == 0 {
		opts.RateLimitMargin = DefaultOptions.RateLimitMargin
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = DefaultOptions.RetryInterval
	}
	if opts.MaxRetryWait == 0 {
		opts.MaxRetryWait = DefaultOptions.MaxRetryWait
	}
	if opts.Clock == nil {
		opts.Clock = DefaultOptions.Clock
	}
	return &Resolver{
		service: service,
		opts:    opts,
		memo:    make(map[classes.ID][]classes.ID),
	}
}

// Requests returns the number of requests sent to the service so far,
// counting every attempt.
func (r *Resolver) Requests() int {
	return r.requests
}

// Cached returns the number of classes with a remembered answer.
func (r *Resolver) Cached() int {
	return len(r.memo)
}

// InstanceOf returns the classes that id is a direct instance of. Each id is
// sent to the service at most once per Resolver once it gets an answer; an
// empty answer is remembered too.
//
// On failure, InstanceOf retries after sleeping, until it runs out of
// attempts or the next sleep would take the total past MaxRetryWait. It then
// returns an empty list with an *ExhaustedError; such failures aren't
// remembered. If ctx is canceled, it returns ctx's error.
func (r *Resolver) InstanceOf(ctx context.Context, id classes.ID) ([]classes.ID, error) {
	if ids, ok := r.memo[id]; ok {
		metrics.cacheHitsTotal.Inc()
		return ids, nil
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote instance-of")
	span.SetTag("class", id.String())
	tracing.UpdateMetric(span, metrics.lookupDurationSeconds)
	defer span.Finish()

	logger := log.WithField("class", id)
	var waited time.Duration
	for attempt := 1; ; attempt++ {
		r.requests++
		metrics.requestsTotal.Inc()
		ids, err := r.service.InstanceOf(ctx, id)
		if err == nil {
			ids = classes.Dedup(ids)
			r.memo[id] = ids
			metrics.cachedClasses.Set(float64(len(r.memo)))
			span.SetTag("instances", len(ids))
			return ids, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		wait := r.opts.RetryInterval
		var rateLimit *RateLimitError
		if errors.As(err, &rateLimit) {
			metrics.rateLimitedTotal.Inc()
			wait = rateLimit.RetryAfter + r.opts.RateLimitMargin
		}
		if attempt >= r.opts.MaxAttempts || waited+wait > r.opts.MaxRetryWait {
			metrics.exhaustedTotal.Inc()
			span.SetTag("error", true)
			exhausted := &ExhaustedError{ID: id, Attempts: attempt, Waited: waited, Last: err}
			logger.WithError(err).Warnf("Giving up on instance-of lookup")
			return []classes.ID{}, exhausted
		}
		logger.WithFields(log.Fields{
			"attempt": attempt,
			"wait":    wait,
			"error":   err,
		}).Warnf("Retrying instance-of lookup")
		metrics.retriesTotal.Inc()
		clock := r.opts.Clock
		if err := clock.SleepUntil(ctx, clock.Now().Add(wait)); err != nil {
			return nil, err
		}
		waited += wait
	}
}
