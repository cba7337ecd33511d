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

// Package remote looks up classes that the hierarchy snapshot doesn't cover
// by querying a live knowledge-base service. The Resolver adds retries with
// bounded backoff and remembers every answer for the lifetime of the process.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/ebay/patterntype/classes"
)

// A Service answers instance-of queries for a single class.
type Service interface {
	// InstanceOf returns the classes that id is a direct instance of. An
	// empty list is a valid answer. A *RateLimitError asks the caller to back
	// off.
	InstanceOf(ctx context.Context, id classes.ID) ([]classes.ID, error)
}

// RateLimitError is returned by a Service when the server refused the
// request for being over its rate limit.
type RateLimitError struct {
	// The HTTP status code, typically 429 or 503.
	StatusCode int
	// How long the server asked the client to wait. Zero if the server gave
	// no advice.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d), retry after %v", e.StatusCode, e.RetryAfter)
}

// ExhaustedError is returned by Resolver.InstanceOf after it gave up on a
// lookup: either every attempt failed or waiting for another one would
// exceed the retry budget.
type ExhaustedError struct {
	ID       classes.ID
	Attempts int
	// How long the resolver slept between attempts in total.
	Waited time.Duration
	// The error from the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up looking up %v after %d attempts and %v of backoff: %v",
		e.ID, e.Attempts, e.Waited, e.Last)
}

// Unwrap returns the error from the final attempt.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
