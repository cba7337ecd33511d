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

// Package clocks provides a mockable way to measure time and to sleep. The
// remote resolver's backoff goes through a Source so that unit tests don't
// have to wait out real rate-limit windows.
package clocks

import (
	"context"
	"time"
)

// A Source tells the passage of time. This package provides two sources: Wall
// and Mock.
type Source interface {
	// Now returns the current time.
	Now() time.Time
	// SleepUntil blocks until at least the given time or a context error,
	// whichever comes first. If the context expires first, SleepUntil returns
	// the context error. Otherwise it returns nil.
	//
	// A deadline is used rather than a duration so that callers computing
	// "Now() + backoff" don't race with a mock clock that advances between
	// the two calls.
	SleepUntil(ctx context.Context, wake time.Time) error
}

type wallClock struct{}

// Wall is the normal clock, as provided by time.Now().
var Wall Source = wallClock{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (source wallClock) SleepUntil(ctx context.Context, wake time.Time) error {
	ctx, cancel := context.WithDeadline(ctx, wake)
	defer cancel()
	<-ctx.Done()
	if source.Now().Before(wake) {
		return ctx.Err()
	}
	return nil
}
