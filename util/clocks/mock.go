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

package clocks

import (
	"context"
	"sync"
	"time"
)

// Mock is a Source that only advances when told to, or when someone sleeps on
// it. A SleepUntil call returns immediately after moving the clock forward to
// the wake time, so code that backs off for minutes runs instantly in tests
// while still observing the passage of time through Now.
type Mock struct {
	lock   sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// Ensures that Mock implements Source.
var _ Source = NewMock()

// NewMock returns a new mock clock that is initialized to the Unix epoch.
func NewMock() *Mock {
	return &Mock{now: time.Unix(0, 0)}
}

// Now implements Source.Now.
func (c *Mock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// SleepUntil implements Source.SleepUntil. It fails only if ctx is already
// done.
func (c *Mock) SleepUntil(ctx context.Context, wake time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if wake.After(c.now) {
		c.sleeps = append(c.sleeps, wake.Sub(c.now))
		c.now = wake
	} else {
		c.sleeps = append(c.sleeps, 0)
	}
	return nil
}

// Advance moves the clock forward by the given amount.
func (c *Mock) Advance(amount time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(amount)
}

// Sleeps returns how long each SleepUntil call slept, in call order.
func (c *Mock) Sleeps() []time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
