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

// Package config contains the configuration for a patterntype analysis run.
// The configuration is typically loaded from a JSON, TOML or YAML file on
// disk, then completed with defaults and environment overrides.
package config

import (
	"fmt"
	"time"
)

// PatternType describes the configuration for an analysis run.
type PatternType struct {
	// Where to find the class hierarchy snapshot. Required.
	Hierarchy Hierarchy `json:"hierarchy" yaml:"hierarchy"`

	// Where to find the mined pattern files. Required.
	Patterns Patterns `json:"patterns" yaml:"patterns"`

	// Where to keep the persistent result collections.
	Results Results `json:"results" yaml:"results"`

	// How to reach the knowledge-base query service used for classes that
	// the snapshot doesn't cover.
	Remote Remote `json:"remote" yaml:"remote"`

	// Tuning for the common-ancestor search and checkpointing.
	Analysis Analysis `json:"analysis" yaml:"analysis"`

	// If non-nil, the configuration for distributed tracing (OpenTracing). If
	// nil, no traces are collected.
	Tracing *Tracing `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// If non-empty, the host:port or :port on which to serve Prometheus
	// metrics and run status over HTTP. If empty (or unset), nothing is
	// served.
	MetricsAddress string `json:"metricsAddress,omitempty" yaml:"metricsAddress,omitempty"`
}

// Hierarchy locates the two snapshot files.
type Hierarchy struct {
	// A JSON object mapping each class to the list of its direct
	// superclasses. Required.
	SubclassOfFile string `json:"subclassOfFile" yaml:"subclassOfFile"`

	// A JSON array of every class that is the target of an instance-of
	// relation. Required.
	InstanceOfFile string `json:"instanceOfFile" yaml:"instanceOfFile"`
}

// Patterns locates the pattern files.
type Patterns struct {
	// A directory of "<token>_<token>_..._(<support>).json" files. Required.
	Dir string `json:"dir" yaml:"dir"`
}

// Results locates the result collections.
type Results struct {
	// Directory holding results.json, modeling_errors.json,
	// too_new_patterns.json, skipped_patterns.json, checkpoint.json and
	// analysis.csv. Defaults to "results".
	Dir string `json:"dir" yaml:"dir"`
}

// Remote contains configuration for the SPARQL query service.
type Remote struct {
	// The SPARQL endpoint URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Sent with every request. Public endpoints reject anonymous clients.
	UserAgent string `json:"userAgent" yaml:"userAgent"`

	// The property queried for instance-of relations, such as "P31".
	Property string `json:"property" yaml:"property"`

	// How many times a single lookup is attempted before giving up.
	MaxAttempts int `json:"maxAttempts" yaml:"maxAttempts"`

	// Added to the server's Retry-After advice before retrying a rate-limited
	// request.
	RateLimitMargin Duration `json:"rateLimitMargin" yaml:"rateLimitMargin"`

	// How long to wait after a failure that carried no rate-limit advice.
	RetryInterval Duration `json:"retryInterval" yaml:"retryInterval"`

	// Upper bound on the total time a single lookup may spend sleeping
	// between attempts.
	MaxRetryWait Duration `json:"maxRetryWait" yaml:"maxRetryWait"`

	// Per-request HTTP timeout.
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// Analysis contains tuning for the search and the result store.
type Analysis struct {
	// The number of hierarchy levels climbed before a pattern is filed as
	// skipped.
	MaxDepth int `json:"maxDepth" yaml:"maxDepth"`

	// The number of newly analysed patterns between checkpoints.
	CheckpointEvery int `json:"checkpointEvery" yaml:"checkpointEvery"`
}

// Tracing contains configuration related to distributed execution tracing.
type Tracing struct {
	// Must be "jaeger" (for now).
	Type string `json:"type" yaml:"type"`

	// The host:port of a Jaeger agent accepting spans over UDP. Empty means
	// the client library's default.
	AgentAddress string `json:"agentAddress,omitempty" yaml:"agentAddress,omitempty"`

	// The fraction of analyses to trace, from 0 to 1. Zero (or unset) traces
	// everything.
	SampleRate float64 `json:"sampleRate,omitempty" yaml:"sampleRate,omitempty"`
}

// Duration is a time.Duration that reads and writes as a string such as
// "20s" or "1m30s".
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// String returns the duration formatted like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It is used by the JSON
// and TOML decoders.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var text string
	if err := unmarshal(&text); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(text))
}
