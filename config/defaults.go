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

package config

import (
	"fmt"
	"time"
)

// Defaults used by WithDefaults for unset fields.
const (
	DefaultResultsDir      = "results"
	DefaultEndpoint        = "https://query.wikidata.org/sparql"
	DefaultUserAgent       = "patterntype/1.0 (https://github.com/ebay/patterntype)"
	DefaultProperty        = "P31"
	DefaultMaxAttempts     = 5
	DefaultRateLimitMargin = Duration(60 * time.Second)
	DefaultRetryInterval   = Duration(20 * time.Second)
	DefaultMaxRetryWait    = Duration(15 * time.Minute)
	DefaultTimeout         = Duration(60 * time.Second)
	DefaultMaxDepth        = 50
	DefaultCheckpointEvery = 10000
)

// Environment variables consulted by ApplyEnv.
const (
	EnvEndpoint   = "PATTERNTYPE_SPARQL_ENDPOINT"
	EnvUserAgent  = "PATTERNTYPE_USER_AGENT"
	EnvResultsDir = "PATTERNTYPE_RESULTS_DIR"
)

// WithDefaults returns a copy of cfg in which every unset (zero) field that
// has a default is filled in.
func (cfg PatternType) WithDefaults() *PatternType {
	setString(&cfg.Results.Dir, DefaultResultsDir)
	setString(&cfg.Remote.Endpoint, DefaultEndpoint)
	setString(&cfg.Remote.UserAgent, DefaultUserAgent)
	setString(&cfg.Remote.Property, DefaultProperty)
	setInt(&cfg.Remote.MaxAttempts, DefaultMaxAttempts)
	setDuration(&cfg.Remote.RateLimitMargin, DefaultRateLimitMargin)
	setDuration(&cfg.Remote.RetryInterval, DefaultRetryInterval)
	setDuration(&cfg.Remote.MaxRetryWait, DefaultMaxRetryWait)
	setDuration(&cfg.Remote.Timeout, DefaultTimeout)
	setInt(&cfg.Analysis.MaxDepth, DefaultMaxDepth)
	setInt(&cfg.Analysis.CheckpointEvery, DefaultCheckpointEvery)
	if cfg.Tracing != nil {
		tracing := *cfg.Tracing
		setString(&tracing.Type, "jaeger")
		cfg.Tracing = &tracing
	}
	return &cfg
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func setDuration(field *Duration, def Duration) {
	if *field == 0 {
		*field = def
	}
}

// ApplyEnv overrides fields of cfg from the environment. lookup is normally
// os.LookupEnv. Variables that are unset or empty are ignored.
func (cfg *PatternType) ApplyEnv(lookup func(string) (string, bool)) {
	override := func(field *string, name string) {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
	override(&cfg.Remote.Endpoint, EnvEndpoint)
	override(&cfg.Remote.UserAgent, EnvUserAgent)
	override(&cfg.Results.Dir, EnvResultsDir)
}

// Validate returns an error describing the first problem found with cfg, or
// nil. It expects defaults to have been applied already.
func (cfg *PatternType) Validate() error {
	switch {
	case cfg.Hierarchy.SubclassOfFile == "":
		return fmt.Errorf("hierarchy.subclassOfFile is required")
	case cfg.Hierarchy.InstanceOfFile == "":
		return fmt.Errorf("hierarchy.instanceOfFile is required")
	case cfg.Patterns.Dir == "":
		return fmt.Errorf("patterns.dir is required")
	case cfg.Results.Dir == "":
		return fmt.Errorf("results.dir is required")
	case cfg.Remote.Endpoint == "":
		return fmt.Errorf("remote.endpoint is required")
	case cfg.Remote.MaxAttempts < 1:
		return fmt.Errorf("remote.maxAttempts must be at least 1, got %d", cfg.Remote.MaxAttempts)
	case cfg.Remote.MaxRetryWait < 0:
		return fmt.Errorf("remote.maxRetryWait must not be negative, got %v", cfg.Remote.MaxRetryWait)
	case cfg.Analysis.MaxDepth < 1:
		return fmt.Errorf("analysis.maxDepth must be at least 1, got %d", cfg.Analysis.MaxDepth)
	case cfg.Analysis.CheckpointEvery < 1:
		return fmt.Errorf("analysis.checkpointEvery must be at least 1, got %d", cfg.Analysis.CheckpointEvery)
	}
	if cfg.Tracing != nil {
		if cfg.Tracing.Type != "jaeger" {
			return fmt.Errorf("tracing.type must be \"jaeger\", got %q", cfg.Tracing.Type)
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sampleRate must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
		}
	}
	return nil
}
