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

// Command patterntype finds, for each mined metadata pattern, the most
// specific class that the pattern's supporting items have in common.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/patterntype/config"
	"github.com/ebay/patterntype/util/clocks"
	"github.com/ebay/patterntype/util/debuglog"
	"github.com/ebay/patterntype/util/tracing"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `patterntype finds the most specific common class of the items that support
each mined metadata pattern, by climbing the class hierarchy.

Usage:
  patterntype analyze [-v] [--config=FILE] [--reset] [--progress] [--metrics=ADDR]
  patterntype reset [-v] [--config=FILE]
  patterntype correct [-v] [--config=FILE] OUTDIR
  patterntype report [-v] [--config=FILE] [--top=NUM]
  patterntype config [-v] [--config=FILE] OUTFILE

Options:
  -c FILE --config=FILE  Configuration file, in JSON, TOML or YAML [default: patterntype.json].
  --reset                Empty the results directory before analysing.
  --progress             Display a progress bar over the pattern files.
  --metrics=ADDR         Serve metrics and run status on this address, overriding metricsAddress.
  --top=NUM              How many of the most common best ancestors to list [default: 20].
  -v --verbose           Log debug messages, including a dump of every pattern's hierarchy.

Environment:
  A .env file in the working directory is loaded first, if present. The
  variables PATTERNTYPE_SPARQL_ENDPOINT, PATTERNTYPE_USER_AGENT and
  PATTERNTYPE_RESULTS_DIR override the configuration file.

Examples:
  # Analyse every pattern not yet in the results directory.
  patterntype analyze --progress

  # Start over, serving Prometheus metrics on port 9090.
  patterntype analyze --reset --metrics=:9090

  # Remove the classes behind modeling errors from the affected patterns.
  patterntype correct patterns-corrected

  # Summarize the results directory.
  patterntype report --top=10

  # Write out the configuration with defaults and overrides filled in.
  patterntype config effective.json
`

type options struct {
	Verbose    bool   `docopt:"--verbose"`
	ConfigFile string `docopt:"--config"`
	// Analyze
	Analyze  bool   `docopt:"analyze"`
	Reset    bool   `docopt:"--reset"`
	Progress bool   `docopt:"--progress"`
	Metrics  string `docopt:"--metrics"`
	// Reset
	ResetCmd bool `docopt:"reset"`
	// Correct
	Correct bool   `docopt:"correct"`
	OutDir  string `docopt:"OUTDIR"`
	// Report
	Report bool `docopt:"report"`
	Top    int  `docopt:"--top"`
	// Config
	Config  bool   `docopt:"config"`
	OutFile string `docopt:"OUTFILE"`
}

func parseArgs(args []string) (*options, error) {
	opts, err := docopt.ParseArgs(usage, args, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		return nil, fmt.Errorf("error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	if options.Top < 0 {
		return nil, fmt.Errorf("--top must not be negative, got %d", options.Top)
	}
	return &options, nil
}

// loadConfig reads the configuration file, then applies defaults and
// environment overrides.
func loadConfig(filename string, lookupEnv func(string) (string, bool)) (*config.PatternType, error) {
	loaded, err := config.Load(filename)
	if err != nil {
		return nil, err
	}
	cfg := loaded.WithDefaults()
	cfg.ApplyEnv(lookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %v: %v", filename, err)
	}
	return cfg, nil
}

var clock = clocks.Wall

func main() {
	options, err := parseArgs(os.Args[1:])
	if err != nil {
		logrus.Fatalf("Command failure: %v", err)
	}
	debuglog.Configure(debuglog.Options{Verbose: options.Verbose})
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("Unable to load .env file: %v", err)
	}
	cfg, err := loadConfig(options.ConfigFile, os.LookupEnv)
	if err != nil {
		logrus.Fatalf("Unable to load configuration: %v", err)
	}
	tracer, err := tracing.New("patterntype", cfg.Tracing)
	if err != nil {
		logrus.Fatalf("Unable to initialize distributed tracing: %v", err)
	}
	defer tracer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logrus.WithField("signal", sig).Warn("Stopping after the current pattern")
		cancel()
	}()

	switch {
	case options.Analyze:
		err = analyze(ctx, cfg, options)
	case options.ResetCmd:
		err = reset(cfg)
	case options.Correct:
		err = correct(ctx, cfg, options.OutDir)
	case options.Report:
		err = report(os.Stdout, cfg, options.Top)
	case options.Config:
		err = config.Write(cfg, options.OutFile)
	}
	if err != nil {
		tracer.Close()
		logrus.Fatalf("Command failure: %v", err)
	}
}
