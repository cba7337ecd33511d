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

package main

import (
	"context"
	"io"
	"os"

	"github.com/cheggaaa/pb"
	"github.com/ebay/patterntype/analysis"
	"github.com/ebay/patterntype/ancestor"
	"github.com/ebay/patterntype/config"
	correction "github.com/ebay/patterntype/correct"
	"github.com/ebay/patterntype/hierarchy"
	"github.com/ebay/patterntype/patterns"
	"github.com/ebay/patterntype/remote"
	summary "github.com/ebay/patterntype/report"
	"github.com/ebay/patterntype/superclass"
	"github.com/ebay/patterntype/util/web"
	log "github.com/sirupsen/logrus"
)

func remoteOptions(cfg *config.Remote) remote.Options {
	return remote.Options{
		MaxAttempts:     cfg.MaxAttempts,
		RateLimitMargin: cfg.RateLimitMargin.D(),
		RetryInterval:   cfg.RetryInterval.D(),
		MaxRetryWait:    cfg.MaxRetryWait.D(),
		Clock:           clock,
	}
}

func analyze(ctx context.Context, cfg *config.PatternType, options *options) error {
	dir := cfg.Results.Dir
	if options.Reset {
		if err := analysis.Reset(dir); err != nil {
			return err
		}
	}
	state, err := analysis.Load(dir)
	if err != nil {
		return err
	}
	files, err := patterns.List(cfg.Patterns.Dir)
	if err != nil {
		return err
	}
	index, err := hierarchy.Load(cfg.Hierarchy.SubclassOfFile, cfg.Hierarchy.InstanceOfFile)
	if err != nil {
		return err
	}
	resolver := remote.NewResolver(remote.NewSPARQL(&cfg.Remote), remoteOptions(&cfg.Remote))
	searcher := ancestor.NewSearcher(superclass.New(index, resolver), index, cfg.Analysis.MaxDepth)
	runner := &analysis.Runner{
		Finder:          searcher,
		State:           state,
		Dir:             dir,
		CheckpointEvery: cfg.Analysis.CheckpointEvery,
		Requests:        resolver,
	}
	if options.Progress {
		bar := pb.New(len(files)).Prefix("Patterns ")
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
		runner.Progress = bar
	}
	address := cfg.MetricsAddress
	if options.Metrics != "" {
		address = options.Metrics
	}
	if address != "" {
		serveCtx, stopServing := context.WithCancel(ctx)
		defer stopServing()
		handler := web.NewRouter(func() interface{} { return runner.Status() })
		go func() {
			log.WithField("address", address).Info("Serving metrics")
			if err := web.Serve(serveCtx, address, handler); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	start := clock.Now()
	err = runner.Run(ctx, files)
	status := runner.Status()
	log.WithFields(log.Fields{
		"analysed":    status.Analysed,
		"alreadySeen": status.AlreadySeen,
		"requests":    resolver.Requests(),
		"cached":      resolver.Cached(),
		"took":        clock.Now().Sub(start),
	}).Info("Analysis finished")
	return err
}

func reset(cfg *config.PatternType) error {
	return analysis.Reset(cfg.Results.Dir)
}

func correct(ctx context.Context, cfg *config.PatternType, outDir string) error {
	state, err := analysis.Load(cfg.Results.Dir)
	if err != nil {
		return err
	}
	_, err = correction.Patterns(ctx, state.ModelingErrors, cfg.Patterns.Dir, outDir)
	return err
}

func report(w io.Writer, cfg *config.PatternType, top int) error {
	state, err := analysis.Load(cfg.Results.Dir)
	if err != nil {
		return err
	}
	summary.New(state, top).Print(w)
	return nil
}
