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

package analysis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ebay/patterntype/ancestor"
	"github.com/ebay/patterntype/patterns"
	"github.com/ebay/patterntype/util/errors"
	"github.com/ebay/patterntype/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

// Finder is satisfied by *ancestor.Searcher.
type Finder interface {
	FindCommonAncestor(ctx context.Context, p *patterns.Pattern) (ancestor.Outcome, error)
}

// Progress is told about every pattern file the Runner finishes with. It's
// satisfied by *pb.ProgressBar.
type Progress interface {
	Increment() int
}

// RequestCounter reports how many remote requests were made. It's
// satisfied by *remote.Resolver.
type RequestCounter interface {
	Requests() int
}

// Runner analyses pattern files one at a time and files the outcomes in a
// State.
type Runner struct {
	// Required.
	Finder Finder
	State  *State
	// The results directory that checkpoints are written to. Required.
	Dir string
	// Write a checkpoint after this many newly analysed patterns. A final
	// checkpoint is always written when Run returns.
	CheckpointEvery int
	// Optional.
	Progress Progress
	Requests RequestCounter

	lock   sync.Mutex
	status Status
}

// Status describes the progress of a Run. It's served over HTTP while the
// run is going.
type Status struct {
	Files       int       `json:"files"`
	Done        int       `json:"done"`
	Analysed    int       `json:"analysed"`
	AlreadySeen int       `json:"alreadySeen"`
	Requests    int       `json:"requests"`
	Counts      Counts    `json:"counts"`
	Started     time.Time `json:"started"`
	Checkpoints int       `json:"checkpoints"`
}

// Rows renders the status as a table for web.Tabular.
func (s Status) Rows() [][]string {
	row := func(label string, n int) []string {
		return []string{label, fmtr.Sprintf("%d", n)}
	}
	return [][]string{
		{"", "count"},
		row("files", s.Files),
		row("done", s.Done),
		row("analysed", s.Analysed),
		row("already seen", s.AlreadySeen),
		row("remote requests", s.Requests),
		row("checkpoints", s.Checkpoints),
		row("results", s.Counts.Results),
		row("modeling errors", s.Counts.ModelingErrors),
		row("too new", s.Counts.TooNew),
		row("skipped", s.Counts.Skipped),
	}
}

// Status returns a snapshot of the current progress. It's safe to call
// concurrently with Run.
func (r *Runner) Status() Status {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.status
}

func (r *Runner) updateStatus(fn func(*Status)) {
	r.lock.Lock()
	fn(&r.status)
	if r.Requests != nil {
		r.status.Requests = r.Requests.Requests()
	}
	r.status.Counts = r.State.Counts()
	r.lock.Unlock()
}

// Run analyses every file in files, in order, skipping patterns that the
// State already holds. A malformed pattern file or a canceled ctx stops the
// run. Either way, Run writes a final checkpoint before returning.
func (r *Runner) Run(ctx context.Context, files []string) (err error) {
	r.updateStatus(func(s *Status) {
		*s = Status{Files: len(files), Started: time.Now()}
	})
	defer func() {
		cpErr := r.checkpoint()
		if err != nil && cpErr != nil {
			log.WithError(cpErr).Error("Final checkpoint failed")
		}
		err = errors.Any(err, cpErr)
	}()

	sinceCheckpoint := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		analysed, err := r.analyse(ctx, file)
		if err != nil {
			return err
		}
		if r.Progress != nil {
			r.Progress.Increment()
		}
		if !analysed {
			continue
		}
		sinceCheckpoint++
		if r.CheckpointEvery > 0 && sinceCheckpoint >= r.CheckpointEvery {
			if err := r.checkpoint(); err != nil {
				return err
			}
			sinceCheckpoint = 0
		}
	}
	return nil
}

// analyse handles a single file. It returns false if the pattern had
// already been analysed.
func (r *Runner) analyse(ctx context.Context, file string) (bool, error) {
	key, _ := patterns.ParseName(file)
	if r.State.Seen(key) {
		metrics.alreadySeenTotal.Inc()
		r.updateStatus(func(s *Status) {
			s.Done++
			s.AlreadySeen++
		})
		return false, nil
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "analyse pattern")
	span.SetTag("pattern", key)
	tracing.UpdateMetric(span, metrics.patternDurationSeconds)
	defer span.Finish()

	p, err := patterns.Load(file)
	if err != nil {
		span.SetTag("error", true)
		return false, err
	}
	out, err := r.Finder.FindCommonAncestor(ctx, p)
	if err != nil {
		span.SetTag("error", true)
		return false, err
	}
	r.State.Record(p.Key, p.Support, &out)
	metrics.patternsTotal.WithLabelValues(out.Kind.String()).Inc()
	fields := log.Fields{
		"pattern": p.Key,
		"items":   len(p.Items),
		"outcome": out.Kind,
	}
	if best, ok := out.Best(); ok {
		fields["best"] = best.Class
		fields["weight"] = best.Weight
		metrics.bestAncestorLevel.Observe(float64(best.MaxDepth()))
	}
	log.WithFields(fields).Debug("Analysed pattern")
	r.updateStatus(func(s *Status) {
		s.Done++
		s.Analysed++
	})
	return true, nil
}

func (r *Runner) checkpoint() error {
	err := r.State.Checkpoint(r.Dir)
	if err != nil {
		return err
	}
	requests := 0
	if r.Requests != nil {
		requests = r.Requests.Requests()
	}
	r.updateStatus(func(s *Status) {
		s.Checkpoints++
	})
	status := r.Status()
	log.WithFields(log.Fields{
		"requests": fmtr.Sprintf("%d", requests),
		"done":     strconv.Itoa(status.Done) + "/" + strconv.Itoa(status.Files),
	}).Info("Made remote requests so far")
	return nil
}
