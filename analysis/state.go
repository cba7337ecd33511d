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

// Package analysis runs the common-ancestor search over a directory of
// pattern files and keeps the results in four collections on disk, so that
// an interrupted run picks up where it left off.
package analysis

import (
	"github.com/ebay/patterntype/ancestor"
	"github.com/ebay/patterntype/classes"
	"github.com/google/uuid"
)

// Result is the stored form of a pattern whose common ancestors were found.
type Result struct {
	// True if the pattern's combinations shared a class without climbing.
	Perfect bool `json:"perfect"`
	// The support parsed from the pattern's file name.
	Support int `json:"support"`
	// The common ancestors, best first.
	Superclasses []ancestor.Candidate `json:"superclasses"`
	// The climb from each combination. Empty for perfect patterns.
	Hierarchy []ancestor.CombinationHierarchy `json:"hierarchy,omitempty"`
	// The number of supporting items with each distinct class combination.
	ClassCounts map[classes.Combination]int `json:"classCounts"`
	// The row of analysis.csv for this pattern.
	Summary Summary `json:"summary"`
}

// Summary condenses a Result to its best ancestor.
type Summary struct {
	Combinations int        `json:"combinations"`
	Best         classes.ID `json:"best"`
	AvgDepth     float64    `json:"avgDepth"`
	MaxDepth     int        `json:"maxDepth"`
	MinDepth     int        `json:"minDepth"`
	Distribution float64    `json:"classDistribution"`
}

// State holds the four result collections, keyed by pattern key. Every
// analysed pattern is in exactly one of them.
type State struct {
	// Identifies this process's run in checkpoint manifests.
	RunID string

	Results        map[string]*Result
	ModelingErrors map[string][]classes.ID
	TooNew         map[string][]classes.ID
	// The number of levels climbed before giving up.
	Skipped map[string]int
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		RunID:          uuid.New().String(),
		Results:        make(map[string]*Result),
		ModelingErrors: make(map[string][]classes.ID),
		TooNew:         make(map[string][]classes.ID),
		Skipped:        make(map[string]int),
	}
}

// Seen reports whether the pattern is in any collection.
func (s *State) Seen(key string) bool {
	if _, ok := s.Results[key]; ok {
		return true
	}
	if _, ok := s.ModelingErrors[key]; ok {
		return true
	}
	if _, ok := s.TooNew[key]; ok {
		return true
	}
	_, ok := s.Skipped[key]
	return ok
}

// Record files the outcome of a pattern's search into the one collection
// its Kind belongs to.
func (s *State) Record(key string, support int, out *ancestor.Outcome) {
	switch out.Kind {
	case ancestor.Resolved, ancestor.PerfectMatch:
		s.Results[key] = newResult(support, out)
	case ancestor.TooNew:
		s.TooNew[key] = nonNil(out.Offending)
	case ancestor.ModelingError:
		s.ModelingErrors[key] = nonNil(out.Offending)
	case ancestor.DepthExceeded:
		s.Skipped[key] = out.LevelsClimbed
	}
}

func nonNil(ids []classes.ID) []classes.ID {
	if ids == nil {
		return []classes.ID{}
	}
	return ids
}

func newResult(support int, out *ancestor.Outcome) *Result {
	res := &Result{
		Perfect:      out.Kind == ancestor.PerfectMatch,
		Support:      support,
		Superclasses: out.Candidates,
		Hierarchy:    out.Hierarchy,
		ClassCounts:  out.Groups,
		Summary: Summary{
			Combinations: len(out.Groups),
			Distribution: out.Distribution,
		},
	}
	if best, ok := out.Best(); ok {
		res.Summary.Best = best.Class
		res.Summary.AvgDepth = best.AvgDepth()
		res.Summary.MaxDepth = best.MaxDepth()
		res.Summary.MinDepth = best.MinDepth()
	}
	return res
}

// Counts are the sizes of the collections.
type Counts struct {
	Results        int `json:"results"`
	ModelingErrors int `json:"modelingErrors"`
	TooNew         int `json:"tooNew"`
	Skipped        int `json:"skipped"`
}

// Counts returns the sizes of the collections.
func (s *State) Counts() Counts {
	return Counts{
		Results:        len(s.Results),
		ModelingErrors: len(s.ModelingErrors),
		TooNew:         len(s.TooNew),
		Skipped:        len(s.Skipped),
	}
}

// Total returns the number of patterns across all collections.
func (c Counts) Total() int {
	return c.Results + c.ModelingErrors + c.TooNew + c.Skipped
}
