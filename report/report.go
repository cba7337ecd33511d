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

// Package report summarizes the result collections of an analysis run.
package report

import (
	"io"
	"sort"

	"github.com/ebay/patterntype/analysis"
	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/util/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

var fmtr = message.NewPrinter(language.English)

// Stat is the mean and sample standard deviation of a value across results.
type Stat struct {
	Mean   float64
	StdDev float64
}

// Ancestor is a class with the number of patterns it's the best common
// ancestor of.
type Ancestor struct {
	Class    classes.ID
	Patterns int
}

// Report describes a State.
type Report struct {
	Counts analysis.Counts
	// The number of results that needed no climbing.
	Perfect int
	// Over the best candidate of every result.
	AvgDepth Stat
	MaxDepth Stat
	// Over every result.
	Distribution Stat
	// The most common best ancestors, most common first, ties broken by
	// class id.
	Top []Ancestor
}

// New computes a Report over s, keeping the top best ancestors.
func New(s *analysis.State, top int) *Report {
	r := &Report{Counts: s.Counts()}
	var avgDepths, maxDepths, distributions []float64
	bestCounts := make(map[classes.ID]int)
	for _, res := range s.Results {
		if res.Perfect {
			r.Perfect++
		}
		avgDepths = append(avgDepths, res.Summary.AvgDepth)
		maxDepths = append(maxDepths, float64(res.Summary.MaxDepth))
		distributions = append(distributions, res.Summary.Distribution)
		if len(res.Superclasses) > 0 {
			bestCounts[res.Summary.Best]++
		}
	}
	r.AvgDepth = meanStdDev(avgDepths)
	r.MaxDepth = meanStdDev(maxDepths)
	r.Distribution = meanStdDev(distributions)

	for class, n := range bestCounts {
		r.Top = append(r.Top, Ancestor{Class: class, Patterns: n})
	}
	sort.Slice(r.Top, func(i, j int) bool {
		if r.Top[i].Patterns != r.Top[j].Patterns {
			return r.Top[i].Patterns > r.Top[j].Patterns
		}
		return r.Top[i].Class < r.Top[j].Class
	})
	if top >= 0 && len(r.Top) > top {
		r.Top = r.Top[:top]
	}
	return r
}

// meanStdDev returns zeros for an empty sample, and a zero deviation for a
// sample of one.
func meanStdDev(x []float64) Stat {
	switch len(x) {
	case 0:
		return Stat{}
	case 1:
		return Stat{Mean: x[0]}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Stat{Mean: mean, StdDev: std}
}

// Print writes the report as tables.
func (r *Report) Print(w io.Writer) {
	count := func(n int) string {
		return fmtr.Sprintf("%d", n)
	}
	table.PrettyPrint(w, [][]string{
		{"collection", "patterns"},
		{"results", count(r.Counts.Results)},
		{"  perfect", count(r.Perfect)},
		{"modeling errors", count(r.Counts.ModelingErrors)},
		{"too new", count(r.Counts.TooNew)},
		{"skipped", count(r.Counts.Skipped)},
		{"total", count(r.Counts.Total())},
	}, table.HeaderRow|table.RightJustify)
	io.WriteString(w, "\n")

	statRow := func(label string, s Stat) []string {
		return []string{label, fmtr.Sprintf("%.4f", s.Mean), fmtr.Sprintf("%.4f", s.StdDev)}
	}
	table.PrettyPrint(w, [][]string{
		{"", "mean", "std dev"},
		statRow("avg depth", r.AvgDepth),
		statRow("max depth", r.MaxDepth),
		statRow("class distribution", r.Distribution),
	}, table.HeaderRow|table.RightJustify)

	rows := [][]string{{"best ancestor", "patterns"}}
	for _, a := range r.Top {
		rows = append(rows, []string{a.Class.String(), count(a.Patterns)})
	}
	if len(rows) > 1 {
		io.WriteString(w, "\n")
	}
	table.PrettyPrint(w, rows, table.HeaderRow|table.RightJustify|table.SkipEmpty)
}
