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

// Package ancestor finds the most specific class that the items of a
// pattern have in common, by climbing the class hierarchy from each distinct
// class combination until the climbs meet.
package ancestor

import (
	"fmt"

	"github.com/ebay/patterntype/classes"
)

// Kind is the kind of result a search produced for a pattern.
type Kind int

// Kind values.
const (
	// Resolved means common ancestors were found by climbing the hierarchy.
	Resolved Kind = iota
	// PerfectMatch means every combination already shares at least one
	// class, so no climbing was needed.
	PerfectMatch
	// TooNew means a class is newer than the hierarchy snapshot.
	TooNew
	// ModelingError means a class has neither a superclass nor an
	// instance-of class.
	ModelingError
	// DepthExceeded means the climbs didn't meet within the depth limit.
	DepthExceeded
)

var kindNames = [...]string{
	Resolved:      "resolved",
	PerfectMatch:  "perfect",
	TooNew:        "too_new",
	ModelingError: "modeling_error",
	DepthExceeded: "depth_exceeded",
}

// Kinds lists every Kind, in declaration order.
var Kinds = []Kind{Resolved, PerfectMatch, TooNew, ModelingError, DepthExceeded}

// String returns a short snake_case name, suitable as a metric label.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// CombinationHierarchy is the climb from one distinct class combination.
type CombinationHierarchy struct {
	// The combination the climb started from.
	Classes classes.Combination `json:"classes"`
	// How many supporting items have exactly these classes.
	Count int `json:"count"`
	// Levels[0] holds the combination's own classes; Levels[i] holds the
	// direct superclasses of the classes first reached at level i-1.
	Levels [][]classes.ID `json:"levels"`
}

// Outcome is the result of a search for one pattern. Exactly which fields
// are set depends on Kind.
type Outcome struct {
	Kind Kind
	// For Resolved and PerfectMatch: the common ancestors, best first.
	Candidates []Candidate
	// For Resolved: the climb from each combination, ordered by
	// Combination.Less.
	Hierarchy []CombinationHierarchy
	// For Resolved and PerfectMatch: the distinct class combinations and
	// their item counts.
	Groups map[classes.Combination]int
	// For TooNew and ModelingError: the classes responsible. A TooNew found
	// partway through a climb has none.
	Offending []classes.ID
	// For DepthExceeded: how many levels were climbed.
	LevelsClimbed int
	// The fraction of the pattern's supporting items that are classes
	// themselves. Set for every Kind.
	Distribution float64
}

// Found reports whether the outcome carries common ancestors.
func (o *Outcome) Found() bool {
	return o.Kind == Resolved || o.Kind == PerfectMatch
}

// Best returns the preferred candidate. It returns false if there are no
// candidates.
func (o *Outcome) Best() (Candidate, bool) {
	if len(o.Candidates) == 0 {
		return Candidate{}, false
	}
	return o.Candidates[0], true
}
