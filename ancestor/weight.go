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

package ancestor

import (
	"sort"

	"github.com/ebay/patterntype/classes"
)

// Candidate is a common ancestor with its score.
type Candidate struct {
	Class classes.ID `json:"class"`
	// Sum over combinations of (item count * Levels[i]). Lower is better.
	Weight int `json:"weight"`
	// The first level at which each combination's climb reached Class, in
	// the order of the combinations.
	Levels []int `json:"levels"`
}

// AvgDepth returns sum(Levels) / (len(Levels) + 1).
func (c Candidate) AvgDepth() float64 {
	sum := 0
	for _, l := range c.Levels {
		sum += l
	}
	return float64(sum) / float64(len(c.Levels)+1)
}

// MaxDepth returns the largest of Levels, or 0 if there are none.
func (c Candidate) MaxDepth() int {
	deepest := 0
	for _, l := range c.Levels {
		if l > deepest {
			deepest = l
		}
	}
	return deepest
}

// MinDepth returns the smallest of Levels, or 0 if there are none.
func (c Candidate) MinDepth() int {
	if len(c.Levels) == 0 {
		return 0
	}
	shallowest := c.Levels[0]
	for _, l := range c.Levels[1:] {
		if l < shallowest {
			shallowest = l
		}
	}
	return shallowest
}

// Score ranks the given common ancestors. levels[i] is the climb of the i-th
// combination, one set per level, and counts[i] is that combination's item
// count. Every candidate must appear at some level of every climb. The
// result is sorted by weight, then class, then level list.
func Score(candidates []classes.ID, levels [][]*classes.Set, counts []int) []Candidate {
	scored := make([]Candidate, len(candidates))
	for ci, class := range candidates {
		c := Candidate{Class: class, Levels: make([]int, len(levels))}
		for i, climb := range levels {
			c.Levels[i] = firstLevel(climb, class)
			c.Weight += counts[i] * c.Levels[i]
		}
		scored[ci] = c
	}
	sortCandidates(scored)
	return scored
}

// firstLevel returns the index of the first set in climb containing class,
// or len(climb) if none does.
func firstLevel(climb []*classes.Set, class classes.ID) int {
	for i, level := range climb {
		if level.Contains(class) {
			return i
		}
	}
	return len(climb)
}

// Perfect returns the candidates for a perfect match: weight 0, found at
// level 0.
func Perfect(candidates []classes.ID) []Candidate {
	scored := make([]Candidate, len(candidates))
	for i, class := range candidates {
		scored[i] = Candidate{Class: class, Levels: []int{0}}
	}
	sortCandidates(scored)
	return scored
}

func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return lessInts(a.Levels, b.Levels)
	})
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// KnownClasses is satisfied by *hierarchy.Index.
type KnownClasses interface {
	IsKnownClass(id classes.ID) bool
}

// Distribution returns the fraction of items that known says are classes.
// It returns 0 for no items.
func Distribution(items []classes.ID, known KnownClasses) float64 {
	if len(items) == 0 {
		return 0
	}
	n := 0
	for _, item := range items {
		if known.IsKnownClass(item) {
			n++
		}
	}
	return float64(n) / float64(len(items))
}
