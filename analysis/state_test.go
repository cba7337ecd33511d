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
	"testing"

	"github.com/ebay/patterntype/ancestor"
	"github.com/ebay/patterntype/classes"
	"github.com/stretchr/testify/assert"
)

func ids(strs ...string) []classes.ID {
	res := make([]classes.ID, len(strs))
	for i, s := range strs {
		res[i] = classes.MustParseID(s)
	}
	return res
}

func resolvedOutcome() *ancestor.Outcome {
	mammal := classes.NewCombination(ids("Q729"))
	person := classes.NewCombination(ids("Q5"))
	return &ancestor.Outcome{
		Kind: ancestor.Resolved,
		Candidates: []ancestor.Candidate{
			{Class: classes.MustParseID("Q35120"), Weight: 3, Levels: []int{1, 2}},
			{Class: classes.MustParseID("Q1"), Weight: 7, Levels: []int{3, 4}},
		},
		Hierarchy: []ancestor.CombinationHierarchy{
			{Classes: person, Count: 1, Levels: [][]classes.ID{ids("Q5"), ids("Q35120")}},
			{Classes: mammal, Count: 1, Levels: [][]classes.ID{ids("Q729"), ids("Q7725634"), ids("Q35120")}},
		},
		Groups:       map[classes.Combination]int{person: 1, mammal: 1},
		Distribution: 0.5,
	}
}

func Test_Record(t *testing.T) {
	assert := assert.New(t)
	s := NewState()
	assert.NotEmpty(s.RunID)
	assert.False(s.Seen("occupation"))

	s.Record("occupation", 12, resolvedOutcome())
	s.Record("citizenship", 3, &ancestor.Outcome{
		Kind:       ancestor.PerfectMatch,
		Candidates: []ancestor.Candidate{{Class: classes.MustParseID("Q5"), Levels: []int{0}}},
		Groups:     map[classes.Combination]int{classes.NewCombination(ids("Q5")): 3},
	})
	s.Record("brand new", 1, &ancestor.Outcome{Kind: ancestor.TooNew, Offending: ids("Q999999999")})
	s.Record("orphan", 1, &ancestor.Outcome{Kind: ancestor.ModelingError})
	s.Record("deep", 1, &ancestor.Outcome{Kind: ancestor.DepthExceeded, LevelsClimbed: 50})

	for _, key := range []string{"occupation", "citizenship", "brand new", "orphan", "deep"} {
		assert.True(s.Seen(key), key)
	}
	assert.Equal(Counts{Results: 2, ModelingErrors: 1, TooNew: 1, Skipped: 1}, s.Counts())
	assert.Equal(5, s.Counts().Total())

	res := s.Results["occupation"]
	assert.False(res.Perfect)
	assert.Equal(12, res.Support)
	assert.Len(res.Hierarchy, 2)
	assert.Equal(Summary{
		Combinations: 2,
		Best:         classes.MustParseID("Q35120"),
		AvgDepth:     1.0,
		MaxDepth:     2,
		MinDepth:     1,
		Distribution: 0.5,
	}, res.Summary)

	perfect := s.Results["citizenship"]
	assert.True(perfect.Perfect)
	assert.Empty(perfect.Hierarchy)
	assert.Equal(classes.MustParseID("Q5"), perfect.Summary.Best)
	assert.Equal(0.0, perfect.Summary.AvgDepth)

	assert.Equal(ids("Q999999999"), s.TooNew["brand new"])
	assert.NotNil(s.ModelingErrors["orphan"])
	assert.Empty(s.ModelingErrors["orphan"])
	assert.Equal(50, s.Skipped["deep"])
}
