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
	"path/filepath"
	"testing"

	"github.com/ebay/patterntype/ancestor"
	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/hierarchy"
	"github.com/ebay/patterntype/patterns"
	"github.com/ebay/patterntype/superclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRemote answers instance-of lookups from a map and counts them.
type countingRemote struct {
	answers map[classes.ID][]classes.ID
	calls   int
}

func (r *countingRemote) InstanceOf(ctx context.Context, id classes.ID) ([]classes.ID, error) {
	r.calls++
	return r.answers[id], nil
}

func (r *countingRemote) Requests() int {
	return r.calls
}

func newSearchRunner(dir string, state *State) (*Runner, *countingRemote) {
	index := hierarchy.MustNew(map[classes.ID][]classes.ID{
		1:  {3},
		10: {2},
		20: {3},
	}, []classes.ID{50})
	remote := &countingRemote{answers: map[classes.ID][]classes.ID{
		2: {3},
		3: {50},
	}}
	searcher := ancestor.NewSearcher(superclass.New(index, remote), index, 5)
	return &Runner{
		Finder:          searcher,
		State:           state,
		Dir:             dir,
		CheckpointEvery: 2,
		Requests:        remote,
	}, remote
}

func Test_RunnerResumeSearchesNothing(t *testing.T) {
	assert := assert.New(t)
	dir := tempDir(t)
	require.NoError(t, Reset(dir))
	patternDir := tempDir(t)
	for name, items := range map[string]map[classes.ID][]classes.ID{
		// Meets at 3 after remote lookups of 2 and 3.
		"climbs_(2).json": {100: {1}, 101: {10}},
		// Meets at 3 from the snapshot alone.
		"local_(2).json": {100: {1}, 101: {20}},
		// 60 is newer than the snapshot.
		"new_(2).json": {100: {1}, 101: {60}},
		// 7 has no superclass and no instance-of class.
		"orphan_(2).json":  {100: {1}, 101: {7}},
		"perfect_(2).json": {100: {1}, 101: {1, 20}},
	} {
		require.NoError(t, patterns.Write(filepath.Join(patternDir, name), items))
	}
	files, err := patterns.List(patternDir)
	require.NoError(t, err)
	require.Len(t, files, 5)

	state, err := Load(dir)
	require.NoError(t, err)
	first, remote := newSearchRunner(dir, state)
	require.NoError(t, first.Run(context.Background(), files))
	assert.Equal(3, remote.calls, "lookups of 2, 3 and 7")
	assert.Equal(Counts{Results: 3, ModelingErrors: 1, TooNew: 1}, state.Counts())
	assert.True(state.Results["perfect (2)"].Perfect)
	assert.Equal(classes.ID(3), state.Results["climbs (2)"].Summary.Best)
	assert.Equal([]classes.ID{7}, state.ModelingErrors["orphan (2)"])

	resumedState, err := Load(dir)
	require.NoError(t, err)
	second, resumedRemote := newSearchRunner(dir, resumedState)
	require.NoError(t, second.Run(context.Background(), files))
	assert.Equal(0, resumedRemote.calls)
	assert.Equal(5, second.Status().AlreadySeen)

	final, err := Load(dir)
	require.NoError(t, err)
	for _, s := range []*State{resumedState, final} {
		assert.Equal(state.Results, s.Results)
		assert.Equal(state.ModelingErrors, s.ModelingErrors)
		assert.Equal(state.TooNew, s.TooNew)
		assert.Equal(state.Skipped, s.Skipped)
	}
}
