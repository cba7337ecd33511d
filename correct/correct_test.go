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

package correct

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ids = []classes.ID

func Test_OffendingClasses(t *testing.T) {
	set := OffendingClasses(map[string][]classes.ID{
		"a": {7, 3},
		"b": {3},
		"c": {},
	})
	assert.Equal(t, ids{3, 7}, set.Slice())
}

func Test_Items(t *testing.T) {
	items := map[classes.ID][]classes.ID{
		1: {5, 7},
		2: {7},
		3: {},
		4: {5},
	}
	res, dropped := Items(items, classes.NewSet(7))
	assert.Equal(t, map[classes.ID][]classes.ID{
		1: {5},
		3: {},
		4: {5},
	}, res)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, ids{5, 7}, items[1], "input should not be modified")
}

func Test_Patterns(t *testing.T) {
	assert := assert.New(t)
	root, err := ioutil.TempDir("", "correct")
	require.NoError(t, err)
	defer os.RemoveAll(root)
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(in, 0755))
	write := func(name string, items map[classes.ID][]classes.ID) {
		require.NoError(t, patterns.Write(filepath.Join(in, name), items))
	}
	write("P31_P569_(3).json", map[classes.ID][]classes.ID{
		1: {5, 900},
		2: {5},
		3: {901},
	})
	write("P106_(1).json", map[classes.ID][]classes.ID{
		4: {900},
	})
	write("P27_(2).json", map[classes.ID][]classes.ID{
		5: {6},
	})

	stats, err := Patterns(context.Background(), map[string][]classes.ID{
		"P31 P569 (3)": {900, 901},
		"P106 (1)":     {900},
	}, in, out)
	require.NoError(t, err)
	assert.Equal(Stats{
		Offending:    2,
		Written:      1,
		DroppedItems: 2,
		Emptied:      []string{"P106 (1)"},
	}, stats)

	p, err := patterns.Load(filepath.Join(out, "P31_P569_(3).json"))
	require.NoError(t, err)
	assert.Equal("P31 P569 (3)", p.Key)
	assert.Equal(map[classes.ID][]classes.ID{1: {5}, 2: {5}}, p.Items)

	files, err := patterns.List(out)
	require.NoError(t, err)
	assert.Len(files, 1, "untouched and emptied patterns aren't written")
}

func Test_PatternsMissingFile(t *testing.T) {
	root, err := ioutil.TempDir("", "correct")
	require.NoError(t, err)
	defer os.RemoveAll(root)
	_, err = Patterns(context.Background(), map[string][]classes.ID{
		"P1 (1)": {3},
	}, root, filepath.Join(root, "out"))
	assert.Error(t, err)
}
