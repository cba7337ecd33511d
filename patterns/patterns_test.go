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

package patterns

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebay/patterntype/classes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ids = []classes.ID

func Test_ParseName(t *testing.T) {
	tests := []struct {
		name       string
		expKey     string
		expSupport int
	}{
		{"/x/P31_P569_P570_(1234).json", "P31 P569 P570 (1234)", 1234},
		{"P106_[7].json", "P106 [7]", 7},
		{"P106_7.json", "P106 7", 0},
		{"P106.json", "P106", 0},
		{"P1_().json", "P1 ()", 0},
		{"P1_(-3).json", "P1 (-3)", 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, support := ParseName(test.name)
			assert.Equal(t, test.expKey, key)
			assert.Equal(t, test.expSupport, support)
			assert.Equal(t, filepath.Base(test.name), FileName(key))
		})
	}
}

func Test_Groups(t *testing.T) {
	p := &Pattern{Items: map[classes.ID][]classes.ID{
		1: {5},
		2: {5, 5},
		3: {215627, 5},
		4: {5, 215627},
		5: {},
		6: {3},
		7: {5},
	}}
	assert.Equal(t, []Group{
		{Classes: classes.NewCombination(ids{3}), Count: 1},
		{Classes: classes.NewCombination(ids{5}), Count: 3},
		{Classes: classes.NewCombination(ids{5, 215627}), Count: 2},
	}, p.Groups())
	assert.Equal(t, ids{1, 2, 3, 4, 5, 6, 7}, p.ItemIDs())
}

func Test_ListLoadWrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "patterns-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
		return path
	}
	b := write("P569_(2).json", `{"Q1": ["Q5"], "Q2": ["Q5", "Q6"]}`)
	a := write("P106_(1).json", `{"Q3": []}`)
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	paths, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths)

	p, err := Load(b)
	require.NoError(t, err)
	assert.Equal(t, "P569 (2)", p.Key)
	assert.Equal(t, 2, p.Support)
	assert.Equal(t, b, p.File)
	assert.Equal(t, map[classes.ID][]classes.ID{1: {5}, 2: {5, 6}}, p.Items)

	out := filepath.Join(dir, "P569_(1).json")
	require.NoError(t, Write(out, map[classes.ID][]classes.ID{2: {6}}))
	p, err = Load(out)
	require.NoError(t, err)
	assert.Equal(t, map[classes.ID][]classes.ID{2: {6}}, p.Items)
	contents, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "{\"Q2\":[\"Q6\"]}\n", string(contents))

	t.Run("errors", func(t *testing.T) {
		_, err := List(filepath.Join(dir, "missing"))
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "missing")
		}
		_, err = Load(write("bad_(1).json", `{"Q1": "Q5"}`))
		if assert.Error(t, err) {
			assert.Regexp(t, `^error decoding pattern file .*/bad_\(1\)\.json: `, err.Error())
		}
		_, err = Load(write("empty_(0).json", `{}`))
		if assert.Error(t, err) {
			assert.Regexp(t, `has no supporting items$`, err.Error())
		}
		_, err = Load(write("null_(0).json", `null`))
		if assert.Error(t, err) {
			assert.Regexp(t, `does not contain a JSON object$`, err.Error())
		}
	})
}
