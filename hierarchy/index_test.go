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

package hierarchy

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

func Test_Index(t *testing.T) {
	idx := MustNew(map[classes.ID][]classes.ID{
		10: {30, 30, 20},
		20: {30},
		70: {},
		1:  {2},
	}, ids{64, 65, 3})
	assert.Equal(t, classes.ID(70), idx.MaxIndexedID())
	assert.Equal(t, 3, idx.Len())

	tests := []struct {
		class     classes.ID
		expLookup Lookup
		expSupers ids
		expKnown  bool
	}{
		{0, Empty, nil, false},
		{1, Found, ids{2}, true},
		{2, Empty, nil, false},
		{3, Empty, nil, true},
		{10, Found, ids{20, 30}, true},
		{20, Found, ids{30}, true},
		{30, Empty, nil, false},
		{64, Empty, nil, true},
		{65, Empty, nil, true},
		{70, Empty, nil, false},
		{71, NoneRecorded, nil, false},
		{1 << 40, NoneRecorded, nil, false},
	}
	for _, test := range tests {
		t.Run(test.class.String(), func(t *testing.T) {
			lookup, supers := idx.SuperclassesOf(test.class)
			assert.Equal(t, test.expLookup, lookup)
			assert.Equal(t, test.expSupers, supers)
			assert.Equal(t, test.expKnown, idx.IsKnownClass(test.class))
		})
	}
}

func Test_IndexMaxFromInstanceOf(t *testing.T) {
	idx := MustNew(map[classes.ID][]classes.ID{1: {2}}, ids{500})
	assert.Equal(t, classes.ID(500), idx.MaxIndexedID())
	assert.True(t, idx.IsInstanceOfTarget(500))
	assert.False(t, idx.IsInstanceOfTarget(499))
	assert.False(t, idx.IsInstanceOfTarget(501))
	lookup, _ := idx.SuperclassesOf(400)
	assert.Equal(t, Empty, lookup)
}

func Test_IndexEmpty(t *testing.T) {
	idx := MustNew(nil, nil)
	assert.Equal(t, classes.ID(0), idx.MaxIndexedID())
	assert.Equal(t, 0, idx.Len())
	lookup, _ := idx.SuperclassesOf(0)
	assert.Equal(t, Empty, lookup)
	lookup, _ = idx.SuperclassesOf(1)
	assert.Equal(t, NoneRecorded, lookup)
}

func Test_IndexDoesNotRetainInput(t *testing.T) {
	supers := ids{9, 8}
	idx := MustNew(map[classes.ID][]classes.ID{1: supers}, nil)
	supers[0] = 100
	_, got := idx.SuperclassesOf(1)
	assert.Equal(t, ids{8, 9}, got)
	assert.Equal(t, ids{100, 8}, supers)
}

func Test_IndexTooLarge(t *testing.T) {
	tests := []struct {
		name       string
		subclassOf map[classes.ID][]classes.ID
		instanceOf ids
	}{
		{"class", map[classes.ID][]classes.ID{1<<64 - 1: {1}}, nil},
		{"superclass", map[classes.ID][]classes.ID{1: {MaxClassID + 1}}, nil},
		{"instanceOf", nil, ids{MaxClassID + 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.subclassOf, test.instanceOf)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), "beyond the largest indexable class")
			}
			assert.Panics(t, func() { MustNew(test.subclassOf, test.instanceOf) })
		})
	}
}

func Test_LookupString(t *testing.T) {
	assert.Equal(t, "Found", Found.String())
	assert.Equal(t, "Lookup(9)", Lookup(9).String())
}

func Test_Load(t *testing.T) {
	dir, err := ioutil.TempDir("", "hierarchy-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
		return path
	}
	sub := write("sub.json", `{"5": [215627, "Q154954"], "215627": ["35120"]}`)
	inst := write("inst.json", `[5, 35120]`)

	idx, err := Load(sub, inst)
	require.NoError(t, err)
	assert.Equal(t, classes.ID(215627), idx.MaxIndexedID())
	_, supers := idx.SuperclassesOf(5)
	assert.Equal(t, ids{154954, 215627}, supers)
	assert.True(t, idx.IsKnownClass(35120))

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "404.json"), inst)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "404.json")
		}
		_, err = Load(sub, filepath.Join(dir, "405.json"))
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "405.json")
		}
	})
	t.Run("huge class", func(t *testing.T) {
		_, err := Load(write("huge.json", `{"Q18446744073709551615": [1]}`), inst)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "invalid class hierarchy in")
			assert.Contains(t, err.Error(), "huge.json")
		}
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := Load(write("garbage.json", `{"5": ["koala"]}`), inst)
		if assert.Error(t, err) {
			assert.Regexp(t, `^error decoding JSON value in .*/garbage\.json: `, err.Error())
		}
	})
	t.Run("wrong shape", func(t *testing.T) {
		_, err := LoadInstanceOf(sub)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "sub.json")
		}
		_, err = LoadSubclassOf(write("null.json", "null"))
		assert.EqualError(t, err, filepath.Join(dir, "null.json")+" does not contain a JSON object")
	})
	t.Run("trailing data", func(t *testing.T) {
		_, err := LoadInstanceOf(write("more.json", "[1] [2]"))
		if assert.Error(t, err) {
			assert.Regexp(t, `^found unexpected data after JSON value in .*/more\.json$`, err.Error())
		}
	})
}
