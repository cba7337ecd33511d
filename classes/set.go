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

package classes

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/btree"
)

func sortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// idItem adapts an ID to be stored in a btree.
type idItem ID

// Less is needed to order the btree.
func (a idItem) Less(b btree.Item) bool {
	return a < b.(idItem)
}

// Set is an ordered set of class IDs. Iteration is always in ascending ID
// order. The zero value is not usable; use NewSet.
type Set struct {
	tree *btree.BTree
}

// NewSet returns a set containing the given IDs.
func NewSet(ids ...ID) *Set {
	s := &Set{tree: btree.New(16)}
	s.AddAll(ids)
	return s
}

// Add inserts id and reports whether it was not already present.
func (s *Set) Add(id ID) bool {
	return s.tree.ReplaceOrInsert(idItem(id)) == nil
}

// AddAll inserts every id.
func (s *Set) AddAll(ids []ID) {
	for _, id := range ids {
		s.tree.ReplaceOrInsert(idItem(id))
	}
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id ID) bool {
	return s.tree.Has(idItem(id))
}

// Len returns the number of IDs in the set.
func (s *Set) Len() int {
	return s.tree.Len()
}

// Each calls fn for every ID in ascending order, stopping early if fn returns
// false.
func (s *Set) Each(fn func(ID) bool) {
	s.tree.Ascend(func(item btree.Item) bool {
		return fn(ID(item.(idItem)))
	})
}

// Slice returns the IDs in ascending order.
func (s *Set) Slice() []ID {
	out := make([]ID, 0, s.tree.Len())
	s.Each(func(id ID) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Clone returns an independent copy of the set. Copying is lazy, so cloning
// a large set is cheap until either copy is modified.
func (s *Set) Clone() *Set {
	return &Set{tree: s.tree.Clone()}
}

// Merge adds every member of other to s. It returns the IDs that were newly
// added, in ascending order.
func (s *Set) Merge(other *Set) []ID {
	var added []ID
	other.Each(func(id ID) bool {
		if s.Add(id) {
			added = append(added, id)
		}
		return true
	})
	return added
}

// Intersect returns a new set holding the IDs present in every one of sets.
// With no sets, it returns an empty set.
func Intersect(sets ...*Set) *Set {
	out := NewSet()
	if len(sets) == 0 {
		return out
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	smallest.Each(func(id ID) bool {
		for _, s := range sets {
			if s != smallest && !s.Contains(id) {
				return true
			}
		}
		out.Add(id)
		return true
	})
	return out
}

// String returns the members separated by spaces, as in "Q5 Q215627".
func (s *Set) String() string {
	return joinIDs(s.Slice())
}

// MarshalJSON encodes the set as an ascending array of "Q123" strings.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON replaces the contents of the set with the decoded array.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.tree = btree.New(16)
	s.AddAll(ids)
	return nil
}

func joinIDs(ids []ID) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(id.String())
	}
	return b.String()
}
