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
	"encoding/binary"
	"fmt"
	"strings"
)

// A Combination is an immutable, sorted, duplicate-free list of class IDs,
// such as the classes of one supporting item. Combinations are comparable
// with == and may be used as map keys; the IDs are packed as big-endian
// uint64s, so two combinations are equal exactly when they hold the same IDs.
type Combination struct {
	packed string
}

// NewCombination returns the combination of the given IDs. The input slice
// is not modified.
func NewCombination(ids []ID) Combination {
	sorted := Dedup(append([]ID(nil), ids...))
	buf := make([]byte, 8*len(sorted))
	for i, id := range sorted {
		binary.BigEndian.PutUint64(buf[8*i:], uint64(id))
	}
	return Combination{packed: string(buf)}
}

// Len returns the number of IDs in c.
func (c Combination) Len() int {
	return len(c.packed) / 8
}

// At returns the i-th smallest ID in c.
func (c Combination) At(i int) ID {
	return ID(binary.BigEndian.Uint64([]byte(c.packed[8*i : 8*i+8])))
}

// IDs returns the IDs in ascending order.
func (c Combination) IDs() []ID {
	ids := make([]ID, c.Len())
	for i := range ids {
		ids[i] = c.At(i)
	}
	return ids
}

// Set returns a new Set with the IDs of c.
func (c Combination) Set() *Set {
	return NewSet(c.IDs()...)
}

// Less orders combinations by their ID lists, element by element. Because
// the packing is big-endian, this is a plain string comparison.
func (c Combination) Less(other Combination) bool {
	return c.packed < other.packed
}

// String returns the IDs separated by spaces, as in "Q5 Q215627".
func (c Combination) String() string {
	return joinIDs(c.IDs())
}

// ParseCombination parses the String form of a combination.
func ParseCombination(s string) (Combination, error) {
	fields := strings.Fields(s)
	ids := make([]ID, len(fields))
	for i, f := range fields {
		id, err := ParseID(f)
		if err != nil {
			return Combination{}, fmt.Errorf("invalid class combination %q: %v", s, err)
		}
		ids[i] = id
	}
	return NewCombination(ids), nil
}

// MarshalText implements encoding.TextMarshaler, so that combinations can be
// JSON map keys.
func (c Combination) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Combination) UnmarshalText(text []byte) error {
	parsed, err := ParseCombination(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
