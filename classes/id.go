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

// Package classes defines knowledge-base class identifiers and the ordered
// collections of them that the hierarchy climb works with.
package classes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a class (or an item) in the knowledge base. The text form is
// "Q" followed by the decimal number, as in "Q5". IDs are ordered by their
// number.
type ID uint64

// String returns the "Q123" form of id.
func (id ID) String() string {
	return "Q" + strconv.FormatUint(uint64(id), 10)
}

// ParseID parses "Q123", "q123" or "123".
func ParseID(s string) (ID, error) {
	digits := s
	if len(digits) > 0 && (digits[0] == 'Q' || digits[0] == 'q') {
		digits = digits[1:]
	}
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, fmt.Errorf("invalid class ID %q", s)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid class ID %q", s)
	}
	return ID(n), nil
}

// MustParseID is like ParseID but panics on malformed input. It's intended
// for tests and constants.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler, so that IDs can be JSON map
// keys.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalJSON accepts a JSON string in any form ParseID does, or a bare
// JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return id.UnmarshalText([]byte(s))
	}
	return id.UnmarshalText(bytes.TrimSpace(data))
}

// SortIDs sorts ids in ascending order, in place.
func SortIDs(ids []ID) {
	sortIDs(ids)
}

// Dedup sorts ids and removes repeats, returning the shortened slice. It
// reuses the backing array.
func Dedup(ids []ID) []ID {
	if len(ids) == 0 {
		return ids
	}
	sortIDs(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
