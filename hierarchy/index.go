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

// Package hierarchy holds an in-memory snapshot of the class hierarchy: the
// direct superclasses of each class (subclass-of edges) and the set of
// classes that are the target of at least one instance-of relation.
//
// The snapshot is dense: lookups are array indexing, with no hashing. This
// suits knowledge bases whose class numbers are allocated roughly
// sequentially, where most numbers below the maximum are in use.
package hierarchy

import (
	"fmt"
	"math"

	"github.com/ebay/patterntype/classes"
)

// Lookup classifies the result of Index.SuperclassesOf.
type Lookup int

// Lookup values.
const (
	// NoneRecorded means the class is newer than the snapshot, so the index
	// can't say anything about it.
	NoneRecorded Lookup = iota
	// Empty means the snapshot covers the class but records no superclass for
	// it. Callers should try the instance-of fallback.
	Empty
	// Found means the class has at least one recorded superclass.
	Found
)

func (l Lookup) String() string {
	switch l {
	case NoneRecorded:
		return "NoneRecorded"
	case Empty:
		return "Empty"
	case Found:
		return "Found"
	}
	return fmt.Sprintf("Lookup(%d)", int(l))
}

// Index answers hierarchy questions about classes up to MaxIndexedID. It is
// read-only after New returns and is safe for concurrent use.
type Index struct {
	// The superclasses of class c are edges[offsets[c]:offsets[c+1]], sorted
	// and without duplicates. len(offsets) == maxIndexed+2.
	offsets []uint32
	edges   []classes.ID
	// Bit c is set if c is the target of an instance-of relation.
	instanceOf []uint64
	maxIndexed classes.ID
	// The number of classes with at least one superclass.
	withSupers int
}

// MaxClassID is the largest class ID an Index can hold. The index uses
// memory proportional to its largest ID, so a snapshot naming a larger ID
// is rejected as malformed.
const MaxClassID classes.ID = 1 << 30

// New builds an Index. subclassOf maps each class to its direct superclasses;
// instanceOf lists instance-of targets. Neither input needs to be sorted, and
// neither is retained. MaxIndexedID is the largest ID found anywhere in the
// inputs. New returns an error if an ID exceeds MaxClassID or there are too
// many edges to index.
func New(subclassOf map[classes.ID][]classes.ID, instanceOf []classes.ID) (*Index, error) {
	var maxID classes.ID
	numEdges := uint64(0)
	for class, supers := range subclassOf {
		maxID = maxOf(maxID, class)
		for _, s := range supers {
			maxID = maxOf(maxID, s)
		}
		numEdges += uint64(len(supers))
	}
	for _, class := range instanceOf {
		maxID = maxOf(maxID, class)
	}
	if maxID > MaxClassID {
		return nil, fmt.Errorf("class %v is beyond the largest indexable class %v", maxID, MaxClassID)
	}
	if numEdges > math.MaxUint32 {
		return nil, fmt.Errorf("too many subclass-of edges to index: %d", numEdges)
	}

	idx := &Index{
		offsets:    make([]uint32, uint64(maxID)+2),
		edges:      make([]classes.ID, 0, int(numEdges)),
		instanceOf: make([]uint64, uint64(maxID)/64+1),
		maxIndexed: maxID,
	}
	// Count into offsets[c+1], then prefix-sum, then fill.
	deduped := make(map[classes.ID][]classes.ID, len(subclassOf))
	for class, supers := range subclassOf {
		if len(supers) == 0 {
			continue
		}
		supers = classes.Dedup(append([]classes.ID(nil), supers...))
		deduped[class] = supers
		idx.offsets[class+1] = uint32(len(supers))
	}
	for c := 1; c < len(idx.offsets); c++ {
		idx.offsets[c] += idx.offsets[c-1]
	}
	idx.edges = idx.edges[:idx.offsets[len(idx.offsets)-1]]
	for class, supers := range deduped {
		copy(idx.edges[idx.offsets[class]:], supers)
	}
	idx.withSupers = len(deduped)

	for _, class := range instanceOf {
		idx.instanceOf[class/64] |= 1 << (class % 64)
	}
	return idx, nil
}

// MustNew is like New but panics on error. It's meant for tables of
// literal classes.
func MustNew(subclassOf map[classes.ID][]classes.ID, instanceOf []classes.ID) *Index {
	idx, err := New(subclassOf, instanceOf)
	if err != nil {
		panic(err)
	}
	return idx
}

func maxOf(a, b classes.ID) classes.ID {
	if a > b {
		return a
	}
	return b
}

// MaxIndexedID returns the largest class ID the snapshot knows of. Classes
// above it are too new to be covered.
func (idx *Index) MaxIndexedID() classes.ID {
	return idx.maxIndexed
}

// Len returns the number of classes with at least one recorded superclass.
func (idx *Index) Len() int {
	return idx.withSupers
}

// SuperclassesOf returns the recorded direct superclasses of class, in
// ascending order. The returned slice must not be modified.
func (idx *Index) SuperclassesOf(class classes.ID) (Lookup, []classes.ID) {
	if class > idx.maxIndexed {
		return NoneRecorded, nil
	}
	start, end := idx.offsets[class], idx.offsets[class+1]
	if start == end {
		return Empty, nil
	}
	return Found, idx.edges[start:end:end]
}

// IsInstanceOfTarget reports whether class is the target of an instance-of
// relation in the snapshot.
func (idx *Index) IsInstanceOfTarget(class classes.ID) bool {
	if class > idx.maxIndexed {
		return false
	}
	return idx.instanceOf[class/64]&(1<<(class%64)) != 0
}

// IsKnownClass reports whether the snapshot knows class to be a class: it
// either has a recorded superclass or is an instance-of target.
func (idx *Index) IsKnownClass(class classes.ID) bool {
	if class > idx.maxIndexed {
		return false
	}
	return idx.offsets[class] != idx.offsets[class+1] || idx.IsInstanceOfTarget(class)
}
