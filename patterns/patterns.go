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

// Package patterns reads the mined metadata patterns: one JSON file per
// pattern, mapping each supporting item to the list of its classes.
//
// A pattern's file name is its tokens joined by underscores, with the
// support count in brackets as the last token, as in
// "P31_P569_P570_(1234).json".
package patterns

import (
	"bufio"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/util/errors"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Ext is the file extension of pattern files.
const Ext = ".json"

// Pattern is a set of properties that frequently occur together, with the
// classes of the items that exhibit them.
type Pattern struct {
	// The pattern's tokens separated by spaces, including the support token.
	// This identifies the pattern in the result collections.
	Key string
	// The number of supporting items the miner reported. Zero if the file
	// name carries no readable support.
	Support int
	// The file the pattern was read from.
	File string
	// The classes of each supporting item.
	Items map[classes.ID][]classes.ID
}

// A Group is a distinct class combination among a pattern's items, with the
// number of items that have exactly those classes.
type Group struct {
	Classes classes.Combination
	Count   int
}

// Groups returns the distinct, non-empty class combinations of the
// pattern's items, ordered by Combination.Less. Items without classes are
// left out.
func (p *Pattern) Groups() []Group {
	counts := make(map[classes.Combination]int)
	for _, itemClasses := range p.Items {
		if len(itemClasses) == 0 {
			continue
		}
		counts[classes.NewCombination(itemClasses)]++
	}
	groups := make([]Group, 0, len(counts))
	for combo, count := range counts {
		groups = append(groups, Group{Classes: combo, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Classes.Less(groups[j].Classes)
	})
	return groups
}

// ItemIDs returns the supporting items in ascending order.
func (p *Pattern) ItemIDs() []classes.ID {
	ids := make([]classes.ID, 0, len(p.Items))
	for id := range p.Items {
		ids = append(ids, id)
	}
	classes.SortIDs(ids)
	return ids
}

// ParseName extracts the key and support from a pattern file name. The
// support is the last underscore-separated token with its enclosing
// brackets removed; if the token isn't a bracketed number, the support is 0.
func ParseName(filename string) (key string, support int) {
	base := strings.TrimSuffix(filepath.Base(filename), Ext)
	key = strings.Replace(base, "_", " ", -1)
	last := base[strings.LastIndexByte(base, '_')+1:]
	if len(last) >= 2 && !isDigit(last[0]) && !isDigit(last[len(last)-1]) {
		n, err := strconv.Atoi(last[1 : len(last)-1])
		if err == nil && n >= 0 {
			return key, n
		}
	}
	log.WithField("file", filename).Debug("Pattern file name has no support token")
	return key, 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// FileName returns the base name of the file that holds the pattern with
// the given key. It is the inverse of ParseName's key.
func FileName(key string) string {
	return strings.Replace(key, " ", "_", -1) + Ext
}

// List returns the paths of the pattern files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to list pattern files")
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads a pattern file.
func Load(filename string) (*Pattern, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var items map[classes.ID][]classes.ID
	decoder := json.NewDecoder(bufio.NewReader(f))
	if err := decoder.Decode(&items); err != nil {
		return nil, pkgerrors.Wrapf(err, "error decoding pattern file %v", filename)
	}
	if items == nil {
		return nil, pkgerrors.Errorf("pattern file %v does not contain a JSON object", filename)
	}
	if len(items) == 0 {
		return nil, pkgerrors.Errorf("pattern file %v has no supporting items", filename)
	}
	key, support := ParseName(filename)
	return &Pattern{
		Key:     key,
		Support: support,
		File:    filename,
		Items:   items,
	}, nil
}

// Write stores items as a pattern file, replacing any existing file.
func Write(filename string, items map[classes.ID][]classes.ID) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	err = errors.Any(
		json.NewEncoder(writer).Encode(items),
		writer.Flush(),
		f.Close(),
	)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to write pattern file %v", filename)
	}
	return nil
}
