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

// Package correct removes modeling errors from pattern files, so that the
// patterns can be analysed again without the classes that stopped their
// climbs.
package correct

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/patterns"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

// OffendingClasses returns the distinct classes named across the
// ModelingErrors collection.
func OffendingClasses(modelingErrors map[string][]classes.ID) *classes.Set {
	res := classes.NewSet()
	for _, offending := range modelingErrors {
		res.AddAll(offending)
	}
	return res
}

// Items returns a copy of items with the offending classes removed. Items
// that had classes, but only offending ones, are dropped; items that never
// had classes are kept as they are. The number of dropped items is also
// returned.
func Items(items map[classes.ID][]classes.ID, offending *classes.Set) (map[classes.ID][]classes.ID, int) {
	res := make(map[classes.ID][]classes.ID, len(items))
	dropped := 0
	for item, itemClasses := range items {
		kept := make([]classes.ID, 0, len(itemClasses))
		for _, c := range itemClasses {
			if !offending.Contains(c) {
				kept = append(kept, c)
			}
		}
		if len(itemClasses) > 0 && len(kept) == 0 {
			dropped++
			continue
		}
		res[item] = kept
	}
	return res, dropped
}

// Stats summarizes a correction pass.
type Stats struct {
	// The number of distinct offending classes.
	Offending int
	// The number of corrected pattern files written.
	Written int
	// The number of items dropped across all patterns.
	DroppedItems int
	// Keys of patterns that had no items left. No file is written for them.
	Emptied []string
}

// Patterns rewrites the pattern file of every key in modelingErrors from
// patternDir into outDir, without any of the offending classes. outDir is
// created if needed. A pattern file that is missing or malformed stops the
// pass.
func Patterns(
	ctx context.Context, modelingErrors map[string][]classes.ID, patternDir, outDir string,
) (Stats, error) {
	offending := OffendingClasses(modelingErrors)
	stats := Stats{Offending: offending.Len()}
	log.WithFields(log.Fields{
		"patterns":  len(modelingErrors),
		"offending": offending.String(),
	}).Info("Removing modeling errors")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return stats, pkgerrors.Wrap(err, "unable to create output directory")
	}
	keys := make([]string, 0, len(modelingErrors))
	for key := range modelingErrors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		name := patterns.FileName(key)
		p, err := patterns.Load(filepath.Join(patternDir, name))
		if err != nil {
			return stats, err
		}
		items, dropped := Items(p.Items, offending)
		stats.DroppedItems += dropped
		if len(items) == 0 {
			log.WithField("pattern", key).Warn("No items left after removing modeling errors")
			stats.Emptied = append(stats.Emptied, key)
			continue
		}
		if err := patterns.Write(filepath.Join(outDir, name), items); err != nil {
			return stats, err
		}
		stats.Written++
		log.WithFields(log.Fields{
			"pattern": key,
			"before":  len(p.Items),
			"after":   len(items),
		}).Debug("Corrected pattern")
	}
	log.WithFields(log.Fields{
		"dir":          outDir,
		"written":      fmtr.Sprintf("%d", stats.Written),
		"droppedItems": fmtr.Sprintf("%d", stats.DroppedItems),
		"emptied":      len(stats.Emptied),
	}).Info("Wrote corrected patterns")
	return stats, nil
}
