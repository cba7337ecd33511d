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
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/ebay/patterntype/classes"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

// LoadSubclassOf reads a JSON object mapping each class to the list of its
// direct superclasses, as in {"5": [215627, "Q154954"]}.
func LoadSubclassOf(filename string) (map[classes.ID][]classes.ID, error) {
	var edges map[classes.ID][]classes.ID
	if err := decodeFile(filename, &edges); err != nil {
		return nil, err
	}
	if edges == nil {
		return nil, errors.Errorf("%v does not contain a JSON object", filename)
	}
	return edges, nil
}

// LoadInstanceOf reads a JSON array of the classes that are the target of an
// instance-of relation.
func LoadInstanceOf(filename string) ([]classes.ID, error) {
	var targets []classes.ID
	if err := decodeFile(filename, &targets); err != nil {
		return nil, err
	}
	if targets == nil {
		return nil, errors.Errorf("%v does not contain a JSON array", filename)
	}
	return targets, nil
}

func decodeFile(filename string, into interface{}) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "unable to open hierarchy snapshot")
	}
	defer f.Close()
	decoder := json.NewDecoder(bufio.NewReaderSize(f, 1<<20))
	if err := decoder.Decode(into); err != nil {
		return errors.Wrapf(err, "error decoding JSON value in %v", filename)
	}
	if decoder.More() {
		return errors.Errorf("found unexpected data after JSON value in %v", filename)
	}
	return nil
}

// Load reads both snapshot files and builds an Index from them.
func Load(subclassOfFile, instanceOfFile string) (*Index, error) {
	start := time.Now()
	edges, err := LoadSubclassOf(subclassOfFile)
	if err != nil {
		return nil, err
	}
	targets, err := LoadInstanceOf(instanceOfFile)
	if err != nil {
		return nil, err
	}
	idx, err := New(edges, targets)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid class hierarchy in %v and %v", subclassOfFile, instanceOfFile)
	}
	log.WithFields(log.Fields{
		"subclassOf":   fmtr.Sprintf("%d", idx.Len()),
		"instanceOf":   fmtr.Sprintf("%d", len(targets)),
		"maxIndexedID": idx.MaxIndexedID(),
		"took":         time.Since(start),
	}).Info("Loaded class hierarchy")
	return idx, nil
}
