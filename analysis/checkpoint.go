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

package analysis

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ebay/patterntype/util/errors"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Files in the results directory.
const (
	ResultsFile        = "results.json"
	ModelingErrorsFile = "modeling_errors.json"
	TooNewFile         = "too_new_patterns.json"
	SkippedFile        = "skipped_patterns.json"
	ManifestFile       = "checkpoint.json"
	CSVFile            = "analysis.csv"
)

// Manifest describes the last checkpoint written to a results directory.
type Manifest struct {
	RunID  string    `json:"runId"`
	Time   time.Time `json:"time"`
	Counts Counts    `json:"counts"`
	// The xxhash64 of each collection file, in hex.
	Digests map[string]string `json:"digests"`
}

// collections pairs each file with the value stored in it.
func (s *State) collections() []struct {
	file  string
	value interface{}
} {
	return []struct {
		file  string
		value interface{}
	}{
		{ResultsFile, &s.Results},
		{ModelingErrorsFile, &s.ModelingErrors},
		{TooNewFile, &s.TooNew},
		{SkippedFile, &s.Skipped},
	}
}

// Load reads the four collections from dir. Every file must exist; use Reset
// to create an empty set. If dir holds a manifest, the files are checked
// against its digests, and a mismatch is logged but otherwise ignored.
func Load(dir string) (*State, error) {
	s := NewState()
	digests := make(map[string]string)
	for _, c := range s.collections() {
		digest, err := readJSON(filepath.Join(dir, c.file), c.value)
		if err != nil {
			return nil, err
		}
		digests[c.file] = digest
	}
	// A file holding "null" decodes to a nil map.
	if s.Results == nil || s.ModelingErrors == nil || s.TooNew == nil || s.Skipped == nil {
		return nil, fmt.Errorf("result collections in %v must be JSON objects", dir)
	}

	manifest, err := ReadManifest(dir)
	switch {
	case os.IsNotExist(pkgerrors.Cause(err)):
		log.WithField("dir", dir).Debug("No checkpoint manifest")
	case err != nil:
		log.WithError(err).Warn("Ignoring unreadable checkpoint manifest")
	default:
		for file, digest := range digests {
			if manifest.Digests[file] != digest {
				log.WithFields(log.Fields{
					"file":     file,
					"manifest": manifest.Digests[file],
					"actual":   digest,
					"runId":    manifest.RunID,
				}).Warn("Result file changed since the last checkpoint")
			}
		}
	}
	log.WithFields(log.Fields{
		"dir":            dir,
		"results":        len(s.Results),
		"modelingErrors": len(s.ModelingErrors),
		"tooNew":         len(s.TooNew),
		"skipped":        len(s.Skipped),
	}).Info("Loaded analysis state")
	return s, nil
}

// readJSON decodes the file into value and returns the file's digest.
func readJSON(filename string, value interface{}) (string, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return "", pkgerrors.Wrap(err, "unable to read analysis state")
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(value); err != nil {
		return "", pkgerrors.Wrapf(err, "error decoding JSON value in %v", filename)
	}
	if decoder.More() {
		return "", pkgerrors.Errorf("found unexpected data after JSON value in %v", filename)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// ReadManifest reads the checkpoint manifest from dir.
func ReadManifest(dir string) (*Manifest, error) {
	var m Manifest
	if _, err := readJSON(filepath.Join(dir, ManifestFile), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Checkpoint writes the four collections, analysis.csv and then the
// manifest to dir. Each file is replaced atomically.
func (s *State) Checkpoint(dir string) error {
	start := time.Now()
	manifest := Manifest{
		RunID:   s.RunID,
		Time:    start.UTC(),
		Counts:  s.Counts(),
		Digests: make(map[string]string),
	}
	for _, c := range s.collections() {
		digest, err := writeAtomic(dir, c.file, func(w io.Writer) error {
			return json.NewEncoder(w).Encode(c.value)
		})
		if err != nil {
			return err
		}
		manifest.Digests[c.file] = digest
	}
	if _, err := writeAtomic(dir, CSVFile, s.WriteCSV); err != nil {
		return err
	}
	if _, err := writeAtomic(dir, ManifestFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(&manifest)
	}); err != nil {
		return err
	}
	metrics.checkpointDurationSeconds.Observe(time.Since(start).Seconds())
	counts := s.Counts()
	for _, g := range []struct {
		label string
		n     int
	}{
		{"results", counts.Results},
		{"modeling_errors", counts.ModelingErrors},
		{"too_new", counts.TooNew},
		{"skipped", counts.Skipped},
	} {
		metrics.storedPatterns.WithLabelValues(g.label).Set(float64(g.n))
	}
	log.WithFields(log.Fields{
		"dir":            dir,
		"results":        counts.Results,
		"modelingErrors": counts.ModelingErrors,
		"tooNew":         counts.TooNew,
		"skipped":        counts.Skipped,
		"took":           time.Since(start),
	}).Info("Wrote checkpoint")
	return nil
}

// writeAtomic writes a file through fill to a temporary file in dir, then
// renames it over name. It returns the xxhash64 of the contents in hex.
func writeAtomic(dir, name string, fill func(io.Writer) error) (string, error) {
	f, err := ioutil.TempFile(dir, name+".tmp")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "unable to write %v", name)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename
	defer f.Close()
	hash := xxhash.New()
	writer := bufio.NewWriter(f)
	err = errors.Any(
		fill(io.MultiWriter(writer, hash)),
		writer.Flush(),
		f.Sync(),
		f.Close(),
	)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to write %v", filepath.Join(dir, name))
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to replace %v", filepath.Join(dir, name))
	}
	return fmt.Sprintf("%016x", hash.Sum64()), nil
}

// Reset creates dir if needed and replaces its contents with empty
// collections and an empty analysis.csv. The manifest is removed.
func Reset(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pkgerrors.Wrap(err, "unable to create results directory")
	}
	empty := NewState()
	for _, c := range empty.collections() {
		if _, err := writeAtomic(dir, c.file, func(w io.Writer) error {
			_, err := io.WriteString(w, "{}\n")
			return err
		}); err != nil {
			return err
		}
	}
	if _, err := writeAtomic(dir, CSVFile, empty.WriteCSV); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(dir, ManifestFile))
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(err, "unable to remove checkpoint manifest")
	}
	log.WithField("dir", dir).Info("Reset results directory")
	return nil
}
