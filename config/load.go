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

package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ebay/patterntype/util/errors"
	yaml "gopkg.in/yaml.v2"
)

// Load parses the configuration from the given file. Files ending in ".toml"
// are read as TOML, ".yaml" and ".yml" as YAML, and anything else as JSON. In
// every format, unknown keys are rejected. Upon success, it returns a non-nil
// configuration. Otherwise, it returns an error, which already includes the
// filename.
func Load(filename string) (*PatternType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return loadTOML(filename)
	case ".yaml", ".yml":
		return loadYAML(filename)
	}
	return loadJSON(filename)
}

func loadJSON(filename string) (*PatternType, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	decoder := json.NewDecoder(bufio.NewReader(f))
	decoder.DisallowUnknownFields()
	cfg := new(PatternType)
	// The **PatternType double-pointer is needed to detect an input of
	// "null".
	err = decoder.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error decoding JSON value in %v: %v", filename, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("loading %v resulted in nil config", filename)
	}
	if decoder.More() {
		return nil, fmt.Errorf("found unexpected data after config in %v", filename)
	}
	return cfg, nil
}

func loadTOML(filename string) (*PatternType, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg := new(PatternType)
	md, err := toml.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("error decoding TOML value in %v: %v", filename, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in %v: %v", filename, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func loadYAML(filename string) (*PatternType, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := new(PatternType)
	err = yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("error decoding YAML value in %v: %v", filename, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("loading %v resulted in nil config", filename)
	}
	return cfg, nil
}

// Write marshalls the configuration as JSON to the given file. It truncates the
// file if it already exists. It returns nil upon success. Otherwise, it returns
// an error, which already includes the filename.
func Write(cfg *PatternType, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "\t")
	err = errors.Any(
		encoder.Encode(cfg),
		writer.Flush(),
		f.Close(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %v: %v", filename, err)
	}
	return nil
}
