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
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

// CSVHeader is the first row of analysis.csv.
var CSVHeader = []string{
	"pattern",
	"combinations",
	"best_superclass",
	"avg_depth",
	"max_depth",
	"min_depth",
	"class_distribution",
}

// WriteCSV writes one row per entry of Results, sorted by pattern key, after
// CSVHeader.
func (s *State) WriteCSV(w io.Writer) error {
	keys := make([]string, 0, len(s.Results))
	for key := range s.Results {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := csv.NewWriter(w)
	if err := out.Write(CSVHeader); err != nil {
		return err
	}
	for _, key := range keys {
		sum := s.Results[key].Summary
		err := out.Write([]string{
			key,
			strconv.Itoa(sum.Combinations),
			sum.Best.String(),
			formatFloat(sum.AvgDepth),
			strconv.Itoa(sum.MaxDepth),
			strconv.Itoa(sum.MinDepth),
			formatFloat(sum.Distribution),
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
