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

// Package table formats rows of strings into a text table for human
// consumption.
package table

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Options control how a table is rendered. They may be combined with |.
type Options int

const (
	// HeaderRow separates the first row from the rest with a divider.
	HeaderRow Options = 1 << iota
	// SkipEmpty renders nothing when the table has no rows besides the
	// header.
	SkipEmpty
	// RightJustify left-pads cells instead of right-padding them. The first
	// column stays left justified, as it normally holds labels.
	RightJustify
)

func (o Options) has(flag Options) bool {
	return o&flag != 0
}

// PrettyPrint writes rows to dest as a table with one " | " separated column
// per cell. Rows may have different lengths; missing cells render empty.
func PrettyPrint(dest io.Writer, rows [][]string, opts Options) {
	dataRows := len(rows)
	if opts.has(HeaderRow) {
		dataRows--
	}
	if len(rows) == 0 || (opts.has(SkipEmpty) && dataRows <= 0) {
		return
	}
	widths := columnWidths(rows)
	w := bufio.NewWriter(dest)
	defer w.Flush()
	for ridx, row := range rows {
		for cidx, width := range widths {
			cell := ""
			if cidx < len(row) {
				cell = row[cidx]
			}
			w.WriteByte(' ')
			w.WriteString(pad(cell, width, opts.has(RightJustify) && cidx > 0))
			w.WriteString(" |")
		}
		w.WriteByte('\n')
		if ridx == 0 && opts.has(HeaderRow) {
			for _, width := range widths {
				w.WriteByte(' ')
				w.WriteString(strings.Repeat("-", width))
				w.WriteString(" |")
			}
			w.WriteByte('\n')
		}
	}
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for cidx, cell := range row {
			if cidx == len(widths) {
				widths = append(widths, 0)
			}
			if cw := charsWide(cell); cw > widths[cidx] {
				widths[cidx] = cw
			}
		}
	}
	return widths
}

func pad(s string, width int, right bool) string {
	n := width - charsWide(s)
	if n <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// charsWide estimates how many terminal columns s occupies. Composing to NFC
// first counts "e" + combining accent as a single column.
func charsWide(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
