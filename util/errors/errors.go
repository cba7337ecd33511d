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

// Package errors contains small helpers for combining errors. Use the standard
// library's errors package or github.com/pkg/errors for everything else.
package errors

// Any returns the first non-nil error in errs, or nil if there are none. It is
// intended for sequences of cleanup calls that must all run, such as:
//
//	err := errors.Any(
//		encoder.Encode(v),
//		writer.Flush(),
//		f.Close(),
//	)
func Any(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
