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

package web

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Write(t *testing.T) {
	tests := []struct {
		name    string
		vals    []interface{}
		expCode int
		expType string
		expBody string
	}{
		{"nothing", []interface{}{nil}, http.StatusNoContent, "", ""},
		{"string", []interface{}{nil, "hi"}, http.StatusOK, "text/plain; charset=utf-8", "hi"},
		{"error", []interface{}{errors.New("boom"), "hi"}, http.StatusInternalServerError,
			"text/plain; charset=utf-8", "Unexpected error: boom\n"},
		{"json", []interface{}{map[string]int{"a": 1}}, http.StatusOK, "application/json", "{\"a\":1}\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, test.vals...)
			assert.Equal(t, test.expCode, rec.Code)
			assert.Equal(t, test.expType, rec.Header().Get("Content-Type"))
			assert.Equal(t, test.expBody, rec.Body.String())
		})
	}
}

type tabularStatus struct {
	Done int `json:"done"`
}

func (s tabularStatus) Rows() [][]string {
	return [][]string{{"", "count"}, {"done", "3"}}
}

func Test_Router(t *testing.T) {
	var status interface{} = tabularStatus{Done: 3}
	server := httptest.NewServer(NewRouter(func() interface{} { return status }))
	defer server.Close()
	get := func(path string) (int, string) {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := ioutil.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "{\"done\":3}\n", body)

	code, body = get("/status.txt")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "      | count |\n ---- | ----- |\n done |     3 |\n", body)

	code, _ = get("/metrics")
	assert.Equal(t, http.StatusOK, code)

	status = "plain"
	code, _ = get("/status.txt")
	assert.Equal(t, http.StatusNotFound, code)
}

func Test_Serve(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()
	cancel()
	assert.NoError(t, <-done)
}
