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

package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/config"
	"github.com/ebay/patterntype/util/clocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SPARQLInstanceOf(t *testing.T) {
	var gotQuery, gotAccept, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(`{
			"head": {"vars": ["instance"]},
			"results": {"bindings": [
				{"instance": {"type": "uri", "value": "http://www.wikidata.org/entity/Q5"}},
				{"instance": {"type": "uri", "value": "http://www.wikidata.org/entity/P31"}},
				{"instance": {"type": "literal", "value": "Q6"}},
				{"instance": {"type": "uri", "value": "http://example.com/Q7"}},
				{"instance": {"type": "uri", "value": "http://www.wikidata.org/entity/Q215627"}}
			]}
		}`))
	}))
	defer server.Close()

	cfg := config.PatternType{}.WithDefaults().Remote
	cfg.Endpoint = server.URL + "/sparql"
	cfg.UserAgent = "unit-test/1.0"
	service := NewSPARQL(&cfg)
	ids, err := service.InstanceOf(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []classes.ID{5, 215627}, ids)
	assert.Equal(t, "SELECT ?instance WHERE { wd:Q42 wdt:P31 ?instance . }", gotQuery)
	assert.Equal(t, "application/sparql-results+json", gotAccept)
	assert.Equal(t, "unit-test/1.0", gotAgent)
}

func Test_SPARQLNoBindings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"head": {"vars": ["instance"]}, "results": {"bindings": []}}`))
	}))
	defer server.Close()
	service := &SPARQL{Endpoint: server.URL, Property: "P31"}
	ids, err := service.InstanceOf(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func Test_SPARQLErrors(t *testing.T) {
	clock := clocks.NewMock()
	clock.Advance(time.Hour)
	retryDate := clock.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	tests := []struct {
		name       string
		status     int
		retryAfter string
		body       string
		expErr     error
		expErrText string
	}{
		{
			name:       "429 seconds",
			status:     http.StatusTooManyRequests,
			retryAfter: "120",
			expErr:     &RateLimitError{StatusCode: 429, RetryAfter: 2 * time.Minute},
		},
		{
			name:       "503 date",
			status:     http.StatusServiceUnavailable,
			retryAfter: retryDate,
			expErr:     &RateLimitError{StatusCode: 503, RetryAfter: 90 * time.Second},
		},
		{
			name:   "429 without advice",
			status: http.StatusTooManyRequests,
			expErr: &RateLimitError{StatusCode: 429},
		},
		{
			name:       "429 garbage advice",
			status:     http.StatusTooManyRequests,
			retryAfter: "soonish",
			expErr:     &RateLimitError{StatusCode: 429},
		},
		{
			name:       "500",
			status:     http.StatusInternalServerError,
			body:       "  java.lang.OutOfMemoryError\n",
			expErrText: "SPARQL query for Q42 failed with status 500: java.lang.OutOfMemoryError",
		},
		{
			name:       "bad json",
			status:     http.StatusOK,
			body:       "<html>",
			expErrText: "error decoding SPARQL results for Q42: invalid character '<' looking for beginning of value",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if test.retryAfter != "" {
					w.Header().Set("Retry-After", test.retryAfter)
				}
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer server.Close()
			service := &SPARQL{Endpoint: server.URL, Property: "P31", Clock: clock}
			_, err := service.InstanceOf(context.Background(), 42)
			if test.expErr != nil {
				assert.Equal(t, test.expErr, err)
			} else {
				assert.EqualError(t, err, test.expErrText)
			}
		})
	}
}

func Test_SPARQLCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	service := &SPARQL{Endpoint: server.URL, Property: "P31"}
	_, err := service.InstanceOf(ctx, 42)
	assert.Error(t, err)
	assert.Equal(t, context.Canceled, ctx.Err())
}

func Test_RateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{StatusCode: 429, RetryAfter: time.Minute}
	assert.Equal(t, "rate limited (status 429), retry after 1m0s", err.Error())
}
