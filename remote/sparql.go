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
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/config"
	"github.com/ebay/patterntype/util/clocks"
	log "github.com/sirupsen/logrus"
)

// EntityPrefix is the IRI prefix of knowledge-base entities in query results.
const EntityPrefix = "http://www.wikidata.org/entity/"

// SPARQL is a Service backed by a SPARQL endpoint over HTTP.
type SPARQL struct {
	// The endpoint URL, such as "https://query.wikidata.org/sparql".
	Endpoint string
	// Sent as the User-Agent header.
	UserAgent string
	// The instance-of property, such as "P31".
	Property string
	// Used to send requests. Its Timeout applies per request.
	Client *http.Client
	// Used to interpret Retry-After dates. Defaults to clocks.Wall.
	Clock clocks.Source
}

// Ensures that SPARQL implements Service.
var _ Service = (*SPARQL)(nil)

// NewSPARQL returns a SPARQL service configured from cfg.
func NewSPARQL(cfg *config.Remote) *SPARQL {
	return &SPARQL{
		Endpoint:  cfg.Endpoint,
		UserAgent: cfg.UserAgent,
		Property:  cfg.Property,
		Client:    &http.Client{Timeout: cfg.Timeout.D()},
		Clock:     clocks.Wall,
	}
}

// Query returns the SPARQL text used to look up id.
func (s *SPARQL) Query(id classes.ID) string {
	return fmt.Sprintf("SELECT ?instance WHERE { wd:%v wdt:%s ?instance . }", id, s.Property)
}

// sparqlResults is the subset of the SPARQL 1.1 JSON results format that
// InstanceOf reads.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// InstanceOf implements Service.InstanceOf. Bindings that aren't entity IRIs
// are ignored. Status 429 and 503 produce a *RateLimitError.
func (s *SPARQL) InstanceOf(ctx context.Context, id classes.ID) ([]classes.ID, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid SPARQL endpoint %q: %v", s.Endpoint, err)
	}
	q := u.Query()
	q.Set("query", s.Query(id))
	u.RawQuery = q.Encode()
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/sparql-results+json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		io.Copy(ioutil.Discard, resp.Body)
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: s.parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("SPARQL query for %v failed with status %d: %s",
			id, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("error decoding SPARQL results for %v: %v", id, err)
	}
	instances := make([]classes.ID, 0, len(results.Results.Bindings))
	for _, binding := range results.Results.Bindings {
		value := binding["instance"]
		if value.Type != "uri" || !strings.HasPrefix(value.Value, EntityPrefix) {
			continue
		}
		instance, err := classes.ParseID(strings.TrimPrefix(value.Value, EntityPrefix))
		if err != nil {
			log.WithFields(log.Fields{
				"class": id,
				"value": value.Value,
			}).Debug("Ignoring non-class instance-of value")
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// parseRetryAfter accepts both forms of the Retry-After header: a number of
// seconds or an HTTP date. It returns 0 for a missing or unparseable value.
func (s *SPARQL) parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.ParseUint(header, 10, 32); err == nil {
		return time.Duration(secs) * time.Second
	}
	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}
	clock := s.Clock
	if clock == nil {
		clock = clocks.Wall
	}
	if d := when.Sub(clock.Now()); d > 0 {
		return d
	}
	return 0
}
