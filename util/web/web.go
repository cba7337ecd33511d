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

// Package web aids in writing the HTTP status server.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ebay/patterntype/util/table"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// WriteError will write a textual error response to the supplied ResponseWriter with the
// supplied HTTP StatusCode
func WriteError(w http.ResponseWriter, statusCode int, formatMsg string, params ...interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, formatMsg, params...)
	io.WriteString(w, "\n")
}

// Write writes the first non-nil val as the response: strings as text, errors
// as a 500, and anything else as JSON. With no non-nil val it writes a 204.
func Write(w http.ResponseWriter, vals ...interface{}) {
	for _, val := range vals {
		if val == nil {
			continue
		}
		switch tv := val.(type) {
		case string:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			io.WriteString(w, tv)
		case error:
			WriteError(w, http.StatusInternalServerError, "Unexpected error: %s", tv)
		default:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(tv)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tabular is implemented by status documents that can also render as a text
// table.
type Tabular interface {
	Rows() [][]string
}

// NewRouter returns a handler serving:
//
//	GET /metrics     Prometheus metrics from the default registry.
//	GET /status      the value returned by status, as JSON.
//	GET /status.txt  the same value as a text table, if it is Tabular.
func NewRouter(status func() interface{}) http.Handler {
	m := httprouter.New()
	m.Handler("GET", "/metrics", promhttp.Handler())
	m.GET("/status", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		Write(w, status())
	})
	m.GET("/status.txt", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		doc, ok := status().(Tabular)
		if !ok {
			WriteError(w, http.StatusNotFound, "status has no table form")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		table.PrettyPrint(w, doc.Rows(), table.HeaderRow|table.RightJustify)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("[HTTP] %v %v", r.Method, r.URL)
		m.ServeHTTP(w, r)
	})
}

// Serve listens on address and serves handler until ctx is done. It returns
// nil after a clean shutdown.
func Serve(ctx context.Context, address string, handler http.Handler) error {
	server := &http.Server{Addr: address, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server on %v failed: %v", address, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("HTTP server on %v did not shut down cleanly: %v", address, err)
	}
	return nil
}
