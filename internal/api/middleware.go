// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/metrics"
)

// requestLogger logs each request and records the HTTP metrics. The
// route pattern, not the raw path, labels the metrics so ids do not
// explode cardinality.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		defer func() {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			elapsed := time.Since(started)

			metrics.HTTPRequestsTotal.WithLabelValues(
				route, r.Method, strconv.Itoa(ww.Status())).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

			logging.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Dur("elapsed", elapsed).
				Msg("request")
		}()

		next.ServeHTTP(ww, r)
	})
}
