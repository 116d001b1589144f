// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by route, method, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookgraph",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration observes API latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookgraph",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// RecommendRequestsTotal counts scoring requests by outcome.
	RecommendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookgraph",
		Subsystem: "recommend",
		Name:      "requests_total",
		Help:      "Total recommendation requests.",
	}, []string{"outcome"})

	// RecommendDuration observes scoring latency.
	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookgraph",
		Subsystem: "recommend",
		Name:      "duration_seconds",
		Help:      "Recommendation scoring latency.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// RecommendCacheHits counts responses served from the TTL cache.
	RecommendCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bookgraph",
		Subsystem: "recommend",
		Name:      "cache_hits_total",
		Help:      "Recommendation responses served from cache.",
	})

	// EmbeddingRequestsTotal counts embedding provider calls by outcome.
	EmbeddingRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookgraph",
		Subsystem: "embedding",
		Name:      "requests_total",
		Help:      "Total embedding provider calls.",
	}, []string{"outcome"})

	// ContributionsTotal counts contribution lifecycle transitions.
	ContributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookgraph",
		Subsystem: "contributions",
		Name:      "total",
		Help:      "Contribution lifecycle events.",
	}, []string{"event"})
)
