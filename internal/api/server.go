// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package api exposes the recommendation engine, search, catalog, and
// contribution pipeline over HTTP with a uniform JSON envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookgraph/bookgraph/internal/config"
	"github.com/bookgraph/bookgraph/internal/contribution"
	"github.com/bookgraph/bookgraph/internal/recommend"
	"github.com/bookgraph/bookgraph/internal/search"
	"github.com/bookgraph/bookgraph/internal/store"
)

// Server holds the API dependencies.
type Server struct {
	cfg           config.ServerConfig
	store         store.Store
	engine        *recommend.Engine
	search        *search.Service
	contributions *contribution.Service
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, st store.Store, engine *recommend.Engine,
	searchSvc *search.Service, contributions *contribution.Service) *Server {
	return &Server{
		cfg:           cfg,
		store:         st,
		engine:        engine,
		search:        searchSvc,
		contributions: contributions,
	}
}

// Router builds the chi router with the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/recommendations", s.handleRecommend)
		api.Get("/recommendations/config", s.handleGetEngineConfig)
		api.Put("/recommendations/config", s.handlePutEngineConfig)

		api.Get("/books", s.handleListBooks)
		api.Get("/books/percentiles", s.handleBookPercentiles)
		api.Get("/books/{bookID}", s.handleGetBook)
		api.Get("/books/{bookID}/related", s.handleRelatedBooks)

		api.Get("/recommenders", s.handleListRecommenders)
		api.Get("/recommenders/{recommenderID}", s.handleGetRecommender)
		api.Get("/recommenders/{recommenderID}/related", s.handleRelatedRecommenders)

		api.Get("/search/semantic", s.handleSemanticSearch)
		api.Get("/search/books", s.handleSearchBooks)
		api.Get("/search/recommenders", s.handleSearchRecommenders)

		api.Post("/contributions", s.handleSubmitContribution)
		api.Get("/contributions/pending", s.handlePendingContributions)
		api.Post("/contributions/{contributionID}/approve", s.handleApproveContribution)
		api.Post("/contributions/{contributionID}/reject", s.handleRejectContribution)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.DataVersion(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, codeStoreUnavailable, "store unreachable")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
