// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookgraph/bookgraph/internal/metrics"
	"github.com/bookgraph/bookgraph/internal/recommend"
	"github.com/bookgraph/bookgraph/internal/validation"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("invalid").Inc()
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	started := time.Now()
	resp, err := s.engine.Recommend(r.Context(), req)
	if err != nil {
		if recommend.IsInvalidRequest(err) {
			metrics.RecommendRequestsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		}
		respondServiceError(w, r, err)
		return
	}

	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(time.Since(started).Seconds())
	if resp.Stats.Cached {
		metrics.RecommendCacheHits.Inc()
	}

	respondJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleRelatedBooks(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	limit := queryInt(r, "limit", 0)

	related, err := s.engine.RelatedBooks(r.Context(), bookID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, related)
}

func (s *Server) handleRelatedRecommenders(w http.ResponseWriter, r *http.Request) {
	recommenderID := chi.URLParam(r, "recommenderID")
	limit := queryInt(r, "limit", 0)

	related, err := s.engine.RelatedRecommenders(r.Context(), recommenderID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, related)
}

func (s *Server) handleBookPercentiles(w http.ResponseWriter, r *http.Request) {
	ranks, err := s.engine.CatalogRanks(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ranks)
}

func (s *Server) handleGetEngineConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.engine.Config())
}

func (s *Server) handlePutEngineConfig(w http.ResponseWriter, r *http.Request) {
	// Start from the current config so partial updates keep unnamed
	// fields.
	cfg := s.engine.Config()
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if err := s.engine.UpdateConfig(cfg); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, s.engine.Config())
}
