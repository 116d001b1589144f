// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookgraph/bookgraph/internal/contribution"
	"github.com/bookgraph/bookgraph/internal/metrics"
	"github.com/bookgraph/bookgraph/internal/validation"
)

func (s *Server) handleSubmitContribution(w http.ResponseWriter, r *http.Request) {
	var req contribution.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	c, err := s.contributions.Submit(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	metrics.ContributionsTotal.WithLabelValues("submitted").Inc()
	respondJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handlePendingContributions(w http.ResponseWriter, r *http.Request) {
	pending, err := s.contributions.Pending(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, pending)
}

func (s *Server) handleApproveContribution(w http.ResponseWriter, r *http.Request) {
	result, err := s.contributions.Approve(r.Context(), chi.URLParam(r, "contributionID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	metrics.ContributionsTotal.WithLabelValues("approved").Inc()
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleRejectContribution(w http.ResponseWriter, r *http.Request) {
	c, err := s.contributions.Reject(r.Context(), chi.URLParam(r, "contributionID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	metrics.ContributionsTotal.WithLabelValues("rejected").Inc()
	respondJSON(w, r, http.StatusOK, c)
}
