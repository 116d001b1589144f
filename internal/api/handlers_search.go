// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"net/http"
	"strings"
)

func searchQuery(r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	return q, q != ""
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := searchQuery(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "query parameter q is required")
		return
	}

	matches, err := s.search.SemanticBooks(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, matches)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	q, ok := searchQuery(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "query parameter q is required")
		return
	}

	books, err := s.search.Books(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, books)
}

func (s *Server) handleSearchRecommenders(w http.ResponseWriter, r *http.Request) {
	q, ok := searchQuery(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "query parameter q is required")
		return
	}

	recs, err := s.search.Recommenders(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recs)
}
