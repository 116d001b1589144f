// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// queryInt parses an integer query parameter, falling back to def on
// absence or garbage.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListBooks(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.GetBook(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, book)
}

func (s *Server) handleListRecommenders(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListRecommenders(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recs)
}

func (s *Server) handleGetRecommender(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetRecommender(r.Context(), chi.URLParam(r, "recommenderID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rec)
}
