// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"errors"
	"net/http"

	"github.com/bookgraph/bookgraph/internal/contribution"
	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/recommend"
	"github.com/bookgraph/bookgraph/internal/store"
)

// Error codes exposed in the API envelope.
const (
	codeValidation           = "VALIDATION_ERROR"
	codeNotFound             = "NOT_FOUND"
	codeConflict             = "CONFLICT"
	codeStoreUnavailable     = "STORE_UNAVAILABLE"
	codeEmbeddingUnavailable = "EMBEDDING_UNAVAILABLE"
	codeInternal             = "INTERNAL_ERROR"
)

// respondServiceError maps a service error onto the API taxonomy.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest),
		errors.Is(err, contribution.ErrInvalidSubmission):
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, contribution.ErrAlreadyResolved):
		respondError(w, r, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		logging.Error().Err(err).Msg("store unavailable")
		respondError(w, r, http.StatusServiceUnavailable, codeStoreUnavailable, "catalog store unavailable")
	case errors.Is(err, embedding.ErrUnavailable):
		logging.Error().Err(err).Msg("embedding unavailable")
		respondError(w, r, http.StatusBadGateway, codeEmbeddingUnavailable, "embedding service unavailable")
	default:
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled service error")
		respondError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
