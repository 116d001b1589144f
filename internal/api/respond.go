// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/models"
)

// respondJSON writes a success envelope. GET responses carry a weak
// ETag over the encoded body so clients can revalidate cheaply.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("response encoding failed")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		h := fnv.New64a()
		_, _ = h.Write(body)
		etag := fmt.Sprintf(`W/"%x"`, h.Sum64())
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("error response encoding failed")
	}
}

// decodeJSON reads a request body into dst with a size cap.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
