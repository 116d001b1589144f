// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package embedding turns free text into dense vectors via an external
// embedding service. The catalog stores vectors alongside entities; this
// package is only consulted for query-time text (semantic search) and
// for newly contributed entities.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding backend could not be reached or
// refused the request. Callers should degrade rather than retry in a loop.
var ErrUnavailable = errors.New("embedding service unavailable")

// Provider produces embedding vectors for text.
type Provider interface {
	// Embed returns the vector for a single text. All vectors from one
	// provider share a dimension.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Static is a fixed-table Provider for tests and offline mode. Unknown
// texts yield ErrUnavailable.
type Static struct {
	Vectors map[string][]float32
}

// Embed implements Provider.
func (s *Static) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := s.Vectors[text]
	if !ok {
		return nil, ErrUnavailable
	}
	return v, nil
}

// EmbedBatch implements Provider.
func (s *Static) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var _ Provider = (*Static)(nil)
