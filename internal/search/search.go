// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package search finds catalog entities by free text, either by plain
// substring match against the store or semantically via embeddings.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/models"
	"github.com/bookgraph/bookgraph/internal/similarity"
	"github.com/bookgraph/bookgraph/internal/store"
)

// BookMatch is a semantic search hit.
type BookMatch struct {
	models.Book
	Similarity float64 `json:"similarity"`
}

// RecommenderMatch is a semantic search hit against people profiles.
type RecommenderMatch struct {
	models.Recommender
	Similarity float64 `json:"similarity"`
}

// Service answers search queries over the catalog.
type Service struct {
	store    store.Store
	provider embedding.Provider
	limit    int
}

// NewService creates a search service. defaultLimit applies when a
// query omits its limit.
func NewService(st store.Store, provider embedding.Provider, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &Service{store: st, provider: provider, limit: defaultLimit}
}

// Books performs plain text search against titles and authors.
func (s *Service) Books(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = s.limit
	}
	return s.store.SearchBooksByText(ctx, strings.TrimSpace(query), limit)
}

// Recommenders performs plain text search against people names.
func (s *Service) Recommenders(ctx context.Context, query string, limit int) ([]models.Recommender, error) {
	if limit <= 0 {
		limit = s.limit
	}
	return s.store.SearchRecommendersByText(ctx, strings.TrimSpace(query), limit)
}

// SemanticBooks embeds the query text and ranks books by cosine
// similarity of their description embeddings. Semantic search is the
// sole purpose of the call, so an embedding failure propagates instead
// of degrading.
func (s *Service) SemanticBooks(ctx context.Context, query string, limit int) ([]BookMatch, error) {
	if limit <= 0 {
		limit = s.limit
	}

	queryVec, err := s.provider.Embed(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	byID := make(map[string]*models.Book, len(books))
	candidates := make([]similarity.Candidate, 0, len(books))
	for i := range books {
		b := &books[i]
		if len(b.DescriptionEmbedding) == 0 {
			continue
		}
		byID[b.ID] = b
		candidates = append(candidates, similarity.Candidate{ID: b.ID, Vector: b.DescriptionEmbedding})
	}

	nearest := similarity.Nearest(queryVec, candidates, limit)
	out := make([]BookMatch, 0, len(nearest))
	for _, n := range nearest {
		out = append(out, BookMatch{Book: *byID[n.ID], Similarity: n.Score})
	}
	return out, nil
}

// SemanticRecommenders embeds the query text and ranks people by cosine
// similarity of their profile embeddings.
func (s *Service) SemanticRecommenders(ctx context.Context, query string, limit int) ([]RecommenderMatch, error) {
	if limit <= 0 {
		limit = s.limit
	}

	queryVec, err := s.provider.Embed(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	recs, err := s.store.ListRecommenders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recommenders: %w", err)
	}

	byID := make(map[string]*models.Recommender, len(recs))
	candidates := make([]similarity.Candidate, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		if len(r.DescriptionEmbedding) == 0 {
			continue
		}
		byID[r.ID] = r
		candidates = append(candidates, similarity.Candidate{ID: r.ID, Vector: r.DescriptionEmbedding})
	}

	nearest := similarity.Nearest(queryVec, candidates, limit)
	out := make([]RecommenderMatch, 0, len(nearest))
	for _, n := range nearest {
		out = append(out, RecommenderMatch{Recommender: *byID[n.ID], Similarity: n.Score})
	}
	return out, nil
}
