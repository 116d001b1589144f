// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/models"
	"github.com/bookgraph/bookgraph/internal/store"
)

func seedSearch(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	books := []models.Book{
		{ID: "b1", Title: "Deep Work", Author: "Cal Newport", DescriptionEmbedding: []float32{1, 0}},
		{ID: "b2", Title: "Flow", Author: "Mihaly Csikszentmihalyi", DescriptionEmbedding: []float32{0.9, 0.1}},
		{ID: "b3", Title: "Sapiens", Author: "Yuval Noah Harari", DescriptionEmbedding: []float32{0, 1}},
		{ID: "b4", Title: "No Embedding", Author: "Unknown"},
	}
	for i := range books {
		require.NoError(t, m.CreateBook(ctx, &books[i]))
	}
	return m
}

func TestSemanticBooksRanksBySimilarity(t *testing.T) {
	m := seedSearch(t)
	provider := &embedding.Static{Vectors: map[string][]float32{"focus": {1, 0}}}
	s := NewService(m, provider, 20)

	out, err := s.SemanticBooks(context.Background(), "focus", 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "b1", out[0].ID)
	assert.InDelta(t, 1.0, out[0].Similarity, 1e-9)
	assert.Equal(t, "b2", out[1].ID)
	assert.Greater(t, out[0].Similarity, out[1].Similarity)
}

func TestSemanticBooksSkipsMissingEmbeddings(t *testing.T) {
	m := seedSearch(t)
	provider := &embedding.Static{Vectors: map[string][]float32{"focus": {1, 0}}}
	s := NewService(m, provider, 20)

	out, err := s.SemanticBooks(context.Background(), "focus", 10)
	require.NoError(t, err)
	for _, b := range out {
		assert.NotEqual(t, "b4", b.ID)
	}
}

func TestSemanticBooksPropagatesEmbeddingFailure(t *testing.T) {
	m := seedSearch(t)
	provider := &embedding.Static{Vectors: map[string][]float32{}}
	s := NewService(m, provider, 20)

	_, err := s.SemanticBooks(context.Background(), "anything", 10)
	assert.ErrorIs(t, err, embedding.ErrUnavailable)
}

func TestTextSearchBooks(t *testing.T) {
	m := seedSearch(t)
	s := NewService(m, &embedding.Static{}, 20)

	out, err := s.Books(context.Background(), "  deep ", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].ID)
}

func TestSemanticRecommenders(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.CreateRecommender(ctx, &models.Recommender{
		ID: "r1", FullName: "Ada", Type: models.ArchetypeScientist,
		DescriptionEmbedding: []float32{1, 0},
	}))
	require.NoError(t, m.CreateRecommender(ctx, &models.Recommender{
		ID: "r2", FullName: "Bea", Type: models.ArchetypeArtist,
		DescriptionEmbedding: []float32{0, 1},
	}))

	provider := &embedding.Static{Vectors: map[string][]float32{"science": {1, 0}}}
	s := NewService(m, provider, 20)

	out, err := s.SemanticRecommenders(ctx, "science", 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].ID)
}
