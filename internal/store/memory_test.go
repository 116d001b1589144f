// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraph/bookgraph/internal/models"
)

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()

	books := []models.Book{
		{ID: "b1", Title: "Zero to One", Author: "Peter Thiel", Genres: []string{"Business"}},
		{ID: "b2", Title: "The Hard Thing About Hard Things", Author: "Ben Horowitz", Genres: []string{"Business"}},
		{ID: "b3", Title: "Sapiens", Author: "Yuval Noah Harari", Genres: []string{"History"}},
	}
	for i := range books {
		require.NoError(t, m.CreateBook(ctx, &books[i]))
	}

	recs := []models.Recommender{
		{ID: "r1", FullName: "Ada Example", Type: models.ArchetypeEntrepreneur},
		{ID: "r2", FullName: "Grace Sample", Type: models.ArchetypeScientist},
	}
	for i := range recs {
		require.NoError(t, m.CreateRecommender(ctx, &recs[i]))
	}

	edges := []models.Recommendation{
		{ID: "e1", BookID: "b1", RecommenderID: "r1", Source: "Interview"},
		{ID: "e2", BookID: "b1", RecommenderID: "r2", Source: "Podcast"},
		{ID: "e3", BookID: "b2", RecommenderID: "r1", Source: "Blog"},
	}
	for i := range edges {
		require.NoError(t, m.CreateRecommendation(ctx, &edges[i]))
	}
	return m
}

func TestMemoryGetBook(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	b, err := m.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Zero to One", b.Title)

	_, err = m.GetBook(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListBooks(t *testing.T) {
	m := seedMemory(t)

	books, err := m.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestMemoryGetRecommender(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	r, err := m.GetRecommender(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, models.ArchetypeScientist, r.Type)

	_, err = m.GetRecommender(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGroupedEdges(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	byBook, err := m.ListRecommendationsForBooks(ctx, []string{"b1", "b3"})
	require.NoError(t, err)
	assert.Len(t, byBook["b1"], 2)
	assert.NotContains(t, byBook, "b3")

	byRec, err := m.ListRecommendationsForRecommenders(ctx, []string{"r1"})
	require.NoError(t, err)
	assert.Len(t, byRec["r1"], 2)
}

func TestMemorySearchBooksByText(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	// Case-insensitive title match.
	out, err := m.SearchBooksByText(ctx, "ZERO", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].ID)

	// Author match.
	out, err = m.SearchBooksByText(ctx, "harari", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b3", out[0].ID)

	// Limit applies.
	out, err = m.SearchBooksByText(ctx, "th", 1)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestMemoryFindBookByTitleAuthor(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	b, err := m.FindBookByTitleAuthor(ctx, "SAPIENS", "yuval noah harari")
	require.NoError(t, err)
	assert.Equal(t, "b3", b.ID)

	_, err = m.FindBookByTitleAuthor(ctx, "Sapiens", "Someone Else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDataVersionBumpsOnWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v0, err := m.DataVersion(ctx)
	require.NoError(t, err)

	require.NoError(t, m.CreateBook(ctx, &models.Book{ID: "b1", Title: "T", Author: "A"}))
	v1, err := m.DataVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, v1, v0)

	require.NoError(t, m.CreateRecommendation(ctx, &models.Recommendation{ID: "e1", BookID: "b1", RecommenderID: "r1"}))
	v2, err := m.DataVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, v2, v1)

	// Contribution writes do not touch the catalog snapshot.
	require.NoError(t, m.CreatePendingContribution(ctx, &models.PendingContribution{ID: "c1", Status: models.ContributionPending}))
	v3, err := m.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2, v3)
}

func TestMemoryContributionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := &models.PendingContribution{
		ID:        "c1",
		Name:      "Ada Example",
		Books:     []models.ContributionBook{{Title: "Sapiens", Author: "Yuval Noah Harari"}},
		Status:    models.ContributionPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, m.CreatePendingContribution(ctx, c))

	pending, err := m.ListPendingContributions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c1", pending[0].ID)

	require.NoError(t, m.UpdateContributionStatus(ctx, "c1", models.ContributionApproved))

	got, err := m.GetPendingContribution(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ContributionApproved, got.Status)
	assert.False(t, got.ResolvedAt.IsZero())

	// Resolved contributions drop out of the pending list.
	pending, err = m.ListPendingContributions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, m.UpdateContributionStatus(ctx, "nope", models.ContributionRejected), ErrNotFound)
}

func TestMemoryListRecommendationsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := seedMemory(t)

	edges, err := m.ListRecommendations(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 3)

	edges[0].BookID = "mutated"

	again, err := m.ListRecommendations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", again[0].BookID)
}
