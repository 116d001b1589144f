// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package store provides logical access to the catalog entities: books,
// recommenders, recommendation edges, and pending contributions.
//
// Two implementations exist: a DuckDB-backed store for production and an
// in-memory store for tests and seed/dev mode. Consumers depend on the Store
// interface only.
package store

import (
	"context"
	"errors"

	"github.com/bookgraph/bookgraph/internal/models"
)

var (
	// ErrUnavailable indicates the backing store is unreachable. Callers
	// must abort rather than score against a partial catalog.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("store: not found")
)

// Store is the entity-store contract. All list operations return collections
// whose order is unspecified; callers must not assume stability across calls.
type Store interface {
	// ListBooks returns the full book catalog.
	ListBooks(ctx context.Context) ([]models.Book, error)

	// GetBook returns one book or ErrNotFound.
	GetBook(ctx context.Context, id string) (*models.Book, error)

	// ListRecommenders returns every recommender.
	ListRecommenders(ctx context.Context) ([]models.Recommender, error)

	// GetRecommender returns one recommender or ErrNotFound.
	GetRecommender(ctx context.Context, id string) (*models.Recommender, error)

	// ListRecommendations returns the full edge set. This is the snapshot
	// the overlap index is built from.
	ListRecommendations(ctx context.Context) ([]models.Recommendation, error)

	// ListRecommendationsForBooks returns edges grouped by book id.
	ListRecommendationsForBooks(ctx context.Context, bookIDs []string) (map[string][]models.Recommendation, error)

	// ListRecommendationsForRecommenders returns edges grouped by
	// recommender id.
	ListRecommendationsForRecommenders(ctx context.Context, recommenderIDs []string) (map[string][]models.Recommendation, error)

	// SearchBooksByText returns books whose title or author contains the
	// query, case-insensitively.
	SearchBooksByText(ctx context.Context, query string, limit int) ([]models.Book, error)

	// SearchRecommendersByText returns recommenders whose name contains
	// the query, case-insensitively.
	SearchRecommendersByText(ctx context.Context, query string, limit int) ([]models.Recommender, error)

	// FindBookByTitleAuthor returns the book matching title and author by
	// case-insensitive exact comparison, or ErrNotFound. Used by the
	// contribution approval pipeline.
	FindBookByTitleAuthor(ctx context.Context, title, author string) (*models.Book, error)

	// CreateBook inserts a new book.
	CreateBook(ctx context.Context, book *models.Book) error

	// CreateRecommender inserts a new recommender.
	CreateRecommender(ctx context.Context, rec *models.Recommender) error

	// CreateRecommendation inserts a new edge.
	CreateRecommendation(ctx context.Context, edge *models.Recommendation) error

	// CreatePendingContribution stores a submitted batch with status
	// pending.
	CreatePendingContribution(ctx context.Context, c *models.PendingContribution) error

	// GetPendingContribution returns one contribution or ErrNotFound.
	GetPendingContribution(ctx context.Context, id string) (*models.PendingContribution, error)

	// ListPendingContributions returns contributions awaiting review.
	ListPendingContributions(ctx context.Context) ([]models.PendingContribution, error)

	// UpdateContributionStatus moves a contribution out of the pending
	// state.
	UpdateContributionStatus(ctx context.Context, id string, status models.ContributionStatus) error

	// DataVersion returns a monotonically increasing value that changes
	// whenever books, recommenders or edges change. Consumers use it as a
	// cache invalidation key.
	DataVersion(ctx context.Context) (int64, error)

	// Close releases store resources.
	Close() error
}
