// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bookgraph/bookgraph/internal/models"
)

// Memory is an in-memory Store used by tests and by dev mode with seed
// data. Safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	books         map[string]models.Book
	recommenders  map[string]models.Recommender
	edges         []models.Recommendation
	contributions map[string]models.PendingContribution
	version       int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		books:         make(map[string]models.Book),
		recommenders:  make(map[string]models.Recommender),
		contributions: make(map[string]models.PendingContribution),
	}
}

// ListBooks implements Store.
func (m *Memory) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	return books, nil
}

// GetBook implements Store.
func (m *Memory) GetBook(ctx context.Context, id string) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

// ListRecommenders implements Store.
func (m *Memory) ListRecommenders(ctx context.Context) ([]models.Recommender, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]models.Recommender, 0, len(m.recommenders))
	for _, r := range m.recommenders {
		recs = append(recs, r)
	}
	return recs, nil
}

// GetRecommender implements Store.
func (m *Memory) GetRecommender(ctx context.Context, id string) (*models.Recommender, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recommenders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// ListRecommendations implements Store.
func (m *Memory) ListRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	edges := make([]models.Recommendation, len(m.edges))
	copy(edges, m.edges)
	return edges, nil
}

// ListRecommendationsForBooks implements Store.
func (m *Memory) ListRecommendationsForBooks(ctx context.Context, bookIDs []string) (map[string][]models.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = struct{}{}
	}

	grouped := make(map[string][]models.Recommendation)
	for _, e := range m.edges {
		if _, ok := wanted[e.BookID]; ok {
			grouped[e.BookID] = append(grouped[e.BookID], e)
		}
	}
	return grouped, nil
}

// ListRecommendationsForRecommenders implements Store.
func (m *Memory) ListRecommendationsForRecommenders(ctx context.Context, recommenderIDs []string) (map[string][]models.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]struct{}, len(recommenderIDs))
	for _, id := range recommenderIDs {
		wanted[id] = struct{}{}
	}

	grouped := make(map[string][]models.Recommendation)
	for _, e := range m.edges {
		if _, ok := wanted[e.RecommenderID]; ok {
			grouped[e.RecommenderID] = append(grouped[e.RecommenderID], e)
		}
	}
	return grouped, nil
}

// SearchBooksByText implements Store.
func (m *Memory) SearchBooksByText(ctx context.Context, query string, limit int) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []models.Book
	for _, b := range m.books {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return out, nil
}

// SearchRecommendersByText implements Store.
func (m *Memory) SearchRecommendersByText(ctx context.Context, query string, limit int) ([]models.Recommender, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []models.Recommender
	for _, r := range m.recommenders {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(r.FullName), q) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindBookByTitleAuthor implements Store.
func (m *Memory) FindBookByTitleAuthor(ctx context.Context, title, author string) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.books {
		if strings.EqualFold(b.Title, title) && strings.EqualFold(b.Author, author) {
			found := b
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// CreateBook implements Store.
func (m *Memory) CreateBook(ctx context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[book.ID] = *book
	m.version++
	return nil
}

// CreateRecommender implements Store.
func (m *Memory) CreateRecommender(ctx context.Context, rec *models.Recommender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recommenders[rec.ID] = *rec
	m.version++
	return nil
}

// CreateRecommendation implements Store.
func (m *Memory) CreateRecommendation(ctx context.Context, e *models.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.edges = append(m.edges, *e)
	m.version++
	return nil
}

// CreatePendingContribution implements Store.
func (m *Memory) CreatePendingContribution(ctx context.Context, c *models.PendingContribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contributions[c.ID] = *c
	return nil
}

// GetPendingContribution implements Store.
func (m *Memory) GetPendingContribution(ctx context.Context, id string) (*models.PendingContribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contributions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ListPendingContributions implements Store.
func (m *Memory) ListPendingContributions(ctx context.Context) ([]models.PendingContribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.PendingContribution
	for _, c := range m.contributions {
		if c.Status == models.ContributionPending {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpdateContributionStatus implements Store.
func (m *Memory) UpdateContributionStatus(ctx context.Context, id string, status models.ContributionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contributions[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.ResolvedAt = time.Now().UTC()
	m.contributions[id] = c
	return nil
}

// DataVersion implements Store.
func (m *Memory) DataVersion(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
