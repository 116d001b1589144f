// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package contribution implements the user-submission pipeline: a batch
// of (name, url, book list) is held pending until a moderator approves
// or rejects it. Approval matches each book against the catalog by
// case-insensitive title+author, inserts the unmatched ones with fresh
// embeddings, and links everything to a newly created recommender.
package contribution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/models"
	"github.com/bookgraph/bookgraph/internal/store"
)

// PersonalSource is the provenance label for contributed edges.
const PersonalSource = "Personal"

var (
	// ErrInvalidSubmission indicates a malformed contribution.
	ErrInvalidSubmission = errors.New("invalid contribution")

	// ErrAlreadyResolved indicates the contribution was approved or
	// rejected before.
	ErrAlreadyResolved = errors.New("contribution already resolved")
)

// SubmitRequest is a user-submitted contribution.
type SubmitRequest struct {
	// Name is the recommender's full name. Required.
	Name string `json:"name" validate:"required"`

	// Type is the recommender's archetype. Required.
	Type string `json:"type" validate:"required,archetype"`

	// URL is an optional profile link.
	URL string `json:"url" validate:"omitempty,url"`

	// Books lists the recommended titles. At least one.
	Books []models.ContributionBook `json:"books" validate:"required,min=1,max=20,dive"`
}

// ApprovalResult describes what an approval created.
type ApprovalResult struct {
	Contribution  *models.PendingContribution `json:"contribution"`
	RecommenderID string                      `json:"recommender_id"`
	MatchedBooks  []string                    `json:"matched_books"`
	CreatedBooks  []string                    `json:"created_books"`
}

// Service runs the contribution lifecycle against the store.
type Service struct {
	store    store.Store
	provider embedding.Provider
}

// NewService creates a contribution service. provider may be nil; new
// books are then inserted without embeddings.
func NewService(st store.Store, provider embedding.Provider) *Service {
	return &Service{store: st, provider: provider}
}

// Submit records a new pending contribution.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.PendingContribution, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	}
	if _, ok := models.ParseArchetype(req.Type); !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSubmission, req.Type)
	}
	if len(req.Books) == 0 {
		return nil, fmt.Errorf("%w: at least one book is required", ErrInvalidSubmission)
	}
	for i, b := range req.Books {
		if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
			return nil, fmt.Errorf("%w: book %d needs both title and author", ErrInvalidSubmission, i)
		}
	}

	c := &models.PendingContribution{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		URL:       strings.TrimSpace(req.URL),
		Books:     req.Books,
		Status:    models.ContributionPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePendingContribution(ctx, c); err != nil {
		return nil, fmt.Errorf("store contribution: %w", err)
	}

	logging.Info().
		Str("contribution_id", c.ID).
		Int("books", len(c.Books)).
		Msg("contribution submitted")
	return c, nil
}

// Pending lists contributions awaiting review.
func (s *Service) Pending(ctx context.Context) ([]models.PendingContribution, error) {
	return s.store.ListPendingContributions(ctx)
}

// Approve commits a pending contribution to the catalog: creates the
// recommender, matches or inserts each book, and links them with
// Personal-source edges.
func (s *Service) Approve(ctx context.Context, id string) (*ApprovalResult, error) {
	c, err := s.store.GetPendingContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContributionPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyResolved, c.Status)
	}

	archetype, ok := models.ParseArchetype(c.Type)
	if !ok {
		return nil, fmt.Errorf("%w: contribution has unknown type %q", ErrInvalidSubmission, c.Type)
	}

	rec := &models.Recommender{
		ID:       uuid.NewString(),
		FullName: c.Name,
		Type:     archetype,
		URL:      c.URL,
	}
	if err := s.store.CreateRecommender(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recommender: %w", err)
	}

	result := &ApprovalResult{Contribution: c, RecommenderID: rec.ID}
	for _, cb := range c.Books {
		bookID, created, err := s.resolveBook(ctx, cb)
		if err != nil {
			return nil, err
		}
		if created {
			result.CreatedBooks = append(result.CreatedBooks, bookID)
		} else {
			result.MatchedBooks = append(result.MatchedBooks, bookID)
		}

		edge := &models.Recommendation{
			ID:            uuid.NewString(),
			BookID:        bookID,
			RecommenderID: rec.ID,
			Source:        PersonalSource,
		}
		if err := s.store.CreateRecommendation(ctx, edge); err != nil {
			return nil, fmt.Errorf("create recommendation: %w", err)
		}
	}

	if err := s.store.UpdateContributionStatus(ctx, id, models.ContributionApproved); err != nil {
		return nil, fmt.Errorf("mark approved: %w", err)
	}
	c.Status = models.ContributionApproved

	logging.Info().
		Str("contribution_id", id).
		Str("recommender_id", rec.ID).
		Int("matched", len(result.MatchedBooks)).
		Int("created", len(result.CreatedBooks)).
		Msg("contribution approved")
	return result, nil
}

// resolveBook finds an existing catalog book by case-insensitive
// title+author or inserts a new one.
func (s *Service) resolveBook(ctx context.Context, cb models.ContributionBook) (string, bool, error) {
	existing, err := s.store.FindBookByTitleAuthor(ctx, cb.Title, cb.Author)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, fmt.Errorf("match book: %w", err)
	}

	book := &models.Book{
		ID:     uuid.NewString(),
		Title:  strings.TrimSpace(cb.Title),
		Author: strings.TrimSpace(cb.Author),
	}
	s.enrich(ctx, book)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return "", false, fmt.Errorf("create book: %w", err)
	}
	return book.ID, true, nil
}

// enrich computes embeddings for a new book. Best effort; an
// unavailable provider leaves the vectors absent rather than blocking
// the approval.
func (s *Service) enrich(ctx context.Context, book *models.Book) {
	if s.provider == nil {
		return
	}
	vecs, err := s.provider.EmbedBatch(ctx, []string{book.Title, book.Author})
	if err != nil {
		logging.Warn().Err(err).Str("book", book.Title).Msg("embedding enrichment skipped")
		return
	}
	book.TitleEmbedding = vecs[0]
	book.AuthorEmbedding = vecs[1]
}

// Reject marks a pending contribution as rejected without touching the
// catalog.
func (s *Service) Reject(ctx context.Context, id string) (*models.PendingContribution, error) {
	c, err := s.store.GetPendingContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContributionPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyResolved, c.Status)
	}

	if err := s.store.UpdateContributionStatus(ctx, id, models.ContributionRejected); err != nil {
		return nil, fmt.Errorf("mark rejected: %w", err)
	}
	c.Status = models.ContributionRejected

	logging.Info().Str("contribution_id", id).Msg("contribution rejected")
	return c, nil
}
