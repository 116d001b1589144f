// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package recommend

import (
	"errors"

	"github.com/bookgraph/bookgraph/internal/models"
)

// ErrInvalidRequest indicates a malformed request rejected before any
// store access.
var ErrInvalidRequest = errors.New("invalid recommendation request")

// Request is the immutable user profile scored against the catalog.
type Request struct {
	// UserType is the user's archetype. Required.
	UserType string `json:"userType" validate:"required,archetype"`

	// Genres are up to three preferred category labels.
	Genres []string `json:"genres" validate:"max=3"`

	// InspirationIDs are up to three recommender ids.
	InspirationIDs []string `json:"inspirationIds" validate:"max=3"`

	// FavoriteBookIDs are up to three book ids. Favorites never appear
	// in results.
	FavoriteBookIDs []string `json:"favoriteBookIds" validate:"max=3"`

	// Limit is the requested result count. Zero means the configured
	// default.
	Limit int `json:"limit" validate:"gte=0"`
}

// MatchReasons records which of the five independent signals fired for
// a book. Every returned book has at least one true reason.
type MatchReasons struct {
	SimilarToFavorites         bool `json:"similar_to_favorites"`
	RecommendedByInspiration   bool `json:"recommended_by_inspiration"`
	RecommendedBySimilarPeople bool `json:"recommended_by_similar_people"`
	GenreMatch                 bool `json:"genre_match"`
	RecommendedBySimilarType   bool `json:"recommended_by_similar_type"`
}

// Any reports whether at least one reason fired.
func (r MatchReasons) Any() bool {
	return r.SimilarToFavorites || r.RecommendedByInspiration ||
		r.RecommendedBySimilarPeople || r.GenreMatch || r.RecommendedBySimilarType
}

// ScoredBook is one ranked result.
type ScoredBook struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Author              string       `json:"author"`
	Description         string       `json:"description,omitempty"`
	Genres              []string     `json:"genres,omitempty"`
	AmazonURL           string       `json:"amazon_url,omitempty"`
	Score               float64      `json:"score"`
	RecommendationCount int          `json:"recommendation_count"`
	MatchReasons        MatchReasons `json:"match_reasons"`
}

// Response is the ordered scoring result plus request-level stats.
type Response struct {
	Books []ScoredBook `json:"books"`
	Stats Stats        `json:"stats"`
}

// Stats describes how a response was produced.
type Stats struct {
	CandidateCount int   `json:"candidate_count"`
	MatchedCount   int   `json:"matched_count"`
	ElapsedMS      int64 `json:"elapsed_ms"`
	Cached         bool  `json:"cached"`
	DataVersion    int64 `json:"-"`
}

// RelatedBook is one entry of the shared-recommender panel.
type RelatedBook struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Author           string   `json:"author"`
	RecommenderCount int      `json:"recommender_count"`
	Recommenders     []string `json:"recommenders"`
	RecommenderTypes []string `json:"recommender_types"`
}

// RelatedRecommender is one entry of the shared-book panel.
type RelatedRecommender struct {
	ID          string           `json:"id"`
	FullName    string           `json:"full_name"`
	Type        models.Archetype `json:"type"`
	SharedBooks []string         `json:"shared_books"`
	SharedCount int              `json:"shared_count"`
}

// BookRank is one entry of the catalog percentile listing.
type BookRank struct {
	ID                  string  `json:"id"`
	RecommendationCount int     `json:"recommendation_count"`
	Percentile          float64 `json:"percentile"`
	Bucket              int     `json:"bucket"`
}
