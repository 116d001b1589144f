// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package recommend

import (
	"fmt"
	"time"
)

// Weights holds the additive score contribution of each match reason.
type Weights struct {
	SimilarToFavorites         float64 `json:"similar_to_favorites" koanf:"similar_to_favorites"`
	RecommendedByInspiration   float64 `json:"recommended_by_inspiration" koanf:"recommended_by_inspiration"`
	RecommendedBySimilarPeople float64 `json:"recommended_by_similar_people" koanf:"recommended_by_similar_people"`
	GenreMatch                 float64 `json:"genre_match" koanf:"genre_match"`
	RecommendedBySimilarType   float64 `json:"recommended_by_similar_type" koanf:"recommended_by_similar_type"`
}

// Config holds the tunable parameters of the scoring engine. The
// similarity floor and popularity boost are inferred defaults, not
// product constants, so both stay configurable.
type Config struct {
	Weights Weights `json:"weights" koanf:"weights"`

	// SimilarityFloor is the minimum cosine similarity for the
	// favorites signal to fire.
	SimilarityFloor float64 `json:"similarity_floor" koanf:"similarity_floor"`

	// PopularityBoost scales the log-count multiplier:
	// score * (1 + PopularityBoost*ln(1+count)).
	PopularityBoost float64 `json:"popularity_boost" koanf:"popularity_boost"`

	// MaxProfileItems caps genres, inspirations, and favorites per request.
	MaxProfileItems int `json:"max_profile_items" koanf:"max_profile_items"`

	// DefaultLimit applies when a request omits its limit.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps the requested result count.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// Workers is the candidate-evaluation parallelism. Zero means
	// runtime.NumCPU().
	Workers int `json:"workers" koanf:"workers"`

	// CacheTTL bounds how long a scored response may be served from
	// cache. Zero disables response caching.
	CacheTTL time.Duration `json:"cache_ttl" koanf:"cache_ttl"`
}

// DefaultConfig returns the reference engine configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			SimilarToFavorites:         3,
			RecommendedByInspiration:   3,
			RecommendedBySimilarPeople: 2,
			GenreMatch:                 1,
			RecommendedBySimilarType:   1,
		},
		SimilarityFloor: 0.80,
		PopularityBoost: 0.1,
		MaxProfileItems: 3,
		DefaultLimit:    10,
		MaxLimit:        100,
		Workers:         0,
		CacheTTL:        5 * time.Minute,
	}
}

// Validate checks the configuration for values that would corrupt
// ranking rather than merely change it.
func (c Config) Validate() error {
	if c.SimilarityFloor < -1 || c.SimilarityFloor > 1 {
		return fmt.Errorf("similarity_floor %v outside [-1, 1]", c.SimilarityFloor)
	}
	if c.PopularityBoost < 0 {
		return fmt.Errorf("popularity_boost %v is negative", c.PopularityBoost)
	}
	for name, w := range map[string]float64{
		"similar_to_favorites":          c.Weights.SimilarToFavorites,
		"recommended_by_inspiration":    c.Weights.RecommendedByInspiration,
		"recommended_by_similar_people": c.Weights.RecommendedBySimilarPeople,
		"genre_match":                   c.Weights.GenreMatch,
		"recommended_by_similar_type":   c.Weights.RecommendedBySimilarType,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s is negative", name)
		}
	}
	if c.MaxProfileItems <= 0 {
		return fmt.Errorf("max_profile_items must be positive")
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive")
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d below default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}
