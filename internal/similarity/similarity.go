// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package similarity implements the pairwise similarity primitives shared by
// the recommendation engine and semantic search: cosine similarity over
// embedding vectors, brute-force top-k nearest neighbors, and Jaccard
// set overlap.
//
// Absent vectors and dimension mismatches are reported as errors, never
// coerced to similarity 0; zero is a valid low-similarity score, and
// conflating the two corrupts ranking.
package similarity

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNoVector indicates one of the operands has no embedding.
	ErrNoVector = errors.New("similarity: missing embedding vector")

	// ErrDimensionMismatch indicates the operands have different lengths.
	// Vectors of mismatched dimensionality must never be compared.
	ErrDimensionMismatch = errors.New("similarity: embedding dimension mismatch")
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Cosine normalizes internally, so inconsistent embedding magnitudes do not
// bias the result the way a raw dot product would.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrNoVector
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		// A zero vector has no direction; treat like a missing embedding.
		return 0, ErrNoVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Candidate pairs an entity ID with its embedding vector for ranking.
type Candidate struct {
	ID     string
	Vector []float32
}

// Scored is a ranked candidate with its cosine similarity score.
type Scored struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Nearest returns the k candidates with the highest cosine similarity to
// query, descending by score with ties broken by ID ascending so output is
// deterministic. Candidates with absent or mismatched vectors are excluded
// from ranking rather than scored as 0.
//
// Brute force, O(n*D) per query. Fine at catalog scale; an ANN index would be
// a drop-in replacement as long as it preserves exact top-k recall.
func Nearest(query []float32, candidates []Candidate, k int) []Scored {
	if len(query) == 0 || k <= 0 {
		return []Scored{}
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s, err := Cosine(query, c.Vector)
		if err != nil {
			continue
		}
		scored = append(scored, Scored{ID: c.ID, Score: s})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Jaccard returns |A∩B| / |A∪B| in [0, 1]. Two empty sets overlap 0,
// not NaN.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for k := range small {
		if _, ok := large[k]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Centroid returns the mean of the given vectors, skipping nil entries.
// Returns ErrNoVector if no vector is present and ErrDimensionMismatch if the
// present vectors disagree on length.
func Centroid(vectors [][]float32) ([]float32, error) {
	var sum []float64
	count := 0

	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		} else if len(v) != len(sum) {
			return nil, ErrDimensionMismatch
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		count++
	}

	if count == 0 {
		return nil, ErrNoVector
	}

	centroid := make([]float32, len(sum))
	for i, s := range sum {
		centroid[i] = float32(s / float64(count))
	}
	return centroid, nil
}
