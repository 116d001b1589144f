// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOf(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestCosine(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		s, err := Cosine([]float32{1, 2, 3}, []float32{1, 2, 3})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, s, 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		s, err := Cosine([]float32{1, 0}, []float32{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, s, 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		s, err := Cosine([]float32{1, 0}, []float32{-1, 0})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, s, 1e-9)
	})

	t.Run("magnitude invariant", func(t *testing.T) {
		a, err := Cosine([]float32{1, 2}, []float32{2, 1})
		require.NoError(t, err)
		b, err := Cosine([]float32{10, 20}, []float32{200, 100})
		require.NoError(t, err)
		assert.InDelta(t, a, b, 1e-9)
	})

	t.Run("missing vector is an error not zero", func(t *testing.T) {
		_, err := Cosine(nil, []float32{1, 2})
		assert.ErrorIs(t, err, ErrNoVector)
		_, err = Cosine([]float32{1, 2}, nil)
		assert.ErrorIs(t, err, ErrNoVector)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("zero vector", func(t *testing.T) {
		_, err := Cosine([]float32{0, 0}, []float32{1, 2})
		assert.ErrorIs(t, err, ErrNoVector)
	})
}

func TestNearest(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: "far", Vector: []float32{0, 1}},
		{ID: "close", Vector: []float32{1,  0.1}},
		{ID: "exact", Vector: []float32{2, 0}},
		{ID: "no-vector", Vector: nil},
		{ID: "bad-dim", Vector: []float32{1, 0, 0}},
	}

	got := Nearest(query, candidates, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "exact", got[0].ID)
	assert.Equal(t, "close", got[1].ID)
}

func TestNearestTiesBreakByIDAscending(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: "b", Vector: []float32{3, 0}},
		{ID: "a", Vector: []float32{2, 0}},
		{ID: "c", Vector: []float32{1, 0}},
	}

	got := Nearest(query, candidates, 3)
	require.Len(t, got, 3)
	// All score 1.0; order must be id ascending.
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestNearestEdgeCases(t *testing.T) {
	assert.Empty(t, Nearest(nil, []Candidate{{ID: "a", Vector: []float32{1}}}, 5))
	assert.Empty(t, Nearest([]float32{1}, nil, 5))
	assert.Empty(t, Nearest([]float32{1}, []Candidate{{ID: "a", Vector: []float32{1}}}, 0))
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]struct{}
		want float64
	}{
		{"half overlap", setOf("1", "2", "3"), setOf("2", "3", "4"), 0.5},
		{"both empty", setOf(), setOf(), 0},
		{"one empty", setOf("1"), setOf(), 0},
		{"identical", setOf("x", "y"), setOf("x", "y"), 1},
		{"disjoint", setOf("a"), setOf("b"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
			// Symmetric.
			assert.InDelta(t, tt.want, Jaccard(tt.b, tt.a), 1e-9)
		})
	}
}

func TestCentroid(t *testing.T) {
	t.Run("mean of vectors", func(t *testing.T) {
		c, err := Centroid([][]float32{{1, 0}, {3, 2}})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, float64(c[0]), 1e-6)
		assert.InDelta(t, 1.0, float64(c[1]), 1e-6)
	})

	t.Run("skips missing vectors", func(t *testing.T) {
		c, err := Centroid([][]float32{nil, {4, 6}, nil})
		require.NoError(t, err)
		assert.InDelta(t, 4.0, float64(c[0]), 1e-6)
		assert.InDelta(t, 6.0, float64(c[1]), 1e-6)
	})

	t.Run("no vectors present", func(t *testing.T) {
		_, err := Centroid([][]float32{nil, nil})
		assert.ErrorIs(t, err, ErrNoVector)

		_, err = Centroid(nil)
		assert.ErrorIs(t, err, ErrNoVector)
	})

	t.Run("mismatched dimensions", func(t *testing.T) {
		_, err := Centroid([][]float32{{1, 2}, {1, 2, 3}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}
