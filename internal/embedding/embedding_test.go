// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbedServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := embedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			resp.Embeddings[i] = []float32{float32(len(req.Input[i])), 1, 0}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestClientEmbed(t *testing.T) {
	srv := newEmbedServer(t, nil)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1, 0}, vec)
}

func TestClientEmbedBatchOrder(t *testing.T) {
	srv := newEmbedServer(t, nil)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, float32(3), vecs[2][0])
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})

	_, err := c.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.Embed(ctx, "hello")
		require.ErrorIs(t, err, ErrUnavailable)
	}

	// Breaker is now open; the next call fails without touching the server.
	_, err := c.Embed(ctx, "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
}

func TestStaticProvider(t *testing.T) {
	p := &Static{Vectors: map[string][]float32{"known": {1, 0}}}

	vec, err := p.Embed(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	_, err = p.Embed(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCacheAvoidsRepeatCalls(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, &calls)
	defer srv.Close()

	inner := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})
	cache, err := NewCache(inner, CacheConfig{})
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	first, err := cache.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := cache.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCacheBatchMixedHits(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, &calls)
	defer srv.Close()

	inner := NewClient(ClientConfig{BaseURL: srv.URL, Model: "test-model"})
	cache, err := NewCache(inner, CacheConfig{})
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	_, err = cache.Embed(ctx, "aa")
	require.NoError(t, err)

	vecs, err := cache.EmbedBatch(ctx, []string{"aa", "bbb"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(2), vecs[0][0])
	assert.Equal(t, float32(3), vecs[1][0])
}
