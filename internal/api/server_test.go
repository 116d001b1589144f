// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraph/bookgraph/internal/config"
	"github.com/bookgraph/bookgraph/internal/contribution"
	"github.com/bookgraph/bookgraph/internal/embedding"
	"github.com/bookgraph/bookgraph/internal/models"
	"github.com/bookgraph/bookgraph/internal/recommend"
	"github.com/bookgraph/bookgraph/internal/search"
	"github.com/bookgraph/bookgraph/internal/store"
)

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func newTestServer(t *testing.T, provider embedding.Provider) (*Server, *store.Memory) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.CreateBook(ctx, &models.Book{
		ID: "b1", Title: "Book One", Author: "Author One",
		Genres: []string{"History"}, DescriptionEmbedding: []float32{1, 0},
	}))
	require.NoError(t, m.CreateBook(ctx, &models.Book{
		ID: "b2", Title: "Book Two", Author: "Author Two",
		Genres: []string{"Business"}, DescriptionEmbedding: []float32{0, 1},
	}))
	require.NoError(t, m.CreateRecommender(ctx, &models.Recommender{
		ID: "r1", FullName: "R One", Type: models.ArchetypeAuthor,
	}))
	require.NoError(t, m.CreateRecommendation(ctx, &models.Recommendation{
		ID: "e1", BookID: "b1", RecommenderID: "r1", Source: "Interview",
	}))
	require.NoError(t, m.CreateRecommendation(ctx, &models.Recommendation{
		ID: "e2", BookID: "b2", RecommenderID: "r1", Source: "Podcast",
	}))

	engineCfg := recommend.DefaultConfig()
	engineCfg.Workers = 1
	engine, err := recommend.NewEngine(m, engineCfg)
	require.NoError(t, err)

	if provider == nil {
		provider = &embedding.Static{}
	}

	srvCfg := config.Default().Server
	srvCfg.RateLimit = 0

	srv := NewServer(srvCfg, m, engine,
		search.NewService(m, provider, 20),
		contribution.NewService(m, provider))
	return srv, m
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRecommendEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodPost, "/api/v1/recommendations", map[string]interface{}{
		"userType": string(models.ArchetypeAuthor),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	var resp recommend.Response
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Books, 2)
	assert.True(t, resp.Books[0].MatchReasons.RecommendedBySimilarType)
}

func TestRecommendEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodPost, "/api/v1/recommendations", map[string]interface{}{
		"genres": []string{"History"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestRelatedBooksEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/books/b1/related", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var related []recommend.RelatedBook
	require.NoError(t, json.Unmarshal(env.Data, &related))
	require.Len(t, related, 1)
	assert.Equal(t, "b2", related[0].ID)

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/books/missing/related", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSemanticSearchEndpoint(t *testing.T) {
	provider := &embedding.Static{Vectors: map[string][]float32{"history": {1, 0}}}
	srv, _ := newTestServer(t, provider)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/search/semantic?q=history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []search.BookMatch
	require.NoError(t, json.Unmarshal(env.Data, &matches))
	require.NotEmpty(t, matches)
	assert.Equal(t, "b1", matches[0].ID)
}

func TestSemanticSearchEmbeddingDown(t *testing.T) {
	srv, _ := newTestServer(t, &embedding.Static{})
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/search/semantic?q=anything", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMBEDDING_UNAVAILABLE", env.Error.Code)
}

func TestSemanticSearchRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/search/semantic", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/books/b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var book models.Book
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Equal(t, "Book One", book.Title)

	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/recommenders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/books/percentiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranks []recommend.BookRank
	require.NoError(t, json.Unmarshal(env.Data, &ranks))
	assert.Len(t, ranks, 2)
}

func TestContributionFlow(t *testing.T) {
	srv, m := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodPost, "/api/v1/contributions", contribution.SubmitRequest{
		Name: "New Person",
		Type: string(models.ArchetypeScientist),
		Books: []models.ContributionBook{
			{Title: "Book One", Author: "Author One"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var c models.PendingContribution
	require.NoError(t, json.Unmarshal(env.Data, &c))
	require.NotEmpty(t, c.ID)

	rec, env = doJSON(t, h, http.MethodPost, "/api/v1/contributions/"+c.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result contribution.ApprovalResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, []string{"b1"}, result.MatchedBooks)

	// Second approval conflicts.
	rec, env = doJSON(t, h, http.MethodPost, "/api/v1/contributions/"+c.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	edges, err := m.ListRecommendations(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 3)
}

func TestEngineConfigEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/recommendations/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg recommend.Config
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, 0.80, cfg.SimilarityFloor)

	cfg.SimilarityFloor = 0.7
	rec, env = doJSON(t, h, http.MethodPut, "/api/v1/recommendations/config", cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, 0.7, cfg.SimilarityFloor)

	cfg.SimilarityFloor = 3
	rec, _ = doJSON(t, h, http.MethodPut, "/api/v1/recommendations/config", cfg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Router()

	rec, env := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
}
