// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package recommend implements the personalized recommendation engine:
// it scores every catalog book against a user profile (archetype, genre
// picks, inspirations, favorites) and returns a ranked, explained list.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/models"
	"github.com/bookgraph/bookgraph/internal/overlap"
	"github.com/bookgraph/bookgraph/internal/rank"
	"github.com/bookgraph/bookgraph/internal/similarity"
	"github.com/bookgraph/bookgraph/internal/store"
)

// snapshot is an immutable view of the catalog. Published once, read by
// many concurrent requests; never mutated after build.
type snapshot struct {
	version      int64
	books        []models.Book
	booksByID    map[string]*models.Book
	recommenders map[string]models.Recommender
	index        *overlap.Index
	percentiles  map[string]float64
}

type cachedResponse struct {
	resp    Response
	expires time.Time
}

// Engine scores the catalog against user profiles. Safe for concurrent
// use; configuration may be swapped at runtime.
type Engine struct {
	store store.Store

	cfgMu sync.RWMutex
	cfg   Config

	snap atomic.Pointer[snapshot]

	cacheMu sync.Mutex
	cache   map[string]cachedResponse
}

// NewEngine creates an engine over the given store.
func NewEngine(st store.Store, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{
		store: st,
		cfg:   cfg,
		cache: make(map[string]cachedResponse),
	}, nil
}

// Config returns the current engine configuration.
func (e *Engine) Config() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// UpdateConfig swaps the engine configuration after validating it. The
// response cache is dropped because cached scores embed the old weights.
func (e *Engine) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()

	e.cacheMu.Lock()
	e.cache = make(map[string]cachedResponse)
	e.cacheMu.Unlock()

	logging.Info().Msg("recommendation config updated")
	return nil
}

// loadSnapshot returns the current catalog snapshot, rebuilding it when
// the store's data version has moved. Every required fetch must succeed;
// a partial catalog must never be scored.
func (e *Engine) loadSnapshot(ctx context.Context) (*snapshot, error) {
	version, err := e.store.DataVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("data version: %w", err)
	}

	if snap := e.snap.Load(); snap != nil && snap.version == version {
		return snap, nil
	}

	books, err := e.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	recommenders, err := e.store.ListRecommenders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recommenders: %w", err)
	}
	edges, err := e.store.ListRecommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	snap := &snapshot{
		version:      version,
		books:        books,
		booksByID:    make(map[string]*models.Book, len(books)),
		recommenders: make(map[string]models.Recommender, len(recommenders)),
		index:        overlap.NewIndex(edges),
	}
	for i := range books {
		snap.booksByID[books[i].ID] = &books[i]
	}
	for _, r := range recommenders {
		snap.recommenders[r.ID] = r
	}

	counts := make(map[string]int, len(books))
	for _, b := range books {
		counts[b.ID] = snap.index.EdgeCount(b.ID)
	}
	snap.percentiles = rank.ComputePercentiles(counts)

	e.snap.Store(snap)
	logging.Debug().
		Int64("version", version).
		Int("books", len(books)).
		Int("recommenders", len(recommenders)).
		Int("edges", len(edges)).
		Msg("catalog snapshot rebuilt")
	return snap, nil
}

func (e *Engine) validate(req *Request, cfg Config) error {
	if req.UserType == "" {
		return fmt.Errorf("%w: userType is required", ErrInvalidRequest)
	}
	if _, ok := models.ParseArchetype(req.UserType); !ok {
		return fmt.Errorf("%w: unknown userType %q", ErrInvalidRequest, req.UserType)
	}
	for name, n := range map[string]int{
		"genres":          len(req.Genres),
		"inspirationIds":  len(req.InspirationIDs),
		"favoriteBookIds": len(req.FavoriteBookIDs),
	} {
		if n > cfg.MaxProfileItems {
			return fmt.Errorf("%w: %s exceeds %d entries", ErrInvalidRequest, name, cfg.MaxProfileItems)
		}
	}
	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	return nil
}

func cacheKey(req *Request, version int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "v%d|%s|%d|", version, req.UserType, req.Limit)
	sb.WriteString(strings.Join(req.Genres, ","))
	sb.WriteByte('|')
	sb.WriteString(strings.Join(req.InspirationIDs, ","))
	sb.WriteByte('|')
	sb.WriteString(strings.Join(req.FavoriteBookIDs, ","))
	return sb.String()
}

// Recommend scores the catalog against the request profile. Validation
// failures surface as ErrInvalidRequest before any store access.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	cfg := e.Config()

	if err := e.validate(&req, cfg); err != nil {
		return nil, err
	}
	if req.Limit == 0 {
		req.Limit = cfg.DefaultLimit
	}
	if req.Limit > cfg.MaxLimit {
		req.Limit = cfg.MaxLimit
	}

	started := time.Now()

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	key := cacheKey(&req, snap.version)
	if cfg.CacheTTL > 0 {
		if resp, ok := e.cachedResponse(key); ok {
			resp.Stats.Cached = true
			return resp, nil
		}
	}

	resp := e.score(&req, snap, cfg)
	resp.Stats.ElapsedMS = time.Since(started).Milliseconds()
	resp.Stats.DataVersion = snap.version

	if cfg.CacheTTL > 0 {
		e.storeResponse(key, resp, cfg.CacheTTL)
	}
	return resp, nil
}

func (e *Engine) cachedResponse(key string) (*Response, bool) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	entry, ok := e.cache[key]
	if !ok || time.Now().After(entry.expires) {
		delete(e.cache, key)
		return nil, false
	}
	resp := entry.resp
	resp.Books = append([]ScoredBook(nil), entry.resp.Books...)
	return &resp, true
}

func (e *Engine) storeResponse(key string, resp *Response, ttl time.Duration) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	stored := *resp
	stored.Books = append([]ScoredBook(nil), resp.Books...)
	e.cache[key] = cachedResponse{resp: stored, expires: time.Now().Add(ttl)}
}

// profile is the precomputed request-scoped lookup state shared by all
// candidate evaluations.
type profile struct {
	userType      models.Archetype
	genres        map[string]struct{}
	inspirations  map[string]struct{}
	favorites     map[string]struct{}
	centroid      []float32
	similarPeople map[string]struct{}
}

func (e *Engine) buildProfile(req *Request, snap *snapshot) *profile {
	p := &profile{
		genres:       make(map[string]struct{}, len(req.Genres)),
		inspirations: make(map[string]struct{}, len(req.InspirationIDs)),
		favorites:    make(map[string]struct{}, len(req.FavoriteBookIDs)),
	}
	p.userType, _ = models.ParseArchetype(req.UserType)
	for _, g := range req.Genres {
		p.genres[strings.ToLower(g)] = struct{}{}
	}
	for _, id := range req.InspirationIDs {
		p.inspirations[id] = struct{}{}
	}
	for _, id := range req.FavoriteBookIDs {
		p.favorites[id] = struct{}{}
	}

	// Mean description embedding of the favorites that have one. No
	// favorite embeddings means the signal simply never fires.
	var vecs [][]float32
	for _, id := range req.FavoriteBookIDs {
		if b, ok := snap.booksByID[id]; ok && len(b.DescriptionEmbedding) > 0 {
			vecs = append(vecs, b.DescriptionEmbedding)
		}
	}
	if centroid, err := similarity.Centroid(vecs); err == nil {
		p.centroid = centroid
	}

	// People who share at least one book with any inspiration,
	// excluding the inspirations themselves. Overlap counted through the
	// user's own favorites is trivial (everyone who recommended a
	// favorite "overlaps" with an inspiration who did too) and does not
	// qualify.
	p.similarPeople = make(map[string]struct{})
	for insp := range p.inspirations {
		for bookID := range snap.index.BooksOf(insp) {
			if _, isFav := p.favorites[bookID]; isFav {
				continue
			}
			for rec := range snap.index.RecommendersOf(bookID) {
				if _, isInsp := p.inspirations[rec]; !isInsp {
					p.similarPeople[rec] = struct{}{}
				}
			}
		}
	}
	return p
}

func (e *Engine) evaluate(book *models.Book, p *profile, snap *snapshot, cfg Config) (ScoredBook, bool) {
	var reasons MatchReasons

	if p.centroid != nil && len(book.DescriptionEmbedding) > 0 {
		if sim, err := similarity.Cosine(book.DescriptionEmbedding, p.centroid); err == nil && sim >= cfg.SimilarityFloor {
			reasons.SimilarToFavorites = true
		}
	}

	recommenders := snap.index.RecommendersOf(book.ID)
	for rec := range recommenders {
		if _, ok := p.inspirations[rec]; ok {
			reasons.RecommendedByInspiration = true
		}
		if _, ok := p.similarPeople[rec]; ok {
			reasons.RecommendedBySimilarPeople = true
		}
		if r, ok := snap.recommenders[rec]; ok && r.Type == p.userType {
			reasons.RecommendedBySimilarType = true
		}
	}

	for _, g := range book.Genres {
		if _, ok := p.genres[strings.ToLower(g)]; ok {
			reasons.GenreMatch = true
			break
		}
	}

	if !reasons.Any() {
		return ScoredBook{}, false
	}

	cw := cfg.Weights
	base := 0.0
	if reasons.SimilarToFavorites {
		base += cw.SimilarToFavorites
	}
	if reasons.RecommendedByInspiration {
		base += cw.RecommendedByInspiration
	}
	if reasons.RecommendedBySimilarPeople {
		base += cw.RecommendedBySimilarPeople
	}
	if reasons.GenreMatch {
		base += cw.GenreMatch
	}
	if reasons.RecommendedBySimilarType {
		base += cw.RecommendedBySimilarType
	}

	count := snap.index.EdgeCount(book.ID)
	score := base * (1 + cfg.PopularityBoost*math.Log(1+float64(count)))

	return ScoredBook{
		ID:                  book.ID,
		Title:               book.Title,
		Author:              book.Author,
		Description:         book.Description,
		Genres:              book.Genres,
		AmazonURL:           book.AmazonURL,
		Score:               score,
		RecommendationCount: count,
		MatchReasons:        reasons,
	}, true
}

func (e *Engine) score(req *Request, snap *snapshot, cfg Config) *Response {
	p := e.buildProfile(req, snap)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(snap.books) {
		workers = len(snap.books)
	}

	// Candidate evaluation is embarrassingly parallel; each worker
	// writes only its own slots.
	results := make([]*ScoredBook, len(snap.books))
	if workers > 1 {
		var wg sync.WaitGroup
		jobs := make(chan int)

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					book := &snap.books[i]
					if _, isFav := p.favorites[book.ID]; isFav {
						continue
					}
					if sb, ok := e.evaluate(book, p, snap, cfg); ok {
						results[i] = &sb
					}
				}
			}()
		}
		for i := range snap.books {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	} else {
		for i := range snap.books {
			book := &snap.books[i]
			if _, isFav := p.favorites[book.ID]; isFav {
				continue
			}
			if sb, ok := e.evaluate(book, p, snap, cfg); ok {
				results[i] = &sb
			}
		}
	}

	matched := make([]ScoredBook, 0, len(results))
	for _, sb := range results {
		if sb != nil {
			matched = append(matched, *sb)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		if matched[i].RecommendationCount != matched[j].RecommendationCount {
			return matched[i].RecommendationCount > matched[j].RecommendationCount
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}

	return &Response{
		Books: matched,
		Stats: Stats{
			CandidateCount: len(snap.books),
			MatchedCount:   total,
		},
	}
}

// RelatedBooks returns books sharing recommenders with the given book,
// enriched with titles and recommender names for display.
func (e *Engine) RelatedBooks(ctx context.Context, bookID string, limit int) ([]RelatedBook, error) {
	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.booksByID[bookID]; !ok {
		return nil, store.ErrNotFound
	}
	if limit <= 0 {
		limit = e.Config().DefaultLimit
	}

	related := snap.index.RelatedBooks(bookID, limit)
	out := make([]RelatedBook, 0, len(related))
	for _, rb := range related {
		book, ok := snap.booksByID[rb.BookID]
		if !ok {
			continue
		}
		entry := RelatedBook{
			ID:               rb.BookID,
			Title:            book.Title,
			Author:           book.Author,
			RecommenderCount: rb.SharedCount,
		}
		for _, recID := range rb.RecommenderIDs {
			if r, ok := snap.recommenders[recID]; ok {
				entry.Recommenders = append(entry.Recommenders, r.FullName)
				entry.RecommenderTypes = append(entry.RecommenderTypes, string(r.Type))
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// RelatedRecommenders returns people sharing books with the given
// person, enriched with names and shared book titles.
func (e *Engine) RelatedRecommenders(ctx context.Context, recommenderID string, limit int) ([]RelatedRecommender, error) {
	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.recommenders[recommenderID]; !ok {
		return nil, store.ErrNotFound
	}
	if limit <= 0 {
		limit = e.Config().DefaultLimit
	}

	related := snap.index.RelatedRecommenders(recommenderID, limit)
	out := make([]RelatedRecommender, 0, len(related))
	for _, rr := range related {
		rec, ok := snap.recommenders[rr.RecommenderID]
		if !ok {
			continue
		}
		entry := RelatedRecommender{
			ID:          rr.RecommenderID,
			FullName:    rec.FullName,
			Type:        rec.Type,
			SharedCount: rr.SharedCount,
		}
		for _, bookID := range rr.BookIDs {
			if b, ok := snap.booksByID[bookID]; ok {
				entry.SharedBooks = append(entry.SharedBooks, b.Title)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// CatalogRanks returns per-book recommendation counts with rank
// percentiles and display buckets, sorted by count descending then id
// ascending.
func (e *Engine) CatalogRanks(ctx context.Context) ([]BookRank, error) {
	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BookRank, 0, len(snap.books))
	for _, b := range snap.books {
		pct := snap.percentiles[b.ID]
		out = append(out, BookRank{
			ID:                  b.ID,
			RecommendationCount: snap.index.EdgeCount(b.ID),
			Percentile:          pct,
			Bucket:              rank.Bucket(pct, rank.DefaultThresholds),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecommendationCount != out[j].RecommendationCount {
			return out[i].RecommendationCount > out[j].RecommendationCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// IsInvalidRequest reports whether err is a request validation failure.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
