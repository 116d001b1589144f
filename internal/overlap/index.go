// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package overlap derives co-occurrence sets from the recommendation edge
// set: which people recommended a book, which books a person recommended,
// and the shared-recommender / shared-book intersections that drive the
// "related" panels and two of the scorer's match reasons.
//
// An Index is immutable once built. Concurrent scoring requests share one
// snapshot read-only; a data change means building a new Index, never
// mutating a published one.
package overlap

import (
	"sort"

	"github.com/bookgraph/bookgraph/internal/models"
)

// Index holds the co-occurrence sets derived from one snapshot of the edge
// set. The zero value is not usable; construct with NewIndex.
type Index struct {
	recommendersOf map[string]map[string]struct{}
	booksOf        map[string]map[string]struct{}

	// edgeCounts counts distinct edge rows per book. Multi-source edges
	// for the same (book, recommender) pair each count here, while the
	// sets above deduplicate them.
	edgeCounts map[string]int
}

// NewIndex builds an index from the full recommendation edge set. An empty
// edge set is a valid, if degenerate, state: all queries return empty
// results.
func NewIndex(edges []models.Recommendation) *Index {
	idx := &Index{
		recommendersOf: make(map[string]map[string]struct{}),
		booksOf:        make(map[string]map[string]struct{}),
		edgeCounts:     make(map[string]int),
	}

	for i := range edges {
		e := &edges[i]
		if e.BookID == "" || e.RecommenderID == "" {
			continue
		}

		idx.edgeCounts[e.BookID]++

		recs := idx.recommendersOf[e.BookID]
		if recs == nil {
			recs = make(map[string]struct{})
			idx.recommendersOf[e.BookID] = recs
		}
		recs[e.RecommenderID] = struct{}{}

		books := idx.booksOf[e.RecommenderID]
		if books == nil {
			books = make(map[string]struct{})
			idx.booksOf[e.RecommenderID] = books
		}
		books[e.BookID] = struct{}{}
	}

	return idx
}

// RecommendersOf returns the set of recommender ids who recommended the
// book, deduplicated across sources. The returned map is shared with the
// index and must not be modified.
func (idx *Index) RecommendersOf(bookID string) map[string]struct{} {
	return idx.recommendersOf[bookID]
}

// BooksOf returns the set of book ids the recommender endorsed. The returned
// map is shared with the index and must not be modified.
func (idx *Index) BooksOf(recommenderID string) map[string]struct{} {
	return idx.booksOf[recommenderID]
}

// EdgeCount returns the number of distinct recommendation edges for the
// book, the RecommendationCount aggregate used for popularity ranking.
func (idx *Index) EdgeCount(bookID string) int {
	return idx.edgeCounts[bookID]
}

// EdgeCounts returns a copy of the per-book edge counts, suitable for
// percentile computation.
func (idx *Index) EdgeCounts() map[string]int {
	counts := make(map[string]int, len(idx.edgeCounts))
	for id, c := range idx.edgeCounts {
		counts[id] = c
	}
	return counts
}

// SharedRecommenderCount returns how many people recommended both books.
func (idx *Index) SharedRecommenderCount(bookA, bookB string) int {
	return intersectionSize(idx.recommendersOf[bookA], idx.recommendersOf[bookB])
}

// SharedBookCount returns how many books both people recommended.
func (idx *Index) SharedBookCount(personA, personB string) int {
	return intersectionSize(idx.booksOf[personA], idx.booksOf[personB])
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func intersection(a, b map[string]struct{}) []string {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make([]string, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// RelatedBook is a book related to the query book through shared
// recommenders.
type RelatedBook struct {
	BookID         string
	SharedCount    int
	RecommenderIDs []string
}

// RelatedBooks returns up to limit books sharing at least one recommender
// with the given book, excluding the book itself, sorted by shared count
// descending with ties broken by book id ascending.
func (idx *Index) RelatedBooks(bookID string, limit int) []RelatedBook {
	recs := idx.recommendersOf[bookID]
	if len(recs) == 0 || limit <= 0 {
		return []RelatedBook{}
	}

	// Candidates are every other book endorsed by any of this book's
	// recommenders; books outside that union share nothing.
	candidates := make(map[string]struct{})
	for rec := range recs {
		for other := range idx.booksOf[rec] {
			if other != bookID {
				candidates[other] = struct{}{}
			}
		}
	}

	related := make([]RelatedBook, 0, len(candidates))
	for other := range candidates {
		shared := intersection(recs, idx.recommendersOf[other])
		if len(shared) == 0 {
			continue
		}
		related = append(related, RelatedBook{
			BookID:         other,
			SharedCount:    len(shared),
			RecommenderIDs: shared,
		})
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].SharedCount != related[j].SharedCount {
			return related[i].SharedCount > related[j].SharedCount
		}
		return related[i].BookID < related[j].BookID
	})

	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

// RelatedRecommender is a person related to the query person through shared
// books.
type RelatedRecommender struct {
	RecommenderID string
	SharedCount   int
	BookIDs       []string
}

// RelatedRecommenders returns up to limit people sharing at least one book
// with the given person, excluding the person, sorted by shared count
// descending with ties broken by recommender id ascending.
func (idx *Index) RelatedRecommenders(recommenderID string, limit int) []RelatedRecommender {
	books := idx.booksOf[recommenderID]
	if len(books) == 0 || limit <= 0 {
		return []RelatedRecommender{}
	}

	candidates := make(map[string]struct{})
	for book := range books {
		for other := range idx.recommendersOf[book] {
			if other != recommenderID {
				candidates[other] = struct{}{}
			}
		}
	}

	related := make([]RelatedRecommender, 0, len(candidates))
	for other := range candidates {
		shared := intersection(books, idx.booksOf[other])
		if len(shared) == 0 {
			continue
		}
		related = append(related, RelatedRecommender{
			RecommenderID: other,
			SharedCount:   len(shared),
			BookIDs:       shared,
		})
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].SharedCount != related[j].SharedCount {
			return related[i].SharedCount > related[j].SharedCount
		}
		return related[i].RecommenderID < related[j].RecommenderID
	})

	if len(related) > limit {
		related = related[:limit]
	}
	return related
}
