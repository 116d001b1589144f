// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package models

import "time"

// Book is a catalog entry. Embedding slices are nil until the ingestion
// pipeline has computed them; a nil embedding means "similarity undefined",
// never "similarity zero".
type Book struct {
	// ID is the opaque book identifier (UUID in practice).
	ID string `json:"id"`

	// Title is the book title.
	Title string `json:"title"`

	// Author is the book author as a display string.
	Author string `json:"author"`

	// Description is an optional synopsis.
	Description string `json:"description,omitempty"`

	// Genres is the set of category labels. Order is irrelevant.
	Genres []string `json:"genres"`

	// AmazonURL is an optional external purchase link.
	AmazonURL string `json:"amazon_url,omitempty"`

	// TitleEmbedding, AuthorEmbedding and DescriptionEmbedding are
	// independently maintained dense vectors. Each is either nil or has
	// exactly the configured dimensionality.
	TitleEmbedding       []float32 `json:"-"`
	AuthorEmbedding      []float32 `json:"-"`
	DescriptionEmbedding []float32 `json:"-"`
}

// HasGenre reports whether the book carries the given category label.
func (b *Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Recommender is a person whose book endorsements are recorded.
type Recommender struct {
	// ID is the opaque recommender identifier.
	ID string `json:"id"`

	// FullName is the person's display name.
	FullName string `json:"full_name"`

	// Type is the person's archetype from the closed enumeration.
	Type Archetype `json:"type"`

	// URL is an optional profile link.
	URL string `json:"url,omitempty"`

	// Description is an optional bio.
	Description string `json:"description,omitempty"`

	// DescriptionEmbedding is the optional embedding of the bio.
	DescriptionEmbedding []float32 `json:"-"`
}

// Recommendation links exactly one book to exactly one recommender with
// source provenance. The same (book, recommender) pair may appear under
// several sources; existence queries deduplicate, storage does not.
type Recommendation struct {
	// ID is the opaque edge identifier.
	ID string `json:"id"`

	// BookID is the recommended book.
	BookID string `json:"book_id"`

	// RecommenderID is the recommending person.
	RecommenderID string `json:"recommender_id"`

	// Source is the provenance label, e.g. a platform name or "Personal".
	Source string `json:"source"`

	// SourceLink is an optional URL backing the provenance claim.
	SourceLink string `json:"source_link,omitempty"`
}

// ContributionStatus is the lifecycle state of a pending contribution.
type ContributionStatus string

const (
	// ContributionPending means the batch awaits manual review.
	ContributionPending ContributionStatus = "pending"
	// ContributionApproved means the batch was committed to the catalog.
	ContributionApproved ContributionStatus = "approved"
	// ContributionRejected means the batch was declined.
	ContributionRejected ContributionStatus = "rejected"
)

// ContributionBook is one user-submitted book in a contribution batch.
type ContributionBook struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// PendingContribution is a user-submitted batch of recommendations awaiting
// approval. On approval it produces a Recommender, any Books not already in
// the catalog, and one Recommendation edge per book with source "Personal".
type PendingContribution struct {
	// ID is the opaque contribution identifier.
	ID string `json:"id"`

	// Name is the submitted recommender name.
	Name string `json:"name"`

	// Type is the submitted recommender archetype, stored as its raw
	// string and validated again at approval time.
	Type string `json:"type"`

	// URL is the submitted profile link, if any.
	URL string `json:"url,omitempty"`

	// Books is the submitted book list.
	Books []ContributionBook `json:"books"`

	// Status is the lifecycle state.
	Status ContributionStatus `json:"status"`

	// CreatedAt is when the batch was submitted.
	CreatedAt time.Time `json:"created_at"`

	// ResolvedAt is when the batch was approved or rejected.
	// Zero until the batch leaves the pending state.
	ResolvedAt time.Time `json:"resolved_at"`
}
