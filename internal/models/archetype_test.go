// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetypeValid(t *testing.T) {
	assert.True(t, ArchetypeAuthor.Valid())
	assert.True(t, ArchetypeHistorian.Valid())
	assert.False(t, Archetype("Wizard").Valid())
	assert.False(t, Archetype("").Valid())
}

func TestArchetypeSetIsClosed(t *testing.T) {
	// The enumeration is a closed set of 18 values with no duplicates.
	require.Len(t, Archetypes, 18)

	seen := make(map[Archetype]struct{}, len(Archetypes))
	for _, a := range Archetypes {
		_, dup := seen[a]
		require.False(t, dup, "duplicate archetype %q", a)
		seen[a] = struct{}{}
	}
}

func TestParseArchetype(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Archetype
		ok    bool
	}{
		{"exact", "Author or Writer", ArchetypeAuthor, true},
		{"case insensitive", "author OR writer", ArchetypeAuthor, true},
		{"multi clause", "Historian, Philosopher, or Theologian", ArchetypeHistorian, true},
		{"unknown", "Time Traveler", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseArchetype(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookHasGenre(t *testing.T) {
	b := &Book{ID: "b1", Genres: []string{"History", "Biography"}}
	assert.True(t, b.HasGenre("History"))
	assert.False(t, b.HasGenre("Fiction"))

	empty := &Book{ID: "b2"}
	assert.False(t, empty.HasGenre("History"))
}
