// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package models

import "strings"

// Archetype is the professional/intellectual category assigned to a
// recommender and selected by a user requesting recommendations.
// The set is closed: values outside it are rejected at the API boundary.
type Archetype string

// The full archetype enumeration. Display strings double as storage values,
// so renaming one is a data migration, not a constant edit.
const (
	ArchetypeAuthor        Archetype = "Author or Writer"
	ArchetypeEntrepreneur  Archetype = "Entrepreneur or Startup Founder"
	ArchetypeInvestor      Archetype = "Investor or Venture Capitalist"
	ArchetypeScientist     Archetype = "Scientist or Researcher"
	ArchetypeEngineer      Archetype = "Engineer or Technologist"
	ArchetypeHistorian     Archetype = "Historian, Philosopher, or Theologian"
	ArchetypeEconomist     Archetype = "Economist or Policy Analyst"
	ArchetypeArtist        Archetype = "Artist, Designer, or Architect"
	ArchetypeMusician      Archetype = "Musician or Performer"
	ArchetypeAthlete       Archetype = "Athlete or Coach"
	ArchetypeJournalist    Archetype = "Journalist or Commentator"
	ArchetypePhysician     Archetype = "Physician or Health Professional"
	ArchetypeEducator      Archetype = "Educator or Academic"
	ArchetypeExecutive     Archetype = "Executive or Business Leader"
	ArchetypePolitician    Archetype = "Politician or Public Servant"
	ArchetypeMilitary      Archetype = "Military Leader or Strategist"
	ArchetypePsychologist  Archetype = "Psychologist or Behavioral Scientist"
	ArchetypeSpiritualYogi Archetype = "Spiritual Teacher or Mindfulness Guide"
)

// Archetypes lists every valid archetype in a stable order.
// The order is what the UI renders, so keep it curated, not sorted.
var Archetypes = []Archetype{
	ArchetypeAuthor,
	ArchetypeEntrepreneur,
	ArchetypeInvestor,
	ArchetypeScientist,
	ArchetypeEngineer,
	ArchetypeHistorian,
	ArchetypeEconomist,
	ArchetypeArtist,
	ArchetypeMusician,
	ArchetypeAthlete,
	ArchetypeJournalist,
	ArchetypePhysician,
	ArchetypeEducator,
	ArchetypeExecutive,
	ArchetypePolitician,
	ArchetypeMilitary,
	ArchetypePsychologist,
	ArchetypeSpiritualYogi,
}

var archetypeSet = func() map[Archetype]struct{} {
	s := make(map[Archetype]struct{}, len(Archetypes))
	for _, a := range Archetypes {
		s[a] = struct{}{}
	}
	return s
}()

// Valid reports whether the archetype is a member of the closed set.
func (a Archetype) Valid() bool {
	_, ok := archetypeSet[a]
	return ok
}

// String returns the display form of the archetype.
func (a Archetype) String() string {
	return string(a)
}

// ParseArchetype resolves a string to an Archetype, matching
// case-insensitively. Returns false if the value is not in the set.
func ParseArchetype(s string) (Archetype, bool) {
	if a := Archetype(s); a.Valid() {
		return a, true
	}
	for _, a := range Archetypes {
		if strings.EqualFold(string(a), s) {
			return a, true
		}
	}
	return "", false
}
