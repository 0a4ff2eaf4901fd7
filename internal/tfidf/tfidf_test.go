package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changelens/internal/textnorm"
	"changelens/pkg/changetypes"
)

func TestTerms(t *testing.T) {
	n := textnorm.New()
	assert.Equal(t, []string{"fixed", "parser", "crash", "configuration"}, Terms(n, "Fixed the parser crash in config"))
	assert.Empty(t, Terms(n, "to be or not"))
}

func TestRank_Ordering(t *testing.T) {
	var sections changetypes.ParsedSections
	sections.Add("Features", "parser parser cache")
	sections.Add("Chores", "cache cleanup")

	ranked := Rank(sections, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"parser", "cleanup", "cache"}, []string{ranked[0].Term, ranked[1].Term, ranked[2].Term})

	idfRare := math.Log(3.0/2.0) + 1
	assert.InDelta(t, 2.0/3.0*idfRare, ranked[0].Score, 1e-9)
	assert.InDelta(t, 0.5*idfRare, ranked[1].Score, 1e-9)
	assert.InDelta(t, 0.5, ranked[2].Score, 1e-9)
}

func TestRank_TiesAreAlphabetical(t *testing.T) {
	var sections changetypes.ParsedSections
	sections.Add("B", "zebra")
	sections.Add("A", "alpha")

	ranked := Rank(sections, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "alpha", ranked[0].Term)
	assert.Equal(t, "zebra", ranked[1].Term)
}

func TestRank_Limit(t *testing.T) {
	var sections changetypes.ParsedSections
	sections.Add("Fixes", "parser crash resolved", "router memory leak")

	assert.Len(t, Rank(sections, 2), 2)
	assert.Len(t, Rank(sections, 0), 6)
	assert.Nil(t, Rank(nil, 5))
}

func TestRank_EmptySections(t *testing.T) {
	sections := changetypes.ParsedSections{{Heading: "Notes"}, {Heading: "Broken", Malformed: true}}
	assert.Empty(t, Rank(sections, 10))
}
