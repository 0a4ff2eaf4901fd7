package changetypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoryOrder pins the enumeration order that tie-breaking and deduplication rely on
func TestCategoryOrder(t *testing.T) {
	expected := []Category{
		"breaking_change", "feature", "fix", "deprecation", "security",
		"documentation", "performance", "refactor", "chore",
	}
	assert.Equal(t, expected, AllCategories())

	buckets := AllBuckets()
	require.Len(t, buckets, 11)
	assert.Equal(t, Bucket("breaking_change"), buckets[0])
	assert.Equal(t, BucketMiscellaneous, buckets[9])
	assert.Equal(t, BucketUncategorized, buckets[10])

	t.Run("AllCategories returns a copy", func(t *testing.T) {
		cats := AllCategories()
		cats[0] = "mutated"
		assert.Equal(t, CategoryBreakingChange, AllCategories()[0])
	})
}

func TestCategory_IsValidAndParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		valid    bool
	}{
		{"breaking_change", CategoryBreakingChange, true},
		{"Breaking-Change", CategoryBreakingChange, true},
		{" security ", CategorySecurity, true},
		{"miscellaneous", "miscellaneous", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.expected, c)
		})
	}

	assert.Equal(t, "Breaking Changes", CategoryBreakingChange.Title())
	assert.Equal(t, "Miscellaneous", BucketMiscellaneous.Title())
}

func TestTierWeights(t *testing.T) {
	assert.Equal(t, 10, TierHigh.Weight())
	assert.Equal(t, 5, TierMedium.Weight())
	assert.Equal(t, 2, TierLow.Weight())
	assert.Equal(t, 0, Tier("other").Weight())
}

func TestOutcome_Bucket(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		expected Bucket
	}{
		{"accepted", Outcome{Category: CategoryFix, Confidence: 0.8}, Bucket("fix")},
		{"miscellaneous", Outcome{IsMiscellaneous: true, Confidence: 0.3}, BucketMiscellaneous},
		{"uncategorized", Outcome{Uncategorized: true}, BucketUncategorized},
		{"zero value", Outcome{}, BucketUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.Bucket())
		})
	}
}

func TestCategorizedResults(t *testing.T) {
	results := NewCategorizedResults()
	for _, b := range AllBuckets() {
		sentences, ok := results[b]
		assert.True(t, ok, "bucket %s should be present", b)
		assert.Empty(t, sentences)
	}

	results.Append(Bucket("fix"), "Fixed a crash.")
	results.Append(BucketMiscellaneous, "Misc.")
	assert.Equal(t, 2, results.Total())
	assert.Equal(t, 1, results.Count(Bucket("fix")))
	assert.True(t, results.Contains(Bucket("fix"), "Fixed a crash."))
	assert.False(t, results.Contains(Bucket("feature"), "Fixed a crash."))
	assert.Equal(t, 1, results.Counts()[BucketMiscellaneous])
}

func TestAnalysis_Confidence(t *testing.T) {
	security := Outcome{Category: CategorySecurity, Confidence: 0.6}
	fix := Outcome{Category: CategoryFix, Confidence: 0.9}
	a := &Analysis{
		Entries: []Entry{
			{ID: 0, Text: "same", Outcome: security},
			{ID: 1, Text: "same", Outcome: fix},
			{ID: 2, Text: "other", Outcome: fix},
			{ID: 3, Text: "same", Outcome: fix},
		},
		Scores: ConfidenceScores{0: 0.6, 1: 0.9, 3: 0.7},
	}

	score, ok := a.Confidence(CategoryBucket(CategoryFix), "same")
	require.True(t, ok)
	assert.Equal(t, 0.9, score, "the first occurrence in the requested bucket wins")

	score, ok = a.Confidence(CategoryBucket(CategorySecurity), "same")
	require.True(t, ok)
	assert.Equal(t, 0.6, score)

	_, ok = a.Confidence(CategoryBucket(CategoryFeature), "same")
	assert.False(t, ok)

	_, ok = a.Confidence(CategoryBucket(CategoryFix), "other")
	assert.False(t, ok, "no recorded score")
}

func TestParsedSections_UnmarshalJSON(t *testing.T) {
	t.Run("mixed item representations keep order", func(t *testing.T) {
		input := `{
			"Fixes": ["Fixed a null pointer bug", {"text": "Fixed a leak"}],
			"Notes": [],
			"Broken": "not a list",
			"Odd": [{"title": "no text"}, 42, null, {"text": 7}]
		}`

		var sections ParsedSections
		require.NoError(t, json.Unmarshal([]byte(input), &sections))
		require.Len(t, sections, 4)

		assert.Equal(t, []string{"Fixes", "Notes", "Broken", "Odd"}, sections.Headings())
		assert.Equal(t, []string{"Fixed a null pointer bug", "Fixed a leak"}, sections[0].Texts())
		assert.Empty(t, sections[1].Items)
		assert.False(t, sections[1].Malformed)
		assert.True(t, sections[2].Malformed)
		assert.Equal(t, []string{"", "", "", ""}, sections[3].Texts())
	})

	t.Run("top level must be an object", func(t *testing.T) {
		var sections ParsedSections
		err := json.Unmarshal([]byte(`["a", "b"]`), &sections)
		assert.ErrorIs(t, err, ErrSectionsShape)
	})

	t.Run("marshal round trip preserves order", func(t *testing.T) {
		var sections ParsedSections
		sections.Add("Zeta", "last letter")
		sections.Add("Alpha", "first letter", "second")

		data, err := json.Marshal(sections)
		require.NoError(t, err)
		assert.Equal(t, `{"Zeta":["last letter"],"Alpha":["first letter","second"]}`, string(data))
		assert.Equal(t, 3, sections.ItemCount())
	})
}

func TestLevel(t *testing.T) {
	assert.Greater(t, LevelMajor.Rank(), LevelMinor.Rank())
	assert.Greater(t, LevelMinor.Rank(), LevelPatch.Rank())
	assert.Greater(t, LevelPatch.Rank(), LevelNone.Rank())
	assert.True(t, LevelMinor.IsValid())
	assert.False(t, Level("huge").IsValid())
}

func TestPackageReport_HasBreakingChanges(t *testing.T) {
	report := PackageReport{}
	assert.False(t, report.HasBreakingChanges())

	results := NewCategorizedResults()
	results.Append(CategoryBucket(CategoryBreakingChange), "Dropped Node 14.")
	report.Analysis = &Analysis{Results: results}
	assert.True(t, report.HasBreakingChanges())
}
