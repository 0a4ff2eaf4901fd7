// Package changetypes defines the shared types of changelens.
// This file contains the change categories, result buckets and pattern tiers.
package changetypes

import "strings"

// Category is one of the nine fixed change-type labels a sentence can be assigned to.
type Category string

const (
	// CategoryBreakingChange represents changes that require consumers to modify their code
	CategoryBreakingChange Category = "breaking_change"

	// CategoryFeature represents new functionality
	CategoryFeature Category = "feature"

	// CategoryFix represents bug fixes
	CategoryFix Category = "fix"

	// CategoryDeprecation represents APIs scheduled for removal
	CategoryDeprecation Category = "deprecation"

	// CategorySecurity represents vulnerability fixes and hardening
	CategorySecurity Category = "security"

	// CategoryDocumentation represents documentation-only changes
	CategoryDocumentation Category = "documentation"

	// CategoryPerformance represents speed and memory improvements
	CategoryPerformance Category = "performance"

	// CategoryRefactor represents internal restructuring without behavior change
	CategoryRefactor Category = "refactor"

	// CategoryChore represents build, CI, tooling and dependency maintenance
	CategoryChore Category = "chore"
)

// allCategories is the fixed enumeration order. Scoring ties and deduplication depend on it.
var allCategories = []Category{
	CategoryBreakingChange,
	CategoryFeature,
	CategoryFix,
	CategoryDeprecation,
	CategorySecurity,
	CategoryDocumentation,
	CategoryPerformance,
	CategoryRefactor,
	CategoryChore,
}

var categoryTitles = map[Category]string{
	CategoryBreakingChange: "Breaking Changes",
	CategoryFeature:        "Features",
	CategoryFix:            "Fixes",
	CategoryDeprecation:    "Deprecations",
	CategorySecurity:       "Security",
	CategoryDocumentation:  "Documentation",
	CategoryPerformance:    "Performance",
	CategoryRefactor:       "Refactoring",
	CategoryChore:          "Chores",
}

// AllCategories returns the categories in their fixed enumeration order.
// The returned slice is a copy and may be modified by the caller.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if a category is one of the nine known categories.
func (c Category) IsValid() bool {
	_, ok := categoryTitles[c]
	return ok
}

// Title returns the human readable heading used in reports.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// ParseCategory converts a category name such as "breaking_change" or "Breaking-Change".
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	c := Category(normalized)
	return c, c.IsValid()
}

// Bucket is a result list key: a Category or one of the two synthetic buckets.
type Bucket string

const (
	// BucketMiscellaneous holds sentences with some signal that was too weak to commit to a label
	BucketMiscellaneous Bucket = "miscellaneous"

	// BucketUncategorized holds sentences without any meaningful signal
	BucketUncategorized Bucket = "uncategorized"
)

// CategoryBucket returns the bucket holding sentences accepted for a category.
func CategoryBucket(c Category) Bucket {
	return Bucket(c)
}

// AllBuckets returns every result key in results order: the nine categories followed by
// miscellaneous and uncategorized.
func AllBuckets() []Bucket {
	out := make([]Bucket, 0, len(allCategories)+2)
	for _, c := range allCategories {
		out = append(out, Bucket(c))
	}
	return append(out, BucketMiscellaneous, BucketUncategorized)
}

// Category returns the category behind a bucket, if any.
func (b Bucket) Category() (Category, bool) {
	c := Category(b)
	return c, c.IsValid()
}

// Title returns the heading used for the bucket in reports.
func (b Bucket) Title() string {
	switch b {
	case BucketMiscellaneous:
		return "Miscellaneous"
	case BucketUncategorized:
		return "Uncategorized"
	}
	return Category(b).Title()
}

// Tier is a pattern confidence class.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// AllTiers returns the tiers from strongest to weakest.
func AllTiers() []Tier {
	return []Tier{TierHigh, TierMedium, TierLow}
}

// Weight returns the points a single pattern hit in this tier contributes.
func (t Tier) Weight() int {
	switch t {
	case TierHigh:
		return 10
	case TierMedium:
		return 5
	case TierLow:
		return 2
	default:
		return 0
	}
}
