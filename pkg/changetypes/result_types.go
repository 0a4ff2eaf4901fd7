// Package changetypes defines categorization result types for changelens.
// This file contains scored matches, per-sentence outcomes and the aggregated results.
package changetypes

// ScoredMatch is the transient result of scoring one sentence against one category.
type ScoredMatch struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // Normalized to [0,1]
}

// Outcome is the final decision for one sentence. Exactly one of the three shapes applies:
// an accepted Category, IsMiscellaneous, or Uncategorized.
type Outcome struct {
	Category        Category `json:"category,omitempty"`
	Confidence      float64  `json:"confidence"`
	IsMiscellaneous bool     `json:"isMiscellaneous,omitempty"`
	Uncategorized   bool     `json:"uncategorized,omitempty"`
}

// Accepted reports whether the outcome carries a category.
func (o Outcome) Accepted() bool {
	return !o.IsMiscellaneous && !o.Uncategorized && o.Category.IsValid()
}

// Bucket returns the results list the sentence belongs in.
func (o Outcome) Bucket() Bucket {
	switch {
	case o.Accepted():
		return CategoryBucket(o.Category)
	case o.IsMiscellaneous:
		return BucketMiscellaneous
	default:
		return BucketUncategorized
	}
}

// Entry is one occurrence of a sentence within a section. ID is assigned in processing
// order and is unique within a single Analysis.
type Entry struct {
	ID      int     `json:"id"`
	Section string  `json:"section"`
	Text    string  `json:"text"`
	Outcome Outcome `json:"outcome"`
}

// ConfidenceScores maps entry IDs to the confidence of their accepted match.
type ConfidenceScores map[int]float64

// CategorizedResults maps every bucket to its ordered sentence list.
type CategorizedResults map[Bucket][]string

// NewCategorizedResults returns results with every bucket present and empty.
func NewCategorizedResults() CategorizedResults {
	results := make(CategorizedResults, len(allCategories)+2)
	for _, b := range AllBuckets() {
		results[b] = []string{}
	}
	return results
}

// Append adds a sentence to the end of a bucket.
func (r CategorizedResults) Append(b Bucket, sentence string) {
	r[b] = append(r[b], sentence)
}

// Count returns the number of sentences in a bucket.
func (r CategorizedResults) Count(b Bucket) int {
	return len(r[b])
}

// Total returns the number of sentences across all buckets.
func (r CategorizedResults) Total() int {
	total := 0
	for _, sentences := range r {
		total += len(sentences)
	}
	return total
}

// Counts returns per-bucket sentence counts.
func (r CategorizedResults) Counts() map[Bucket]int {
	counts := make(map[Bucket]int, len(r))
	for _, b := range AllBuckets() {
		counts[b] = len(r[b])
	}
	return counts
}

// Contains reports whether a bucket holds the given sentence.
func (r CategorizedResults) Contains(b Bucket, sentence string) bool {
	for _, s := range r[b] {
		if s == sentence {
			return true
		}
	}
	return false
}

// SectionSignal records how a section heading scored against the context patterns.
type SectionSignal struct {
	Heading string        `json:"heading"`
	Matches []ScoredMatch `json:"matches,omitempty"`
}

// Analysis is the output of categorizing one package's release notes.
type Analysis struct {
	Package         string             `json:"package"`
	Results         CategorizedResults `json:"results"`
	Entries         []Entry            `json:"entries"`
	Scores          ConfidenceScores   `json:"-"`
	SectionSignals  []SectionSignal    `json:"sectionSignals,omitempty"`
	SkippedSections []string           `json:"skippedSections,omitempty"`
}

// Confidence returns the recorded confidence of the first occurrence of a sentence accepted
// into bucket.
func (a *Analysis) Confidence(bucket Bucket, sentence string) (float64, bool) {
	for _, e := range a.Entries {
		if e.Text != sentence || e.Outcome.Bucket() != bucket {
			continue
		}
		if score, ok := a.Scores[e.ID]; ok {
			return score, true
		}
	}
	return 0, false
}
