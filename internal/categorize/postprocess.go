package categorize

import "changelens/pkg/changetypes"

// PostProcess applies the two cleanup passes to batch results and returns new results:
//
//  1. every breaking_change occurrence whose recorded confidence is below
//     BreakingRecheckThreshold moves to the end of miscellaneous
//  2. sentences are deduplicated by text across all buckets in AllBuckets order; the first
//     occurrence wins
//
// entries and scores must come from the same batch as results. The n-th breaking_change
// entry corresponds to the n-th sentence of the breaking_change bucket.
func PostProcess(results changetypes.CategorizedResults, entries []changetypes.Entry, scores changetypes.ConfidenceScores) changetypes.CategorizedResults {
	breakingBucket := changetypes.CategoryBucket(changetypes.CategoryBreakingChange)

	staged := changetypes.NewCategorizedResults()
	for b, sentences := range results {
		staged[b] = append([]string{}, sentences...)
	}

	breaking := staged[breakingBucket]
	kept := make([]string, 0, len(breaking))
	i := 0
	for _, e := range entries {
		if e.Outcome.Bucket() != breakingBucket {
			continue
		}
		if i >= len(breaking) {
			break
		}
		if score, ok := scores[e.ID]; ok && score < BreakingRecheckThreshold {
			staged.Append(changetypes.BucketMiscellaneous, breaking[i])
		} else {
			kept = append(kept, breaking[i])
		}
		i++
	}
	staged[breakingBucket] = append(kept, breaking[i:]...)

	return Deduplicate(staged)
}

// Deduplicate keeps only the first occurrence of each sentence, scanning buckets in
// AllBuckets order.
func Deduplicate(results changetypes.CategorizedResults) changetypes.CategorizedResults {
	out := changetypes.NewCategorizedResults()
	seen := make(map[string]bool)
	for _, b := range changetypes.AllBuckets() {
		for _, sentence := range results[b] {
			if seen[sentence] {
				continue
			}
			seen[sentence] = true
			out.Append(b, sentence)
		}
	}
	return out
}
