package categorize

import (
	"encoding/json"
	"fmt"
	"sort"

	"changelens/internal/patterns"
	"changelens/pkg/changetypes"
)

// CategorizeSections classifies every item of every section in order and post-processes the
// results. Malformed and empty sections are logged and skipped; they never abort the batch.
func (c *Categorizer) CategorizeSections(pkg string, sections changetypes.ParsedSections) *changetypes.Analysis {
	analysis := &changetypes.Analysis{
		Package: pkg,
		Results: changetypes.NewCategorizedResults(),
		Entries: make([]changetypes.Entry, 0, sections.ItemCount()),
		Scores:  make(changetypes.ConfidenceScores),
	}

	for _, section := range sections {
		switch {
		case section.Malformed:
			c.log.Warn("section is not a list of sentences, skipping", "package", pkg, "section", section.Heading)
			analysis.SkippedSections = append(analysis.SkippedSections, section.Heading)
			continue
		case len(section.Items) == 0:
			c.log.Warn("no sentences to analyze in section", "package", pkg, "section", section.Heading)
			analysis.SkippedSections = append(analysis.SkippedSections, section.Heading)
			continue
		}

		analysis.SectionSignals = append(analysis.SectionSignals, changetypes.SectionSignal{
			Heading: section.Heading,
			Matches: c.ScoreHeading(section.Heading),
		})

		for _, item := range section.Items {
			entry := changetypes.Entry{
				ID:      len(analysis.Entries),
				Section: section.Heading,
				Text:    item.Text,
				Outcome: c.Categorize(item.Text, section.Heading),
			}
			analysis.Entries = append(analysis.Entries, entry)
			analysis.Results.Append(entry.Outcome.Bucket(), entry.Text)
			if entry.Outcome.Accepted() {
				analysis.Scores[entry.ID] = entry.Outcome.Confidence
			}
		}
	}

	analysis.Results = PostProcess(analysis.Results, analysis.Entries, analysis.Scores)

	c.log.Debug("categorized release notes",
		"package", pkg,
		"sections", len(sections),
		"entries", len(analysis.Entries),
		"skipped", len(analysis.SkippedSections))
	return analysis
}

// DecodeSections decodes a { "heading": [items...] } document. Only a document that is not
// a JSON object at all is an error; malformed sections are kept and skipped later.
func DecodeSections(pkg string, data []byte) (changetypes.ParsedSections, error) {
	var sections changetypes.ParsedSections
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections for %s: %w", pkg, err)
	}
	return sections, nil
}

// AnalyzeJSON decodes a sections document and categorizes it.
func (c *Categorizer) AnalyzeJSON(pkg string, data []byte) (*changetypes.Analysis, error) {
	sections, err := DecodeSections(pkg, data)
	if err != nil {
		return nil, err
	}
	return c.CategorizeSections(pkg, sections), nil
}

// ScoreHeading scores a section heading against every category's context patterns.
// Matches are ordered by confidence, ties in category order. Used for the report's section
// overview only; sentence decisions never depend on it.
func (c *Categorizer) ScoreHeading(heading string) []changetypes.ScoredMatch {
	h := NewSentenceContext(c.normalizer, heading)
	if h.Empty() {
		return nil
	}

	var matches []changetypes.ScoredMatch
	for _, category := range changetypes.AllCategories() {
		hits := patterns.CountMatches(c.bank.Context(category), h.Normalized)
		if hits == 0 {
			continue
		}
		matches = append(matches, changetypes.ScoredMatch{
			Category:   category,
			Confidence: patterns.Confidence(patterns.WeightContext * hits),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}
