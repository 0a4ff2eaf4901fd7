// Package categorize assigns release-note sentences to change categories.
//
// A sentence is scored in several passes, each of which may replace the current best match:
//
//  1. lexicon tags in the sentence (0.8)
//  2. the section heading: tags alone (0.4) or agreeing with the sentence (+0.2), and
//     high-tier patterns on the heading (+0.15 for the same category, 0.35 as a seed)
//  3. weighted pattern hits per category, min(points/15, 1), strictly greater wins
//  4. the breaking-change detector, which forces breaking_change at 0.9
//
// The result is accepted at 0.5 or above, kept as miscellaneous above 0.2 and left
// uncategorized otherwise. Batch results are then post-processed: weak breaking changes are
// demoted and duplicate sentences removed.
package categorize

import (
	"github.com/charmbracelet/log"

	"changelens/internal/lexicon"
	"changelens/internal/logger"
	"changelens/internal/patterns"
	"changelens/internal/textnorm"
	"changelens/pkg/changetypes"
)

// Confidence values and thresholds of the scoring passes.
const (
	TagConfidence              = 0.8
	HeadingConfidence          = 0.4
	HeadingAgreementBoost      = 0.2
	HeadingPatternBoost        = 0.15
	HeadingPatternSeed         = 0.35
	BreakingOverrideConfidence = 0.9
	AcceptThreshold            = 0.5
	MiscellaneousThreshold     = 0.2
	BreakingRecheckThreshold   = 0.7
)

// Categorizer scores sentences against a lexicon and a pattern bank. It holds no mutable
// state and is safe for concurrent use.
type Categorizer struct {
	lexicon    *lexicon.Lexicon
	bank       *patterns.Bank
	normalizer *textnorm.Normalizer
	log        *log.Logger
}

// New creates a Categorizer. A nil logger discards diagnostics.
func New(lex *lexicon.Lexicon, bank *patterns.Bank, l *log.Logger) *Categorizer {
	if l == nil {
		l = logger.Discard()
	}
	return &Categorizer{
		lexicon:    lex,
		bank:       bank,
		normalizer: textnorm.New(),
		log:        l,
	}
}

// NewDefault creates a Categorizer over the embedded lexicon and pattern tables.
func NewDefault(l *log.Logger) (*Categorizer, error) {
	lex, err := lexicon.Default()
	if err != nil {
		return nil, err
	}
	bank, err := patterns.Default()
	if err != nil {
		return nil, err
	}
	c := New(lex, bank, l)
	c.log.Debug("classification tables loaded",
		"lexicon_version", lex.Version(),
		"lexicon_terms", lex.Size(),
		"patterns_version", bank.Version())
	return c, nil
}

// Categorize classifies one sentence found under the given section heading.
func (c *Categorizer) Categorize(sentence, heading string) changetypes.Outcome {
	match, matched := c.Score(sentence, heading)
	outcome := Decide(match, matched)
	c.log.Debug("categorized sentence",
		"section", heading,
		"bucket", outcome.Bucket(),
		"confidence", outcome.Confidence)
	return outcome
}

// Score runs the scoring passes and returns the best match before the acceptance decision.
// The boolean is false when no pass produced a candidate.
func (c *Categorizer) Score(sentence, heading string) (changetypes.ScoredMatch, bool) {
	s := NewSentenceContext(c.normalizer, sentence)
	if s.Empty() {
		return changetypes.ScoredMatch{}, false
	}
	h := NewSentenceContext(c.normalizer, heading)

	var best changetypes.ScoredMatch
	matched := false

	if category, ok := s.DetectCategory(c.lexicon); ok {
		best = changetypes.ScoredMatch{Category: category, Confidence: TagConfidence}
		matched = true
	}

	if !h.Empty() {
		if category, ok := h.DetectCategory(c.lexicon); ok {
			switch {
			case !matched:
				best = changetypes.ScoredMatch{Category: category, Confidence: HeadingConfidence}
				matched = true
			case best.Category == category:
				best.Confidence = capConfidence(best.Confidence + HeadingAgreementBoost)
			}
		}

		for _, category := range changetypes.AllCategories() {
			if !h.MatchesHighTier(c.bank, category) {
				continue
			}
			switch {
			case !matched:
				best = changetypes.ScoredMatch{Category: category, Confidence: HeadingPatternSeed}
				matched = true
			case best.Category == category:
				best.Confidence = capConfidence(best.Confidence + HeadingPatternBoost)
			}
		}
	}

	for _, category := range changetypes.AllCategories() {
		points := s.Points(c.bank, category)
		if c.headingBonus(h, category) {
			points += patterns.WeightHeadingBonus
		}
		if confidence := patterns.Confidence(points); confidence > best.Confidence {
			best = changetypes.ScoredMatch{Category: category, Confidence: confidence}
			matched = true
		}
	}

	if s.HasBreakingChange(c.bank) && best.Confidence < BreakingOverrideConfidence {
		best = changetypes.ScoredMatch{Category: changetypes.CategoryBreakingChange, Confidence: BreakingOverrideConfidence}
		matched = true
	}

	return best, matched
}

func (c *Categorizer) headingBonus(h SentenceContext, category changetypes.Category) bool {
	if h.Empty() {
		return false
	}
	return c.bank.HeadingKeywordMatch(category, h.Normalized) || h.HasCategoryTag(c.lexicon, category)
}

// Decide turns a scored match into an outcome: accepted at AcceptThreshold or above,
// miscellaneous above MiscellaneousThreshold, uncategorized otherwise.
func Decide(match changetypes.ScoredMatch, matched bool) changetypes.Outcome {
	switch {
	case !matched || match.Confidence <= MiscellaneousThreshold:
		return changetypes.Outcome{Confidence: match.Confidence, Uncategorized: true}
	case match.Confidence >= AcceptThreshold:
		return changetypes.Outcome{Category: match.Category, Confidence: match.Confidence}
	default:
		return changetypes.Outcome{Confidence: match.Confidence, IsMiscellaneous: true}
	}
}

func capConfidence(c float64) float64 {
	if c > 1 {
		return 1
	}
	return c
}
