package categorize

import (
	"changelens/internal/lexicon"
	"changelens/internal/patterns"
	"changelens/internal/textnorm"
	"changelens/pkg/changetypes"
)

// SentenceContext wraps one normalized sentence or heading together with its words.
// All matchers used by the scoring passes are methods on it.
type SentenceContext struct {
	Raw        string
	Normalized string
	Words      []string
}

// NewSentenceContext normalizes text for matching.
func NewSentenceContext(n *textnorm.Normalizer, text string) SentenceContext {
	normalized := n.Normalize(text)
	return SentenceContext{
		Raw:        text,
		Normalized: normalized,
		Words:      textnorm.Words(normalized),
	}
}

// Empty reports whether nothing is left after normalization.
func (s SentenceContext) Empty() bool {
	return s.Normalized == ""
}

// DetectCategory returns the category the lexicon tags indicate, if any.
func (s SentenceContext) DetectCategory(lex *lexicon.Lexicon) (changetypes.Category, bool) {
	return lex.DetectCategory(s.Words)
}

// HasCategoryTag reports whether the text carries a lexicon tag of the category.
func (s SentenceContext) HasCategoryTag(lex *lexicon.Lexicon, c changetypes.Category) bool {
	return lex.HasCategoryTag(s.Words, c)
}

// HasBreakingChange reports whether a high-precision breaking-change phrase occurs.
func (s SentenceContext) HasBreakingChange(bank *patterns.Bank) bool {
	return bank.IsBreaking(s.Normalized)
}

// MatchesHighTier reports whether any high-tier pattern of the category occurs.
func (s SentenceContext) MatchesHighTier(bank *patterns.Bank, c changetypes.Category) bool {
	return patterns.MatchesAny(bank.Tiers(c).High, s.Normalized)
}

// Points returns the weighted tier hits of the category.
func (s SentenceContext) Points(bank *patterns.Bank, c changetypes.Category) int {
	return bank.Tiers(c).Points(s.Normalized)
}
