// Package patterns holds the tiered regular-expression bank used to score release-note
// sentences. The bank is compiled once from the embedded patterns table; a pattern that does
// not compile is a construction error, never a runtime condition.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"changelens/internal/data/embedded"
	"changelens/pkg/changetypes"
)

// Scoring weights. Tier weights come from changetypes.Tier.Weight. A category's confidence is
// min(points/ScoreDivisor, 1).
const (
	WeightHeadingBonus = 3
	WeightContext      = 5
	ScoreDivisor       = 15
)

// CategoryPatternSet is the three-tier pattern set of one category.
type CategoryPatternSet struct {
	High   []*regexp.Regexp
	Medium []*regexp.Regexp
	Low    []*regexp.Regexp
}

// Tier returns the patterns of one tier.
func (s CategoryPatternSet) Tier(t changetypes.Tier) []*regexp.Regexp {
	switch t {
	case changetypes.TierHigh:
		return s.High
	case changetypes.TierMedium:
		return s.Medium
	case changetypes.TierLow:
		return s.Low
	}
	return nil
}

// Points returns the weighted number of pattern hits in text.
func (s CategoryPatternSet) Points(text string) int {
	points := 0
	for _, tier := range changetypes.AllTiers() {
		points += tier.Weight() * CountMatches(s.Tier(tier), text)
	}
	return points
}

// Len returns the number of patterns over all tiers.
func (s CategoryPatternSet) Len() int {
	return len(s.High) + len(s.Medium) + len(s.Low)
}

// MatchesAny reports whether any pattern occurs anywhere in text.
func MatchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// CountMatches returns how many of the patterns occur in text. Each pattern counts once.
func CountMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

// Confidence converts points into a confidence in [0, 1].
func Confidence(points int) float64 {
	if points <= 0 {
		return 0
	}
	c := float64(points) / ScoreDivisor
	if c > 1 {
		return 1
	}
	return c
}

type categoryTable struct {
	High            []string `yaml:"high"`
	Medium          []string `yaml:"medium"`
	Low             []string `yaml:"low"`
	Context         []string `yaml:"context"`
	HeadingKeywords []string `yaml:"heading_keywords"`
}

type table struct {
	Version          int                      `yaml:"version"`
	Categories       map[string]categoryTable `yaml:"categories"`
	BreakingDetector []string                 `yaml:"breaking_detector"`
}

// Bank is the compiled, read-only pattern bank.
type Bank struct {
	version  int
	tiers    map[changetypes.Category]CategoryPatternSet
	context  map[changetypes.Category][]*regexp.Regexp
	keywords map[changetypes.Category][]*regexp.Regexp
	breaking []*regexp.Regexp
}

// New compiles a patterns table. Every category must be present with at least one pattern.
func New(data []byte) (*Bank, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse patterns YAML: %w", err)
	}

	b := &Bank{
		version:  t.Version,
		tiers:    make(map[changetypes.Category]CategoryPatternSet),
		context:  make(map[changetypes.Category][]*regexp.Regexp),
		keywords: make(map[changetypes.Category][]*regexp.Regexp),
	}

	for name, ct := range t.Categories {
		category, ok := changetypes.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("patterns declare unknown category %q", name)
		}

		var set CategoryPatternSet
		var err error
		if set.High, err = compileAll(ct.High); err != nil {
			return nil, fmt.Errorf("%s high tier: %w", category, err)
		}
		if set.Medium, err = compileAll(ct.Medium); err != nil {
			return nil, fmt.Errorf("%s medium tier: %w", category, err)
		}
		if set.Low, err = compileAll(ct.Low); err != nil {
			return nil, fmt.Errorf("%s low tier: %w", category, err)
		}
		if set.Len() == 0 {
			return nil, fmt.Errorf("category %s has no patterns", category)
		}
		b.tiers[category] = set

		if b.context[category], err = compileAll(ct.Context); err != nil {
			return nil, fmt.Errorf("%s context: %w", category, err)
		}
		if b.keywords[category], err = compileKeywords(ct.HeadingKeywords); err != nil {
			return nil, fmt.Errorf("%s heading keywords: %w", category, err)
		}
	}

	for _, category := range changetypes.AllCategories() {
		if _, ok := b.tiers[category]; !ok {
			return nil, fmt.Errorf("patterns are missing category %s", category)
		}
	}

	var err error
	if b.breaking, err = compileAll(t.BreakingDetector); err != nil {
		return nil, fmt.Errorf("breaking detector: %w", err)
	}
	if len(b.breaking) == 0 {
		return nil, fmt.Errorf("breaking detector has no patterns")
	}

	return b, nil
}

var loadDefault = sync.OnceValues(func() (*Bank, error) {
	data, err := embedded.LoadTable(embedded.PatternsTable)
	if err != nil {
		return nil, err
	}
	return New(data)
})

// Default returns the bank compiled from the embedded table. It is compiled once per process.
func Default() (*Bank, error) {
	return loadDefault()
}

// Version returns the table version the bank was built from.
func (b *Bank) Version() int {
	return b.version
}

// Tiers returns the tiered sentence patterns of a category.
func (b *Bank) Tiers(c changetypes.Category) CategoryPatternSet {
	return b.tiers[c]
}

// Context returns the heading context patterns of a category.
func (b *Bank) Context(c changetypes.Category) []*regexp.Regexp {
	return b.context[c]
}

// HeadingKeywordMatch reports whether a word of the heading starts with one of the category's
// heading keywords. Keywords shorter than three characters must match a whole word.
func (b *Bank) HeadingKeywordMatch(c changetypes.Category, heading string) bool {
	if strings.TrimSpace(heading) == "" {
		return false
	}
	return MatchesAny(b.keywords[c], strings.ToLower(heading))
}

// IsBreaking reports whether one of the high-precision breaking-change phrases occurs in text.
func (b *Bank) IsBreaking(text string) bool {
	return MatchesAny(b.breaking, text)
}

func compileAll(sources []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", src, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func compileKeywords(keywords []string) ([]*regexp.Regexp, error) {
	sources := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return nil, fmt.Errorf("empty heading keyword")
		}
		src := `\b` + regexp.QuoteMeta(kw)
		if len(kw) < 3 {
			src += `\b`
		}
		sources = append(sources, src)
	}
	return compileAll(sources)
}
