// Package textnorm normalizes release-note prose before it is matched against the lexicon
// and the pattern bank. Normalization folds Unicode compatibility forms, strips diacritics and
// markdown decoration, expands contractions and common changelog abbreviations, lowercases,
// and collapses whitespace.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuationReplacer = strings.NewReplacer(
		"‘", "'", "’", "'", "‛", "'", "′", "'",
		"“", `"`, "”", `"`, "„", `"`,
		"–", "-", "—", " - ", "−", "-",
		"…", "...",
	)

	markdownLink   = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	markdownEmph   = regexp.MustCompile(`(\*\*|__|~~|\x60+)`)
	listMarker     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	checkbox       = regexp.MustCompile(`^\[[ xX]\]\s+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)

	contractions = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`\bcan't\b`), "cannot"},
		{regexp.MustCompile(`\bwon't\b`), "will not"},
		{regexp.MustCompile(`\bshan't\b`), "shall not"},
		{regexp.MustCompile(`\b(it|that|there|here|what|who|this)'s\b`), "$1 is"},
		{regexp.MustCompile(`\b(\w+)n't\b`), "$1 not"},
		{regexp.MustCompile(`\b(\w+)'re\b`), "$1 are"},
		{regexp.MustCompile(`\b(\w+)'ll\b`), "$1 will"},
		{regexp.MustCompile(`\b(\w+)'ve\b`), "$1 have"},
		{regexp.MustCompile(`\b(\w+)'d\b`), "$1 would"},
		{regexp.MustCompile(`\bi'm\b`), "i am"},
	}

	abbreviations = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`\bw/o\b`), "without"},
		{regexp.MustCompile(`\bw/`), "with "},
		{regexp.MustCompile(`\be\.g\.`), "for example"},
		{regexp.MustCompile(`\bi\.e\.`), "that is"},
		{regexp.MustCompile(`\bperf\b`), "performance"},
		{regexp.MustCompile(`\bdeps\b`), "dependencies"},
		{regexp.MustCompile(`\bdep\b`), "dependency"},
		{regexp.MustCompile(`\bconfig\b`), "configuration"},
		{regexp.MustCompile(`\bimpl\b`), "implementation"},
		{regexp.MustCompile(`\bbackward compat\b`), "backwards compatibility"},
		{regexp.MustCompile(`\bdeprec\b`), "deprecated"},
		{regexp.MustCompile(`\bvuln\b`), "vulnerability"},
		{regexp.MustCompile(`\bvulns\b`), "vulnerabilities"},
	}
)

// Normalizer is safe for concurrent use; it holds only read-only state.
type Normalizer struct {
	lang language.Tag
}

// New creates a Normalizer for English release notes.
func New() *Normalizer {
	return &Normalizer{lang: language.English}
}

// Normalize returns the canonical form of a sentence used for matching.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	s := foldUnicode(text)
	s = punctuationReplacer.Replace(s)
	s = StripMarkdown(s)
	// cases.Caser keeps state between calls, so each call gets its own.
	s = cases.Lower(n.lang).String(s)

	for _, c := range contractions {
		s = c.pattern.ReplaceAllString(s, c.replacement)
	}
	for _, a := range abbreviations {
		s = a.pattern.ReplaceAllString(s, a.replacement)
	}

	return collapse(s)
}

// StripMarkdown removes inline markdown decoration and list markers but keeps the words.
func StripMarkdown(text string) string {
	s := markdownLink.ReplaceAllString(text, "$1")
	s = markdownEmph.ReplaceAllString(s, "")
	s = listMarker.ReplaceAllString(s, "")
	s = checkbox.ReplaceAllString(s, "")
	return s
}

// Words returns only the alphabetic tokens of normalized text, used for lexicon lookups
// where identifiers like "parse()" or "v2.0.0" carry no tag.
func Words(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func foldUnicode(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return norm.NFKC.String(text)
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}
