// Package tfidf ranks the salient terms of a package's release notes. Each section is one
// document; a term scores the maximum tf-idf it reaches in any section.
package tfidf

import (
	"math"
	"sort"
	"unicode/utf8"

	"changelens/internal/textnorm"
	"changelens/pkg/changetypes"
)

const minTermLength = 3

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "but": true, "with": true, "from": true,
	"was": true, "are": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "can": true, "cannot": true, "this": true,
	"that": true, "these": true, "those": true, "you": true, "your": true, "she": true,
	"they": true, "them": true, "what": true, "which": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "not": true, "now": true, "also": true,
	"into": true, "its": true, "our": true, "all": true, "any": true, "some": true,
	"more": true, "than": true, "then": true, "there": true, "here": true, "only": true,
	"use": true, "used": true, "using": true, "via": true, "about": true, "out": true,
}

// Terms returns the normalized, stopword-free terms of a text.
func Terms(n *textnorm.Normalizer, text string) []string {
	words := textnorm.Words(n.Normalize(text))
	terms := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTermLength || stopwords[w] {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// Rank returns up to limit terms ordered by score, ties alphabetically. A limit of zero or
// less returns every term. Sections without terms still count as documents.
func Rank(sections changetypes.ParsedSections, limit int) []changetypes.RankedTerm {
	if len(sections) == 0 {
		return nil
	}

	n := textnorm.New()
	docs := make([]map[string]int, len(sections))
	lengths := make([]int, len(sections))
	df := make(map[string]int)

	for i, section := range sections {
		counts := make(map[string]int)
		for _, item := range section.Items {
			for _, term := range Terms(n, item.Text) {
				counts[term]++
				lengths[i]++
			}
		}
		for term := range counts {
			df[term]++
		}
		docs[i] = counts
	}

	total := float64(len(sections))
	best := make(map[string]float64, len(df))
	for i, counts := range docs {
		for term, count := range counts {
			tf := float64(count) / float64(lengths[i])
			idf := math.Log((1+total)/(1+float64(df[term]))) + 1
			if score := tf * idf; score > best[term] {
				best[term] = score
			}
		}
	}

	ranked := make([]changetypes.RankedTerm, 0, len(best))
	for term, score := range best {
		ranked = append(ranked, changetypes.RankedTerm{Term: term, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Term < ranked[j].Term
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
