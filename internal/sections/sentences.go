package sections

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence.
var abbreviations = map[string]bool{
	"e.g":    true,
	"i.e":    true,
	"etc":    true,
	"vs":     true,
	"cf":     true,
	"approx": true,
	"incl":   true,
	"resp":   true,
}

// SplitSentences splits prose at '.', '!' or '?' followed by whitespace and an upper-case
// letter, digit or quote. Version numbers and common abbreviations stay intact.
func SplitSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	runes := []rune(s)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		end := i + 1
		for end < len(runes) && strings.ContainsRune(`"')]`, runes[end]) {
			end++
		}
		if end >= len(runes) || !unicode.IsSpace(runes[end]) {
			continue
		}

		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next >= len(runes) || !startsSentence(runes[next]) {
			continue
		}
		if r == '.' && endsWithAbbreviation(runes[start:i]) {
			continue
		}

		out = append(out, strings.TrimSpace(string(runes[start:end])))
		start = next
		i = next - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func startsSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '`' || r == '\''
}

func endsWithAbbreviation(prefix []rune) bool {
	word := string(prefix)
	if idx := strings.LastIndexFunc(word, unicode.IsSpace); idx >= 0 {
		word = word[idx+1:]
	}
	word = strings.ToLower(strings.TrimLeft(word, `("'`))
	return abbreviations[word]
}
