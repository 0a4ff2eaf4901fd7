// Package lexicon maps release-note words and phrases to semantic tags and answers which
// change category a token sequence indicates. A Lexicon is built once from the embedded
// lexicon table and is read-only afterwards, so one value can be shared by any number of
// goroutines.
package lexicon

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"changelens/internal/data/embedded"
	"changelens/pkg/changetypes"
)

// maxPhraseWords bounds the n-gram length considered for phrase lookups.
const maxPhraseWords = 3

// Tag is a semantic label such as BreakingChange or FixVerb.
type Tag string

// TagSet is the set of tags present in a token sequence.
type TagSet map[Tag]struct{}

// Has reports whether the set contains the tag.
func (s TagSet) Has(t Tag) bool {
	_, ok := s[t]
	return ok
}

// table is the YAML layout of the lexicon.
type table struct {
	Version    int                     `yaml:"version"`
	Categories map[string]categoryTags `yaml:"categories"`
	Hierarchy  map[string]string       `yaml:"hierarchy"`
	Words      map[string][]string     `yaml:"words"`
	Phrases    map[string][]string     `yaml:"phrases"`
}

type categoryTags struct {
	Primary []string `yaml:"primary"`
	Verbs   []string `yaml:"verbs"`
}

// Lexicon is an immutable word/phrase to tag dictionary with an is-a hierarchy.
type Lexicon struct {
	version int
	parents map[Tag]Tag
	words   map[string][]Tag
	phrases map[string][]Tag
	primary map[changetypes.Category][]Tag
	verbs   map[changetypes.Category][]Tag
}

// New parses a lexicon table. Every category must be declared, every category must own at
// least one primary tag and the hierarchy must be free of cycles.
func New(data []byte) (*Lexicon, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon YAML: %w", err)
	}

	l := &Lexicon{
		version: t.Version,
		parents: make(map[Tag]Tag, len(t.Hierarchy)),
		words:   make(map[string][]Tag, len(t.Words)),
		phrases: make(map[string][]Tag, len(t.Phrases)),
		primary: make(map[changetypes.Category][]Tag),
		verbs:   make(map[changetypes.Category][]Tag),
	}

	for child, parent := range t.Hierarchy {
		l.parents[Tag(child)] = Tag(parent)
	}
	if err := l.checkHierarchy(); err != nil {
		return nil, err
	}

	for name, tags := range t.Categories {
		category, ok := changetypes.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("lexicon declares unknown category %q", name)
		}
		if len(tags.Primary) == 0 {
			return nil, fmt.Errorf("lexicon category %s has no primary tags", category)
		}
		l.primary[category] = toTags(tags.Primary)
		l.verbs[category] = toTags(tags.Verbs)
	}
	for _, category := range changetypes.AllCategories() {
		if _, ok := l.primary[category]; !ok {
			return nil, fmt.Errorf("lexicon is missing category %s", category)
		}
	}

	for word, tags := range t.Words {
		l.words[strings.ToLower(word)] = l.expand(toTags(tags))
	}
	for phrase, tags := range t.Phrases {
		key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if n := len(strings.Fields(key)); n < 2 || n > maxPhraseWords {
			return nil, fmt.Errorf("lexicon phrase %q must have 2 to %d words", phrase, maxPhraseWords)
		}
		l.phrases[key] = l.expand(toTags(tags))
	}

	return l, nil
}

var loadDefault = sync.OnceValues(func() (*Lexicon, error) {
	data, err := embedded.LoadTable(embedded.LexiconTable)
	if err != nil {
		return nil, err
	}
	return New(data)
})

// Default returns the lexicon built from the embedded table. It is parsed once per process.
func Default() (*Lexicon, error) {
	return loadDefault()
}

// Version returns the table version the lexicon was built from.
func (l *Lexicon) Version() int {
	return l.version
}

// Size returns the number of words and phrases in the lexicon.
func (l *Lexicon) Size() int {
	return len(l.words) + len(l.phrases)
}

// Tags returns every tag carried by the words, including 2 and 3 word phrases, expanded
// through the hierarchy. Unknown words carry no tag.
func (l *Lexicon) Tags(words []string) TagSet {
	set := make(TagSet)
	for i := range words {
		l.addTagsAt(set, words, i)
	}
	return set
}

// IsA reports whether tag equals ancestor or descends from it.
func (l *Lexicon) IsA(tag, ancestor Tag) bool {
	for current, depth := tag, 0; depth <= len(l.parents); depth++ {
		if current == ancestor {
			return true
		}
		parent, ok := l.parents[current]
		if !ok {
			return false
		}
		current = parent
	}
	return false
}

// DetectCategory returns the first category, in enumeration order, indicated by the words.
// A category is indicated by one of its primary tags anywhere, or by one of its verb tags on
// the leading word, the way changelog items open with "Fixed ..." or "Removed ...".
func (l *Lexicon) DetectCategory(words []string) (changetypes.Category, bool) {
	if len(words) == 0 {
		return "", false
	}

	all := l.Tags(words)
	lead := l.leadingTags(words)
	for _, category := range changetypes.AllCategories() {
		if l.indicates(category, all, lead) {
			return category, true
		}
	}
	return "", false
}

// HasCategoryTag reports whether the words carry a tag of the given category.
func (l *Lexicon) HasCategoryTag(words []string, category changetypes.Category) bool {
	if len(words) == 0 {
		return false
	}
	return l.indicates(category, l.Tags(words), l.leadingTags(words))
}

func (l *Lexicon) indicates(category changetypes.Category, all, lead TagSet) bool {
	for _, tag := range l.primary[category] {
		if all.Has(tag) {
			return true
		}
	}
	for _, tag := range l.verbs[category] {
		if lead.Has(tag) {
			return true
		}
	}
	return false
}

// leadingTags returns the tags of the first word and of phrases starting at it.
func (l *Lexicon) leadingTags(words []string) TagSet {
	set := make(TagSet)
	if len(words) > 0 {
		l.addTagsAt(set, words, 0)
	}
	return set
}

func (l *Lexicon) addTagsAt(set TagSet, words []string, i int) {
	for _, tag := range l.words[strings.ToLower(words[i])] {
		set[tag] = struct{}{}
	}
	for n := 2; n <= maxPhraseWords && i+n <= len(words); n++ {
		phrase := strings.ToLower(strings.Join(words[i:i+n], " "))
		for _, tag := range l.phrases[phrase] {
			set[tag] = struct{}{}
		}
	}
}

// expand returns the tags plus all their ancestors, without duplicates.
func (l *Lexicon) expand(tags []Tag) []Tag {
	seen := make(map[Tag]bool)
	var out []Tag
	for _, tag := range tags {
		for current, ok := tag, true; ok; current, ok = l.parents[current] {
			if seen[current] {
				break
			}
			seen[current] = true
			out = append(out, current)
		}
	}
	return out
}

func (l *Lexicon) checkHierarchy() error {
	for start := range l.parents {
		visited := map[Tag]bool{start: true}
		for current, ok := l.parents[start]; ok; current, ok = l.parents[current] {
			if visited[current] {
				return fmt.Errorf("lexicon hierarchy has a cycle through %s", start)
			}
			visited[current] = true
		}
	}
	return nil
}

func toTags(names []string) []Tag {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, Tag(name))
	}
	return tags
}
