package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changelens/pkg/changetypes"
)

func defaultLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := Default()
	require.NoError(t, err)
	return lex
}

func TestDefault_Loads(t *testing.T) {
	lex := defaultLexicon(t)
	assert.Equal(t, 3, lex.Version())
	assert.Greater(t, lex.Size(), 100)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, lex, again)
}

func TestTags_HierarchyExpansion(t *testing.T) {
	lex := defaultLexicon(t)

	tags := lex.Tags([]string{"app", "crashes", "on", "start"})
	assert.True(t, tags.Has("Crash"))
	assert.True(t, tags.Has("Bug"))
	assert.True(t, tags.Has("Fix"))
	assert.False(t, tags.Has("Feature"))

	tags = lex.Tags([]string{"fixed", "cve"})
	assert.Len(t, tags, 3)
	for _, tag := range []Tag{"Fix", "Security", "Vulnerability"} {
		assert.True(t, tags.Has(tag), "expected %s", tag)
	}
}

func TestTags_Phrases(t *testing.T) {
	lex := defaultLexicon(t)

	tags := lex.Tags([]string{"fixed", "a", "null", "pointer", "bug"})
	assert.True(t, tags.Has("Bug"))
	assert.True(t, tags.Has("Fix"))

	tags = lex.Tags([]string{"this", "is", "backwards", "incompatible"})
	assert.True(t, tags.Has("Incompatibility"))
	assert.True(t, tags.Has("BreakingChange"))

	tags = lex.Tags([]string{"Denial", "Of", "Service"})
	assert.True(t, tags.Has("Security"))
}

func TestTags_UnknownWords(t *testing.T) {
	lex := defaultLexicon(t)
	assert.Empty(t, lex.Tags([]string{"improved", "build", "pipeline", "caching"}))
	assert.Empty(t, lex.Tags(nil))
}

func TestTags_SingleTerms(t *testing.T) {
	lex := defaultLexicon(t)

	tags := lex.Tags([]string{"regression"})
	assert.Len(t, tags, 3)
	assert.True(t, tags.Has("Regression"))
	assert.True(t, tags.Has("Bug"))
	assert.True(t, tags.Has("Fix"))

	tags = lex.Tags([]string{"clean", "up"})
	assert.True(t, tags.Has("RefactorVerb"))
	assert.True(t, tags.Has("Verb"))

	assert.Empty(t, lex.Tags([]string{"unheard"}))
}

func TestIsA(t *testing.T) {
	lex := defaultLexicon(t)

	assert.True(t, lex.IsA("BreakingVerb", "Verb"))
	assert.True(t, lex.IsA("Exploit", "Security"))
	assert.True(t, lex.IsA("Fix", "Fix"))
	assert.False(t, lex.IsA("Verb", "BreakingVerb"))
	assert.False(t, lex.IsA("Feature", "Fix"))
}

func TestDetectCategory(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		name     string
		words    []string
		expected changetypes.Category
		found    bool
	}{
		{"primary tag anywhere", []string{"this", "release", "removes", "the", "deprecated", "parse", "method"}, changetypes.CategoryDeprecation, true},
		{"leading verb", []string{"removed", "the", "legacy", "api"}, changetypes.CategoryBreakingChange, true},
		{"verb not leading", []string{"we", "removed", "the", "legacy", "api"}, "", false},
		{"earlier category wins", []string{"fixed", "a", "security", "issue"}, changetypes.CategoryFix, true},
		{"heading", []string{"breaking", "changes"}, changetypes.CategoryBreakingChange, true},
		{"chores heading", []string{"chores"}, changetypes.CategoryChore, true},
		{"dependency is a chore", []string{"updated", "dependencies"}, changetypes.CategoryChore, true},
		{"leading phrase verb", []string{"clean", "up", "internals"}, changetypes.CategoryRefactor, true},
		{"nothing", []string{"improved", "build", "pipeline"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, found := lex.DetectCategory(tt.words)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestHasCategoryTag(t *testing.T) {
	lex := defaultLexicon(t)
	words := []string{"security", "fixes"}

	assert.True(t, lex.HasCategoryTag(words, changetypes.CategorySecurity))
	assert.True(t, lex.HasCategoryTag(words, changetypes.CategoryFix))
	assert.False(t, lex.HasCategoryTag(words, changetypes.CategoryChore))
	assert.False(t, lex.HasCategoryTag(nil, changetypes.CategoryFix))
}

func TestNew_Errors(t *testing.T) {
	valid := `
categories:
  breaking_change: {primary: [BreakingChange]}
  feature: {primary: [Feature]}
  fix: {primary: [Fix]}
  deprecation: {primary: [Deprecation]}
  security: {primary: [Security]}
  documentation: {primary: [Documentation]}
  performance: {primary: [Performance]}
  refactor: {primary: [Refactor]}
  chore: {primary: [Chore]}
`

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"invalid yaml", "categories: [", "failed to parse lexicon YAML"},
		{"unknown category", valid + "  style: {primary: [Style]}\n", "unknown category"},
		{"missing category", "categories:\n  fix: {primary: [Fix]}\n", "missing category"},
		{"no primary tags", strings.Replace(valid, "chore: {primary: [Chore]}", "chore: {verbs: [ChoreVerb]}", 1), "no primary tags"},
		{"cycle", valid + "hierarchy:\n  A: B\n  B: A\n", "cycle"},
		{"one word phrase", valid + "phrases:\n  fix: [Fix]\n", "2 to 3 words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	lex, err := New([]byte(valid))
	require.NoError(t, err)
	category, ok := lex.DetectCategory([]string{"anything"})
	assert.False(t, ok)
	assert.Empty(t, category)
}
