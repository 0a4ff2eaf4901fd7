package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changelens/pkg/changetypes"
)

func texts(t *testing.T, sections changetypes.ParsedSections) map[string][]string {
	t.Helper()
	out := make(map[string][]string, len(sections))
	for _, s := range sections {
		out[s.Heading] = s.Texts()
	}
	return out
}

func TestParseMarkdown(t *testing.T) {
	body := strings.Join([]string{
		"# 2.0.0",
		"",
		"Intro paragraph. Second sentence here.",
		"",
		"## Breaking Changes",
		"",
		"- Removed `parse()` in favour of `parseAsync()`.",
		"- Dropped Node 14",
		"  - nested detail item",
		"",
		"## Bug Fixes",
		"",
		"* Fixed a crash when input is [empty](https://example.com) (#123)",
		"",
		"~~~js",
		"code()",
		"~~~",
		"",
		"Some paragraph e.g. like this. Version 1.2.3 is",
		"out now.",
		"",
		"## Empty",
		"",
	}, "\n")

	sections := ParseMarkdown(body)

	assert.Equal(t, []string{"2.0.0", "Breaking Changes", "Bug Fixes"}, sections.Headings())
	got := texts(t, sections)
	assert.Equal(t, []string{"Intro paragraph.", "Second sentence here."}, got["2.0.0"])
	assert.Equal(t, []string{"Removed parse() in favour of parseAsync().", "Dropped Node 14", "nested detail item"}, got["Breaking Changes"])
	assert.Equal(t, []string{
		"Fixed a crash when input is empty (#123)",
		"Some paragraph e.g. like this.",
		"Version 1.2.3 is out now.",
	}, got["Bug Fixes"])
}

func TestParseMarkdown_DefaultHeadingAndMerging(t *testing.T) {
	body := "Just a note.\n\n## Fixes\n\n- Fixed one\n\n## Fixes\n\n- Fixed two\n"

	sections := ParseMarkdown(body)

	require.Len(t, sections, 2)
	assert.Equal(t, DefaultHeading, sections[0].Heading)
	assert.Equal(t, []string{"Just a note."}, sections[0].Texts())
	assert.Equal(t, []string{"Fixed one", "Fixed two"}, sections[1].Texts())
}

func TestParseMarkdown_Empty(t *testing.T) {
	assert.Empty(t, ParseMarkdown(""))
	assert.Empty(t, ParseMarkdown("# Only a heading\n"))
}

func TestParseHTML(t *testing.T) {
	body := `<h2>Bug Fixes</h2>
<ul>
  <li>Fixed <code>parse()</code> crash</li>
  <li>Escaped &amp; chars</li>
</ul>
<pre><code>x()</code></pre>
<p>See the docs.</p>`

	sections := ParseHTML(body)

	require.Len(t, sections, 1)
	assert.Equal(t, "Bug Fixes", sections[0].Heading)
	assert.Equal(t, []string{"Fixed parse() crash", "Escaped & chars", "See the docs."}, sections[0].Texts())
}

func TestParse_Sniffing(t *testing.T) {
	fromHTML := Parse("<h3>Features</h3><ul><li>Added dark mode</li></ul>")
	require.Len(t, fromHTML, 1)
	assert.Equal(t, "Features", fromHTML[0].Heading)
	assert.Equal(t, []string{"Added dark mode"}, fromHTML[0].Texts())

	fromMarkdown := Parse("### Features\n\n- Added dark mode\n")
	assert.Equal(t, fromHTML, fromMarkdown)
}

func TestParse_InlineHTMLInMarkdown(t *testing.T) {
	body := "## Features\n\n- Added `Map<string, T>` typing for `get()`<br>\n- Added <kbd>Ctrl</kbd> shortcuts\n\n<p align=\"center\">Thanks to all contributors</p>\n"

	sections := Parse(body)
	require.Len(t, sections, 1)
	assert.Equal(t, "Features", sections[0].Heading)
	assert.Equal(t, []string{"Added Map<string, T> typing for get()", "Added Ctrl shortcuts"}, sections[0].Texts())
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"html release", "<h2>Fixes</h2>\n<ul>\n  <li>Fixed crash</li>\n</ul>", true},
		{"markdown with inline break", "## Fixes\n\n- Fixed crash<br>\n", false},
		{"markdown numbered list with div", "<div>notes</div>\n\n1. Fixed crash\n", false},
		{"plain text", "Fixed crash", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsHTML(tt.body))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "  ", nil},
		{"single", "No terminal punctuation", []string{"No terminal punctuation"}},
		{"mixed punctuation", "Fixed a bug. Added a feature! Is it done? yes.", []string{"Fixed a bug.", "Added a feature!", "Is it done? yes."}},
		{"version numbers", "Bumped to v2.0.0. Next step", []string{"Bumped to v2.0.0.", "Next step"}},
		{"abbreviation", "Use e.g. Foo instead. Done", []string{"Use e.g. Foo instead.", "Done"}},
		{"closing paren", "Fixed it (finally.) Then more", []string{"Fixed it (finally.)", "Then more"}},
		{"digit start", "Dropped IE. 3 APIs removed.", []string{"Dropped IE.", "3 APIs removed."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.input))
		})
	}
}
