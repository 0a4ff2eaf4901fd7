// Package sections turns raw release notes into ordered heading -> sentence sections.
// Markdown is parsed with goldmark; HTML bodies are reduced to markdown-shaped text with
// bluemonday first.
package sections

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"changelens/pkg/changetypes"
)

// DefaultHeading is used for content that appears before the first heading.
const DefaultHeading = "General"

var (
	markdown = goldmark.New()
	strict   = bluemonday.StrictPolicy()

	htmlSniff     = regexp.MustCompile(`(?i)<(h[1-6]|p|ul|ol|li|div|br|table)\b[^>]*>`)
	mdStructure   = regexp.MustCompile(`(?m)^ {0,3}(#{1,6}[ \t]|[-*+][ \t]|\d{1,9}[.)][ \t])`)
	htmlPre       = regexp.MustCompile(`(?is)<pre\b.*?</pre>`)
	htmlHeadOpen  = regexp.MustCompile(`(?i)<h([1-6])\b[^>]*>`)
	htmlHeadClose = regexp.MustCompile(`(?i)</h[1-6]\s*>`)
	htmlItemOpen  = regexp.MustCompile(`(?i)<li\b[^>]*>`)
	htmlBlock     = regexp.MustCompile(`(?i)</?(p|ul|ol|div|table|tr)\b[^>]*>|</li\s*>`)
	htmlBreak     = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// Parse sniffs the format of a release-note body and parses it. A body is HTML only when it
// carries block tags and no markdown headings or list markers; inline tags inside markdown are
// dropped by the markdown parser without touching code spans.
func Parse(body string) changetypes.ParsedSections {
	if IsHTML(body) {
		return ParseHTML(body)
	}
	return ParseMarkdown(body)
}

// IsHTML reports whether a release-note body is HTML rather than markdown.
func IsHTML(body string) bool {
	return htmlSniff.MatchString(body) && !mdStructure.MatchString(body)
}

// ParseMarkdown splits markdown into sections. Every heading opens a section, list items
// become items, paragraphs are split into sentences and code blocks are skipped. Sections
// sharing a heading are merged and sections without items are dropped.
func ParseMarkdown(body string) changetypes.ParsedSections {
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	b := newBuilder()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			b.heading(inlineText(node, source))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			b.add(listItemText(node, source))
		case *ast.Paragraph, *ast.TextBlock:
			if _, inItem := node.Parent().(*ast.ListItem); inItem {
				return ast.WalkSkipChildren, nil
			}
			b.add(SplitSentences(inlineText(node, source))...)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.sections()
}

// ParseHTML reduces HTML to markdown-shaped text, strips every remaining tag and parses the
// result as markdown. Preformatted blocks are dropped.
func ParseHTML(body string) changetypes.ParsedSections {
	s := htmlPre.ReplaceAllString(body, "\n")
	s = htmlHeadOpen.ReplaceAllStringFunc(s, func(tag string) string {
		level := htmlHeadOpen.FindStringSubmatch(tag)[1]
		return "\n\n" + strings.Repeat("#", int(level[0]-'0')) + " "
	})
	s = htmlHeadClose.ReplaceAllString(s, "\n\n")
	s = htmlItemOpen.ReplaceAllString(s, "\n- ")
	s = htmlBlock.ReplaceAllString(s, "\n\n")
	s = htmlBreak.ReplaceAllString(s, "\n")

	s = html.UnescapeString(strict.Sanitize(s))
	return ParseMarkdown(s)
}

// listItemText joins the text of an item's own blocks, leaving nested lists to be visited
// as items of their own.
func listItemText(item *ast.ListItem, source []byte) string {
	var parts []string
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, nested := child.(*ast.List); nested {
			continue
		}
		if t := inlineText(child, source); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.URL(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

type builder struct {
	current string
	order   []string
	items   map[string][]string
}

func newBuilder() *builder {
	return &builder{current: DefaultHeading, items: make(map[string][]string)}
}

func (b *builder) heading(h string) {
	if h == "" {
		h = DefaultHeading
	}
	b.current = h
}

func (b *builder) add(texts ...string) {
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := b.items[b.current]; !ok {
			b.order = append(b.order, b.current)
		}
		b.items[b.current] = append(b.items[b.current], t)
	}
}

func (b *builder) sections() changetypes.ParsedSections {
	out := make(changetypes.ParsedSections, 0, len(b.order))
	for _, h := range b.order {
		out.Add(h, b.items[h]...)
	}
	return out
}
