// Package changetypes defines parsed release-note section types for changelens.
// This file contains sections, items and their JSON decoding.
package changetypes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Item is a single sentence or list item within a section.
// It decodes from either a bare JSON string or an object with a "text" field.
type Item struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts "sentence", {"text": "sentence"} or anything else (empty text).
func (i *Item) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		i.Text = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &i.Text)
	case '{':
		var record struct {
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return err
		}
		var text string
		if len(record.Text) > 0 && json.Unmarshal(record.Text, &text) == nil {
			i.Text = text
			return nil
		}
		i.Text = ""
		return nil
	default:
		// Numbers, booleans, null and arrays carry no sentence text.
		i.Text = ""
		return nil
	}
}

// Section is one heading and the items found beneath it.
type Section struct {
	Heading   string `json:"heading"`
	Items     []Item `json:"items"`
	Malformed bool   `json:"malformed,omitempty"` // Contents were not a list
}

// Texts returns the item texts in order.
func (s Section) Texts() []string {
	texts := make([]string, len(s.Items))
	for i, item := range s.Items {
		texts[i] = item.Text
	}
	return texts
}

// ParsedSections is the ordered heading -> items mapping produced by the section supplier.
type ParsedSections []Section

// ErrSectionsShape is returned when a parsedSections document is not a JSON object.
var ErrSectionsShape = errors.New("parsed sections must be a JSON object of heading to item list")

// Add appends a section built from plain strings.
func (p *ParsedSections) Add(heading string, texts ...string) {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Text: t}
	}
	*p = append(*p, Section{Heading: heading, Items: items})
}

// Headings returns section headings in order.
func (p ParsedSections) Headings() []string {
	headings := make([]string, len(p))
	for i, s := range p {
		headings[i] = s.Heading
	}
	return headings
}

// ItemCount returns the number of items across all well-formed sections.
func (p ParsedSections) ItemCount() int {
	count := 0
	for _, s := range p {
		count += len(s.Items)
	}
	return count
}

// UnmarshalJSON decodes { "heading": [items...] } preserving key order.
// A heading whose value is not an array is kept as a Malformed section.
func (p *ParsedSections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSectionsShape, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrSectionsShape
	}

	var sections ParsedSections
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read section heading: %w", err)
		}
		heading, ok := keyTok.(string)
		if !ok {
			return ErrSectionsShape
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to read section %q: %w", heading, err)
		}

		section := Section{Heading: heading}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &section.Items); err != nil {
				return fmt.Errorf("failed to decode items of section %q: %w", heading, err)
			}
		} else {
			section.Malformed = true
		}
		sections = append(sections, section)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrSectionsShape, err)
	}

	*p = sections
	return nil
}

// MarshalJSON encodes sections as an ordered JSON object of heading to text list.
func (p ParsedSections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Heading)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		texts, err := json.Marshal(s.Texts())
		if err != nil {
			return nil, err
		}
		buf.Write(texts)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
