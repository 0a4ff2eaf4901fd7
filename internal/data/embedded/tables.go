// Package embedded provides access to the classification tables compiled into the binary.
// The lexicon and the pattern bank are versioned YAML data rather than code, so they can be
// reviewed and tuned without touching the categorizer.
package embedded

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

// TablesFS contains all embedded classification tables.
//
//go:embed tables/*.yaml
var TablesFS embed.FS

const tableDir = "tables"

// Table names understood by LoadTable.
const (
	LexiconTable  = "lexicon"
	PatternsTable = "patterns"
)

// LoadTable returns the raw YAML of an embedded table by name, with or without extension.
func LoadTable(name string) ([]byte, error) {
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}

	data, err := TablesFS.ReadFile(path.Join(tableDir, name))
	if err != nil {
		return nil, fmt.Errorf("embedded table not found: %s", name)
	}
	return data, nil
}

// ListTables returns the names (without extension) of all embedded tables.
func ListTables() ([]string, error) {
	entries, err := TablesFS.ReadDir(tableDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}
