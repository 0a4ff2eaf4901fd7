// Package changetypes defines dependency and report types for changelens.
// This file contains outdated package descriptions, fetched release notes and report data.
package changetypes

import "time"

// Level is the semver distance between the installed and the target version.
type Level string

const (
	LevelNone  Level = "none"
	LevelPatch Level = "patch"
	LevelMinor Level = "minor"
	LevelMajor Level = "major"
)

// Rank orders levels so that filters can ask for "at least minor".
func (l Level) Rank() int {
	switch l {
	case LevelPatch:
		return 1
	case LevelMinor:
		return 2
	case LevelMajor:
		return 3
	default:
		return 0
	}
}

// IsValid checks if a level is known.
func (l Level) IsValid() bool {
	switch l {
	case LevelNone, LevelPatch, LevelMinor, LevelMajor:
		return true
	default:
		return false
	}
}

// OutdatedPackage is one row of `npm outdated --json`.
type OutdatedPackage struct {
	Name     string `json:"name"`
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location,omitempty"`
	Level    Level  `json:"level"`
}

// ReleaseNote is one raw text blob describing a release.
type ReleaseNote struct {
	Version     string    `json:"version"`
	Title       string    `json:"title,omitempty"`
	Body        string    `json:"body"`
	Source      string    `json:"source"` // "github-release", "changelog", "local"
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// RankedTerm is a salient term with its TF-IDF score.
type RankedTerm struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// PackageReport is everything the report needs about one package.
type PackageReport struct {
	Package  OutdatedPackage `json:"package"`
	Notes    []ReleaseNote   `json:"notes,omitempty"`
	Analysis *Analysis       `json:"analysis,omitempty"`
	Terms    []RankedTerm    `json:"terms,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// HasBreakingChanges reports whether any breaking change survived post-processing.
func (r PackageReport) HasBreakingChanges() bool {
	return r.Analysis != nil && r.Analysis.Results.Count(CategoryBucket(CategoryBreakingChange)) > 0
}

// Run is the result of one changelens invocation over a set of packages.
type Run struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"startedAt"`
	Packages  []PackageReport `json:"packages"`
}
