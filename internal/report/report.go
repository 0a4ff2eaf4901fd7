// Package report renders a changelens run as a markdown document and a JSON summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"changelens/internal/logger"
	"changelens/pkg/changetypes"
)

const (
	// ReportFile is the markdown report written by WriteBundle.
	ReportFile = "report.md"
	// SummaryFile is the JSON summary written by WriteBundle.
	SummaryFile = "summary.json"

	termsShown = 5
)

// Summary is the machine-readable digest of a run.
type Summary struct {
	RunID     string           `json:"runId"`
	StartedAt time.Time        `json:"startedAt"`
	Packages  []PackageSummary `json:"packages"`
}

// PackageSummary holds the bucket counts of one package.
type PackageSummary struct {
	Name     string                     `json:"name"`
	Current  string                     `json:"current"`
	Latest   string                     `json:"latest"`
	Level    changetypes.Level          `json:"level"`
	Breaking bool                       `json:"breaking"`
	Counts   map[changetypes.Bucket]int `json:"counts,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

// Bundle lists the files written by WriteBundle.
type Bundle struct {
	ReportPath  string
	SummaryPath string
}

// Summarize builds the JSON summary of a run.
func Summarize(run changetypes.Run) Summary {
	summary := Summary{
		RunID:     run.ID,
		StartedAt: run.StartedAt,
		Packages:  make([]PackageSummary, 0, len(run.Packages)),
	}
	for _, r := range run.Packages {
		ps := PackageSummary{
			Name:     r.Package.Name,
			Current:  r.Package.Current,
			Latest:   r.Package.Latest,
			Level:    r.Package.Level,
			Breaking: r.HasBreakingChanges(),
			Error:    r.Error,
		}
		if r.Analysis != nil {
			ps.Counts = r.Analysis.Results.Counts()
		}
		summary.Packages = append(summary.Packages, ps)
	}
	return summary
}

// Markdown renders the full report: a summary table, then one section per package.
func Markdown(run changetypes.Run) string {
	var b strings.Builder

	b.WriteString("# changelens report\n\n")
	fmt.Fprintf(&b, "Run `%s` started %s.\n\n", run.ID, run.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	if len(run.Packages) == 0 {
		b.WriteString("All dependencies are up to date.\n")
		return b.String()
	}

	b.WriteString("| Package | Current | Latest | Level | Breaking | Sentences | Status |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range run.Packages {
		breaking, sentences, status := "-", "-", "ok"
		if r.Analysis != nil {
			breaking = fmt.Sprint(r.Analysis.Results.Count(changetypes.CategoryBucket(changetypes.CategoryBreakingChange)))
			sentences = fmt.Sprint(len(r.Analysis.Entries))
		}
		if r.Error != "" {
			status = "error"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			cell(r.Package.Name), cell(r.Package.Current), cell(r.Package.Latest), r.Package.Level,
			breaking, sentences, status)
	}

	for _, r := range run.Packages {
		b.WriteString("\n")
		writePackage(&b, r)
	}
	return b.String()
}

// PackageMarkdown renders the section of a single package.
func PackageMarkdown(r changetypes.PackageReport) string {
	var b strings.Builder
	writePackage(&b, r)
	return b.String()
}

func writePackage(b *strings.Builder, r changetypes.PackageReport) {
	pkg := r.Package
	if pkg.Latest == "" {
		fmt.Fprintf(b, "## %s\n\n", pkg.Name)
	} else {
		fmt.Fprintf(b, "## %s %s → %s (%s)\n\n", pkg.Name, pkg.Current, pkg.Latest, pkg.Level)
	}

	if r.Error != "" {
		fmt.Fprintf(b, "Release notes unavailable: %s\n", r.Error)
		return
	}
	if r.Analysis == nil {
		b.WriteString("No analysis available.\n")
		return
	}

	results := r.Analysis.Results
	if n := results.Count(changetypes.CategoryBucket(changetypes.CategoryBreakingChange)); n > 0 {
		fmt.Fprintf(b, "> **Warning:** %d breaking %s. Review before upgrading.\n\n", n, plural(n, "change", "changes"))
	}

	for _, bucket := range changetypes.AllBuckets() {
		if bucket == changetypes.BucketUncategorized {
			continue
		}
		sentences := results[bucket]
		if len(sentences) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", bucket.Title())
		for _, s := range sentences {
			if confidence, ok := r.Analysis.Confidence(bucket, s); ok && bucket != changetypes.BucketMiscellaneous {
				fmt.Fprintf(b, "- %s _(%.2f)_\n", s, confidence)
			} else {
				fmt.Fprintf(b, "- %s\n", s)
			}
		}
		b.WriteString("\n")
	}

	if n := results.Count(changetypes.BucketUncategorized); n > 0 {
		fmt.Fprintf(b, "%d %s without a recognizable change.\n\n", n, plural(n, "sentence", "sentences"))
	}

	if len(r.Terms) > 0 {
		terms := r.Terms
		if len(terms) > termsShown {
			terms = terms[:termsShown]
		}
		parts := make([]string, len(terms))
		for i, t := range terms {
			parts[i] = fmt.Sprintf("%s (%.2f)", t.Term, t.Score)
		}
		fmt.Fprintf(b, "**Top terms:** %s\n\n", strings.Join(parts, ", "))
	}

	if len(r.Analysis.SectionSignals) > 0 {
		b.WriteString("| Section | Signals |\n|---|---|\n")
		for _, s := range r.Analysis.SectionSignals {
			signals := "-"
			if len(s.Matches) > 0 {
				parts := make([]string, len(s.Matches))
				for i, m := range s.Matches {
					parts[i] = fmt.Sprintf("%s %.2f", m.Category, m.Confidence)
				}
				signals = strings.Join(parts, ", ")
			}
			fmt.Fprintf(b, "| %s | %s |\n", cell(s.Heading), signals)
		}
		b.WriteString("\n")
	}

	if len(r.Analysis.SkippedSections) > 0 {
		fmt.Fprintf(b, "Skipped sections: %s\n\n", strings.Join(r.Analysis.SkippedSections, ", "))
	}

	var sources []string
	for _, n := range r.Notes {
		label := n.Version
		if label == "" {
			label = n.Source
		}
		if n.URL != "" {
			sources = append(sources, fmt.Sprintf("[%s](%s)", label, n.URL))
		} else if label != "" {
			sources = append(sources, label)
		}
	}
	if len(sources) > 0 {
		fmt.Fprintf(b, "Sources: %s\n", strings.Join(sources, ", "))
	}
}

// WriteBundle writes the markdown report and the JSON summary into dir.
func WriteBundle(dir string, run changetypes.Run) (Bundle, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Bundle{}, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	bundle := Bundle{
		ReportPath:  filepath.Join(dir, ReportFile),
		SummaryPath: filepath.Join(dir, SummaryFile),
	}

	if err := os.WriteFile(bundle.ReportPath, []byte(Markdown(run)), 0644); err != nil {
		return Bundle{}, fmt.Errorf("failed to write report: %w", err)
	}

	data, err := json.MarshalIndent(Summarize(run), "", "  ")
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(bundle.SummaryPath, append(data, '\n'), 0644); err != nil {
		return Bundle{}, fmt.Errorf("failed to write summary: %w", err)
	}

	logger.Debug("Report bundle written", "report", bundle.ReportPath, "summary", bundle.SummaryPath)
	return bundle, nil
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
