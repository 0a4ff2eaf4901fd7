// Package pipeline turns a list of outdated packages into per-package reports: it fetches
// release notes, splits them into sections, categorizes every sentence and ranks terms.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"changelens/internal/categorize"
	"changelens/internal/github"
	"changelens/internal/logger"
	"changelens/internal/npm"
	"changelens/internal/sections"
	"changelens/internal/testutils"
	"changelens/internal/tfidf"
	"changelens/pkg/changetypes"
)

// ErrNoRepository is recorded for packages whose metadata has no GitHub repository.
var ErrNoRepository = errors.New("no GitHub repository in package metadata")

// ErrNoBaseVersion is recorded when neither npm nor the registry yields a version to start from.
var ErrNoBaseVersion = errors.New("no published version")

// DefaultTermLimit is the number of ranked terms kept per package.
const DefaultTermLimit = 10

// Registry fetches package metadata.
type Registry interface {
	Metadata(ctx context.Context, name string) (*npm.Metadata, error)
}

// ReleaseSource fetches release notes from a repository.
type ReleaseSource interface {
	Releases(ctx context.Context, owner, repo, from, to string) ([]changetypes.ReleaseNote, error)
	Changelog(ctx context.Context, owner, repo string) (changetypes.ReleaseNote, error)
}

// Options controls package selection and processing.
type Options struct {
	Level       changetypes.Level // minimum update level, empty for all
	Scope       string            // doublestar glob matched against the package name
	Limit       int               // maximum packages processed, 0 for all
	Concurrency int               // packages processed in parallel, at least 1
	TermLimit   int               // ranked terms per package, 0 for DefaultTermLimit
}

// Pipeline processes outdated packages.
type Pipeline struct {
	registry    Registry
	releases    ReleaseSource
	categorizer *categorize.Categorizer
	opts        Options
}

// New creates a Pipeline.
func New(registry Registry, releases ReleaseSource, categorizer *categorize.Categorizer, opts Options) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.TermLimit <= 0 {
		opts.TermLimit = DefaultTermLimit
	}
	return &Pipeline{
		registry:    registry,
		releases:    releases,
		categorizer: categorizer,
		opts:        opts,
	}
}

// Filter selects packages by minimum level, scope glob and limit, in that order.
func Filter(packages []changetypes.OutdatedPackage, opts Options) ([]changetypes.OutdatedPackage, error) {
	if opts.Scope != "" && !doublestar.ValidatePattern(opts.Scope) {
		return nil, fmt.Errorf("invalid scope pattern %q", opts.Scope)
	}
	if opts.Level != "" && !opts.Level.IsValid() {
		return nil, fmt.Errorf("invalid level %q", opts.Level)
	}

	var selected []changetypes.OutdatedPackage
	for _, pkg := range packages {
		if opts.Level != "" && pkg.Level.Rank() < opts.Level.Rank() {
			continue
		}
		if opts.Scope != "" {
			ok, err := doublestar.Match(opts.Scope, pkg.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid scope pattern %q: %w", opts.Scope, err)
			}
			if !ok {
				continue
			}
		}
		selected = append(selected, pkg)
		if opts.Limit > 0 && len(selected) == opts.Limit {
			break
		}
	}
	return selected, nil
}

// Run filters packages and processes them concurrently. Reports keep the input order. A
// failing package is recorded on its report and never aborts the others; only a cancelled
// context is returned as an error, together with the partial run.
func (p *Pipeline) Run(ctx context.Context, packages []changetypes.OutdatedPackage) (*changetypes.Run, error) {
	selected, err := Filter(packages, p.opts)
	if err != nil {
		return nil, err
	}

	run := &changetypes.Run{
		ID:        testutils.GenerateUUID(),
		StartedAt: testutils.GetCurrentTime(),
		Packages:  make([]changetypes.PackageReport, len(selected)),
	}
	logger.Info("Analyzing packages", "run", run.ID, "selected", len(selected), "outdated", len(packages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, pkg := range selected {
		i, pkg := i, pkg
		g.Go(func() error {
			run.Packages[i] = p.Process(gctx, pkg)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("analysis interrupted: %w", err)
	}
	return run, nil
}

// Process builds the report of a single package.
func (p *Pipeline) Process(ctx context.Context, pkg changetypes.OutdatedPackage) changetypes.PackageReport {
	report := changetypes.PackageReport{Package: pkg}

	notes, err := p.fetchNotes(ctx, pkg)
	if err != nil {
		logger.Warn("Skipping package", "package", pkg.Name, "error", err)
		report.Error = err.Error()
		return report
	}

	report.Notes = notes
	report.Analysis, report.Terms = Analyze(p.categorizer, pkg.Name, notes, p.opts.TermLimit)
	logger.PackageStage(pkg.Name, "analyzed", "entries", len(report.Analysis.Entries))
	return report
}

func (p *Pipeline) fetchNotes(ctx context.Context, pkg changetypes.OutdatedPackage) ([]changetypes.ReleaseNote, error) {
	logger.PackageStage(pkg.Name, "metadata")
	meta, err := p.registry.Metadata(ctx, pkg.Name)
	if err != nil {
		return nil, err
	}

	owner, repo, ok := npm.RepositorySlug(meta.Repository)
	if !ok {
		return nil, fmt.Errorf("%s: %w", pkg.Name, ErrNoRepository)
	}

	from := pkg.Current
	if from == "" {
		from = pkg.Wanted
	}
	if from == "" {
		// Nothing installed or wanted: start after the last stable release before latest
		previous, ok := meta.PreviousVersion(pkg.Latest)
		if !ok {
			return nil, fmt.Errorf("%s: %w before %s", pkg.Name, ErrNoBaseVersion, pkg.Latest)
		}
		from = previous
	}

	logger.PackageStage(pkg.Name, "releases", "repo", owner+"/"+repo, "from", from, "to", pkg.Latest)
	notes, err := p.releases.Releases(ctx, owner, repo, from, pkg.Latest)
	if err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		return notes, nil
	}

	logger.PackageStage(pkg.Name, "changelog", "repo", owner+"/"+repo)
	changelog, err := p.releases.Changelog(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	changelog.Body = github.TrimChangelog(changelog.Body, from, pkg.Latest)
	if strings.TrimSpace(changelog.Body) == "" {
		return nil, fmt.Errorf("%s: %w between %s and %s", pkg.Name, github.ErrNoReleaseNotes, from, pkg.Latest)
	}
	changelog.Version = pkg.Latest
	if published, ok := meta.Time[pkg.Latest]; ok {
		changelog.PublishedAt = published
	}
	return []changetypes.ReleaseNote{changelog}, nil
}

// Analyze splits release notes into sections, categorizes them and ranks their terms.
// Sections of consecutive notes are concatenated in note order.
func Analyze(c *categorize.Categorizer, name string, notes []changetypes.ReleaseNote, termLimit int) (*changetypes.Analysis, []changetypes.RankedTerm) {
	var all changetypes.ParsedSections
	for _, note := range notes {
		all = append(all, sections.Parse(note.Body)...)
	}
	logger.Debug("Parsed release notes", "package", name, "notes", len(notes), "sections", all.Headings())
	return c.CategorizeSections(name, all), tfidf.Rank(all, termLimit)
}
