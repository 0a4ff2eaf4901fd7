// Package github fetches release notes for a dependency from its GitHub repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"

	"changelens/internal/logger"
	"changelens/pkg/changetypes"
)

// ErrNoReleaseNotes is returned when a repository has neither releases nor a changelog file.
var ErrNoReleaseNotes = errors.New("no release notes found")

// changelogFiles are tried in order by Changelog.
var changelogFiles = []string{"CHANGELOG.md", "changelog.md", "CHANGES.md", "HISTORY.md"}

const perPage = 100

// Client reads releases and changelog files through the GitHub REST API.
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub client. A non-empty token authenticates through an oauth2 static
// token source layered on top of base; base may be nil.
func NewClient(ctx context.Context, base *http.Client, token string) *Client {
	httpClient := base
	if token != "" {
		if base != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return &Client{client: github.NewClient(httpClient)}
}

// WithBaseURL points the client at another API root, such as a GitHub Enterprise server.
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	c.client.BaseURL = u
	return c, nil
}

// Releases returns the published releases with from < version <= to, oldest first. Drafts and
// tags that are not semantic versions are skipped. Tags may carry a "v" prefix or a
// "name@" monorepo prefix.
func (c *Client) Releases(ctx context.Context, owner, repo, from, to string) ([]changetypes.ReleaseNote, error) {
	lower, err := semver.NewVersion(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from version %q: %w", from, err)
	}
	upper, err := semver.NewVersion(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to version %q: %w", to, err)
	}

	type versioned struct {
		version *semver.Version
		note    changetypes.ReleaseNote
	}
	var matched []versioned

	opts := &github.ListOptions{PerPage: perPage}
	for {
		releases, resp, err := c.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list releases for %s/%s: %w", owner, repo, err)
		}

		for _, release := range releases {
			if release.GetDraft() {
				continue
			}
			version, ok := TagVersion(release.GetTagName())
			if !ok {
				logger.Debug("Skipping non-semver release tag", "repo", owner+"/"+repo, "tag", release.GetTagName())
				continue
			}
			if !version.GreaterThan(lower) || version.GreaterThan(upper) {
				continue
			}
			matched = append(matched, versioned{
				version: version,
				note: changetypes.ReleaseNote{
					Version:     version.String(),
					Title:       release.GetName(),
					Body:        release.GetBody(),
					Source:      "github-release",
					URL:         release.GetHTMLURL(),
					PublishedAt: release.GetPublishedAt().Time,
				},
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].version.LessThan(matched[j].version)
	})

	notes := make([]changetypes.ReleaseNote, 0, len(matched))
	for _, m := range matched {
		notes = append(notes, m.note)
	}
	logger.Debug("Fetched releases", "repo", owner+"/"+repo, "from", from, "to", to, "count", len(notes))
	return notes, nil
}

// Changelog returns the first changelog file found at the repository root.
func (c *Client) Changelog(ctx context.Context, owner, repo string) (changetypes.ReleaseNote, error) {
	for _, name := range changelogFiles {
		file, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, name, nil)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				continue
			}
			return changetypes.ReleaseNote{}, fmt.Errorf("failed to fetch %s for %s/%s: %w", name, owner, repo, err)
		}
		if file == nil {
			continue
		}

		content, err := file.GetContent()
		if err != nil {
			return changetypes.ReleaseNote{}, fmt.Errorf("failed to decode %s for %s/%s: %w", name, owner, repo, err)
		}
		return changetypes.ReleaseNote{
			Title:  name,
			Body:   content,
			Source: "changelog",
			URL:    file.GetHTMLURL(),
		}, nil
	}
	return changetypes.ReleaseNote{}, fmt.Errorf("%s/%s: %w", owner, repo, ErrNoReleaseNotes)
}

// TagVersion parses a release tag as a semantic version.
func TagVersion(tag string) (*semver.Version, bool) {
	if i := strings.LastIndex(tag, "@"); i >= 0 {
		tag = tag[i+1:]
	}
	version, err := semver.NewVersion(tag)
	if err != nil {
		return nil, false
	}
	return version, true
}
