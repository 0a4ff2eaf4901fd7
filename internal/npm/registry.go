package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"changelens/internal/logger"
	"changelens/internal/services"
)

// ErrPackageNotFound is returned when the registry has no document for a package.
var ErrPackageNotFound = errors.New("package not found in registry")

// Getter performs HTTP GET requests; HTTPRequestService satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*services.HTTPResponse, error)
}

// Metadata is the subset of a registry packument changelens needs.
type Metadata struct {
	Name       string
	Repository string
	Homepage   string
	Versions   []string             // ascending semver order, unparsable versions dropped
	Time       map[string]time.Time // publish time per version
}

// Client queries an npm registry.
type Client struct {
	registry string
	http     Getter
}

// NewClient creates a registry client for the given base URL.
func NewClient(registry string, getter Getter) *Client {
	return &Client{
		registry: strings.TrimRight(registry, "/"),
		http:     getter,
	}
}

type packument struct {
	Name       string                     `json:"name"`
	Homepage   string                     `json:"homepage"`
	Repository json.RawMessage            `json:"repository"`
	Versions   map[string]json.RawMessage `json:"versions"`
	Time       map[string]string          `json:"time"`
}

// Metadata fetches the registry document of a package. Scoped names are path-escaped.
func (c *Client) Metadata(ctx context.Context, name string) (*Metadata, error) {
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}

	endpoint := c.registry + "/" + url.PathEscape(name)
	resp, err := c.http.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", name, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("registry returned %s for %s", resp.Status, name)
	}

	var doc packument
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", name, err)
	}

	meta := &Metadata{
		Name:       doc.Name,
		Homepage:   doc.Homepage,
		Repository: repositoryURL(doc.Repository),
		Time:       make(map[string]time.Time, len(doc.Time)),
	}

	parsed := make([]*semver.Version, 0, len(doc.Versions))
	for v := range doc.Versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			logger.Debug("Skipping unparsable version", "package", name, "version", v)
			continue
		}
		parsed = append(parsed, sv)
	}
	sort.Sort(semver.Collection(parsed))
	for _, sv := range parsed {
		meta.Versions = append(meta.Versions, sv.Original())
	}

	for v, ts := range doc.Time {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			meta.Time[v] = t
		}
	}

	return meta, nil
}

// PreviousVersion returns the highest published stable version below v.
func (m *Metadata) PreviousVersion(v string) (string, bool) {
	upper, err := semver.NewVersion(v)
	if err != nil {
		return "", false
	}
	for i := len(m.Versions) - 1; i >= 0; i-- {
		sv, err := semver.NewVersion(m.Versions[i])
		if err != nil || sv.Prerelease() != "" {
			continue
		}
		if sv.LessThan(upper) {
			return m.Versions[i], true
		}
	}
	return "", false
}

// repositoryURL accepts both the string and the {type,url} object forms.
func repositoryURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

var (
	githubURL       = regexp.MustCompile(`(?i)github\.com[/:]([\w.-]+)/([\w.-]+?)(?:\.git)?(?:[/#?].*)?$`)
	githubShorthand = regexp.MustCompile(`^(?:github:)?([\w.-]+)/([\w.-]+?)(?:\.git)?(?:#.*)?$`)
)

// RepositorySlug extracts the GitHub owner and repository from a package repository URL.
// It accepts git+https, git, ssh, github: and owner/repo shorthand forms.
func RepositorySlug(repoURL string) (owner, repo string, ok bool) {
	repoURL = strings.TrimSpace(repoURL)
	if m := githubURL.FindStringSubmatch(repoURL); m != nil {
		return m[1], m[2], true
	}
	if strings.Contains(repoURL, ":") && !strings.HasPrefix(repoURL, "github:") {
		return "", "", false
	}
	if m := githubShorthand.FindStringSubmatch(repoURL); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}
