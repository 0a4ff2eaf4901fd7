package github

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	headingLine    = regexp.MustCompile(`^\s{0,3}(#{1,3})\s+(.*)$`)
	headingVersion = regexp.MustCompile(`\bv?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?)\b`)
)

// TrimChangelog keeps the parts of a changelog whose version headings fall in
// from < version <= to. Text before the first version heading is dropped. A changelog without
// any version heading is returned unchanged.
func TrimChangelog(body, from, to string) string {
	lower, err := semver.NewVersion(from)
	if err != nil {
		return body
	}
	upper, err := semver.NewVersion(to)
	if err != nil {
		return body
	}

	var (
		out       []string
		include   bool
		sawHeader bool
		level     int
	)
	for _, line := range strings.Split(body, "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			depth := len(m[1])
			if v := headingVersion.FindStringSubmatch(m[2]); v != nil && (!sawHeader || depth <= level) {
				if version, err := semver.NewVersion(v[1]); err == nil {
					sawHeader = true
					level = depth
					include = version.GreaterThan(lower) && !version.GreaterThan(upper)
				}
			}
		}
		if include {
			out = append(out, line)
		}
	}

	if !sawHeader {
		return body
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
