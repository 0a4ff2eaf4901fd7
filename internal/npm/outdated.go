// Package npm reads a project's outdated dependencies and queries the npm registry for
// package metadata.
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"changelens/internal/logger"
	"changelens/pkg/changetypes"
)

// Command is the npm executable invoked by RunOutdated.
var Command = "npm"

type outdatedRow struct {
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location"`
}

// ParseOutdated decodes `npm outdated --json` output. Workspace projects report an array of
// rows per package; each becomes its own entry. Entries are sorted by name then location.
func ParseOutdated(data []byte) ([]changetypes.OutdatedPackage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode npm outdated output: %w", err)
	}

	var packages []changetypes.OutdatedPackage
	for name, msg := range raw {
		var rows []outdatedRow
		if trimmed := bytes.TrimSpace(msg); len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &rows); err != nil {
				return nil, fmt.Errorf("failed to decode outdated entry %s: %w", name, err)
			}
		} else {
			var row outdatedRow
			if err := json.Unmarshal(trimmed, &row); err != nil {
				return nil, fmt.Errorf("failed to decode outdated entry %s: %w", name, err)
			}
			rows = []outdatedRow{row}
		}

		for _, row := range rows {
			pkg := changetypes.OutdatedPackage{
				Name:     name,
				Current:  row.Current,
				Wanted:   row.Wanted,
				Latest:   row.Latest,
				Location: row.Location,
				Level:    changetypes.LevelNone,
			}

			from := row.Current
			if from == "" {
				from = row.Wanted
			}
			level, err := UpdateLevel(from, row.Latest)
			if err != nil {
				logger.Warn("Cannot determine update level", "package", name, "current", from, "latest", row.Latest, "error", err)
			} else {
				pkg.Level = level
			}
			packages = append(packages, pkg)
		}
	}

	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Name != packages[j].Name {
			return packages[i].Name < packages[j].Name
		}
		return packages[i].Location < packages[j].Location
	})
	return packages, nil
}

// UpdateLevel returns the semver distance from current to latest. A latest version that is
// not newer yields LevelNone.
func UpdateLevel(current, latest string) (changetypes.Level, error) {
	from, err := semver.NewVersion(current)
	if err != nil {
		return changetypes.LevelNone, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	to, err := semver.NewVersion(latest)
	if err != nil {
		return changetypes.LevelNone, fmt.Errorf("invalid latest version %q: %w", latest, err)
	}

	switch {
	case !to.GreaterThan(from):
		return changetypes.LevelNone, nil
	case to.Major() != from.Major():
		return changetypes.LevelMajor, nil
	case to.Minor() != from.Minor():
		return changetypes.LevelMinor, nil
	default:
		return changetypes.LevelPatch, nil
	}
}

// RunOutdated runs `npm outdated --json` in dir and parses its output. npm exits with status 1
// whenever something is outdated, so that status is only an error when nothing was printed.
func RunOutdated(ctx context.Context, dir string) ([]changetypes.OutdatedPackage, error) {
	cmd := exec.CommandContext(ctx, Command, "outdated", "--json")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running npm outdated", "dir", dir)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 || len(bytes.TrimSpace(out)) == 0 {
			return nil, fmt.Errorf("npm outdated failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	}

	return ParseOutdated(out)
}
