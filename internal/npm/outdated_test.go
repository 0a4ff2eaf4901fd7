package npm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"changelens/pkg/changetypes"
)

const outdatedJSON = `{
  "react": {"current": "17.0.2", "wanted": "17.0.2", "latest": "18.3.1", "location": "node_modules/react"},
  "lodash": {"current": "4.17.20", "wanted": "4.17.21", "latest": "4.17.21", "location": "node_modules/lodash"},
  "@scope/ui": [
    {"current": "1.2.0", "wanted": "1.4.0", "latest": "1.4.0", "location": "packages/b/node_modules/@scope/ui"},
    {"current": "1.3.0", "wanted": "1.4.0", "latest": "1.4.0", "location": "packages/a/node_modules/@scope/ui"}
  ],
  "missing": {"wanted": "2.0.0", "latest": "3.0.0"},
  "weird": {"current": "git+https://example.com/x.git", "latest": "1.0.0"}
}`

func TestParseOutdated(t *testing.T) {
	packages, err := ParseOutdated([]byte(outdatedJSON))
	require.NoError(t, err)
	require.Len(t, packages, 6)

	type row struct {
		name     string
		location string
		level    changetypes.Level
	}
	var got []row
	for _, p := range packages {
		got = append(got, row{p.Name, p.Location, p.Level})
	}

	assert.Equal(t, []row{
		{"@scope/ui", "packages/a/node_modules/@scope/ui", changetypes.LevelMinor},
		{"@scope/ui", "packages/b/node_modules/@scope/ui", changetypes.LevelMinor},
		{"lodash", "node_modules/lodash", changetypes.LevelPatch},
		{"missing", "", changetypes.LevelMajor},
		{"react", "node_modules/react", changetypes.LevelMajor},
		{"weird", "", changetypes.LevelNone},
	}, got)
}

func TestParseOutdated_Errors(t *testing.T) {
	packages, err := ParseOutdated([]byte("  \n"))
	assert.NoError(t, err)
	assert.Empty(t, packages)

	_, err = ParseOutdated([]byte(`[1,2]`))
	assert.ErrorContains(t, err, "failed to decode npm outdated output")

	_, err = ParseOutdated([]byte(`{"x": "nope"}`))
	assert.ErrorContains(t, err, "failed to decode outdated entry x")
}

func TestUpdateLevel(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		want    changetypes.Level
		wantErr bool
	}{
		{"1.0.0", "2.0.0", changetypes.LevelMajor, false},
		{"1.0.0", "1.1.0", changetypes.LevelMinor, false},
		{"1.0.0", "1.0.1", changetypes.LevelPatch, false},
		{"1.0.0-beta.1", "1.0.0", changetypes.LevelPatch, false},
		{"v1.2.3", "1.2.3", changetypes.LevelNone, false},
		{"2.0.0", "1.9.9", changetypes.LevelNone, false},
		{"latest", "1.0.0", changetypes.LevelNone, true},
		{"1.0.0", "", changetypes.LevelNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			got, err := UpdateLevel(tt.current, tt.latest)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeFakeNPM(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "npm")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))

	original := Command
	Command = path
	t.Cleanup(func() { Command = original })
}

func TestRunOutdated(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    int
		wantErr string
	}{
		{
			name:   "exit 1 with output is success",
			script: "echo '{\"react\": {\"current\": \"17.0.0\", \"latest\": \"18.0.0\"}}'\nexit 1\n",
			want:   1,
		},
		{
			name:   "nothing outdated",
			script: "echo '{}'\nexit 0\n",
			want:   0,
		},
		{
			name:    "exit 1 without output fails",
			script:  "echo 'no package.json' >&2\nexit 1\n",
			wantErr: "no package.json",
		},
		{
			name:    "other exit codes fail",
			script:  "echo '{}'\nexit 2\n",
			wantErr: "npm outdated failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFakeNPM(t, tt.script)

			packages, err := RunOutdated(context.Background(), t.TempDir())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, packages, tt.want)
		})
	}
}
