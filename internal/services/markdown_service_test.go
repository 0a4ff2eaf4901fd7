package services

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownService_Initialize(t *testing.T) {
	service := NewMarkdownService()
	assert.Equal(t, "markdown", service.Name())
	assert.False(t, service.initialized)

	require.NoError(t, service.Initialize())
	assert.True(t, service.initialized)
	assert.NotNil(t, service.renderer)
	assert.Equal(t, StyleAuto, service.Style())
}

func TestMarkdownService_Render(t *testing.T) {
	service := NewMarkdownService()

	_, err := service.Render("# Test")
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, service.Initialize())

	_, err = service.Render("   ")
	assert.ErrorContains(t, err, "cannot be empty")

	result, err := service.RenderPlain("# Hello World\n\n- breaking change")
	require.NoError(t, err)
	assert.Contains(t, result, "Hello World")
	assert.Contains(t, result, "breaking change")
	assert.NotContains(t, result, "\x1b[")
}

func TestMarkdownService_PlainProfileUsesNoTTY(t *testing.T) {
	original := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(original)
	lipgloss.SetColorProfile(termenv.Ascii)

	service := NewMarkdownService()
	require.NoError(t, service.Initialize())

	result, err := service.Render("## Features\n\nAdded **dark mode**.")
	require.NoError(t, err)
	assert.NotContains(t, result, "\x1b[")
	assert.Contains(t, result, "Features")
}

func TestMarkdownService_Configure(t *testing.T) {
	tests := []struct {
		name      string
		style     string
		width     int
		wantStyle string
		wantErr   bool
	}{
		{name: "standard style", style: "dark", width: 80, wantStyle: "dark"},
		{name: "empty style means auto", style: "", width: 80, wantStyle: StyleAuto},
		{name: "unknown style falls back", style: "/no/such/style.json", width: 80, wantStyle: StyleAuto},
		{name: "invalid width", style: "dark", width: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewMarkdownService()
			err := service.Configure(tt.style, tt.width)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStyle, service.Style())

			result, err := service.RenderPlain("# Title")
			require.NoError(t, err)
			assert.Contains(t, result, "Title")
		})
	}
}
