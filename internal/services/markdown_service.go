package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"changelens/internal/logger"
)

// StyleAuto selects a glamour style from the terminal's color profile.
const StyleAuto = "auto"

// MarkdownService renders changelens reports for the terminal using Glamour.
type MarkdownService struct {
	initialized bool
	style       string
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService instance.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{
		initialized: false,
		style:       StyleAuto,
		wordWrap:    100,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize sets up the MarkdownService with the current style and word wrap.
func (m *MarkdownService) Initialize() error {
	renderer, err := m.newRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized successfully", "style", m.style, "word_wrap", m.wordWrap)
	return nil
}

// Configure changes the style and word wrap. Unknown styles fall back to auto detection.
func (m *MarkdownService) Configure(style string, width int) error {
	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}
	if style == "" {
		style = StyleAuto
	}

	renderer, err := m.newRenderer(style, width)
	if err != nil {
		logger.Debug("Failed to create renderer with style, falling back to auto", "style", style, "error", err)
		style = StyleAuto
		if renderer, err = m.newRenderer(style, width); err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
	}

	m.style = style
	m.wordWrap = width
	m.renderer = renderer
	m.initialized = true
	logger.Debug("MarkdownService configured", "style", style, "word_wrap", width)
	return nil
}

// Style returns the configured style name.
func (m *MarkdownService) Style() string {
	return m.style
}

// Render renders markdown content to terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service: %w", ErrNotInitialized)
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}

// RenderPlain renders markdown and strips every escape sequence from the result.
func (m *MarkdownService) RenderPlain(markdown string) (string, error) {
	rendered, err := m.Render(markdown)
	if err != nil {
		return "", err
	}
	return ansi.Strip(rendered), nil
}

func (m *MarkdownService) newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch {
	case style == StyleAuto && lipgloss.ColorProfile() == termenv.Ascii:
		opts = append(opts, glamour.WithStandardStyle("notty"))
	case style == StyleAuto:
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStylePath(style))
	}
	return glamour.NewTermRenderer(opts...)
}
