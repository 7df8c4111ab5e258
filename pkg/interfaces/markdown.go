package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService loads Markdown pages from the content tree and renders them
// through the shortcode pipeline.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderPage(ctx context.Context, route string, req RequestContext) (*RenderedPage, error)
}

// Document represents a Markdown file with parsed metadata and content.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores the SHA-256 digest of the original file content.
	Checksum []byte
}

// FrontMatter models metadata extracted from Markdown files. Unknown keys are
// preserved in Custom.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title" toml:"title"`
	Slug        string         `yaml:"slug" json:"slug" toml:"slug"`
	Description string         `yaml:"description" json:"description" toml:"description"`
	Summary     string         `yaml:"summary" json:"summary" toml:"summary"`
	Template    string         `yaml:"template" json:"template" toml:"template"`
	Tags        []string       `yaml:"tags" json:"tags" toml:"tags"`
	Author      string         `yaml:"author" json:"author" toml:"author"`
	Date        time.Time      `yaml:"date" json:"date" toml:"date"`
	Draft       bool           `yaml:"draft" json:"draft" toml:"draft"`
	Custom      map[string]any `yaml:",inline" json:"custom" toml:"-"`
	Raw         map[string]any `yaml:"-" json:"raw" toml:"-"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}

// RenderedPage is a fully processed page ready for theme rendering.
type RenderedPage struct {
	ID          uuid.UUID
	Route       string
	Title       string
	Template    string
	FrontMatter FrontMatter
	HTML        []byte
	Locale      string
}
