package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-flatcms/internal/identity"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/shortcode"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// DefaultTemplate is the layout used when a page names none.
const DefaultTemplate = "page"

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	// ContentPath is the directory holding the Markdown tree.
	ContentPath string
	Pattern     string
	Recursive   bool
	Parser      interfaces.ParseOptions
}

// Service implements interfaces.MarkdownService for a content directory.
type Service struct {
	cfg        Config
	parser     interfaces.MarkdownParser
	loader     *Loader
	shortcodes interfaces.ShortcodeService
	logger     interfaces.Logger
}

// ServiceOption customises the service.
type ServiceOption func(*Service)

// WithParser overrides the goldmark parser.
func WithParser(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithShortcodes sets the shortcode pipeline run on page bodies before
// Markdown conversion.
func WithShortcodes(svc interfaces.ShortcodeService) ServiceOption {
	return func(s *Service) {
		if svc != nil {
			s.shortcodes = svc
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS reads documents from filesystem instead of ContentPath.
func WithFS(filesystem fs.FS) ServiceOption {
	return func(s *Service) {
		if filesystem != nil {
			s.loader = NewLoader(filesystem, LoaderConfig{Pattern: s.cfg.Pattern, Recursive: s.cfg.Recursive})
		}
	}
}

// NewService builds a Markdown service over cfg.ContentPath.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		cfg:        cfg,
		parser:     NewGoldmarkParser(cfg.Parser),
		shortcodes: shortcode.NewNoOpService(),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		filesystem, err := contentFS(cfg.ContentPath)
		if err != nil {
			return nil, err
		}
		s.loader = NewLoader(filesystem, LoaderConfig{Pattern: cfg.Pattern, Recursive: cfg.Recursive})
	}
	return s, nil
}

// Load reads and renders a single document. Shortcodes are not expanded.
func (s *Service) Load(ctx context.Context, name string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	doc, err := s.loader.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, doc, opts.Parser); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadDirectory reads and renders every document below dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	docs, err := s.loader.LoadDirectory(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if _, err := s.RenderDocument(ctx, doc, opts.Parser); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Render converts Markdown to HTML with the configured defaults merged with opts.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderDocument converts the document body and stores the result in BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return html, nil
}

// ResolveRoute finds the document backing route: "<route>.md" first, then
// "<route>/index.md". Drafts are treated as missing.
func (s *Service) ResolveRoute(ctx context.Context, route string) (*interfaces.Document, error) {
	route = shortcode.NormalizePath(route)
	for _, name := range routeCandidates(route) {
		doc, err := s.loader.LoadFile(ctx, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
				continue
			}
			return nil, err
		}
		if doc.FrontMatter.Draft {
			return nil, fmt.Errorf("%w: %s is a draft", ErrPageNotFound, route)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: /%s", ErrPageNotFound, route)
}

// RenderPage resolves route, expands shortcodes in the body and converts it
// to HTML.
func (s *Service) RenderPage(ctx context.Context, route string, req interfaces.RequestContext) (*interfaces.RenderedPage, error) {
	route = shortcode.NormalizePath(route)
	logger := logging.WithRequest(s.baseLogger(ctx), interfaces.RequestContext{Route: route, Locale: req.Locale, Page: req.Page})
	start := time.Now()

	doc, err := s.ResolveRoute(ctx, route)
	if err != nil {
		if !errors.Is(err, ErrPageNotFound) {
			logging.WithFields(logger, map[string]any{"error": err}).Error("markdown.page.resolve_failed")
		}
		return nil, err
	}

	req.Route = route
	body, err := s.shortcodes.Process(ctx, string(doc.Body), req)
	if err != nil {
		return nil, fmt.Errorf("markdown shortcodes %s: %w", doc.FilePath, err)
	}
	doc.Body = []byte(body)
	html, err := s.RenderDocument(ctx, doc, interfaces.ParseOptions{})
	if err != nil {
		logging.WithFields(logger, map[string]any{"error": err}).Error("markdown.page.render_failed")
		return nil, err
	}

	template := strings.TrimSpace(doc.FrontMatter.Template)
	if template == "" {
		template = DefaultTemplate
	}

	logging.WithFields(logger, map[string]any{
		"file":        doc.FilePath,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("markdown.page.rendered")

	return &interfaces.RenderedPage{
		ID:          identity.PageUUID(route),
		Route:       route,
		Title:       TitleFor(doc),
		Template:    template,
		FrontMatter: doc.FrontMatter,
		HTML:        html,
		Locale:      req.Locale,
	}, nil
}

// Loader exposes the underlying loader for the content index.
func (s *Service) Loader() *Loader {
	return s.loader
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return s.logger
	}
	return s.logger.WithContext(ctx)
}

func routeCandidates(route string) []string {
	if route == "" {
		return []string{"index.md"}
	}
	return []string{route + ".md", route + "/index.md"}
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	result.HardWraps = result.HardWraps || override.HardWraps
	result.SafeMode = result.SafeMode || override.SafeMode
	return result
}

func contentFS(dir string) (fs.FS, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("markdown service: stat content path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown service: content path %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

var _ interfaces.MarkdownService = (*Service)(nil)
