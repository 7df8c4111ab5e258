package cms

import (
	"context"
	"io"
	"net/http"

	"github.com/goliatone/go-flatcms/internal/commands"
	"github.com/goliatone/go-flatcms/internal/content"
	"github.com/goliatone/go-flatcms/internal/di"
	"github.com/goliatone/go-flatcms/internal/generator"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/internal/shortcode"
	"github.com/goliatone/go-flatcms/internal/themes"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// ShortcodeService exports the shortcode pipeline contract.
type ShortcodeService = interfaces.ShortcodeService

// RequestContext exports the per request values shortcodes read.
type RequestContext = interfaces.RequestContext

// ContentIndex exports the folder index contract listing shortcodes query.
type ContentIndex = interfaces.ContentIndex

// RenderedPage exports a page ready for layout rendering.
type RenderedPage = interfaces.RenderedPage

// IndexStats exports the content index scan summary.
type IndexStats = content.Stats

// MetricsSnapshot exports the shortcode counters snapshot.
type MetricsSnapshot = shortcode.MetricsSnapshot

// BuildResult exports the static export summary.
type BuildResult = generator.BuildResult

// ErrPageNotFound is returned when no published page backs a route.
var ErrPageNotFound = markdown.ErrPageNotFound

// Module represents the top level CMS runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a CMS module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Shortcodes returns the shortcode pipeline.
func (m *Module) Shortcodes() ShortcodeService {
	return m.container.ShortcodeService()
}

// Markdown returns the page loader and renderer.
func (m *Module) Markdown() *markdown.Service {
	return m.container.MarkdownService()
}

// Index returns the content folder index.
func (m *Module) Index() *content.Index {
	return m.container.ContentIndex()
}

// Themes returns the theme layout renderer.
func (m *Module) Themes() *themes.Renderer {
	return m.container.LayoutRenderer()
}

// Handler returns the HTTP handler serving the site.
func (m *Module) Handler() http.Handler {
	return m.container.SiteHandler()
}

// Metrics returns a copy of the shortcode render counters.
func (m *Module) Metrics() MetricsSnapshot {
	return m.container.ShortcodeMetrics().Snapshot()
}

// Process expands shortcodes in body for req.
func (m *Module) Process(ctx context.Context, body string, req RequestContext) (string, error) {
	return m.container.ShortcodeService().Process(ctx, body, req)
}

// RenderPage resolves route and returns the full themed document.
func (m *Module) RenderPage(ctx context.Context, route string, req RequestContext) ([]byte, error) {
	page, err := m.container.MarkdownService().RenderPage(ctx, route, req)
	if err != nil {
		return nil, err
	}
	return m.container.LayoutRenderer().RenderPage(ctx, page)
}

// Commands exposes the command handlers driven by the CLI.
func (m *Module) Commands() Commands {
	return Commands{container: m.container}
}

// Commands groups the CLI command handlers.
type Commands struct {
	container *di.Container
}

// RenderPage returns the handler writing rendered pages to out or to the
// command's output file.
func (c Commands) RenderPage(out io.Writer) *commands.Handler[commands.RenderPageCommand] {
	return c.container.RenderPageHandler(out)
}

// RebuildIndex returns the handler rescanning the content tree.
func (c Commands) RebuildIndex(report func(IndexStats)) *commands.Handler[commands.RebuildIndexCommand] {
	return c.container.RebuildIndexHandler(report)
}

// BuildSite returns the handler exporting the site as static HTML.
func (c Commands) BuildSite(report func(*BuildResult)) *commands.Handler[commands.BuildSiteCommand] {
	return c.container.BuildSiteHandler(report)
}
