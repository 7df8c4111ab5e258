package di

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-flatcms/internal/auth"
	"github.com/goliatone/go-flatcms/internal/commands"
	"github.com/goliatone/go-flatcms/internal/content"
	"github.com/goliatone/go-flatcms/internal/generator"
	cmshttp "github.com/goliatone/go-flatcms/internal/http"
	"github.com/goliatone/go-flatcms/internal/i18n"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/logging/console"
	"github.com/goliatone/go-flatcms/internal/logging/gologger"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
	"github.com/goliatone/go-flatcms/internal/shortcode"
	"github.com/goliatone/go-flatcms/internal/themes"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Container wires the site services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer

	i18nSvc      i18n.Service
	index        *content.Index
	contentIndex interfaces.ContentIndex
	authChecker  interfaces.AuthChecker
	metrics      *shortcode.CounterMetrics
	shortcodes   interfaces.ShortcodeService
	markdownSvc  *markdown.Service
	selector     *themes.Selector
	renderer     *themes.Renderer
	site         *cmshttp.SiteHandler
	generator    *generator.Service

	shortcodeOpts  []shortcode.ServiceOption
	manifestLoader themes.ManifestLoader
	templateFuncs  map[string]any
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter redirects the console provider output.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithI18nService replaces the embedded translation catalogue.
func WithI18nService(svc i18n.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.i18nSvc = svc
		}
	}
}

// WithAuthChecker overrides the request scoped auth checker used by shortcodes.
func WithAuthChecker(checker interfaces.AuthChecker) Option {
	return func(c *Container) {
		if checker != nil {
			c.authChecker = checker
		}
	}
}

// WithShortcodeOptions appends options applied after the configured ones,
// e.g. extra handlers registered with shortcode.WithHandler.
func WithShortcodeOptions(opts ...shortcode.ServiceOption) Option {
	return func(c *Container) {
		c.shortcodeOpts = append(c.shortcodeOpts, opts...)
	}
}

// WithManifestLoader overrides how theme manifests are read.
func WithManifestLoader(loader themes.ManifestLoader) Option {
	return func(c *Container) {
		c.manifestLoader = loader
	}
}

// WithTemplateFuncs adds functions available to theme layouts.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(c *Container) {
		if c.templateFuncs == nil {
			c.templateFuncs = map[string]any{}
		}
		for name, fn := range funcs {
			c.templateFuncs[name] = fn
		}
	}
}

// NewContainer validates cfg and builds every service eagerly.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		authChecker: auth.ContextChecker{},
		metrics:     shortcode.NewCounterMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}

	steps := []func() error{
		c.configureLogger,
		c.configureI18n,
		c.configureIndex,
		c.configureShortcodes,
		c.configureMarkdown,
		c.configureThemes,
		c.configureSite,
		c.configureGenerator,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	logging.WithFields(logging.ModuleLogger(c.loggerProvider, "flatcms"), map[string]any{
		"content":    cfg.Paths.Content,
		"theme":      cfg.Themes.DefaultTheme,
		"shortcodes": cfg.Shortcodes.Enabled,
		"cache":      cfg.Cache.Enabled,
	}).Info("container.configured")
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   c.logWriter,
			MinLevel: level,
		})
	}
	return nil
}

func (c *Container) configureI18n() error {
	if c.i18nSvc != nil {
		return nil
	}
	fixture, err := i18n.DefaultFixture()
	if err != nil {
		return err
	}
	if path := strings.TrimSpace(c.Config.I18N.TranslationsFile); path != "" {
		extra, err := i18n.NewLoader(path).Load(context.Background())
		if err != nil {
			return err
		}
		fixture.Merge(extra)
	}

	cfg := i18n.FromModuleConfig(c.Config.DefaultLocale, c.Config.Locales)
	svc, err := i18n.NewInMemoryService(cfg, fixture.Translations)
	if err != nil {
		return fmt.Errorf("di: i18n: %w", err)
	}
	c.i18nSvc = svc
	return nil
}

func (c *Container) configureIndex() error {
	index, err := content.NewDirIndex(c.Config.Paths.Content,
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.index = index
	c.contentIndex = index
	if !c.Config.Cache.Enabled {
		c.contentIndex = uncachedIndex{index: index}
	}
	return nil
}

func (c *Container) configureShortcodes() error {
	if !c.Config.Shortcodes.Enabled {
		c.shortcodes = shortcode.NewNoOpService()
		return nil
	}
	opts := []shortcode.ServiceOption{
		shortcode.WithContentIndex(c.contentIndex),
		shortcode.WithAuthChecker(c.authChecker),
		shortcode.WithTranslator(c.i18nSvc.Translator()),
		shortcode.WithLogger(logging.ShortcodeLogger(c.loggerProvider)),
		shortcode.WithMetrics(c.metrics),
		shortcode.WithPublicPath(c.Config.Paths.Public),
		shortcode.WithItemsPerPage(c.Config.ItemsPerPage),
		shortcode.WithDefaultLocale(c.Config.DefaultLocale),
	}
	c.shortcodes = shortcode.NewService(append(opts, c.shortcodeOpts...)...)
	return nil
}

func (c *Container) configureMarkdown() error {
	parser := c.Config.Markdown.Parser
	svc, err := markdown.NewService(markdown.Config{
		ContentPath: c.Config.Paths.Content,
		Pattern:     c.Config.Markdown.Pattern,
		Recursive:   c.Config.Markdown.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: parser.Extensions,
			HardWraps:  parser.HardWraps,
			SafeMode:   parser.SafeMode,
		},
	},
		markdown.WithShortcodes(c.shortcodes),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureThemes() error {
	var selectorOpts []themes.SelectorOption
	if c.manifestLoader != nil {
		selectorOpts = append(selectorOpts, themes.WithManifestLoader(c.manifestLoader))
	}
	c.selector = themes.NewSelector(themes.Config{
		Dir:               c.Config.Paths.Themes,
		DefaultTheme:      c.Config.Themes.DefaultTheme,
		DefaultVariant:    c.Config.Themes.DefaultVariant,
		CSSVariablePrefix: c.Config.Themes.CSSVariablePrefix,
	}, selectorOpts...)

	funcs := map[string]any{}
	for name, fn := range c.i18nSvc.TemplateHelpers() {
		funcs[name] = fn
	}
	for name, fn := range c.templateFuncs {
		funcs[name] = fn
	}
	renderer, err := themes.NewRenderer(c.selector,
		themes.WithSiteName(c.Config.Site.Name),
		themes.WithFuncs(funcs),
		themes.WithTranslator(c.i18nSvc.Translator()),
		themes.WithLogger(logging.ThemesLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.renderer = renderer
	return nil
}

func (c *Container) configureSite() error {
	c.site = cmshttp.NewSiteHandler(c.markdownSvc, c.renderer, cmshttp.Config{
		PublicDir:     c.Config.Paths.Public,
		DefaultLocale: c.i18nSvc.DefaultLocale(),
		Locales:       c.i18nSvc.Locales(),
		AdminToken:    c.Config.Auth.AdminToken,
	}, cmshttp.WithLogger(logging.HTTPLogger(c.loggerProvider)))
	return nil
}

func (c *Container) configureGenerator() error {
	gen := c.Config.Generator
	c.generator = generator.NewService(generator.Config{
		OutputDir:       gen.OutputDir,
		PublicDir:       c.Config.Paths.Public,
		BaseURL:         c.Config.Site.BaseURL,
		Locale:          c.Config.DefaultLocale,
		Workers:         gen.Workers,
		CopyAssets:      gen.CopyAssets,
		GenerateSitemap: gen.GenerateSitemap,
		GenerateRobots:  gen.GenerateRobots,
	}, generator.Dependencies{
		Index:  c.index,
		Pages:  c.markdownSvc,
		Layout: c.renderer,
		Logger: logging.ModuleLogger(c.loggerProvider, "flatcms.generator"),
	})
	return nil
}

// LoggerProvider returns the provider every module logger comes from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// I18nService returns the translation service.
func (c *Container) I18nService() i18n.Service {
	return c.i18nSvc
}

// ContentIndex returns the folder index backing listing shortcodes.
func (c *Container) ContentIndex() *content.Index {
	return c.index
}

// ShortcodeService returns the shortcode pipeline, a pass-through when disabled.
func (c *Container) ShortcodeService() interfaces.ShortcodeService {
	return c.shortcodes
}

// ShortcodeMetrics returns the counters fed by the shortcode pipeline.
func (c *Container) ShortcodeMetrics() *shortcode.CounterMetrics {
	return c.metrics
}

// MarkdownService returns the page loader and renderer.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// ThemeSelector returns the go-theme selector.
func (c *Container) ThemeSelector() *themes.Selector {
	return c.selector
}

// LayoutRenderer returns the theme layout renderer.
func (c *Container) LayoutRenderer() *themes.Renderer {
	return c.renderer
}

// SiteHandler returns the HTTP handler serving pages and assets.
func (c *Container) SiteHandler() *cmshttp.SiteHandler {
	return c.site
}

// RenderPageHandler returns the render command handler writing to out.
func (c *Container) RenderPageHandler(out io.Writer) *commands.Handler[commands.RenderPageCommand] {
	return commands.NewRenderPageHandler(c.markdownSvc, c.renderer, out,
		commands.WithLogger[commands.RenderPageCommand](commands.CommandLogger(c.loggerProvider, "render_page")),
	)
}

// RebuildIndexHandler returns the index rebuild command handler. It also
// drops cached theme templates.
func (c *Container) RebuildIndexHandler(report func(content.Stats)) *commands.Handler[commands.RebuildIndexCommand] {
	return commands.NewRebuildIndexHandler(rebuilder{index: c.index, renderer: c.renderer}, report,
		commands.WithLogger[commands.RebuildIndexCommand](commands.CommandLogger(c.loggerProvider, "rebuild_index")),
	)
}

// Generator returns the static site exporter.
func (c *Container) Generator() *generator.Service {
	return c.generator
}

// BuildSiteHandler returns the static export command handler.
func (c *Container) BuildSiteHandler(report func(*generator.BuildResult)) *commands.Handler[commands.BuildSiteCommand] {
	return commands.NewBuildSiteHandler(c.generator, report,
		commands.WithLogger[commands.BuildSiteCommand](commands.CommandLogger(c.loggerProvider, "build_site")),
	)
}

// Watcher returns a content watcher feeding the index, or nil when
// cfg.Cache.Watch is off.
func (c *Container) Watcher(opts ...content.WatcherOption) (*content.Watcher, error) {
	if !c.Config.Cache.Watch {
		return nil, nil
	}
	base := []content.WatcherOption{
		content.WithDebounce(c.Config.Cache.Debounce),
		content.WithWatcherLogger(logging.ContentLogger(c.loggerProvider)),
	}
	return content.NewWatcher(c.Config.Paths.Content, rebuilder{index: c.index, renderer: c.renderer}, append(base, opts...)...)
}

type rebuilder struct {
	index    *content.Index
	renderer *themes.Renderer
}

func (r rebuilder) Invalidate() {
	r.index.Invalidate()
	r.renderer.Reset()
}

func (r rebuilder) Stats(ctx context.Context) (content.Stats, error) {
	return r.index.Stats(ctx)
}

// uncachedIndex rescans the content tree on every query.
type uncachedIndex struct {
	index *content.Index
}

var _ interfaces.ContentIndex = uncachedIndex{}

func (u uncachedIndex) FolderPages(ctx context.Context, path string, limit int) ([]interfaces.PageSummary, error) {
	u.index.Invalidate()
	return u.index.FolderPages(ctx, path, limit)
}

func (u uncachedIndex) FolderTags(ctx context.Context, path string, limit int) (map[string]int, error) {
	u.index.Invalidate()
	return u.index.FolderTags(ctx, path, limit)
}

func (u uncachedIndex) DirectSubfolders(ctx context.Context, path string, limit int) ([]interfaces.FolderSummary, error) {
	u.index.Invalidate()
	return u.index.DirectSubfolders(ctx, path, limit)
}

func (u uncachedIndex) BlogList(ctx context.Context, path string, perPage, page int) (*interfaces.BlogListing, error) {
	u.index.Invalidate()
	return u.index.BlogList(ctx, path, perPage, page)
}
