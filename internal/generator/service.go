package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// ErrOutputDirRequired is returned when a build has nowhere to write.
var ErrOutputDirRequired = errors.New("generator: output directory is required")

// PageLister enumerates the routes a build renders.
type PageLister interface {
	AllPages(ctx context.Context) ([]interfaces.PageSummary, error)
}

// PageRenderer resolves and renders a route body.
type PageRenderer interface {
	RenderPage(ctx context.Context, route string, req interfaces.RequestContext) (*interfaces.RenderedPage, error)
}

// LayoutRenderer wraps a rendered body in the theme layout.
type LayoutRenderer interface {
	RenderPage(ctx context.Context, page *interfaces.RenderedPage) ([]byte, error)
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	PublicDir       string
	BaseURL         string
	Locale          string
	Workers         int
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// OutputDir overrides Config.OutputDir.
	OutputDir string
	// Routes limits the build to these routes. Empty builds every page.
	Routes []string
	DryRun bool
}

// RenderedPage describes one written page.
type RenderedPage struct {
	Route        string
	Output       string
	Checksum     string
	Size         int
	LastModified time.Time
}

// RenderDiagnostic records a page that failed to render.
type RenderDiagnostic struct {
	Route string
	Err   error
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt  int
	AssetsBuilt int
	Duration    time.Duration
	Rendered    []RenderedPage
	Diagnostics []RenderDiagnostic
	DryRun      bool
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Index  PageLister
	Pages  PageRenderer
	Layout LayoutRenderer
	Logger interfaces.Logger
}

// Service renders the whole site to static files.
type Service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

// NewService wires a generator with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &Service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic *RenderDiagnostic
}

// Build renders every published page to <OutputDir>/<route>/index.html,
// then copies public assets and writes sitemap.xml and robots.txt as
// configured. Pages that fail to render are reported as diagnostics and do
// not abort the build.
func (s *Service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	start := s.now()
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = strings.TrimSpace(s.cfg.OutputDir)
	}
	if outputDir == "" {
		return nil, ErrOutputDirRequired
	}

	routes, modified, err := s.routes(ctx, opts.Routes)
	if err != nil {
		return nil, err
	}

	var writer artifactWriter = dirWriter{root: outputDir}
	if opts.DryRun {
		writer = noopWriter{}
	}

	result := &BuildResult{DryRun: opts.DryRun}
	var mu sync.Mutex
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if outcome.diagnostic != nil {
			result.Diagnostics = append(result.Diagnostics, *outcome.diagnostic)
			return
		}
		outcome.page.LastModified = modified[outcome.page.Route]
		result.Rendered = append(result.Rendered, outcome.page)
		result.PagesBuilt++
	}

	if err := s.renderConcurrently(ctx, writer, routes, collect); err != nil {
		return nil, err
	}

	if s.cfg.CopyAssets {
		copied, err := copyAssets(ctx, writer, s.cfg.PublicDir)
		if err != nil {
			return nil, err
		}
		result.AssetsBuilt = copied
	}
	if s.cfg.GenerateSitemap {
		sitemap := buildSitemap(s.cfg.BaseURL, result.Rendered, start)
		if err := writer.WriteFile(ctx, "sitemap.xml", []byte(sitemap)); err != nil {
			return nil, err
		}
	}
	if s.cfg.GenerateRobots {
		if err := writer.WriteFile(ctx, "robots.txt", []byte(buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap))); err != nil {
			return nil, err
		}
	}

	result.Duration = s.now().Sub(start)
	logging.WithFields(s.deps.Logger.WithContext(ctx), map[string]any{
		"pages":       result.PagesBuilt,
		"assets":      result.AssetsBuilt,
		"failures":    len(result.Diagnostics),
		"dry_run":     opts.DryRun,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("generator.build.completed")
	return result, nil
}

func (s *Service) routes(ctx context.Context, only []string) ([]string, map[string]time.Time, error) {
	pages, err := s.deps.Index.AllPages(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: list pages: %w", err)
	}
	modified := make(map[string]time.Time, len(pages))
	routes := make([]string, 0, len(pages))
	for _, p := range pages {
		modified[p.Route] = p.Date
		routes = append(routes, p.Route)
	}
	if len(only) == 0 {
		return routes, modified, nil
	}

	routes = routes[:0]
	for _, route := range only {
		route = strings.Trim(strings.TrimSpace(route), "/")
		if _, ok := modified[route]; ok {
			routes = append(routes, route)
		}
	}
	return routes, modified, nil
}

func (s *Service) renderConcurrently(ctx context.Context, writer artifactWriter, routes []string, collect func(renderOutcome)) error {
	if len(routes) == 0 {
		return nil
	}
	workers := s.effectiveWorkerCount(len(routes))

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for route := range jobs {
				collect(s.renderPage(ctx, writer, route))
			}
		}()
	}

	for _, route := range routes {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- route:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *Service) renderPage(ctx context.Context, writer artifactWriter, route string) renderOutcome {
	fail := func(err error) renderOutcome {
		logging.WithFields(s.deps.Logger.WithContext(ctx), map[string]any{
			"route": route,
			"error": err,
		}).Warn("generator.page.failed")
		return renderOutcome{diagnostic: &RenderDiagnostic{Route: route, Err: err}}
	}

	page, err := s.deps.Pages.RenderPage(ctx, route, interfaces.RequestContext{Route: route, Page: 1, Locale: s.cfg.Locale})
	if err != nil {
		return fail(err)
	}
	html := page.HTML
	if s.deps.Layout != nil {
		if html, err = s.deps.Layout.RenderPage(ctx, page); err != nil {
			return fail(err)
		}
	}

	output := outputPath(route)
	if err := writer.WriteFile(ctx, output, html); err != nil {
		return fail(err)
	}
	return renderOutcome{page: RenderedPage{
		Route:    route,
		Output:   output,
		Checksum: computeHash(html),
		Size:     len(html),
	}}
}

func (s *Service) effectiveWorkerCount(jobs int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}

// outputPath maps a route to its index.html below the output root.
func outputPath(route string) string {
	return path.Join(route, "index.html")
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
