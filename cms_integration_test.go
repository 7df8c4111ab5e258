package cms_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-flatcms"
	"github.com/goliatone/go-flatcms/internal/commands"
	"github.com/goliatone/go-flatcms/internal/di"
)

func newFixtureModule(t *testing.T, opts ...di.Option) *cms.Module {
	t.Helper()
	cfg := cms.DefaultConfig()
	cfg.Site.Name = "Fixture"
	cfg.Paths.Content = filepath.Join("testdata", "site", "content")
	cfg.Paths.Public = filepath.Join("testdata", "site", "public")
	cfg.Paths.Themes = filepath.Join("testdata", "site", "themes")
	cfg.Auth.AdminToken = "s3cret"
	cfg.Locales = []string{"en", "de"}

	module, err := cms.New(cfg, opts...)
	if err != nil {
		t.Fatalf("cms.New: %v", err)
	}
	return module
}

func TestModuleRendersHomePage(t *testing.T) {
	module := newFixtureModule(t)

	out, err := module.RenderPage(context.Background(), "/", cms.RequestContext{})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`href="/blog/hello"`,
		`href="/blog/second"`,
		`layout-rows`,
		`<code>[pages]</code>`,
		`[tags]`,
		`href="/blog" class="btn btn-outline-primary"`,
		`<title>Home | Fixture</title>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in home page:\n%s", want, html)
		}
	}
	if strings.Contains(html, "/blog/unfinished") {
		t.Fatalf("draft leaked into listing:\n%s", html)
	}
}

func TestModuleProcessLeavesCodeUntouched(t *testing.T) {
	module := newFixtureModule(t)

	body := "Use `[pages]` here.\n\n```\n[folder]\n```\n"
	out, err := module.Process(context.Background(), body, cms.RequestContext{Route: "blog"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out != body {
		t.Fatalf("expected body unchanged, got %q", out)
	}
}

func TestModuleServesBlogListPages(t *testing.T) {
	handler := newFixtureModule(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	first := rec.Body.String()
	if !strings.Contains(first, "Second Post") || strings.Contains(first, "Hello World") {
		t.Fatalf("expected newest post on page one:\n%s", first)
	}
	if !strings.Contains(first, `class="page-next"`) {
		t.Fatalf("expected next link:\n%s", first)
	}
	if !strings.Contains(first, `tag-weight-`) || !strings.Contains(first, `?tag=go`) {
		t.Fatalf("expected tag cloud:\n%s", first)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog?page=2", nil))
	second := rec.Body.String()
	if !strings.Contains(second, "Hello World") || !strings.Contains(second, `class="page-prev"`) {
		t.Fatalf("expected older post on page two:\n%s", second)
	}
}

func TestModuleAuthBlocks(t *testing.T) {
	handler := newFixtureModule(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/second", nil))
	body := rec.Body.String()
	if strings.Contains(body, "Hidden notes.") || !strings.Contains(body, "Sign in to read more") {
		t.Fatalf("expected locked block for anonymous visitor:\n%s", body)
	}

	req := httptest.NewRequest(http.MethodGet, "/blog/second", nil)
	req.AddCookie(&http.Cookie{Name: "flatcms_admin", Value: "s3cret"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Hidden notes.") {
		t.Fatalf("expected unlocked block for admin:\n%s", rec.Body.String())
	}
}

func TestModuleRendersGallery(t *testing.T) {
	module := newFixtureModule(t)

	out, err := module.RenderPage(context.Background(), "docs/photos", cms.RequestContext{})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `src="/assets/galleries/trip/01_beach.jpg" alt="beach"`) ||
		!strings.Contains(html, `src="/assets/galleries/trip/02_city.png"`) {
		t.Fatalf("expected gallery images:\n%s", html)
	}
	if strings.Contains(html, "notes.txt") {
		t.Fatalf("non image listed:\n%s", html)
	}
	if got := module.Metrics().Renders["gallery"]; got != 1 {
		t.Fatalf("expected one gallery render, got %d", got)
	}
}

func TestModuleTranslatesNotices(t *testing.T) {
	module := newFixtureModule(t)

	out, err := module.Process(context.Background(), "[gallery]", cms.RequestContext{Locale: "de"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(out, "alert-warning") {
		t.Fatalf("expected warning notice, got %s", out)
	}
}

func TestModuleDraftIsNotFound(t *testing.T) {
	module := newFixtureModule(t)

	_, err := module.RenderPage(context.Background(), "blog/unfinished", cms.RequestContext{})
	if !errors.Is(err, cms.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestModuleCommands(t *testing.T) {
	module := newFixtureModule(t)

	var out bytes.Buffer
	if err := module.Commands().RenderPage(&out).Execute(context.Background(), commands.RenderPageCommand{Route: "blog/hello"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "First post.") {
		t.Fatalf("unexpected render output:\n%s", out.String())
	}

	var stats cms.IndexStats
	if err := module.Commands().RebuildIndex(func(s cms.IndexStats) { stats = s }).Execute(context.Background(), commands.RebuildIndexCommand{}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if stats.Pages != 5 || stats.Drafts != 1 || stats.Folders != 3 {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestModuleBuildSite(t *testing.T) {
	module := newFixtureModule(t)
	out := t.TempDir()

	var result *cms.BuildResult
	err := module.Commands().BuildSite(func(r *cms.BuildResult) { result = r }).
		Execute(context.Background(), commands.BuildSiteCommand{OutputDir: out})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 5 || result.AssetsBuilt != 3 || len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected build result %#v", result)
	}
	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("read home: %v", err)
	}
	if !strings.Contains(string(data), `href="/blog/hello"`) {
		t.Fatalf("expected expanded shortcodes in export:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(out, "assets", "galleries", "trip", "01_beach.jpg")); err != nil {
		t.Fatalf("expected copied gallery image: %v", err)
	}
}
