package themes

import (
	"context"
	"errors"
	"strings"
	"testing"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

type stubLoader struct {
	calls    int
	paths    []string
	manifest *gotheme.Manifest
	err      error
}

func (s *stubLoader) Load(themePath string) (*gotheme.Manifest, error) {
	s.calls++
	s.paths = append(s.paths, themePath)
	if s.err != nil {
		return nil, s.err
	}
	return s.manifest, nil
}

type stubTranslator map[string]string

func (s stubTranslator) Translate(locale, key string, _ ...any) (string, error) {
	if msg, ok := s[locale+":"+key]; ok {
		return msg, nil
	}
	return key, nil
}

func samplePage() *interfaces.RenderedPage {
	return &interfaces.RenderedPage{
		Route:       "blog/first",
		Title:       "First & best",
		Template:    "page",
		Locale:      "en",
		HTML:        []byte("<p>Hello <strong>world</strong></p>"),
		FrontMatter: interfaces.FrontMatter{Description: "A first post"},
	}
}

func TestRendererUsesEmbeddedLayoutWithoutTheme(t *testing.T) {
	r, err := NewRenderer(nil, WithSiteName("Flat"))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := r.RenderPage(context.Background(), samplePage())
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		"<title>First &amp; best | Flat</title>",
		`<meta name="description" content="A first post">`,
		"<p>Hello <strong>world</strong></p>",
		`<html lang="en">`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRendererFallsBackWhenNoDefaultTheme(t *testing.T) {
	loader := &stubLoader{}
	r, err := NewRenderer(NewSelector(Config{Dir: "testdata"}, WithManifestLoader(loader)))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := r.RenderPage(context.Background(), samplePage())
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !strings.Contains(string(out), "<main>") || loader.calls != 0 {
		t.Fatalf("expected embedded layout without loading manifests, got %s", out)
	}
}

func TestRendererUsesThemeTemplate(t *testing.T) {
	loader := &stubLoader{manifest: &gotheme.Manifest{Name: "aurora", Version: "1.0.0"}}
	selector := NewSelector(Config{Dir: "testdata", DefaultTheme: "aurora"}, WithManifestLoader(loader))
	r, err := NewRenderer(selector, WithFuncs(map[string]any{"shout": strings.ToUpper}))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	page := samplePage()
	page.Template = "listing"
	out, err := r.RenderPage(context.Background(), page)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, `data-theme="aurora"`) || !strings.Contains(got, `data-template="listing"`) {
		t.Fatalf("expected theme page layout to serve the listing template, got %s", got)
	}
	if !strings.Contains(got, "FIRST &amp; BEST|<p>Hello <strong>world</strong></p>") {
		t.Fatalf("expected template funcs and raw body, got %s", got)
	}

	if _, err := r.RenderPage(context.Background(), samplePage()); err != nil {
		t.Fatalf("second RenderPage: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected manifest to load once, got %d", loader.calls)
	}
}

func TestRendererNotFoundIsLocalised(t *testing.T) {
	r, err := NewRenderer(nil, WithTranslator(stubTranslator{"de:site.not_found": "Seite nicht gefunden"}))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := r.RenderNotFound(context.Background(), "/missing/<x>", "de")
	if err != nil {
		t.Fatalf("RenderNotFound: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "<h1>Seite nicht gefunden</h1>") || !strings.Contains(got, "/missing/&lt;x&gt;") {
		t.Fatalf("unexpected not found page %s", got)
	}
	if !strings.Contains(got, `class="template-404"`) {
		t.Fatalf("expected 404 template key, got %s", got)
	}
}

func TestSelectorErrors(t *testing.T) {
	if _, err := NewSelector(Config{}).Select("", ""); !errors.Is(err, ErrNoTheme) {
		t.Fatalf("expected ErrNoTheme, got %v", err)
	}

	loader := &stubLoader{err: errors.New("boom")}
	selector := NewSelector(Config{Dir: "themes"}, WithManifestLoader(loader))
	if _, err := selector.Select("missing", ""); err == nil {
		t.Fatal("expected loader error")
	}
	if len(loader.paths) != 1 || loader.paths[0] != selector.Dir("missing") {
		t.Fatalf("expected loader to receive the theme dir, got %v", loader.paths)
	}
	if err := selector.Register(nil); err == nil {
		t.Fatal("expected error registering nil manifest")
	}
}

func TestRenderPageRejectsNil(t *testing.T) {
	r, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if _, err := r.RenderPage(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil page")
	}
}
