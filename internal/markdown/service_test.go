package markdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-flatcms/internal/identity"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

type recordingShortcodes struct {
	requests []interfaces.RequestContext
	bodies   []string
}

func (r *recordingShortcodes) Process(_ context.Context, content string, req interfaces.RequestContext) (string, error) {
	r.requests = append(r.requests, req)
	r.bodies = append(r.bodies, content)
	return strings.ReplaceAll(content, "[pages]", "**expanded**"), nil
}

func newFixtureService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(Config{ContentPath: filepath.Join("testdata", "content"), Recursive: true}, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceRenderPageRunsShortcodesBeforeMarkdown(t *testing.T) {
	shortcodes := &recordingShortcodes{}
	svc := newFixtureService(t, WithShortcodes(shortcodes))

	page, err := svc.RenderPage(context.Background(), "/blog/", interfaces.RequestContext{Page: 2, Locale: "en"})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}

	if page.Route != "blog" || page.Title != "Blog" || page.Template != "listing" {
		t.Fatalf("unexpected page metadata: %#v", page)
	}
	if page.ID != identity.PageUUID("blog") {
		t.Fatalf("expected deterministic page id")
	}
	if !strings.Contains(string(page.HTML), "<strong>expanded</strong>") {
		t.Fatalf("expected shortcode output to be rendered as markdown, got %s", page.HTML)
	}
	if len(shortcodes.requests) != 1 || shortcodes.requests[0].Route != "blog" || shortcodes.requests[0].Page != 2 {
		t.Fatalf("unexpected shortcode request: %#v", shortcodes.requests)
	}
}

func TestServiceRenderPagePrefersFileOverIndex(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.RenderPage(context.Background(), "blog/first-post", interfaces.RequestContext{})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if page.Title != "First post" || page.Template != DefaultTemplate {
		t.Fatalf("unexpected page: %#v", page)
	}
	if !strings.Contains(string(page.HTML), "<code>[pages]</code>") {
		t.Fatalf("expected inline code to render literally, got %s", page.HTML)
	}
}

func TestServiceRenderPageRoot(t *testing.T) {
	svc := newFixtureService(t)

	page, err := svc.RenderPage(context.Background(), "/", interfaces.RequestContext{})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if page.Title != "Home" || page.Route != "" {
		t.Fatalf("unexpected root page: %#v", page)
	}
}

func TestServiceRenderPageNotFound(t *testing.T) {
	svc := newFixtureService(t)

	for _, route := range []string{"missing", "blog/secret-draft", "../../etc/passwd", "docs"} {
		if _, err := svc.RenderPage(context.Background(), route, interfaces.RequestContext{}); !errors.Is(err, ErrPageNotFound) {
			t.Fatalf("route %q: expected ErrPageNotFound, got %v", route, err)
		}
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newFixtureService(t)

	docs, err := svc.LoadDirectory(context.Background(), "blog", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	var names []string
	for _, doc := range docs {
		names = append(names, doc.FilePath)
		if len(doc.BodyHTML) == 0 {
			t.Fatalf("expected %s to be rendered", doc.FilePath)
		}
	}
	if strings.Join(names, ",") != "blog/first-post.md,blog/index.md,blog/secret-draft.md" {
		t.Fatalf("unexpected documents %v", names)
	}
}

func TestServiceLoadDirectoryNonRecursive(t *testing.T) {
	svc := newFixtureService(t)
	recursive := false

	docs, err := svc.LoadDirectory(context.Background(), "", interfaces.LoadOptions{Recursive: &recursive})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 1 || docs[0].FilePath != "index.md" {
		t.Fatalf("expected only the root index, got %d docs", len(docs))
	}
}

func TestServiceWithFS(t *testing.T) {
	memfs := fstest.MapFS{
		"about.md":         {Data: []byte("---\ntitle: About\n---\nHi")},
		".hidden/x.md":     {Data: []byte("x")},
		"_drafts/y.md":     {Data: []byte("y")},
		"notes/readme.txt": {Data: []byte("z")},
	}
	svc, err := NewService(Config{Recursive: true}, WithFS(memfs))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 1 || docs[0].FrontMatter.Title != "About" {
		t.Fatalf("expected hidden folders and non markdown files to be skipped, got %d docs", len(docs))
	}
}

func TestNewServiceRejectsMissingContentPath(t *testing.T) {
	if _, err := NewService(Config{ContentPath: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing content path")
	}
	file := filepath.Join(t.TempDir(), "file.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewService(Config{ContentPath: file}); err == nil {
		t.Fatal("expected error for file content path")
	}
}

func TestRenderDocumentNil(t *testing.T) {
	svc := newFixtureService(t)
	if _, err := svc.RenderDocument(context.Background(), nil, interfaces.ParseOptions{}); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("expected ErrNilDocument, got %v", err)
	}
}
