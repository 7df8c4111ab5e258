package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-flatcms/internal/auth"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

type stubPages struct {
	last   interfaces.RequestContext
	authed bool
	err    error
}

func (s *stubPages) RenderPage(ctx context.Context, route string, req interfaces.RequestContext) (*interfaces.RenderedPage, error) {
	s.last = req
	s.authed = auth.ContextChecker{}.IsAuthenticated(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &interfaces.RenderedPage{Route: route, Title: "Title", Template: "page", HTML: []byte("<p>" + route + "</p>"), Locale: req.Locale}, nil
}

type stubLayout struct {
	err error
}

func (s stubLayout) RenderPage(_ context.Context, page *interfaces.RenderedPage) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(fmt.Sprintf("<main lang=%q>%s</main>", page.Locale, page.HTML)), nil
}

func (s stubLayout) RenderNotFound(_ context.Context, route, locale string) ([]byte, error) {
	return []byte("missing " + route + " " + locale), nil
}

func newTestHandler(pages *stubPages, layout stubLayout) *SiteHandler {
	return NewSiteHandler(pages, layout, Config{
		PublicDir:     filepath.Join("testdata", "public"),
		DefaultLocale: "en",
		Locales:       []string{"de", "es"},
		AdminToken:    "secret",
	})
}

func TestSiteHandlerServesPage(t *testing.T) {
	pages := &stubPages{}
	h := newTestHandler(pages, stubLayout{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/?page=3&tag=go", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `<main lang="en"><p>blog</p></main>` {
		t.Fatalf("unexpected body %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if pages.last.Route != "blog" || pages.last.Page != 3 || pages.last.Query.Get("tag") != "go" {
		t.Fatalf("unexpected request context %#v", pages.last)
	}
	if pages.authed {
		t.Fatal("expected anonymous request")
	}
}

func TestSiteHandlerPageParamDefaults(t *testing.T) {
	pages := &stubPages{}
	h := newTestHandler(pages, stubLayout{})

	for _, target := range []string{"/", "/?page=abc", "/?page=-2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
		if pages.last.Page != 1 {
			t.Fatalf("%s: expected page 1, got %d", target, pages.last.Page)
		}
	}
}

func TestSiteHandlerLocaleNegotiation(t *testing.T) {
	pages := &stubPages{}
	h := newTestHandler(pages, stubLayout{})

	cases := []struct {
		target string
		accept string
		want   string
	}{
		{target: "/", want: "en"},
		{target: "/", accept: "de-AT,de;q=0.9,en;q=0.5", want: "de"},
		{target: "/?lang=es", accept: "de", want: "es"},
		{target: "/", accept: "ja", want: "en"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.accept != "" {
			req.Header.Set("Accept-Language", tc.accept)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		if pages.last.Locale != tc.want {
			t.Fatalf("%s with %q: expected %s, got %s", tc.target, tc.accept, tc.want, pages.last.Locale)
		}
	}
}

func TestSiteHandlerAuthenticatesAdmin(t *testing.T) {
	pages := &stubPages{}
	h := newTestHandler(pages, stubLayout{})

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "secret"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !pages.authed {
		t.Fatal("expected admin cookie to authenticate the request")
	}
}

func TestSiteHandlerNotFound(t *testing.T) {
	pages := &stubPages{err: fmt.Errorf("resolve: %w", markdown.ErrPageNotFound)}
	h := newTestHandler(pages, stubLayout{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept-Language", "de")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound || rec.Body.String() != "missing nope de" {
		t.Fatalf("unexpected not found response %d %q", rec.Code, rec.Body.String())
	}
}

func TestSiteHandlerInternalError(t *testing.T) {
	h := newTestHandler(&stubPages{err: errors.New("boom")}, stubLayout{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	h = newTestHandler(&stubPages{}, stubLayout{err: errors.New("template")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for layout failure, got %d", rec.Code)
	}
}

func TestSiteHandlerServesAssets(t *testing.T) {
	h := newTestHandler(&stubPages{}, stubLayout{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "color:red") {
		t.Fatalf("unexpected asset response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}
