package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/goliatone/go-flatcms/internal/auth"
	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// PageRenderer resolves and renders a route body.
type PageRenderer interface {
	RenderPage(ctx context.Context, route string, req interfaces.RequestContext) (*interfaces.RenderedPage, error)
}

// LayoutRenderer wraps rendered bodies in the theme layout.
type LayoutRenderer interface {
	RenderPage(ctx context.Context, page *interfaces.RenderedPage) ([]byte, error)
	RenderNotFound(ctx context.Context, route, locale string) ([]byte, error)
}

// Config configures the site handler.
type Config struct {
	PublicDir     string
	DefaultLocale string
	Locales       []string
	AdminToken    string
}

// SiteHandler serves pages and public assets.
type SiteHandler struct {
	pages   PageRenderer
	layout  LayoutRenderer
	cfg     Config
	logger  interfaces.Logger
	locales []string
	matcher language.Matcher
	handler http.Handler
}

// Option customises the handler.
type Option func(*SiteHandler)

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(h *SiteHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewSiteHandler mounts the routes and wraps them with the auth middleware.
func NewSiteHandler(pages PageRenderer, layout LayoutRenderer, cfg Config, opts ...Option) *SiteHandler {
	h := &SiteHandler{
		pages:  pages,
		layout: layout,
		cfg:    cfg,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.setupLocales()

	mux := http.NewServeMux()
	assets := filepath.Join(strings.TrimSpace(cfg.PublicDir), "assets")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(assets))))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /", h.handlePage)

	h.handler = auth.Middleware(cfg.AdminToken)(mux)
	return h
}

func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *SiteHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SiteHandler) handlePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	req := interfaces.RequestContext{
		Route:  strings.Trim(r.URL.Path, "/"),
		Page:   pageParam(r),
		Query:  r.URL.Query(),
		Locale: h.locale(r),
	}
	logger := logging.WithRequest(h.logger.WithContext(ctx), req)

	page, err := h.pages.RenderPage(ctx, req.Route, req)
	if errors.Is(err, markdown.ErrPageNotFound) {
		body, renderErr := h.layout.RenderNotFound(ctx, req.Route, req.Locale)
		if renderErr != nil {
			h.fail(w, logger, renderErr)
			return
		}
		logger.Debug("http.page.not_found")
		writeHTML(w, http.StatusNotFound, body)
		return
	}
	if err != nil {
		h.fail(w, logger, err)
		return
	}

	body, err := h.layout.RenderPage(ctx, page)
	if err != nil {
		h.fail(w, logger, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
	logging.WithFields(logger, map[string]any{
		"template":    page.Template,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("http.page.served")
}

func (h *SiteHandler) fail(w http.ResponseWriter, logger interfaces.Logger, err error) {
	logging.WithFields(logger, map[string]any{"error": err}).Error("http.page.failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *SiteHandler) setupLocales() {
	seen := map[string]bool{}
	for _, locale := range append([]string{h.cfg.DefaultLocale}, h.cfg.Locales...) {
		locale = strings.TrimSpace(locale)
		if locale == "" || seen[locale] {
			continue
		}
		if _, err := language.Parse(locale); err != nil {
			continue
		}
		seen[locale] = true
		h.locales = append(h.locales, locale)
	}
	if len(h.locales) == 0 {
		return
	}
	tags := make([]language.Tag, 0, len(h.locales))
	for _, locale := range h.locales {
		tags = append(tags, language.MustParse(locale))
	}
	h.matcher = language.NewMatcher(tags)
}

// locale picks the "lang" query parameter, then Accept-Language, matched
// against the configured locales. The first configured locale is the default.
func (h *SiteHandler) locale(r *http.Request) string {
	if h.matcher == nil {
		return strings.TrimSpace(h.cfg.DefaultLocale)
	}
	var prefs []language.Tag
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			prefs = append(prefs, tags...)
		}
	}
	if len(prefs) == 0 {
		return h.locales[0]
	}
	_, index, confidence := h.matcher.Match(prefs...)
	if confidence == language.No {
		return h.locales[0]
	}
	return h.locales[index]
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
