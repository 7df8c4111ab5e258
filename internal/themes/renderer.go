package themes

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

//go:embed layouts/default.html
var layoutFS embed.FS

// NotFoundTemplate is the template key used for missing pages.
const NotFoundTemplate = "404"

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(string) string
}

// View is the data handed to layout templates.
type View struct {
	Site        string
	Title       string
	Route       string
	Locale      string
	Template    string
	Content     template.HTML
	FrontMatter interfaces.FrontMatter
	Theme       ThemeContext
}

// Renderer wraps rendered page bodies in the selected theme's layout.
type Renderer struct {
	selector   *Selector
	site       string
	funcs      template.FuncMap
	translator interfaces.Translator
	logger     interfaces.Logger
	fallback   *template.Template

	mu    sync.Mutex
	cache map[string]*template.Template
}

// RendererOption customises the renderer.
type RendererOption func(*Renderer)

// WithSiteName sets the site title shown by layouts.
func WithSiteName(name string) RendererOption {
	return func(r *Renderer) {
		r.site = strings.TrimSpace(name)
	}
}

// WithFuncs adds template functions, such as translation helpers.
func WithFuncs(funcs map[string]any) RendererOption {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// WithTranslator localises the not found page.
func WithTranslator(translator interfaces.Translator) RendererOption {
	return func(r *Renderer) {
		r.translator = translator
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer builds a renderer. A nil selector renders every page with the
// embedded default layout.
func NewRenderer(selector *Selector, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		selector: selector,
		funcs:    template.FuncMap{},
		logger:   logging.NoOp(),
		cache:    map[string]*template.Template{},
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := layoutFS.ReadFile("layouts/default.html")
	if err != nil {
		return nil, fmt.Errorf("themes: read default layout: %w", err)
	}
	r.fallback, err = template.New("default").Funcs(r.funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("themes: parse default layout: %w", err)
	}
	return r, nil
}

// RenderPage executes the layout named by page.Template.
func (r *Renderer) RenderPage(ctx context.Context, page *interfaces.RenderedPage) ([]byte, error) {
	if page == nil {
		return nil, errors.New("themes: page is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selection := r.selection(ctx)
	tmpl, err := r.layout(selection, page.Template)
	if err != nil {
		return nil, err
	}

	view := View{
		Site:        r.site,
		Title:       page.Title,
		Route:       "/" + page.Route,
		Locale:      page.Locale,
		Template:    page.Template,
		Content:     template.HTML(page.HTML),
		FrontMatter: page.FrontMatter,
		Theme:       r.themeContext(selection),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, view); err != nil {
		return nil, fmt.Errorf("themes: render %s: %w", page.Template, err)
	}
	return []byte(b.String()), nil
}

// RenderNotFound renders the themed page shown for unknown routes.
func (r *Renderer) RenderNotFound(ctx context.Context, route, locale string) ([]byte, error) {
	title := "Page not found"
	if r.translator != nil {
		if msg, err := r.translator.Translate(locale, "site.not_found"); err == nil && msg != "site.not_found" {
			title = msg
		}
	}
	return r.RenderPage(ctx, &interfaces.RenderedPage{
		Route:    strings.Trim(route, "/"),
		Title:    title,
		Template: NotFoundTemplate,
		Locale:   locale,
		HTML:     []byte(fmt.Sprintf("<p>%s</p>", template.HTMLEscapeString("/"+strings.Trim(route, "/")))),
	})
}

// Reset drops parsed theme templates.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.cache = map[string]*template.Template{}
	r.mu.Unlock()
}

func (r *Renderer) selection(ctx context.Context) *gotheme.Selection {
	if r.selector == nil {
		return nil
	}
	selection, err := r.selector.Select("", "")
	if err != nil {
		if !errors.Is(err, ErrNoTheme) {
			logging.WithFields(r.logger.WithContext(ctx), map[string]any{"error": err}).Warn("themes.selection.failed")
		}
		return nil
	}
	return selection
}

// layout finds the theme template for key, trying the "page" layout before
// the embedded default.
func (r *Renderer) layout(selection *gotheme.Selection, key string) (*template.Template, error) {
	if selection == nil {
		return r.fallback, nil
	}
	keys := []string{key}
	if key != "page" {
		keys = append(keys, "page")
	}
	for _, k := range keys {
		rel := selection.Template(k, "templates/"+k+".html")
		file := filepath.Join(r.selector.Dir(selection.Theme), filepath.FromSlash(rel))
		tmpl, err := r.parse(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return tmpl, nil
	}
	return r.fallback, nil
}

func (r *Renderer) parse(file string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[file]; ok {
		return tmpl, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(filepath.Base(file)).Funcs(r.funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("themes: parse %s: %w", file, err)
	}
	r.cache[file] = tmpl
	return tmpl, nil
}

func (r *Renderer) themeContext(selection *gotheme.Selection) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		AssetURL: func(string) string { return "" },
	}
	if selection == nil {
		return empty
	}
	return ThemeContext{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Tokens:   selection.Tokens(),
		CSSVars:  selection.CSSVariables(r.selector.Config().CSSVariablePrefix),
		AssetURL: func(key string) string { url, _ := selection.Asset(key); return url },
	}
}
