package i18n

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestServiceTranslateWithFallback(t *testing.T) {
	svc := mustDefaultService(t)
	translator := svc.Translator()

	cases := []struct {
		name   string
		locale string
		key    string
		args   []any
		want   string
	}{
		{name: "exact locale", locale: "de", key: "shortcode.bloglist.next", want: "Weiter"},
		{name: "regional parent", locale: "de-AT", key: "shortcode.bloglist.next", want: "Weiter"},
		{name: "multi step parent", locale: "es-mx", key: "site.not_found", want: "Página no encontrada"},
		{name: "formats arguments", locale: "es-MX", key: "site.greeting", args: []any{"Codex"}, want: "¡Hola, Codex!"},
		{name: "default locale fallback", locale: "de", key: "shortcode.tags.empty", args: []any{"blog"}, want: "No tags found in blog."},
		{name: "empty locale", locale: "", key: "site.not_found", want: "Page not found"},
		{name: "invalid locale", locale: "not a locale!!", key: "site.not_found", want: "Page not found"},
		{name: "unknown key", locale: "de", key: "missing.key", want: "missing.key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := translator.Translate(tc.locale, tc.key, tc.args...)
			if err != nil {
				t.Fatalf("translate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Translate(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
			}
		})
	}
}

func TestServiceLocaleMetadata(t *testing.T) {
	svc := mustDefaultService(t)

	if svc.DefaultLocale() != "en" {
		t.Fatalf("expected default locale en, got %q", svc.DefaultLocale())
	}
	if got := svc.Locales(); !reflect.DeepEqual(got, []string{"en", "de", "es"}) {
		t.Fatalf("unexpected locales %v", got)
	}
}

func TestTemplateHelpersHandleMissingKeys(t *testing.T) {
	svc := mustDefaultService(t)

	translateFn, ok := svc.TemplateHelpers()["translate"].(func(string, string, ...any) string)
	if !ok {
		t.Fatalf("translate helper has unexpected signature")
	}
	if got := translateFn("es", "unknown.key"); got != "unknown.key" {
		t.Fatalf("missing translation should return key, got %q", got)
	}
	if got := translateFn("de", "site.greeting", "Ana"); got != "Hallo, Ana!" {
		t.Fatalf("unexpected greeting %q", got)
	}
}

func TestNewInMemoryServiceRequiresDefaultLocale(t *testing.T) {
	if _, err := NewInMemoryService(Config{}, nil); !errors.Is(err, ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestFromModuleConfigDeduplicates(t *testing.T) {
	cfg := FromModuleConfig(" en ", []string{"de", "EN", " ", "fr"})
	if cfg.DefaultLocale != "en" || !reflect.DeepEqual(cfg.Locales, []string{"en", "de", "fr"}) {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoaderReadsFixtureAndMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	data := `{"config":{"default_locale":"en","locales":["fr"]},"translations":{"fr":{"site.not_found":"Page introuvable"}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	site, err := NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	fx, err := DefaultFixture()
	if err != nil {
		t.Fatalf("default fixture: %v", err)
	}
	fx.Merge(site)

	svc, err := NewInMemoryService(fx.Config, fx.Translations)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	got, _ := svc.Translator().Translate("fr-CA", "site.not_found")
	if got != "Page introuvable" {
		t.Fatalf("expected merged French entry, got %q", got)
	}
	if got := svc.Locales(); !reflect.DeepEqual(got, []string{"en", "de", "es", "fr"}) {
		t.Fatalf("unexpected merged locales %v", got)
	}
}

func TestLoaderRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"unexpected":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := NewLoader("").Load(context.Background()); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestNoOpService(t *testing.T) {
	svc := NewNoOpService()
	got, err := svc.Translator().Translate("en", "site.not_found")
	if err != nil || got != "site.not_found" {
		t.Fatalf("expected key passthrough, got %q %v", got, err)
	}
}

func mustDefaultService(t *testing.T) *InMemoryService {
	t.Helper()
	svc, err := NewDefaultService()
	if err != nil {
		t.Fatalf("default service: %v", err)
	}
	return svc
}
