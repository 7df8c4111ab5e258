package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Service exposes translations together with locale metadata.
type Service interface {
	interfaces.TranslationService
	TemplateHelpers() map[string]any
}

// ErrDefaultLocaleRequired is returned when a service is built without a default locale.
var ErrDefaultLocaleRequired = errors.New("i18n: default locale is required")

// InMemoryService serves translations held in memory.
type InMemoryService struct {
	cfg        Config
	translator *translator
}

// NewInMemoryService indexes translations by lower-cased locale.
func NewInMemoryService(cfg Config, translations map[string]map[string]string) (*InMemoryService, error) {
	cfg = FromModuleConfig(cfg.DefaultLocale, cfg.Locales)
	if cfg.DefaultLocale == "" {
		return nil, ErrDefaultLocaleRequired
	}

	catalog := make(map[string]map[string]string, len(translations))
	for locale, entries := range translations {
		key := normalizeLocale(locale)
		if key == "" {
			continue
		}
		if catalog[key] == nil {
			catalog[key] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			catalog[key][k] = v
		}
	}

	return &InMemoryService{
		cfg: cfg,
		translator: &translator{
			defaultLocale: normalizeLocale(cfg.DefaultLocale),
			catalog:       catalog,
		},
	}, nil
}

// NewDefaultService builds a service from the embedded fixture.
func NewDefaultService() (*InMemoryService, error) {
	fx, err := DefaultFixture()
	if err != nil {
		return nil, err
	}
	return NewInMemoryService(fx.Config, fx.Translations)
}

func (s *InMemoryService) Translator() interfaces.Translator {
	return s.translator
}

func (s *InMemoryService) DefaultLocale() string {
	return s.cfg.DefaultLocale
}

func (s *InMemoryService) Locales() []string {
	return slices.Clone(s.cfg.Locales)
}

// TemplateHelpers returns template functions bound to the translator.
// Missing keys render as the key itself.
func (s *InMemoryService) TemplateHelpers() map[string]any {
	return map[string]any{
		"translate": func(locale, key string, args ...any) string {
			msg, err := s.translator.Translate(locale, key, args...)
			if err != nil {
				return key
			}
			return msg
		},
	}
}

type translator struct {
	defaultLocale string
	catalog       map[string]map[string]string
}

// Translate looks key up in locale, then in its parent locales, then in the
// default locale. Unknown keys come back unchanged.
func (t *translator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range t.chain(locale) {
		msg, ok := t.catalog[candidate][key]
		if !ok {
			continue
		}
		if len(args) > 0 {
			return fmt.Sprintf(msg, args...), nil
		}
		return msg, nil
	}
	return key, nil
}

func (t *translator) chain(locale string) []string {
	var out []string
	add := func(l string) {
		if l != "" && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}

	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		for ; tag != language.Und; tag = tag.Parent() {
			add(strings.ToLower(tag.String()))
		}
	} else {
		add(normalizeLocale(locale))
	}
	add(t.defaultLocale)
	return out
}

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	if tag, err := language.Parse(locale); err == nil {
		return strings.ToLower(tag.String())
	}
	return strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
}

// NoOpService returns keys untouched.
type NoOpService struct{}

func NewNoOpService() Service {
	return NoOpService{}
}

func (NoOpService) Translator() interfaces.Translator {
	return noopTranslator{}
}

func (NoOpService) DefaultLocale() string {
	return ""
}

func (NoOpService) Locales() []string {
	return nil
}

func (NoOpService) TemplateHelpers() map[string]any {
	return map[string]any{
		"translate": func(_ string, key string, _ ...any) string { return key },
	}
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	return key, nil
}

var (
	_ Service = (*InMemoryService)(nil)
	_ Service = NoOpService{}
)
