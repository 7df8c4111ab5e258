package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fixture is a serialised bundle of locale configuration and translations.
type Fixture struct {
	Config       Config                       `json:"config"`
	Translations map[string]map[string]string `json:"translations"`
}

//go:embed locales/translations.json
var defaultFixtureData embed.FS

// DefaultFixture loads the built-in English, German and Spanish messages.
func DefaultFixture() (*Fixture, error) {
	data, err := defaultFixtureData.ReadFile("locales/translations.json")
	if err != nil {
		return nil, fmt.Errorf("i18n: read embedded fixture: %w", err)
	}
	return decodeFixture(bytes.NewReader(data))
}

// Loader reads translation fixtures from disk.
type Loader struct {
	path string
}

// NewLoader constructs a loader for the JSON file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: strings.TrimSpace(path)}
}

// Load parses the configured fixture file.
func (l *Loader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("i18n: loader path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("i18n: open fixture %q: %w", l.path, err)
	}
	defer file.Close()

	fx, err := decodeFixture(file)
	if err != nil {
		return nil, fmt.Errorf("i18n: decode fixture %q: %w", l.path, err)
	}
	return fx, nil
}

// Merge overlays other on top of fx. Keys in other win.
func (fx *Fixture) Merge(other *Fixture) {
	if other == nil {
		return
	}
	if other.Config.DefaultLocale != "" {
		fx.Config.DefaultLocale = other.Config.DefaultLocale
	}
	fx.Config.Locales = append(fx.Config.Locales, other.Config.Locales...)
	for locale, entries := range other.Translations {
		if fx.Translations[locale] == nil {
			fx.Translations[locale] = map[string]string{}
		}
		for k, v := range entries {
			fx.Translations[locale][k] = v
		}
	}
}

func decodeFixture(r io.Reader) (*Fixture, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}
	return &fx, nil
}
