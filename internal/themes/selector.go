package themes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-flatcms/internal/identity"
)

// ErrNoTheme is returned when no theme name is given and no default is configured.
var ErrNoTheme = errors.New("themes: no theme configured")

// Config locates theme folders and names the default selection.
type Config struct {
	// Dir holds one sub-directory per theme, each with a go-theme manifest.
	Dir               string
	DefaultTheme      string
	DefaultVariant    string
	CSSVariablePrefix string
}

// ManifestLoader reads the manifest stored in a theme directory.
type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("theme path required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// Selector registers theme manifests on first use and resolves a theme and
// variant selection.
type Selector struct {
	cfg      Config
	registry *gotheme.MemoryRegistry
	loader   ManifestLoader

	mu        sync.Mutex
	manifests map[uuid.UUID]*gotheme.Manifest
}

// SelectorOption customises the selector.
type SelectorOption func(*Selector)

// WithManifestLoader overrides the filesystem manifest loader.
func WithManifestLoader(loader ManifestLoader) SelectorOption {
	return func(s *Selector) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// NewSelector builds a selector over cfg.Dir.
func NewSelector(cfg Config, opts ...SelectorOption) *Selector {
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	cfg.DefaultTheme = strings.TrimSpace(cfg.DefaultTheme)
	cfg.DefaultVariant = strings.TrimSpace(cfg.DefaultVariant)
	s := &Selector{
		cfg:       cfg,
		registry:  gotheme.NewRegistry(),
		loader:    fsManifestLoader{},
		manifests: map[uuid.UUID]*gotheme.Manifest{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the selector configuration.
func (s *Selector) Config() Config {
	return s.cfg
}

// Dir returns the directory holding the named theme.
func (s *Selector) Dir(name string) string {
	return filepath.Join(s.cfg.Dir, strings.TrimSpace(name))
}

// Register adds a manifest directly, bypassing the loader.
func (s *Selector) Register(manifest *gotheme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("theme name required for manifest registration")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(manifest.Name, manifest)
}

// Select resolves name and variant, falling back to the configured defaults.
func (s *Selector) Select(name, variant string) (*gotheme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.cfg.DefaultTheme
	}
	if name == "" {
		return nil, ErrNoTheme
	}
	if _, err := s.ensureManifest(name); err != nil {
		return nil, err
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.cfg.DefaultVariant
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.cfg.DefaultTheme,
		DefaultVariant: s.cfg.DefaultVariant,
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", name, err)
	}
	return selection, nil
}

func (s *Selector) ensureManifest(name string) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if manifest, ok := s.manifests[identity.ThemeUUID(name)]; ok {
		return manifest, nil
	}

	dir := s.Dir(name)
	manifest, err := s.loader.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", dir, err)
	}
	if err := s.register(name, manifest); err != nil {
		return nil, err
	}
	return s.manifests[identity.ThemeUUID(name)], nil
}

func (s *Selector) register(name string, manifest *gotheme.Manifest) error {
	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, name) {
		normalized.Name = strings.TrimSpace(name)
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = "0.0.0"
	}
	if err := s.registry.Register(&normalized); err != nil {
		return fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[identity.ThemeUUID(normalized.Name)] = &normalized
	return nil
}
