package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const configValidationCode = "CONFIG_VALIDATION_FAILED"

var (
	ErrContentPathRequired     = errors.New("flatcms config: content path is required")
	ErrDefaultLocaleRequired   = errors.New("flatcms config: default locale is required")
	ErrThemeVariantNeedsTheme  = errors.New("flatcms config: theme variant requires a default theme")
	ErrWatchRequiresCache      = errors.New("flatcms config: watching content requires the index cache")
	ErrLoggingProviderRequired = errors.New("flatcms config: logging provider is required")
	ErrLoggingProviderUnknown  = errors.New("flatcms config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("flatcms config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("flatcms config: logging format is invalid")
)

// Config aggregates site settings for the flat-file CMS.
type Config struct {
	Site          SiteConfig       `mapstructure:"site"`
	DefaultLocale string           `mapstructure:"default_locale"`
	Locales       []string         `mapstructure:"locales"`
	Paths         PathsConfig      `mapstructure:"paths"`
	ItemsPerPage  int              `mapstructure:"items_per_page"`
	Shortcodes    ShortcodesConfig `mapstructure:"shortcodes"`
	Markdown      MarkdownConfig   `mapstructure:"markdown"`
	Themes        ThemeConfig      `mapstructure:"themes"`
	Cache         CacheConfig      `mapstructure:"cache"`
	Auth          AuthConfig       `mapstructure:"auth"`
	I18N          I18NConfig       `mapstructure:"i18n"`
	Logging       LoggingConfig    `mapstructure:"logging"`
	Server        ServerConfig     `mapstructure:"server"`
	Generator     GeneratorConfig  `mapstructure:"generator"`
}

// SiteConfig describes the site itself.
type SiteConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
}

// PathsConfig locates the directories the CMS reads from.
type PathsConfig struct {
	// Public is served as is and holds gallery images under assets/galleries.
	Public  string `mapstructure:"public"`
	System  string `mapstructure:"system"`
	Content string `mapstructure:"content"`
	Themes  string `mapstructure:"themes"`
}

// ShortcodesConfig toggles shortcode expansion.
type ShortcodesConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MarkdownConfig captures discovery and parser behaviour.
type MarkdownConfig struct {
	Pattern   string               `mapstructure:"pattern"`
	Recursive bool                 `mapstructure:"recursive"`
	Parser    MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// ThemeConfig selects the active go-theme manifest.
type ThemeConfig struct {
	DefaultTheme      string `mapstructure:"default_theme"`
	DefaultVariant    string `mapstructure:"default_variant"`
	CSSVariablePrefix string `mapstructure:"css_variable_prefix"`
}

// CacheConfig controls the content index snapshot.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// AuthConfig holds the admin token checked by the auth middleware.
type AuthConfig struct {
	AdminToken string `mapstructure:"admin_token"`
}

// I18NConfig points at an optional translations file merged over the built-in messages.
type I18NConfig struct {
	TranslationsFile string `mapstructure:"translations_file"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider  string `mapstructure:"provider"`
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ServerConfig configures the HTTP server used by "flatcms serve".
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GeneratorConfig controls "flatcms build" static exports.
type GeneratorConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	Workers         int    `mapstructure:"workers"`
	CopyAssets      bool   `mapstructure:"copy_assets"`
	GenerateSitemap bool   `mapstructure:"generate_sitemap"`
	GenerateRobots  bool   `mapstructure:"generate_robots"`
}

// DefaultConfig returns defaults for a site laid out as content/, public/ and themes/.
func DefaultConfig() Config {
	return Config{
		Site:          SiteConfig{Name: "flatcms"},
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Paths: PathsConfig{
			Public:  "public",
			System:  "system",
			Content: "content",
			Themes:  "themes",
		},
		ItemsPerPage: 10,
		Shortcodes:   ShortcodesConfig{Enabled: true},
		Markdown: MarkdownConfig{
			Pattern:   "*.md",
			Recursive: true,
		},
		Themes: ThemeConfig{
			CSSVariablePrefix: "--flatcms-",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
		},
	}
}

// Validate checks consistency first, returning sentinel errors, then field
// rules, returning a go-errors validation error.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Paths.Content) == "" {
		return ErrContentPathRequired
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if strings.TrimSpace(cfg.Themes.DefaultVariant) != "" && strings.TrimSpace(cfg.Themes.DefaultTheme) == "" {
		return ErrThemeVariantNeedsTheme
	}
	if cfg.Cache.Watch && !cfg.Cache.Enabled {
		return ErrWatchRequiresCache
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.ItemsPerPage, validation.Min(1), validation.Max(1000)),
		validation.Field(&cfg.Paths, validation.By(func(any) error {
			return validation.ValidateStruct(&cfg.Paths,
				validation.Field(&cfg.Paths.Public, validation.Required),
				validation.Field(&cfg.Paths.Themes, validation.Required),
			)
		})),
		validation.Field(&cfg.Cache, validation.By(func(any) error {
			return validation.ValidateStruct(&cfg.Cache,
				validation.Field(&cfg.Cache.Debounce, validation.Min(time.Duration(0))),
			)
		})),
		validation.Field(&cfg.Server, validation.By(func(any) error {
			return validation.ValidateStruct(&cfg.Server,
				validation.Field(&cfg.Server.Address, validation.Required),
			)
		})),
		validation.Field(&cfg.Generator, validation.By(func(any) error {
			return validation.ValidateStruct(&cfg.Generator,
				validation.Field(&cfg.Generator.Workers, validation.Min(0)),
			)
		})),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "config validation failed").
			WithTextCode(configValidationCode)
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
