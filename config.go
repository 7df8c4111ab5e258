package cms

import "github.com/goliatone/go-flatcms/internal/runtimeconfig"

var (
	ErrContentPathRequired     = runtimeconfig.ErrContentPathRequired
	ErrDefaultLocaleRequired   = runtimeconfig.ErrDefaultLocaleRequired
	ErrThemeVariantNeedsTheme  = runtimeconfig.ErrThemeVariantNeedsTheme
	ErrWatchRequiresCache      = runtimeconfig.ErrWatchRequiresCache
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	PathsConfig          = runtimeconfig.PathsConfig
	ShortcodesConfig     = runtimeconfig.ShortcodesConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	ThemeConfig          = runtimeconfig.ThemeConfig
	CacheConfig          = runtimeconfig.CacheConfig
	AuthConfig           = runtimeconfig.AuthConfig
	I18NConfig           = runtimeconfig.I18NConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	ServerConfig         = runtimeconfig.ServerConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (YAML, TOML or JSON) over DefaultConfig and applies
// FLATCMS_* environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
