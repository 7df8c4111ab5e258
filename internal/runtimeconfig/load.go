package runtimeconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FLATCMS_PATHS_CONTENT.
const EnvPrefix = "FLATCMS"

// Load reads the YAML, TOML or JSON file at path over DefaultConfig and
// applies environment overrides. An empty path loads defaults and environment
// only. The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("flatcms config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("flatcms config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg Config) {
	defaults := map[string]any{
		"site.name":                  cfg.Site.Name,
		"site.base_url":              cfg.Site.BaseURL,
		"default_locale":             cfg.DefaultLocale,
		"locales":                    cfg.Locales,
		"paths.public":               cfg.Paths.Public,
		"paths.system":               cfg.Paths.System,
		"paths.content":              cfg.Paths.Content,
		"paths.themes":               cfg.Paths.Themes,
		"items_per_page":             cfg.ItemsPerPage,
		"shortcodes.enabled":         cfg.Shortcodes.Enabled,
		"markdown.pattern":           cfg.Markdown.Pattern,
		"markdown.recursive":         cfg.Markdown.Recursive,
		"markdown.parser.extensions": cfg.Markdown.Parser.Extensions,
		"markdown.parser.hard_wraps": cfg.Markdown.Parser.HardWraps,
		"markdown.parser.safe_mode":  cfg.Markdown.Parser.SafeMode,
		"themes.default_theme":       cfg.Themes.DefaultTheme,
		"themes.default_variant":     cfg.Themes.DefaultVariant,
		"themes.css_variable_prefix": cfg.Themes.CSSVariablePrefix,
		"cache.enabled":              cfg.Cache.Enabled,
		"cache.watch":                cfg.Cache.Watch,
		"cache.debounce":             cfg.Cache.Debounce,
		"auth.admin_token":           cfg.Auth.AdminToken,
		"i18n.translations_file":     cfg.I18N.TranslationsFile,
		"logging.provider":           cfg.Logging.Provider,
		"logging.level":              cfg.Logging.Level,
		"logging.format":             cfg.Logging.Format,
		"logging.add_source":         cfg.Logging.AddSource,
		"server.address":             cfg.Server.Address,
		"server.read_timeout":        cfg.Server.ReadTimeout,
		"server.write_timeout":       cfg.Server.WriteTimeout,
		"generator.output_dir":       cfg.Generator.OutputDir,
		"generator.workers":          cfg.Generator.Workers,
		"generator.copy_assets":      cfg.Generator.CopyAssets,
		"generator.generate_sitemap": cfg.Generator.GenerateSitemap,
		"generator.generate_robots":  cfg.Generator.GenerateRobots,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
