package i18n

import "strings"

// Config declares the locales a site serves.
type Config struct {
	DefaultLocale string   `json:"default_locale"`
	Locales       []string `json:"locales"`
}

// FromModuleConfig builds a Config from runtime settings, making sure the
// default locale is listed.
func FromModuleConfig(defaultLocale string, locales []string) Config {
	cfg := Config{DefaultLocale: strings.TrimSpace(defaultLocale)}
	seen := map[string]bool{}
	for _, locale := range append([]string{cfg.DefaultLocale}, locales...) {
		locale = strings.TrimSpace(locale)
		if locale == "" || seen[strings.ToLower(locale)] {
			continue
		}
		seen[strings.ToLower(locale)] = true
		cfg.Locales = append(cfg.Locales, locale)
	}
	return cfg
}
