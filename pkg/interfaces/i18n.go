package interfaces

// Translator resolves localized strings. Implementations return the key itself
// when no translation is known so templates never render empty strings.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslationService exposes the translator together with locale metadata.
type TranslationService interface {
	Translator() Translator
	DefaultLocale() string
	Locales() []string
}
