// Package i18n provides the translator used for shortcode notices and theme
// strings. Lookups fall back from a regional locale to its parents and then
// to the site default.
package i18n
