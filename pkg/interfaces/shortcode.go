package interfaces

import (
	"context"
	"net/url"
	"time"
)

// ShortcodeService expands shortcodes embedded in page content. Implementations
// must never abort page rendering because a single shortcode failed: failures
// are rendered as inline notices instead.
type ShortcodeService interface {
	Process(ctx context.Context, content string, req RequestContext) (string, error)
}

// RequestContext carries the request scoped values shortcode handlers need.
// It replaces ambient request state so handlers stay pure functions of their
// inputs.
type RequestContext struct {
	// Route is the current page route without leading or trailing slashes.
	Route string
	// Page is the requested pagination page. Values below 1 mean "first page".
	Page int
	// Query holds the current query parameters used when building pagination links.
	Query url.Values
	// Locale selects the translation locale. Empty falls back to the default locale.
	Locale string
}

// ShortcodeMetrics records shortcode telemetry.
type ShortcodeMetrics interface {
	ObserveRenderDuration(shortcode string, duration time.Duration)
	IncrementRenderError(shortcode string)
}
