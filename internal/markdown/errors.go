package markdown

import "errors"

var (
	// ErrPageNotFound is returned when no published document backs a route.
	ErrPageNotFound = errors.New("markdown: page not found")
	// ErrNilDocument is returned when a nil document is rendered.
	ErrNilDocument = errors.New("markdown: document is nil")
)
