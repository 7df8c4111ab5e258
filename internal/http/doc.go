// Package http serves the rendered site: static assets from the public
// directory and every other GET as a Markdown page wrapped in the theme layout.
package http
