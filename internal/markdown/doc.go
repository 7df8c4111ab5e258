// Package markdown loads Markdown pages from the content directory, parses
// their front matter, expands shortcodes and converts the body to HTML with
// goldmark.
package markdown
