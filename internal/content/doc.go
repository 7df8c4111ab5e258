// Package content indexes the Markdown content tree for listing shortcodes:
// folder pages, tag counts, subfolders and paginated blog listings.
package content
