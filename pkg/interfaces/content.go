package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentIndex resolves folder paths to pages, tags, subfolders and paginated
// blog listings. Paths are slash separated and relative to the content root,
// without leading or trailing slashes ("" addresses the root folder).
type ContentIndex interface {
	FolderPages(ctx context.Context, path string, limit int) ([]PageSummary, error)
	FolderTags(ctx context.Context, path string, limit int) (map[string]int, error)
	DirectSubfolders(ctx context.Context, path string, limit int) ([]FolderSummary, error)
	BlogList(ctx context.Context, path string, perPage, page int) (*BlogListing, error)
}

// PageSummary is the index projection of a single markdown page.
type PageSummary struct {
	ID          uuid.UUID
	Title       string
	Route       string
	Description string
	Date        time.Time
	Tags        []string
	Author      string
}

// FolderSummary describes a content folder.
type FolderSummary struct {
	Title       string
	Route       string
	Path        string
	FileCount   int
	Description string
}

// BlogListing is a single page of a paginated blog listing.
type BlogListing struct {
	Items       []PageSummary
	Total       int
	Pages       int
	CurrentPage int
	PerPage     int
}
