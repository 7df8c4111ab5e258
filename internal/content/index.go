package content

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Index implements interfaces.ContentIndex over a Markdown content tree.
// The tree is scanned on first use and cached until Invalidate is called.
type Index struct {
	loader *markdown.Loader
	logger interfaces.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap *snapshot
}

// Option customises the index.
type Option func(*Index)

// WithLogger attaches a logger used for scan diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(idx *Index) {
		if logger != nil {
			idx.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(idx *Index) {
		if now != nil {
			idx.now = now
		}
	}
}

// NewIndex builds an index that reads documents through loader.
func NewIndex(loader *markdown.Loader, opts ...Option) *Index {
	idx := &Index{
		loader: loader,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// NewDirIndex builds an index over the Markdown files below dir.
func NewDirIndex(dir string, opts ...Option) (*Index, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content index: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content index: %s is not a directory", dir)
	}
	return NewIndex(markdown.NewLoader(os.DirFS(dir), markdown.LoaderConfig{Recursive: true}), opts...), nil
}

// FolderPages lists the published pages stored directly in path, excluding
// the folder's own index page, sorted by title then route.
func (idx *Index) FolderPages(ctx context.Context, path string, limit int) ([]interfaces.PageSummary, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	folder := snap.folders[cleanPath(path)]
	if folder == nil {
		return nil, nil
	}

	pages := make([]interfaces.PageSummary, 0, len(folder.pages))
	for _, p := range folder.pages {
		if !p.isIndex {
			pages = append(pages, p.summary)
		}
	}
	slices.SortStableFunc(pages, func(a, b interfaces.PageSummary) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Route, b.Route)
	})
	return capped(pages, limit), nil
}

// AllPages lists every published page, index pages included, sorted by route.
func (idx *Index) AllPages(ctx context.Context) ([]interfaces.PageSummary, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pages := make([]interfaces.PageSummary, 0, len(snap.pages))
	for _, p := range snap.pages {
		pages = append(pages, p.summary)
	}
	slices.SortFunc(pages, func(a, b interfaces.PageSummary) int {
		return strings.Compare(a.Route, b.Route)
	})
	return pages, nil
}

// FolderTags counts tags over every published page below path. When limit is
// positive only the most used tags are kept.
func (idx *Index) FolderTags(ctx context.Context, path string, limit int) (map[string]int, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	root := cleanPath(path)

	tally := newTagTally()
	for _, p := range snap.pages {
		if !within(root, p.folder) {
			continue
		}
		for _, tag := range p.summary.Tags {
			tally.add(tag)
		}
	}
	return tally.top(limit), nil
}

// DirectSubfolders lists the immediate visible subfolders of path, sorted by
// title.
func (idx *Index) DirectSubfolders(ctx context.Context, path string, limit int) ([]interfaces.FolderSummary, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	parent := snap.folders[cleanPath(path)]
	if parent == nil {
		return nil, nil
	}

	out := make([]interfaces.FolderSummary, 0, len(parent.children))
	for _, child := range parent.children {
		out = append(out, snap.folders[child].summary())
	}
	slices.SortStableFunc(out, func(a, b interfaces.FolderSummary) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return capped(out, limit), nil
}

// BlogList pages through the posts stored directly in path, newest first.
// The requested page is clamped to the available range.
func (idx *Index) BlogList(ctx context.Context, path string, perPage, page int) (*interfaces.BlogListing, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = 10
	}

	var posts []interfaces.PageSummary
	if folder := snap.folders[cleanPath(path)]; folder != nil {
		for _, p := range folder.pages {
			if !p.isIndex {
				posts = append(posts, p.summary)
			}
		}
	}
	slices.SortStableFunc(posts, func(a, b interfaces.PageSummary) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Route, b.Route)
	})

	total := len(posts)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	var items []interfaces.PageSummary
	if start < end {
		items = slices.Clone(posts[start:end])
	}

	return &interfaces.BlogListing{
		Items:       items,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

// Invalidate drops the cached snapshot so the next query rescans the tree.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	idx.snap = nil
	idx.mu.Unlock()
}

// Stats reports the size of the current snapshot, scanning if needed.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	snap, err := idx.snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Pages:     len(snap.pages),
		Folders:   len(snap.folders),
		Drafts:    snap.drafts,
		ScannedAt: snap.scannedAt,
	}, nil
}

// Stats summarises a snapshot.
type Stats struct {
	Pages     int
	Folders   int
	Drafts    int
	ScannedAt time.Time
}

func (idx *Index) snapshot(ctx context.Context) (*snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx.mu.RLock()
	snap := idx.snap
	idx.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.snap != nil {
		return idx.snap, nil
	}

	start := idx.now()
	snap, err := scan(ctx, idx.loader)
	if err != nil {
		logging.WithFields(idx.logger.WithContext(ctx), map[string]any{"error": err}).Error("content.index.scan_failed")
		return nil, err
	}
	snap.scannedAt = idx.now()
	idx.snap = snap

	logging.WithFields(idx.logger.WithContext(ctx), map[string]any{
		"pages":       len(snap.pages),
		"folders":     len(snap.folders),
		"drafts":      snap.drafts,
		"duration_ms": snap.scannedAt.Sub(start).Milliseconds(),
	}).Debug("content.index.scanned")
	return snap, nil
}

func cleanPath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

func within(root, folder string) bool {
	return root == "" || folder == root || strings.HasPrefix(folder, root+"/")
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var _ interfaces.ContentIndex = (*Index)(nil)
