package content

import (
	"context"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-flatcms/internal/identity"
	"github.com/goliatone/go-flatcms/internal/markdown"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const indexFile = "index.md"

type page struct {
	summary interfaces.PageSummary
	folder  string
	isIndex bool
}

type folder struct {
	path     string
	pages    []*page
	children []string
	index    *page
}

func (f *folder) summary() interfaces.FolderSummary {
	out := interfaces.FolderSummary{
		Title:     markdown.Humanize(path.Base(f.path)),
		Route:     f.path,
		Path:      f.path,
		FileCount: len(f.pages),
	}
	if f.index != nil {
		if title := strings.TrimSpace(f.index.summary.Title); title != "" {
			out.Title = title
		}
		out.Description = f.index.summary.Description
	}
	return out
}

type snapshot struct {
	pages     []*page
	folders   map[string]*folder
	drafts    int
	scannedAt time.Time
}

// scan walks the content tree once, recording every visible folder and every
// published page.
func scan(ctx context.Context, loader *markdown.Loader) (*snapshot, error) {
	snap := &snapshot{folders: map[string]*folder{"": {path: ""}}}

	err := fs.WalkDir(loader.FS(), ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || name == "." {
			return nil
		}
		if hidden(d.Name()) {
			return fs.SkipDir
		}
		snap.folders[name] = &folder{path: name}
		parent := folderOf(name)
		if p := snap.folders[parent]; p != nil {
			p.children = append(p.children, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs, err := loader.LoadDirectory(ctx, ".", interfaces.LoadOptions{Recursive: boolPtr(true)})
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.FrontMatter.Draft {
			snap.drafts++
			continue
		}
		p := newPage(doc)
		f := snap.folders[p.folder]
		if f == nil {
			continue
		}
		snap.pages = append(snap.pages, p)
		f.pages = append(f.pages, p)
		if p.isIndex {
			f.index = p
		}
	}
	return snap, nil
}

func newPage(doc *interfaces.Document) *page {
	dir := folderOf(doc.FilePath)
	isIndex := path.Base(doc.FilePath) == indexFile

	route := strings.TrimSuffix(doc.FilePath, path.Ext(doc.FilePath))
	if isIndex {
		route = dir
	}

	date := doc.FrontMatter.Date
	if date.IsZero() {
		date = doc.LastModified
	}

	return &page{
		folder:  dir,
		isIndex: isIndex,
		summary: interfaces.PageSummary{
			ID:          identity.PageUUID(route),
			Title:       markdown.TitleFor(doc),
			Route:       route,
			Description: doc.FrontMatter.Description,
			Date:        date,
			Tags:        append([]string(nil), doc.FrontMatter.Tags...),
			Author:      doc.FrontMatter.Author,
		},
	}
}

func folderOf(name string) string {
	dir := path.Dir(name)
	if dir == "." {
		return ""
	}
	return dir
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func boolPtr(v bool) *bool {
	return &v
}
