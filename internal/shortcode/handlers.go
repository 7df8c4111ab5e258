package shortcode

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const (
	defaultListLimit    = 1000
	defaultGalleryLimit = 100
	maxTagWeight        = 5
)

// NormalizePath trims whitespace and surrounding slashes from a folder path.
func NormalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// routeURL turns a normalised route into a site relative URL.
func routeURL(route string) string {
	return "/" + NormalizePath(route)
}

// folderParam returns the path parameter at 0, defaulting to the current route.
func folderParam(inv Invocation, req interfaces.RequestContext) string {
	if p := inv.Param(0); p != "" {
		return NormalizePath(p)
	}
	return NormalizePath(req.Route)
}

func (s *Service) unavailable(kind Kind, locale string) string {
	return alert(alertDanger, escape(s.translate(locale, keyUnavailable, kind.String())))
}

func (s *Service) empty(key, path, locale string) string {
	return alert(alertInfo, escape(s.translate(locale, key, "/"+path)))
}

func (s *Service) queryFailed(ctx context.Context, inv Invocation, path string, err error) {
	logging.WithFields(s.baseLogger(ctx), map[string]any{
		"shortcode": inv.Kind.String(),
		"path":      path,
		"error":     err,
	}).Error("shortcode.handler.query_failed")
}

// renderPages lists the pages of a folder tiled into ColumnCount columns.
func (s *Service) renderPages(ctx context.Context, inv Invocation, req interfaces.RequestContext) string {
	if s.index == nil {
		return s.unavailable(KindPages, req.Locale)
	}
	path := folderParam(inv, req)
	limit := inv.IntParam(1, defaultListLimit)
	layout := ParseLayout(inv.Param(2))

	pages, err := s.index.FolderPages(ctx, path, limit)
	if err != nil {
		s.queryFailed(ctx, inv, path, err)
		return s.unavailable(KindPages, req.Locale)
	}
	if len(pages) == 0 {
		return s.empty(keyPagesEmpty, path, req.Locale)
	}
	if len(pages) > limit {
		pages = pages[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="shortcode-pages row layout-%s">`, layout)
	for _, column := range Distribute(pages, layout, ColumnCount) {
		b.WriteString(`<div class="col-md-3"><ul class="list-unstyled">`)
		for _, page := range column {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, escape(routeURL(page.Route)), escape(page.Title))
		}
		b.WriteString(`</ul></div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// TagWeight is a tag cloud entry.
type TagWeight struct {
	Name   string
	Count  int
	Weight int
}

// TagWeights scales counts to weights 1..5 between the smallest and largest
// count. Equal counts all get the middle weight. The result is sorted by name.
func TagWeights(counts map[string]int) []TagWeight {
	out := make([]TagWeight, 0, len(counts))
	lo, hi := 0, 0
	first := true
	for name, count := range counts {
		if first || count < lo {
			lo = count
		}
		if first || count > hi {
			hi = count
		}
		first = false
		out = append(out, TagWeight{Name: name, Count: count})
	}
	for i := range out {
		if hi == lo {
			out[i].Weight = (maxTagWeight + 1) / 2
			continue
		}
		out[i].Weight = 1 + (out[i].Count-lo)*(maxTagWeight-1)/(hi-lo)
	}
	slices.SortFunc(out, func(a, b TagWeight) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

func tagSlug(name string) string {
	if s, err := slug.Normalize(name); err == nil && s != "" {
		return s
	}
	return url.PathEscape(strings.ToLower(name))
}

// renderTags renders a frequency weighted tag cloud for a folder.
func (s *Service) renderTags(ctx context.Context, inv Invocation, req interfaces.RequestContext) string {
	if s.index == nil {
		return s.unavailable(KindTags, req.Locale)
	}
	path := folderParam(inv, req)
	limit := inv.IntParam(1, defaultListLimit)

	counts, err := s.index.FolderTags(ctx, path, limit)
	if err != nil {
		s.queryFailed(ctx, inv, path, err)
		return s.unavailable(KindTags, req.Locale)
	}
	if len(counts) == 0 {
		return s.empty(keyTagsEmpty, path, req.Locale)
	}

	var b strings.Builder
	b.WriteString(`<div class="shortcode-tags tag-cloud">`)
	for _, tag := range TagWeights(counts) {
		href := routeURL(path) + "?tag=" + url.QueryEscape(tagSlug(tag.Name))
		fmt.Fprintf(&b, `<a href="%s" class="tag tag-weight-%d" title="%d">%s</a> `,
			escape(href), tag.Weight, tag.Count, escape(tag.Name))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// renderFolder renders subfolder navigation buttons.
func (s *Service) renderFolder(ctx context.Context, inv Invocation, req interfaces.RequestContext) string {
	if s.index == nil {
		return s.unavailable(KindFolder, req.Locale)
	}
	path := folderParam(inv, req)
	limit := inv.IntParam(1, defaultListLimit)

	folders, err := s.index.DirectSubfolders(ctx, path, limit)
	if err != nil {
		s.queryFailed(ctx, inv, path, err)
		return s.unavailable(KindFolder, req.Locale)
	}
	if len(folders) == 0 {
		return s.empty(keyFolderEmpty, path, req.Locale)
	}

	var b strings.Builder
	b.WriteString(`<div class="shortcode-folder btn-group-wrap">`)
	for _, folder := range folders {
		title := ""
		if folder.Description != "" {
			title = ` title="` + escape(folder.Description) + `"`
		}
		fmt.Fprintf(&b, `<a href="%s" class="btn btn-outline-primary"%s>%s <span class="badge">%d</span></a>`,
			escape(routeURL(folder.Route)), title, escape(folder.Title), folder.FileCount)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// renderBlogList renders a page of blog entries followed by pagination links.
func (s *Service) renderBlogList(ctx context.Context, inv Invocation, req interfaces.RequestContext) string {
	if s.index == nil {
		return s.unavailable(KindBlogList, req.Locale)
	}
	path := folderParam(inv, req)
	perPage := inv.IntParam(1, s.itemsPerPage)
	page := inv.IntParam(2, max(req.Page, 1))

	listing, err := s.index.BlogList(ctx, path, perPage, page)
	if err != nil {
		s.queryFailed(ctx, inv, path, err)
		return s.unavailable(KindBlogList, req.Locale)
	}
	if listing == nil || len(listing.Items) == 0 {
		return s.empty(keyBlogListEmpty, path, req.Locale)
	}

	var b strings.Builder
	b.WriteString(`<div class="shortcode-bloglist">`)
	for _, item := range listing.Items {
		b.WriteString(`<article class="blog-entry">`)
		fmt.Fprintf(&b, `<h3><a href="%s">%s</a></h3>`, escape(routeURL(item.Route)), escape(item.Title))
		if !item.Date.IsZero() {
			fmt.Fprintf(&b, `<time datetime="%s">%s</time>`, item.Date.Format("2006-01-02"), item.Date.Format("2006-01-02"))
		}
		if item.Description != "" {
			fmt.Fprintf(&b, `<p>%s</p>`, escape(item.Description))
		}
		b.WriteString(`</article>`)
	}
	b.WriteString(s.pagination(listing, req))
	b.WriteString(`</div>`)
	return b.String()
}

func (s *Service) pagination(listing *interfaces.BlogListing, req interfaces.RequestContext) string {
	if listing.Pages <= 1 {
		return ""
	}
	current := min(max(listing.CurrentPage, 1), listing.Pages)

	var b strings.Builder
	b.WriteString(`<nav class="pagination">`)
	if current > 1 {
		fmt.Fprintf(&b, `<a class="page-prev" href="%s">%s</a>`,
			escape(PageURL(req, current-1)), escape(s.translate(req.Locale, keyBlogListPrevious)))
	}
	fmt.Fprintf(&b, `<span class="page-status">%s</span>`,
		escape(s.translate(req.Locale, keyBlogListPageOf, current, listing.Pages)))
	if current < listing.Pages {
		fmt.Fprintf(&b, `<a class="page-next" href="%s">%s</a>`,
			escape(PageURL(req, current+1)), escape(s.translate(req.Locale, keyBlogListNext)))
	}
	b.WriteString(`</nav>`)
	return b.String()
}

// PageURL builds the link to page of the current route, keeping the request
// query parameters except page and route. Parameters are encoded in key order.
func PageURL(req interfaces.RequestContext, page int) string {
	values := url.Values{}
	for key, vals := range req.Query {
		if key == "page" || key == "route" {
			continue
		}
		values[key] = slices.Clone(vals)
	}
	values.Set("page", strconv.Itoa(page))
	return routeURL(req.Route) + "?" + values.Encode()
}
