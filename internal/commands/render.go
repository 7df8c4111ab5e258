package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-flatcms/internal/auth"
	"github.com/goliatone/go-flatcms/internal/content"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// PageRenderer resolves and renders a route body.
type PageRenderer interface {
	RenderPage(ctx context.Context, route string, req interfaces.RequestContext) (*interfaces.RenderedPage, error)
}

// LayoutRenderer wraps a rendered body in the theme layout.
type LayoutRenderer interface {
	RenderPage(ctx context.Context, page *interfaces.RenderedPage) ([]byte, error)
}

// IndexRebuilder is the part of the content index the rebuild command drives.
type IndexRebuilder interface {
	Invalidate()
	Stats(ctx context.Context) (content.Stats, error)
}

// NewRenderPageHandler renders pages to cmd.Output or, when empty, to out.
func NewRenderPageHandler(pages PageRenderer, layout LayoutRenderer, out io.Writer, opts ...HandlerOption[RenderPageCommand]) *Handler[RenderPageCommand] {
	opts = append([]HandlerOption[RenderPageCommand]{WithOperation[RenderPageCommand]("render_page")}, opts...)
	return NewHandler[RenderPageCommand](func(ctx context.Context, cmd RenderPageCommand) error {
		ctx = auth.WithAuthenticated(ctx, cmd.Authenticated)
		page, err := pages.RenderPage(ctx, cmd.Route, interfaces.RequestContext{
			Route:  cmd.Route,
			Page:   max(cmd.Page, 1),
			Locale: cmd.Locale,
		})
		if err != nil {
			return err
		}

		html := page.HTML
		if layout != nil {
			if html, err = layout.RenderPage(ctx, page); err != nil {
				return err
			}
		}

		if output := strings.TrimSpace(cmd.Output); output != "" {
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			return os.WriteFile(output, html, 0o644)
		}
		if out == nil {
			return nil
		}
		_, err = out.Write(html)
		return err
	}, opts...)
}

// NewRebuildIndexHandler invalidates the index, rescans it and passes the
// fresh stats to report.
func NewRebuildIndexHandler(index IndexRebuilder, report func(content.Stats), opts ...HandlerOption[RebuildIndexCommand]) *Handler[RebuildIndexCommand] {
	opts = append([]HandlerOption[RebuildIndexCommand]{WithOperation[RebuildIndexCommand]("rebuild_index")}, opts...)
	return NewHandler[RebuildIndexCommand](func(ctx context.Context, _ RebuildIndexCommand) error {
		index.Invalidate()
		stats, err := index.Stats(ctx)
		if err != nil {
			return err
		}
		if report != nil {
			report(stats)
		}
		return nil
	}, opts...)
}
