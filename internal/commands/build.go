package commands

import (
	"context"

	"github.com/goliatone/go-flatcms/internal/generator"
)

// SiteBuilder renders the site to static files.
type SiteBuilder interface {
	Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error)
}

// NewBuildSiteHandler runs a static export and passes the result to report.
func NewBuildSiteHandler(builder SiteBuilder, report func(*generator.BuildResult), opts ...HandlerOption[BuildSiteCommand]) *Handler[BuildSiteCommand] {
	opts = append([]HandlerOption[BuildSiteCommand]{WithOperation[BuildSiteCommand]("build_site")}, opts...)
	return NewHandler[BuildSiteCommand](func(ctx context.Context, cmd BuildSiteCommand) error {
		result, err := builder.Build(ctx, generator.BuildOptions{
			OutputDir: cmd.OutputDir,
			Routes:    cmd.Routes,
			DryRun:    cmd.DryRun,
		})
		if err != nil {
			return err
		}
		if report != nil {
			report(result)
		}
		return nil
	}, opts...)
}
