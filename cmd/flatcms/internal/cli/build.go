package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms"
	"github.com/goliatone/go-flatcms/internal/commands"
)

type buildOptions struct {
	out    string
	routes []string
	dryRun bool
}

func newCmdBuild() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static HTML",
		Long: `build renders every published page anonymously with the default
locale and writes route/index.html files, public assets, sitemap.xml and
robots.txt into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (defaults to generator.output_dir)")
	cmd.Flags().StringArrayVar(&opts.routes, "route", nil, "only build this route (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "render pages without writing files")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	module, err := loadModule(cmd)
	if err != nil {
		return err
	}

	var result *cms.BuildResult
	err = module.Commands().BuildSite(func(r *cms.BuildResult) {
		result = r
	}).Execute(cmd.Context(), commands.BuildSiteCommand{
		OutputDir: opts.out,
		Routes:    opts.routes,
		DryRun:    opts.dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	label := color.GreenString("built:")
	if result.DryRun {
		label = color.YellowString("dry run:")
	}
	fmt.Fprintf(out, "%s %d pages, %d assets in %s\n", label, result.PagesBuilt, result.AssetsBuilt, result.Duration.Round(1e6))
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(out, "  %s /%s: %v\n", color.RedString("failed"), diag.Route, diag.Err)
	}
	if n := len(result.Diagnostics); n > 0 {
		return fmt.Errorf("%d pages failed to render", n)
	}
	return nil
}
