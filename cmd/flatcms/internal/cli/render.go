package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms/internal/commands"
)

type renderOptions struct {
	page   int
	locale string
	output string
	admin  bool
}

func newCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <route>",
		Short: "Render a page to stdout or a file",
		Example: `  # Render the home page
  flatcms render /

  # Render page two of a blog listing as an administrator
  flatcms render /blog --page 2 --admin --output out/blog.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 0, "bloglist page to render")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale used for notices (defaults to the site default)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "render auth blocks unlocked")

	return cmd
}

func runRender(cmd *cobra.Command, route string, opts *renderOptions) error {
	module, err := loadModule(cmd)
	if err != nil {
		return err
	}

	handler := module.Commands().RenderPage(cmd.OutOrStdout())
	err = handler.Execute(cmd.Context(), commands.RenderPageCommand{
		Route:         route,
		Page:          opts.page,
		Locale:        opts.locale,
		Output:        opts.output,
		Authenticated: opts.admin,
	})
	if err != nil {
		return err
	}

	if opts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("wrote"), opts.output)
	}
	return nil
}
