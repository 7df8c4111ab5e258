// Package cli implements the flatcms command tree.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms"
	"github.com/goliatone/go-flatcms/internal/di"
)

// moduleBuilder is swapped by tests.
var moduleBuilder = func(cfg cms.Config, opts ...di.Option) (*cms.Module, error) {
	return cms.New(cfg, opts...)
}

// NewCmdRoot creates the root command for flatcms.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatcms",
		Short: "Render and serve a flat-file Markdown site",
		Long: `flatcms renders Markdown pages from a content directory, expands
shortcodes such as [pages], [tags], [folder], [bloglist] and [gallery],
and wraps the result in the configured theme layout.

Configuration is read from --config and FLATCMS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "config file (YAML, TOML or JSON)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.AddCommand(newCmdRender())
	cmd.AddCommand(newCmdServe())
	cmd.AddCommand(newCmdIndex())
	cmd.AddCommand(newCmdBuild())

	return cmd
}

// loadModule reads the configuration named by --config and builds the module.
// Logs go to the command's stderr.
func loadModule(cmd *cobra.Command) (*cms.Module, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cms.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return moduleBuilder(cfg, di.WithLogWriter(cmd.ErrOrStderr()))
}
