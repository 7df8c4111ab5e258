package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms"
	"github.com/goliatone/go-flatcms/internal/commands"
)

type indexOptions struct {
	folder string
	json   bool
}

func newCmdIndex() *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rescan the content tree and list folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.folder, "folder", "", "list the sub-folders of this folder")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print stats and folders as JSON")

	return cmd
}

type indexReport struct {
	Stats   cms.IndexStats `json:"stats"`
	Folders []folderRow    `json:"folders"`
}

type folderRow struct {
	Title string `json:"title"`
	Route string `json:"route"`
	Pages int    `json:"pages"`
}

func runIndex(cmd *cobra.Command, opts *indexOptions) error {
	module, err := loadModule(cmd)
	if err != nil {
		return err
	}

	var report indexReport
	err = module.Commands().RebuildIndex(func(stats cms.IndexStats) {
		report.Stats = stats
	}).Execute(cmd.Context(), commands.RebuildIndexCommand{})
	if err != nil {
		return err
	}

	folders, err := module.Index().DirectSubfolders(cmd.Context(), opts.folder, 0)
	if err != nil {
		return err
	}
	report.Folders = make([]folderRow, 0, len(folders))
	for _, f := range folders {
		report.Folders = append(report.Folders, folderRow{Title: f.Title, Route: f.Route, Pages: f.FileCount})
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %d pages, %d folders, %d drafts\n",
		bold("content:"), report.Stats.Pages, report.Stats.Folders, report.Stats.Drafts)
	for _, row := range report.Folders {
		fmt.Fprintf(out, "  %s %s %s\n", color.CyanString(row.Title), "/"+row.Route, faint(fmt.Sprintf("(%d)", row.Pages)))
	}
	return nil
}
