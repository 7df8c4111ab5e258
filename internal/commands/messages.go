package commands

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderPageMessageType   = "flatcms.pages.render"
	rebuildIndexMessageType = "flatcms.content.rebuild_index"
	buildSiteMessageType    = "flatcms.site.build"
)

// RenderPageCommand renders a route through shortcodes, Markdown and the
// theme layout.
type RenderPageCommand struct {
	// Route is the site path, "/" for the home page.
	Route string `json:"route"`
	// Page feeds bloglist pagination; zero means the first page.
	Page   int    `json:"page,omitempty"`
	Locale string `json:"locale,omitempty"`
	// Output writes the HTML to a file instead of the handler's writer.
	Output string `json:"output,omitempty"`
	// Authenticated renders auth blocks as an administrator would see them.
	Authenticated bool `json:"authenticated,omitempty"`
}

// Type implements command.Message.
func (RenderPageCommand) Type() string { return renderPageMessageType }

// Validate ensures a route is present before handlers execute.
func (cmd RenderPageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Route, validation.Required, validation.By(func(value any) error {
			if strings.Contains(value.(string), "..") {
				return validation.NewError("flatcms.pages.render.route_invalid", "route must not contain ..")
			}
			return nil
		})),
		validation.Field(&cmd.Page, validation.Min(0)),
	)
}

// RebuildIndexCommand drops the content index snapshot and rescans the tree.
type RebuildIndexCommand struct{}

// Type implements command.Message.
func (RebuildIndexCommand) Type() string { return rebuildIndexMessageType }

func (RebuildIndexCommand) Validate() error {
	return validation.ValidateStruct(&RebuildIndexCommand{})
}

// BuildSiteCommand exports every published page as static HTML.
type BuildSiteCommand struct {
	// OutputDir overrides the configured generator output directory.
	OutputDir string   `json:"output_dir,omitempty"`
	Routes    []string `json:"routes,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Routes, validation.Each(validation.By(func(value any) error {
			if strings.Contains(value.(string), "..") {
				return validation.NewError("flatcms.site.build.route_invalid", "route must not contain ..")
			}
			return nil
		}))),
	)
}
