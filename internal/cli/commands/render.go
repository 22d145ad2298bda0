package commands

import (
	"bytes"
	"fmt"

	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	"github.com/leapstack-labs/pdmwatch/internal/ui/components"
	"github.com/spf13/cobra"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Page bool
}

// RenderOutput is the JSON shape of the render command.
type RenderOutput struct {
	Component string `json:"component"`
	HTML      string `json:"html"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the live chart placeholder markup",
		Long: `Render the live chart placeholder to stdout.

The output is the exact HTML fragment the dashboard and machine pages mount.
With --page it is wrapped in the full page layout.`,
		Example: `  # Print the fragment
  pdmwatch render

  # Write a standalone page
  pdmwatch render --page > chart.html

  # Render as JSON
  pdmwatch render --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Page, "page", false, "Wrap the placeholder in the page layout")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	r := cmdCtx.Renderer

	component := components.LiveChart()
	name := "LiveChart"
	if opts.Page {
		component = components.Page("Live chart", false, component)
		name = "Page"
	}

	var buf bytes.Buffer
	if err := component.Render(cmd.Context(), &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(RenderOutput{Component: name, HTML: buf.String()})
	}

	r.Println(buf.String())
	return nil
}
