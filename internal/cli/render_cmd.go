package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markpad/markpad/internal/diagram"
)

func newRenderCmd() *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "render <file.md>",
		Short: "Print a markdown file as sanitized HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			content, err := app.Files.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res := app.Renderer.Render(content)
			html := res.HTML
			if resolve {
				html = diagram.ApplyAll(html, res.Diagrams)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
	cmd.Flags().BoolVar(&resolve, "diagrams", true, "resolve diagram placeholders into inline SVG")
	return cmd
}
