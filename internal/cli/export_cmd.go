package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/markpad/markpad/internal/export"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <file.md>",
		Short: "Render a markdown file to a paginated PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			content, err := app.Files.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := app.Exporter.Export(export.Request{
				Title:   filepath.Base(args[0]),
				Content: content,
				BaseDir: filepath.Dir(args[0]),
				Dest:    out,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d page(s))\n", res.Path, res.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "destination path (default: <name>.pdf)")
	return cmd
}
