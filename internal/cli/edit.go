package cli

import (
	"github.com/spf13/cobra"

	"github.com/markpad/markpad/internal/tui"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file...]",
		Short: "Open the editor (default command)",
		Args:  cobra.ArbitraryArgs,
		RunE:  runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	return tui.Run(cmd.Context(), app, args)
}
