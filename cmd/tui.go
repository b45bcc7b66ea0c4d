package cmd

import (
	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive job monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		return tui.Start(tui.Options{
			Client:   client,
			Token:    cfg.TokenProvider(),
			OrderBy:  cfg.OrderBy,
			PageSize: cfg.PageSize,
		})
	},
}

func init() {
	RootCmd.AddCommand(tuiCmd)
}
