package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity and authentication",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("OK: %s\n", cfg.Host)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(pingCmd)
}
