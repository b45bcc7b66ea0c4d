package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Request cancellation of a running job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		if err := client.CancelJob(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Cancel requested for job %d\n", id)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cancelCmd)
}
