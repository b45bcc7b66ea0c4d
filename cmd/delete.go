package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job record",
	Long:  `Delete a job record from the controller. Only finished jobs can be deleted.`,
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

		if err := client.DeleteJob(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted job %d\n", id)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deleteCmd)
}
