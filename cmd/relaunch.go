package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var relaunchCmd = &cobra.Command{
	Use:   "relaunch <job-id>",
	Short: "Relaunch a job",
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

		job, err := client.RelaunchJob(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Relaunched job %d as job %d\n", id, job.ID)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(relaunchCmd)
}
