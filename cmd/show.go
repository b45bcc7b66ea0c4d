package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show details of a single job",
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

		job, err := client.Job(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %d\n", job.ID)
		fmt.Printf("Name:       %s\n", job.Name)
		fmt.Printf("Status:     %s\n", job.Status)
		if job.Started != nil {
			fmt.Printf("Started:    %s\n", job.Started.Local().Format("2006-01-02 15:04:05"))
		}
		if job.Finished != nil {
			fmt.Printf("Finished:   %s\n", job.Finished.Local().Format("2006-01-02 15:04:05"))
		}
		if job.Elapsed > 0 {
			fmt.Printf("Elapsed:    %.1fs\n", job.Elapsed)
		}
		if user := job.SummaryFields.CreatedBy.Username; user != "" {
			fmt.Printf("Created by: %s\n", user)
		}
		if project := job.SummaryFields.Project.Name; project != "" {
			fmt.Printf("Project:    %s\n", project)
		}
		fmt.Printf("URL:        %s\n", client.JobURL(job.ID))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}
