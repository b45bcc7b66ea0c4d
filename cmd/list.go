package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/api"
)

var (
	listPageSize int
	listOrderBy  string
	listStatus   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs on the controller",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		params := api.ListParams{
			PageSize: listPageSize,
			OrderBy:  listOrderBy,
		}
		if params.PageSize == 0 {
			params.PageSize = cfg.PageSize
		}
		if params.OrderBy == "" {
			params.OrderBy = cfg.OrderBy
		}
		if listStatus != "" {
			params.Filters = url.Values{"status": {listStatus}}
		}

		page, err := client.ListJobs(cmd.Context(), params)
		if err != nil {
			return err
		}

		if len(page.Results) == 0 {
			fmt.Println("No jobs found")
			return nil
		}

		for _, job := range page.Results {
			fmt.Println(formatJobLine(job))
		}
		if page.Count > len(page.Results) {
			fmt.Printf("(%d of %d jobs shown)\n", len(page.Results), page.Count)
		}
		return nil
	},
}

// formatJobLine renders one job as a fixed-width row.
func formatJobLine(job api.Job) string {
	finished := "-"
	if job.Finished != nil {
		finished = job.Finished.Local().Format("2006-01-02 15:04:05")
	}
	user := job.SummaryFields.CreatedBy.Username
	if user == "" {
		user = "-"
	}
	return fmt.Sprintf("%6d  %-10s  %-19s  %-12s  %s", job.ID, job.Status, finished, user, job.Name)
}

func init() {
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "number of jobs to show")
	listCmd.Flags().StringVar(&listOrderBy, "order-by", "", "sort field, prefix with '-' for descending")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (running, successful, failed, ...)")
	RootCmd.AddCommand(listCmd)
}
