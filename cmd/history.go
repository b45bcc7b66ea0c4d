package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/config"
	"github.com/awxmon/awxmon/internal/history"
)

var (
	historyJobID int
	historyLimit int
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded job status transitions",
	Long: `Show status transitions recorded by 'awxmon watch' and the TUI.

With --job, shows all transitions for one job. With --prune, deletes
transitions older than the given duration instead of listing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.OpenDatabase(config.DatabasePath())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		store := history.NewStore(db)
		defer store.Close()

		if historyPrune > 0 {
			removed, err := store.Prune(time.Now().Add(-historyPrune))
			if err != nil {
				return err
			}
			fmt.Printf("Pruned %d transitions\n", removed)
			return nil
		}

		var transitions []*history.Transition
		if historyJobID > 0 {
			transitions, err = store.TransitionsForJob(historyJobID)
		} else {
			transitions, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}

		if len(transitions) == 0 {
			fmt.Println("No transitions recorded")
			return nil
		}

		for _, t := range transitions {
			change := t.Status
			if t.OldStatus != "" {
				change = t.OldStatus + " -> " + t.Status
			}
			fmt.Printf("%s  job %d  %-22s  %s\n",
				t.ObservedAt.Local().Format("2006-01-02 15:04:05"), t.JobID, change, t.Name)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyJobID, "job", 0, "show transitions for one job")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of transitions to show")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete transitions older than this duration (e.g. 720h)")
	RootCmd.AddCommand(historyCmd)
}
