package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/config"
	"github.com/awxmon/awxmon/internal/history"
	"github.com/awxmon/awxmon/internal/reconcile"
	"github.com/awxmon/awxmon/internal/ws"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record job status transitions without printing them",
	Long: `Like 'watch', but silent: transitions are written to the history database
only. Intended to run in the background (e.g. under a service manager).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := history.OpenDatabase(config.DatabasePath())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		store := history.NewStore(db)
		defer store.Close()

		changes := make(chan []api.Job, 1)
		stream := ws.New(ws.Options{
			URL:   client.WebsocketURL(),
			Token: cfg.TokenProvider(),
		})
		engine := reconcile.NewEngine(reconcile.Options{
			Messages: stream.Messages(),
			Fetch:    client.JobsByID,
			FilterState: func() reconcile.FilterState {
				return reconcile.FilterState{OrderBy: cfg.OrderBy}
			},
			OnChange: func(jobs []api.Job) {
				select {
				case changes <- jobs:
				default:
				}
			},
		})

		page, err := client.ListJobs(ctx, api.ListParams{
			PageSize: cfg.PageSize,
			OrderBy:  cfg.OrderBy,
		})
		if err != nil {
			return err
		}
		engine.SetSnapshot(page.Results)

		stream.Start(ctx)
		engine.Start(ctx)
		defer engine.Stop()
		defer stream.Stop()

		known := statusIndex(page.Results)
		for {
			select {
			case <-ctx.Done():
				return nil
			case jobs := <-changes:
				known = recordTransitions(store, known, jobs)
			}
		}
	},
}

// recordTransitions writes status changes to the store without printing.
func recordTransitions(store *history.Store, known map[int]string, jobs []api.Job) map[int]string {
	now := time.Now()
	next := make(map[int]string, len(jobs))
	for _, job := range jobs {
		next[job.ID] = job.Status
		if known[job.ID] == job.Status {
			continue
		}
		err := store.RecordTransition(&history.Transition{
			JobID:      job.ID,
			Name:       job.Name,
			OldStatus:  known[job.ID],
			Status:     job.Status,
			Finished:   job.Finished,
			ObservedAt: now,
		})
		if err != nil {
			fmt.Printf("warning: failed to record transition: %v\n", err)
		}
	}
	return next
}

func init() {
	RootCmd.AddCommand(recordCmd)
}
