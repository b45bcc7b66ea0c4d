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
	"github.com/awxmon/awxmon/internal/telemetry"
	"github.com/awxmon/awxmon/internal/ws"
)

var watchNoRecord bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream job status transitions to the terminal",
	Long: `Watch the job list over the controller's websocket and print a line for
every status transition. Transitions are also recorded to the local history
database unless --no-record is given.

Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var store *history.Store
		if !watchNoRecord {
			db, err := history.OpenDatabase(config.DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			store = history.NewStore(db)
			defer store.Close()
		}

		telemetry.WatchSessionStart()
		defer telemetry.WatchSessionEnd(0)

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

		fmt.Printf("Watching %d jobs on %s (ctrl-c to stop)\n", len(page.Results), cfg.Host)

		known := statusIndex(page.Results)
		for {
			select {
			case <-ctx.Done():
				return nil
			case jobs := <-changes:
				known = reportTransitions(store, known, jobs)
			}
		}
	},
}

// statusIndex maps job ids to their last seen status.
func statusIndex(jobs []api.Job) map[int]string {
	index := make(map[int]string, len(jobs))
	for _, job := range jobs {
		index[job.ID] = job.Status
	}
	return index
}

// reportTransitions prints and records every status change between the
// previous index and the new list, then returns the new index.
func reportTransitions(store *history.Store, known map[int]string, jobs []api.Job) map[int]string {
	now := time.Now()
	next := make(map[int]string, len(jobs))
	for _, job := range jobs {
		next[job.ID] = job.Status
		old := known[job.ID]
		if old == job.Status {
			continue
		}

		if old == "" {
			fmt.Printf("%s  job %d  %s  %s\n", now.Format("15:04:05"), job.ID, job.Status, job.Name)
		} else {
			fmt.Printf("%s  job %d  %s -> %s  %s\n", now.Format("15:04:05"), job.ID, old, job.Status, job.Name)
		}

		if store != nil {
			err := store.RecordTransition(&history.Transition{
				JobID:      job.ID,
				Name:       job.Name,
				OldStatus:  old,
				Status:     job.Status,
				Finished:   job.Finished,
				ObservedAt: now,
			})
			if err != nil {
				fmt.Printf("warning: failed to record transition: %v\n", err)
			}
		}
	}
	return next
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoRecord, "no-record", false, "do not record transitions to the history database")
	RootCmd.AddCommand(watchCmd)
}
