package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/output"
	"github.com/awxmon/awxmon/internal/ws"
)

var outputFollow bool

var outputCmd = &cobra.Command{
	Use:   "output <job-id>",
	Short: "Print a job's output",
	Long: `Print a job's stdout output.

With --follow, keeps streaming new output over the websocket until the job
reaches a terminal state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		renderer := output.NewWriterRenderer(os.Stdout)

		// Drain everything the REST API has so far.
		maxCounter := 0
		for page := 1; ; page++ {
			events, err := client.JobEvents(ctx, id, page, cfg.PageSize)
			if err != nil {
				return err
			}
			if len(events.Results) == 0 {
				break
			}
			if _, err := renderer.Append(events.Results); err != nil {
				return err
			}
			for _, ev := range events.Results {
				if ev.Counter > maxCounter {
					maxCounter = ev.Counter
				}
			}
			if page*cfg.PageSize >= events.Count {
				break
			}
		}

		if !outputFollow {
			return nil
		}

		job, err := client.Job(ctx, id)
		if err != nil {
			return err
		}
		if !api.IsRunningStatus(job.Status) {
			return nil
		}

		return followOutput(ctx, client, renderer, id, maxCounter)
	},
}

// followOutput streams live events for one job until it finishes.
func followOutput(ctx context.Context, client *api.Client, renderer *output.WriterRenderer, jobID, maxCounter int) error {
	stream := ws.New(ws.Options{
		URL:    client.WebsocketURL(),
		Token:  cfg.TokenProvider(),
		Groups: ws.JobEventGroups(jobID),
	})
	stream.Start(ctx)
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-stream.Messages():
			if !ok {
				return nil
			}
			if msg.UnifiedJobID == jobID && msg.Status != "" && !api.IsRunningStatus(msg.Status) {
				return nil
			}
			if msg.Stdout == "" || msg.Counter <= maxCounter {
				continue
			}
			maxCounter = msg.Counter
			event := api.JobEvent{
				Counter:   msg.Counter,
				StartLine: msg.StartLine,
				EndLine:   msg.EndLine,
				Stdout:    msg.Stdout,
			}
			if _, err := renderer.Append([]api.JobEvent{event}); err != nil {
				return err
			}
		}
	}
}

func init() {
	outputCmd.Flags().BoolVarP(&outputFollow, "follow", "f", false, "keep streaming new output")
	RootCmd.AddCommand(outputCmd)
}
