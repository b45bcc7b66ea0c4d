package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/ws"
)

var eventsCmd = &cobra.Command{
	Use:    "events",
	Short:  "Print raw websocket events (debugging)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stream := ws.New(ws.Options{
			URL:   client.WebsocketURL(),
			Token: cfg.TokenProvider(),
		})
		stream.Start(ctx)
		defer stream.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-stream.Messages():
				if !ok {
					return nil
				}
				fmt.Printf("%s  group=%s job=%d status=%s\n",
					time.Now().Format("15:04:05"), msg.GroupName, msg.UnifiedJobID, msg.Status)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(eventsCmd)
}
