package cmd

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/timvw/draft-patrol/internal/config"
	"github.com/timvw/draft-patrol/internal/events"
)

var eventCmd = &cobra.Command{
	Use:   "event <kind> [payload]",
	Short: "Send an event to a running monitor",
	Long: `Send a single event datagram to the monitor's event socket.

This is the same wire format the drafting process uses, so it works both
for integration hooks and for manual testing:

  draft-patrol event doc_save 6611f5c5
  draft-patrol event pop_context_triggered`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := events.Event{Kind: args[0]}
		if len(args) > 1 {
			e.Payload = args[1]
		}
		if err := e.Validate(); err != nil {
			return err
		}

		socketPath := flagEventSocket
		if socketPath == "" {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			socketPath = cfg.EventSocket
		}
		if socketPath == "" {
			socketPath = events.DefaultSocketPath()
		}

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		conn, err := net.Dial("unixgram", socketPath)
		if err != nil {
			return fmt.Errorf("no monitor listening on %s: %w", socketPath, err)
		}
		defer conn.Close()

		if _, err := conn.Write(data); err != nil {
			return fmt.Errorf("sending event: %w", err)
		}
		fmt.Printf("sent %s to %s\n", e.Kind, socketPath)
		return nil
	},
}

func init() {
	eventCmd.Flags().StringVar(&flagEventSocket, "event-socket", "",
		"Unix datagram socket path of the running monitor")
	rootCmd.AddCommand(eventCmd)
}
