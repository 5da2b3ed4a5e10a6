package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/droneq/droneq/internal/queue"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <ID> <status>",
	Short: "Set the status of a queue item",
	Long: `Record a status reported by a download client for one queue item.
Known statuses: Delay, Queued, Downloading, Paused, Completed, Warning, Failed (case-insensitive).`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		status, ok := parseStatus(args[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown status %q\n", args[1])
			os.Exit(1)
		}

		initializeGlobalState()

		service := openService()
		defer func() { _ = service.Shutdown() }()

		ctx := context.Background()
		ids, err := resolveItemIDs(ctx, service, args[:1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := service.SetStatus(ctx, ids[0], status); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s is now %s\n", shortID(ids[0]), status)
	},
}

func parseStatus(s string) (queue.Status, bool) {
	for _, known := range queue.Statuses() {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
