package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/host"
	"github.com/droneq/droneq/internal/utils"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the queue daemon without the TUI",
	Long:  `Run the queue store and HTTP API in the foreground until interrupted.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()
		settings := config.LoadSettingsOrDefault()

		isMaster, err := AcquireLock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !isMaster {
			fmt.Fprintln(os.Stderr, "Error: droneq is already running.")
			os.Exit(1)
		}
		defer func() {
			if err := ReleaseLock(); err != nil {
				utils.Debug("Error releasing lock: %v", err)
			}
		}()

		portFlag, _ := cmd.Flags().GetInt("port")
		if portFlag == 0 {
			portFlag = settings.Server.Port
		}
		port, ln, err := listen(portFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		service := core.NewLocalQueueService()
		server := startHTTPServer(ln, port, service, settings.Queue.PageSize)
		saveActivePort(port)

		fmt.Printf("droneq serving on 127.0.0.1:%d\n", port)

		ctx, cancel := context.WithCancel(context.Background())
		StartHeadlessConsumer(ctx, service)

		host.NewConsole().WaitForClose(ctx)
		cancel()

		fmt.Println("Shutting down...")
		removeActivePort()
		_ = server.Close()
		_ = service.Shutdown()
	},
}

// StartHeadlessConsumer prints queue events to stdout until ctx is done
func StartHeadlessConsumer(ctx context.Context, service core.QueueService) {
	stream, cleanup, err := service.StreamEvents(ctx)
	if err != nil {
		utils.Debug("Failed to start event stream: %v", err)
		return
	}
	go func() {
		defer cleanup()
		for msg := range stream {
			if line := describeEvent(msg); line != "" {
				fmt.Println(line)
			}
		}
	}()
}

func describeEvent(msg any) string {
	switch m := msg.(type) {
	case events.ItemAddedMsg:
		return fmt.Sprintf("Added: %s [%s]", m.Item.Title, shortID(m.Item.ID))
	case events.ItemsGrabbedMsg:
		return fmt.Sprintf("Grabbed: %d of %d", m.Grabbed, len(m.IDs))
	case events.ItemsRemovedMsg:
		if m.Blacklist {
			return fmt.Sprintf("Removed: %d of %d (blacklisted)", m.Removed, len(m.IDs))
		}
		return fmt.Sprintf("Removed: %d of %d", m.Removed, len(m.IDs))
	case events.StatusChangedMsg:
		return fmt.Sprintf("Status: [%s] %s", shortID(m.ID), m.Status)
	}
	return ""
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port for the HTTP API (default: first free port from 1770)")
	rootCmd.AddCommand(serveCmd)
}
