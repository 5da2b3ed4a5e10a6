package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/state"
	"github.com/droneq/droneq/internal/tui"
	"github.com/droneq/droneq/internal/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "droneq",
	Short:   "A terminal queue manager for media downloads",
	Long:    `droneq keeps the download queue of a media library and lets you grab or remove releases in bulk from the terminal.`,
	Version: Version,
	Args:    cobra.NoArgs,
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
			fmt.Fprintln(os.Stderr, "Use 'droneq connect' to open the queue of the running instance.")
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
		defer func() { _ = service.Shutdown() }()

		server := startHTTPServer(ln, port, service, settings.Queue.PageSize)
		defer func() { _ = server.Close() }()
		saveActivePort(port)
		defer removeActivePort()

		if err := startTUI(service, settings.Queue); err != nil {
			fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
			os.Exit(1)
		}
	},
}

// startTUI runs the queue view until the user quits, forwarding service
// events to it.
func startTUI(service core.QueueService, settings config.QueueSettings) error {
	p := tea.NewProgram(tui.NewModel(service, settings), tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, cleanup, err := service.StreamEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to start event stream: %w", err)
	}
	defer cleanup()

	go func() {
		for msg := range stream {
			p.Send(msg)
		}
	}()

	_, err = p.Run()
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntP("port", "p", 0, "Port for the HTTP API (default: first free port from 1770)")
	rootCmd.SetVersionTemplate("droneq version {{.Version}}\n")
}

// initializeGlobalState sets up the environment and configures the store and logging
func initializeGlobalState() {
	if err := config.EnsureDirs(); err != nil {
		utils.Debug("Error creating directories: %v", err)
	}

	state.Configure(config.GetDBPath())

	utils.ConfigureDebug(config.GetLogsDir())

	// Clean up old logs
	utils.CleanupLogs(config.LoadSettingsOrDefault().General.LogRetentionCount)
}
