package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect [host:port]",
	Short: "Open the queue view of a running droneq daemon",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		var target string
		if len(args) > 0 {
			target = args[0]
		} else {
			// Auto-discovery from local port file
			port := readActivePort()
			if port == 0 {
				fmt.Println("No active droneq daemon found locally.")
				fmt.Println("Usage: droneq connect <host:port>")
				os.Exit(1)
			}
			target = fmt.Sprintf("127.0.0.1:%d", port)
		}
		baseURL := "http://" + target

		tokenFlag, _ := cmd.Flags().GetString("token")
		token, err := resolveToken(target, tokenFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Connecting to %s...\n", baseURL)
		service := core.NewRemoteQueueService(baseURL, token)
		defer func() { _ = service.Shutdown() }()

		settings := config.LoadSettingsOrDefault()
		if _, err := service.List(context.Background(), 1, settings.Queue.PageSize); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if err := startTUI(service, settings.Queue); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			os.Exit(1)
		}
	},
}

// resolveToken picks the flag, then DRONEQ_TOKEN, then the local token file
// for loopback targets.
func resolveToken(target, flagValue string) (string, error) {
	if token := strings.TrimSpace(flagValue); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(os.Getenv("DRONEQ_TOKEN")); token != "" {
		return token, nil
	}
	host := target
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if host == "127.0.0.1" || host == "localhost" {
		return ensureAuthToken(), nil
	}
	return "", fmt.Errorf("no token provided, use --token or set DRONEQ_TOKEN")
}

func init() {
	connectCmd.Flags().String("token", "", "Bearer token for remote daemon (or set DRONEQ_TOKEN)")
	rootCmd.AddCommand(connectCmd)
}
