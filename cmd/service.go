package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/host"
	"github.com/droneq/droneq/internal/state"

	"github.com/spf13/cobra"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage droneq as a host service",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register droneq as a host service",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = config.LoadSettingsOrDefault().General.ServiceName
		}
		if err := installService(host.NewConsole(), name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered services",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		names, err := state.ListServices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

var serviceHelpCmd = &cobra.Command{
	Use:   "help",
	Short: "Print usage help",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		host.NewConsole().PrintHelp()
	},
}

// installService registers name. A name that is already registered is
// reported on the console and is not an error.
func installService(console *host.Console, name string) error {
	err := state.RegisterService(name)
	if errors.Is(err, state.ErrServiceExists) {
		console.PrintServiceAlreadyExist(name)
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(console.Out, "Service %s installed.\n", name)
	return nil
}

func init() {
	serviceInstallCmd.Flags().String("name", "", "Service name (default from settings)")
	serviceCmd.AddCommand(serviceInstallCmd, serviceListCmd, serviceHelpCmd)
	rootCmd.AddCommand(serviceCmd)
}
