package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var grabCmd = &cobra.Command{
	Use:   "grab <ID>...",
	Short: "Push delayed items to their download client",
	Long:  `Grab queue items that are waiting out their delay. Items in any other status are left alone. IDs may be given as unique prefixes.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		service := openService()
		defer func() { _ = service.Shutdown() }()

		ctx := context.Background()
		ids, err := resolveItemIDs(ctx, service, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		n, err := service.Grab(ctx, ids)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Grabbed %d of %d item(s).\n", n, len(ids))
	},
}

func init() {
	rootCmd.AddCommand(grabCmd)
}
