package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <ID>...",
	Aliases: []string{"remove"},
	Short:   "Remove items from the queue",
	Long:    `Remove queue items by ID or unique ID prefix. With --blacklist the releases cannot be queued again.`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		blacklist, _ := cmd.Flags().GetBool("blacklist")

		service := openService()
		defer func() { _ = service.Shutdown() }()

		ctx := context.Background()
		ids, err := resolveItemIDs(ctx, service, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		n, err := service.Remove(ctx, ids, blacklist)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if blacklist {
			fmt.Printf("Removed and blacklisted %d item(s).\n", n)
			return
		}
		fmt.Printf("Removed %d item(s).\n", n)
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().BoolP("blacklist", "b", false, "Blacklist the removed releases")
}
