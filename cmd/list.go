package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/utils"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the download queue",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		asJSON, _ := cmd.Flags().GetBool("json")
		if pageSize <= 0 {
			pageSize = config.LoadSettingsOrDefault().Queue.PageSize
		}

		service := openService()
		defer func() { _ = service.Shutdown() }()

		out, err := service.List(context.Background(), page, pageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		printQueue(os.Stdout, out)
	},
}

func printQueue(w io.Writer, p queue.Page) {
	if len(p.Items) == 0 {
		_, _ = fmt.Fprintln(w, "Queue is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPROTOCOL\tSIZE\tPROGRESS\tTITLE")
	for _, item := range p.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
			shortID(item.ID), item.Status, item.Protocol,
			utils.ConvertBytesToHumanReadable(item.Size), item.Progress()*100, item.Title)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "Page %d of %d (%d items)\n", p.Page, p.TotalPages(), p.TotalRecords)
}

func init() {
	listCmd.Flags().Int("page", 1, "Page to print")
	listCmd.Flags().Int("page-size", 0, "Items per page (default from settings)")
	listCmd.Flags().Bool("json", false, "Print the page as JSON")
	rootCmd.AddCommand(listCmd)
}
