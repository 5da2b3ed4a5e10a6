package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/droneq/droneq/internal/clipboard"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [link]...",
	Short: "Queue releases by link",
	Long:  `Queue one or more releases (http, nzb, torrent or magnet links). Without a running daemon the local queue is used.`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()

		batchFile, _ := cmd.Flags().GetString("batch")
		title, _ := cmd.Flags().GetString("title")
		fromClipboard, _ := cmd.Flags().GetBool("clipboard")

		links := append([]string{}, args...)
		if batchFile != "" {
			fileLinks, err := readLinksFromFile(batchFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading batch file: %v\n", err)
				os.Exit(1)
			}
			links = append(links, fileLinks...)
		}
		if fromClipboard {
			link := clipboard.ReadLink()
			if link == "" {
				fmt.Fprintln(os.Stderr, "Error: clipboard does not hold a release link")
				os.Exit(1)
			}
			links = append(links, link)
		}

		if len(links) == 0 {
			_ = cmd.Help()
			return
		}
		if title != "" && len(links) > 1 {
			fmt.Fprintln(os.Stderr, "Error: --title needs exactly one link")
			os.Exit(1)
		}

		service := openService()
		defer func() { _ = service.Shutdown() }()

		count := 0
		for _, link := range links {
			item, err := service.Add(context.Background(), link, title)
			if err != nil {
				fmt.Printf("Error adding %s: %v\n", link, err)
				continue
			}
			fmt.Printf("Queued %s [%s]\n", item.Title, shortID(item.ID))
			count++
		}

		if count > 1 {
			fmt.Printf("Successfully added %d releases.\n", count)
		}
		if count == 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("batch", "b", "", "File containing links (one per line)")
	addCmd.Flags().StringP("title", "t", "", "Title for a single release (default: derived from the link)")
	addCmd.Flags().Bool("clipboard", false, "Also queue the link currently on the clipboard")
}
