package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-status issue counts for a tree",
	Run: func(cmd *cobra.Command, args []string) {
		treeID, _ := cmd.Flags().GetString("tree")
		if treeID == "" {
			fmt.Fprintf(os.Stderr, "Error: --tree is required\n")
			os.Exit(1)
		}

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		stats, err := store.GetStatistics(context.Background(), treeID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(stats, "", "  ")
			fmt.Println(string(data))
			return
		}
		fmt.Printf("Tree %s: %d issues\n", treeID, stats.TotalIssues)
		fmt.Printf("  open:        %d\n", stats.OpenIssues)
		fmt.Printf("  in_progress: %d\n", stats.InProgressIssues)
		fmt.Printf("  resolved:    %d\n", stats.ResolvedIssues)
		fmt.Printf("  closed:      %d\n", stats.ClosedIssues)
	},
}

func init() {
	statsCmd.Flags().StringP("tree", "t", "", "tree ID (required)")
}
