package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/merge"
)

var commentCmd = &cobra.Command{
	Use:   "comment [issue-id] [text]",
	Short: "Append a comment to an issue",
	Long: `Append a comment to an issue's thread. Comments are append-only:
they are never edited or removed.

Examples:
  issued comment i-4f21a7b3c9d0 "Fixed in the latest draft"
  issued comment i-4f21a7b3c9d0 "LGTM" --as reviewer-7`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		author, _ := cmd.Flags().GetString("as")
		if author == "" {
			author = actor
		}

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		existing, err := store.GetIssue(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		updated, err := merge.AppendComment(existing, author, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := store.ReplaceIssue(ctx, updated); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(updated.Comments[len(updated.Comments)-1], "", "  ")
			fmt.Println(string(data))
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Comment added to %s (%d total)\n", green("✓"), updated.IssueID, len(updated.Comments))
	},
}

func init() {
	commentCmd.Flags().String("as", "", "author user id (default --actor)")
}
