package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/merge"
	"github.com/dufangshi/issues/internal/types"
)

var assignCmd = &cobra.Command{
	Use:   "assign [issue-id] [user-id...]",
	Short: "Replace the assignee list of an issue",
	Long: `Replace the assignee list of an issue with the given users. This is
a full replace: users not listed are unassigned, and every listed user gets
a fresh assignment timestamp. Pass no users to clear all assignees.

Examples:
  issued assign i-4f21a7b3c9d0 alice bob
  issued assign i-4f21a7b3c9d0`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		users := make([]types.UserRef, 0, len(args)-1)
		for _, id := range args[1:] {
			users = append(users, types.UserRef{UserID: id})
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

		updated, err := merge.ReplaceAssignees(existing, users)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := store.ReplaceIssue(ctx, updated); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(updated.Assignees, "", "  ")
			fmt.Println(string(data))
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Issue %s now has %d assignees\n", green("✓"), updated.IssueID, len(updated.Assignees))
	},
}
