package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, optionally filtered",
	Long: `List issues, optionally filtered by tree, node, status or priority.
Filters are AND-combined; results are newest-created first.

Examples:
  issued list --tree T1
  issued list --tree T1 --status open --priority high
  issued list --tree T1 --node N3 --json`,
	Run: func(cmd *cobra.Command, args []string) {
		var filter types.IssueFilter

		if v, _ := cmd.Flags().GetString("tree"); v != "" {
			filter.TreeID = &v
		}
		if v, _ := cmd.Flags().GetString("node"); v != "" {
			filter.NodeID = &v
		}
		if v, _ := cmd.Flags().GetString("status"); v != "" {
			status := types.Status(v)
			if !status.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid status %q\n", v)
				os.Exit(1)
			}
			filter.Status = &status
		}
		if v, _ := cmd.Flags().GetString("priority"); v != "" {
			priority := types.Priority(v)
			if !priority.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid priority %q\n", v)
				os.Exit(1)
			}
			filter.Priority = &priority
		}
		filter.Limit, _ = cmd.Flags().GetInt("limit")

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		issues, err := store.FindIssues(context.Background(), filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			if issues == nil {
				issues = []*types.Issue{}
			}
			data, _ := json.MarshalIndent(issues, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(issues) == 0 {
			fmt.Println("No issues found")
			return
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		for _, issue := range issues {
			fmt.Printf("%s [%s/%s] %s", cyan(issue.IssueID), issue.Status, issue.Priority, issue.Title)
			if len(issue.Assignees) > 0 {
				fmt.Printf(" %s", yellow(fmt.Sprintf("(%d assignees)", len(issue.Assignees))))
			}
			fmt.Println()
		}
	},
}

func init() {
	listCmd.Flags().StringP("tree", "t", "", "filter by tree ID")
	listCmd.Flags().StringP("node", "n", "", "filter by attached node ID")
	listCmd.Flags().StringP("status", "s", "", "filter by status")
	listCmd.Flags().StringP("priority", "p", "", "filter by priority")
	listCmd.Flags().Int("limit", 0, "maximum number of results (0 = all)")
}
