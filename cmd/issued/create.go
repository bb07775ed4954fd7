package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/types"
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new issue",
	Long: `Create a new issue.

Examples:
  # Create an issue in a tree
  issued create "Broken link in chapter 2" --tree T1

  # Attach to nodes, with tags and priority
  issued create "Rework intro" --tree T1 --nodes N3,N4 --tags editorial --priority high`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		treeID, _ := cmd.Flags().GetString("tree")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		explicitID, _ := cmd.Flags().GetString("id")
		nodes, _ := cmd.Flags().GetStringSlice("nodes")
		tags, _ := cmd.Flags().GetStringSlice("tags")
		assignees, _ := cmd.Flags().GetStringSlice("assignees")
		dueStr, _ := cmd.Flags().GetString("due")

		if treeID == "" {
			fmt.Fprintf(os.Stderr, "Error: --tree is required\n")
			os.Exit(1)
		}

		issue := &types.Issue{
			IssueID:     explicitID,
			TreeID:      treeID,
			Title:       args[0],
			Description: description,
			Priority:    types.Priority(priority),
			Creator:     types.UserRef{UserID: actor},
		}
		for _, n := range nodes {
			issue.Nodes = append(issue.Nodes, types.NodeRef{NodeID: n})
		}
		issue.Tags = tags
		now := time.Now().UTC()
		for _, a := range assignees {
			issue.Assignees = append(issue.Assignees, types.Assignee{UserID: a, AssignedAt: now})
		}
		if dueStr != "" {
			due, err := time.Parse(time.RFC3339, dueStr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --due %q (want RFC3339, e.g. 2026-09-01T00:00:00Z)\n", dueStr)
				os.Exit(1)
			}
			issue.DueDate = &due
		}

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		created, err := store.CreateIssue(context.Background(), issue)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(created, "", "  ")
			fmt.Println(string(data))
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created issue %s: %s\n", green("✓"), created.IssueID, created.Title)
	},
}

func init() {
	createCmd.Flags().StringP("tree", "t", "", "tree the issue belongs to (required)")
	createCmd.Flags().StringP("description", "d", "", "issue description")
	createCmd.Flags().StringP("priority", "p", "", "priority: low, medium, high or urgent (default medium)")
	createCmd.Flags().String("id", "", "explicit issue ID (generated when omitted)")
	createCmd.Flags().StringSlice("nodes", nil, "node IDs to attach the issue to")
	createCmd.Flags().StringSlice("tags", nil, "tags")
	createCmd.Flags().StringSlice("assignees", nil, "assignee user IDs")
	createCmd.Flags().String("due", "", "due date (RFC3339)")
}
