package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [issue-id]",
	Short: "Show one issue in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		issue, err := store.GetIssue(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(issue, "", "  ")
			fmt.Println(string(data))
			return
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s %s\n", bold(issue.IssueID), bold(issue.Title))
		fmt.Printf("  Tree:     %s\n", issue.TreeID)
		fmt.Printf("  Status:   %s\n", issue.Status)
		fmt.Printf("  Priority: %s\n", issue.Priority)
		if issue.Description != "" {
			fmt.Printf("  Description: %s\n", issue.Description)
		}
		if issue.DueDate != nil {
			fmt.Printf("  Due:      %s\n", issue.DueDate.Format("2006-01-02"))
		}
		fmt.Printf("  Creator:  %s\n", issue.Creator.UserID)
		if len(issue.Nodes) > 0 {
			fmt.Printf("  Nodes:   ")
			for _, n := range issue.Nodes {
				fmt.Printf(" %s", n.NodeID)
			}
			fmt.Println()
		}
		if len(issue.Tags) > 0 {
			fmt.Printf("  Tags:    ")
			for _, tag := range issue.Tags {
				fmt.Printf(" %s", tag)
			}
			fmt.Println()
		}
		if len(issue.Assignees) > 0 {
			fmt.Println("  Assignees:")
			for _, a := range issue.Assignees {
				name := a.UserID
				if a.Username != "" {
					name = fmt.Sprintf("%s (%s)", a.Username, a.UserID)
				}
				fmt.Printf("    %s since %s\n", name, a.AssignedAt.Format("2006-01-02"))
			}
		}
		if issue.ResolvedAt != nil {
			by := ""
			if issue.ResolvedBy != nil {
				by = " by " + *issue.ResolvedBy
			}
			fmt.Printf("  Resolved: %s%s\n", issue.ResolvedAt.Format("2006-01-02"), by)
		}
		fmt.Printf("  Created:  %s\n", issue.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Updated:  %s\n", issue.UpdatedAt.Format("2006-01-02 15:04"))
		if len(issue.Comments) > 0 {
			fmt.Printf("  Comments (%d):\n", len(issue.Comments))
			for _, c := range issue.Comments {
				fmt.Printf("    [%s] %s: %s\n", c.CreatedAt.Format("2006-01-02 15:04"), c.UserID, c.Content)
			}
		}
	},
}
