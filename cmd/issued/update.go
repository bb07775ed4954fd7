package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/merge"
	"github.com/dufangshi/issues/internal/types"
)

var updateCmd = &cobra.Command{
	Use:   "update [issue-id]",
	Short: "Apply a partial update to an issue",
	Long: `Apply a partial update to an issue. Only the flags you pass change;
everything else keeps its stored value. Passing --tags with an empty value
clears the tag list.

Examples:
  issued update i-4f21a7b3c9d0 --status in_progress
  issued update i-4f21a7b3c9d0 --title "New title" --priority urgent
  issued update i-4f21a7b3c9d0 --tags ""`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var patch types.IssuePatch

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			patch.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			patch.Description = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			status := types.Status(v)
			patch.Status = &status
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetString("priority")
			priority := types.Priority(v)
			patch.Priority = &priority
		}
		if cmd.Flags().Changed("due") {
			v, _ := cmd.Flags().GetString("due")
			due, err := time.Parse(time.RFC3339, v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --due %q (want RFC3339)\n", v)
				os.Exit(1)
			}
			patch.DueDate = &due
		}
		if cmd.Flags().Changed("tags") {
			v, _ := cmd.Flags().GetStringSlice("tags")
			if len(v) == 1 && v[0] == "" {
				v = []string{}
			}
			patch.Tags = v
		}
		if cmd.Flags().Changed("nodes") {
			v, _ := cmd.Flags().GetStringSlice("nodes")
			nodes := []types.NodeRef{}
			for _, n := range v {
				if n == "" {
					continue
				}
				nodes = append(nodes, types.NodeRef{NodeID: n})
			}
			patch.Nodes = nodes
		}
		if cmd.Flags().Changed("resolved-by") {
			v, _ := cmd.Flags().GetString("resolved-by")
			now := time.Now().UTC()
			patch.ResolvedBy = &v
			patch.ResolvedAt = &now
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

		updated, err := merge.Apply(existing, patch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !patch.IsEmpty() {
			if err := store.ReplaceIssue(ctx, updated); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(updated, "", "  ")
			fmt.Println(string(data))
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Updated issue %s\n", green("✓"), updated.IssueID)
	},
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().String("description", "", "new description")
	updateCmd.Flags().String("status", "", "new status: open, in_progress, resolved or closed")
	updateCmd.Flags().String("priority", "", "new priority: low, medium, high or urgent")
	updateCmd.Flags().String("due", "", "new due date (RFC3339)")
	updateCmd.Flags().StringSlice("tags", nil, "replace the tag list (empty value clears it)")
	updateCmd.Flags().StringSlice("nodes", nil, "replace the attached node list (empty value clears it)")
	updateCmd.Flags().String("resolved-by", "", "mark resolved by this user (sets resolvedAt to now)")
}
