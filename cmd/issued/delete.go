package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [issue-id]",
	Short: "Delete an issue permanently",
	Long: `Delete an issue permanently. This is a hard removal: the record and
its comments are gone, with no tombstone. Deleting an unknown ID is an
error.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Fprintf(os.Stderr, "Error: deletion is permanent; pass --force to confirm\n")
			os.Exit(1)
		}

		if err := ensureStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}

		if err := store.DeleteIssue(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted issue %s\n", green("✓"), args[0])
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "confirm permanent deletion")
}
