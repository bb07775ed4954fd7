package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// Version is the current version of issued
	Version = "0.3.1"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]string{
				"version": Version,
				"build":   Build,
			}, "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Printf("issued version %s (%s)\n", Version, Build)
		}
	},
}
