// Command issued is a tree-scoped issue tracker: an HTTP daemon plus a
// small CLI over the same store.
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/dufangshi/issues/internal/config"
	"github.com/dufangshi/issues/internal/storage"
	"github.com/dufangshi/issues/internal/storage/memory"
	"github.com/dufangshi/issues/internal/storage/postgres"
	"github.com/dufangshi/issues/internal/storage/sqlite"
)

var (
	dbPath     string
	backend    string
	dsn        string
	actor      string
	jsonOutput bool

	store storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "issued",
	Short: "issued - issue tracker for tree-structured documents",
	Long:  `Track work items attached to nodes of a tree: status, priority, tags, assignees and comment threads, served over HTTP or managed from the command line.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Priority: flags > config (file + env vars) > defaults
		if !cmd.Flags().Changed("json") {
			jsonOutput = config.GetBool("json")
		}
		if !cmd.Flags().Changed("db") && dbPath == "" {
			dbPath = config.GetString("db")
		}
		if !cmd.Flags().Changed("backend") {
			if b := config.GetString("backend"); b != "" {
				backend = b
			}
		}
		if !cmd.Flags().Changed("dsn") && dsn == "" {
			dsn = config.GetString("dsn")
		}
		if !cmd.Flags().Changed("actor") && actor == "" {
			actor = config.GetString("actor")
		}
		if actor == "" {
			if u, err := user.Current(); err == nil {
				actor = u.Username
			}
		}
	},
}

// openStore constructs the configured storage backend. The caller owns the
// returned store and must close it.
func openStore() (storage.Storage, error) {
	switch backend {
	case "sqlite", "":
		path := dbPath
		if path == "" {
			path = config.DefaultDBPath()
		}
		return sqlite.New(path)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend requires --dsn")
		}
		return postgres.New(dsn)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want sqlite, postgres or memory)", backend)
	}
}

// ensureStore opens the store once per command invocation.
func ensureStore() error {
	if store != nil {
		return nil
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	store = s
	return nil
}

func closeStore() {
	if store != nil {
		_ = store.Close()
		store = nil
	}
}

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to sqlite database (default .issues/issues.db)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "sqlite", "storage backend: sqlite, postgres or memory")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres connection string (backend=postgres)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "user id recorded as creator/author (default OS user)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)

	defer closeStore()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
