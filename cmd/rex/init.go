package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/config"
)

var (
	initLimit  int
	initKey    string
	initSource string
	initReset  bool
)

func init() {
	initCmd.Flags().IntVar(&initLimit, "limit", 0, "Operation budget for sessions in this workspace (default from global config)")
	initCmd.Flags().StringVar(&initKey, "collection-key", "", "Paper identity for the collection: title or title_author_year")
	initCmd.Flags().StringVar(&initSource, "source", "", "Literature source: metaso or asta")
	initCmd.Flags().BoolVar(&initReset, "reset", false, "Discard the saved session of an existing workspace and start over")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new rex workspace",
	Long: `Initialize a new rex workspace in the current directory.

Creates:
  .rex/
  ├── config.json     # Workspace config
  ├── .gitignore      # Ignores cache/
  └── cache/          # Collection search index and fetched literature

With --reset on an existing workspace the saved session is discarded,
which also resets the operation budget. Config and history are kept.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsWorkspace(root) {
		if !initReset {
			exitWithError(ExitError, "directory already contains a rex workspace\n  Hint: use 'rex init --reset' to start a new session")
		}
		if err := os.Remove(config.SessionPath(root)); err != nil && !os.IsNotExist(err) {
			exitWithError(ExitError, "removing session: %v", err)
		}
		if humanOutput {
			fmt.Printf("Reset session in %s\n", root)
		} else {
			outputJSON(StatusResponse{Status: "reset", Path: root})
		}
		return nil
	}

	cfg := &config.Config{
		IterationLimit:   initLimit,
		CollectionKey:    initKey,
		LiteratureSource: initSource,
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .rex directory: %v", err)
	}
	ignore := filepath.Join(config.RexPath(root), ".gitignore")
	if err := os.WriteFile(ignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized rex workspace in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
