// Package main provides the rex CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// Ctrl-C cancels in-flight service calls; the session is still saved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rex",
	Short: "Research keyword explorer",
	Long: `rex explores a research topic as a forest of keyword trees.

Start a session with seed keywords, expand interesting branches, pull
literature for a keyword, and rebuild the relationship graph over the
keywords you selected. The session lives in .rex/session.json so each
command picks up where the previous one left off.

All commands output JSON by default for easy integration with agents and
other tools. Use --human for readable output.

Environment Variables:
  GEMINI_API_KEY   Gemini API key (API_KEY is accepted as a fallback)
  METASO_API_KEY   Metaso search API key
  ASTA_API_KEY     ASTA API key when literature_source is asta
  REX_ROOT         Workspace directory to use instead of the current one`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for API keys)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns REX_ROOT or the working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("REX_ROOT"); root != "" {
		return config.ExpandPath(root), 0
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindWorkspace returns the workspace root, or exits with a hint.
func mustFindWorkspace() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindWorkspace(start)
	if err != nil {
		if humanOutput {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else {
			outputJSON(ErrorResponse{Error: err.Error()})
		}
		os.Exit(ExitConfigError)
	}
	return root
}
