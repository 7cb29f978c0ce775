package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/config"
	"github.com/matsen/rexplorer/internal/storage"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Show only the last N actions (0 for all)")
	errorCmd.AddCommand(errorDismissCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(errorCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the actions run in this workspace",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := mustFindWorkspace()
		entries, err := storage.ReadHistory(config.HistoryPath(root), historyLimit)
		if err != nil {
			exitWithError(ExitDataError, "reading history: %v", err)
		}
		if entries == nil {
			entries = []storage.HistoryEntry{}
		}

		if !humanOutput {
			outputJSON(entries)
			return
		}
		if len(entries) == 0 {
			fmt.Println("No actions yet")
			return
		}
		for _, e := range entries {
			status := "ok"
			if !e.OK {
				status = "failed"
			}
			fmt.Printf("%s  %-10s %-6s used=%d  %s\n", e.Time.Local().Format("2006-01-02 15:04:05"), e.Action, status, e.Used, e.Target)
			if e.Error != "" {
				fmt.Printf("    %s\n", e.Error)
			}
		}
	},
}

var errorCmd = &cobra.Command{
	Use:   "error",
	Short: "Show or dismiss the session error",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		msg := w.exp.State().Error
		if humanOutput {
			if msg == "" {
				fmt.Println("No error")
			} else {
				fmt.Println(msg)
			}
		} else {
			outputJSON(map[string]string{"error": msg})
		}
	},
}

var errorDismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Clear the session error",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		w.exp.DismissError()
		w.mustSave()
		w.close()
		if humanOutput {
			fmt.Println("Error dismissed")
		} else {
			outputJSON(StatusResponse{Status: "dismissed"})
		}
	},
}
