package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/export"
	"github.com/matsen/rexplorer/internal/tree"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json (whole session), csv (collected papers) or cytoscape (graph)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session",
	Long: `Export the session.

The json format writes the whole session: trees, graph, collected papers,
selected keywords, focus and operation count. It can be loaded again with
'rex import'. The csv format writes the collected papers only. The
cytoscape format writes the relationship graph as Cytoscape.js elements.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()

		out, closeOut := mustCreateOutput(exportOutput)
		defer closeOut()

		var err error
		switch exportFormat {
		case "json":
			err = export.WriteJSON(out, w.exp.Snapshot())
		case "csv":
			err = export.WriteCSV(out, w.exp.State().Collection.Items())
		case "cytoscape":
			err = export.WriteCytoscape(out, w.exp.State().Graph)
		default:
			exitWithError(ExitError, "unknown format %q (valid: json, csv, cytoscape)", exportFormat)
		}
		if err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the session with an exported one",
	Long: `Replace the session with one written by 'rex export --format json'.

The imported operation count is kept, so a session cannot be reset by
exporting and importing it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})

		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "opening %s: %v", args[0], err)
		}
		snap, err := export.ReadJSON(f)
		f.Close()
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}

		w.exp.Restore(snap)
		w.mustSave()
		w.close()

		st := w.exp.State()
		ops := w.exp.Operations()
		if humanOutput {
			fmt.Printf("Imported %d trees, %d collected papers (%d/%d operations used)\n",
				len(st.Forest), st.Collection.Len(), ops.Used, ops.Limit)
		} else {
			outputJSON(map[string]interface{}{
				"status":     "imported",
				"trees":      len(st.Forest),
				"nodes":      tree.Count(st.Forest),
				"collected":  st.Collection.Len(),
				"operations": ops,
			})
		}
	},
}

// mustCreateOutput returns stdout, or the named file. The returned func
// closes the file.
func mustCreateOutput(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", path, err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "closing %s: %v", path, err)
		}
	}
}

func writeJSONTo(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
