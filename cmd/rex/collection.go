package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/config"
	"github.com/matsen/rexplorer/internal/export"
	"github.com/matsen/rexplorer/internal/storage"
	"github.com/matsen/rexplorer/internal/tree"
)

var (
	collectKeep      bool
	collectionLimit  int
	collectionFormat string
	collectionOutput string
)

func init() {
	collectCmd.Flags().BoolVar(&collectKeep, "keep", false, "Only add; leave an already collected paper in place")
	collectionSearchCmd.Flags().IntVar(&collectionLimit, "limit", DefaultListLimit, "Maximum results to return")
	collectionListCmd.Flags().IntVar(&collectionLimit, "limit", 0, "Maximum papers to list (0 for all)")
	collectionExportCmd.Flags().StringVar(&collectionFormat, "format", "csv", "Output format: csv, bibtex, json or jsonl")
	collectionExportCmd.Flags().StringVarP(&collectionOutput, "output", "o", "", "Write to file instead of stdout")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionRemoveCmd)
	collectionCmd.AddCommand(collectionSearchCmd)
	collectionCmd.AddCommand(collectionExportCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(collectionCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect <node> <title|number>",
	Short: "Toggle a node's paper in the collection",
	Long: `Toggle a node's paper in the collection.

The paper is named by its title (case-insensitive) or by its number in
'rex papers <node>'. Collecting a paper that is already collected removes
it, unless --keep is given. The node's keyword is recorded as the paper's
source keyword.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		st := w.exp.State()
		id := mustResolveNodes(st.Forest, args[:1])[0]
		title := paperTitle(tree.Find(st.Forest, id), args[1])

		p, collected, err := w.exp.CollectFromNode(id, title, collectKeep)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		w.mustSave()
		w.close()

		if humanOutput {
			verb := "Removed"
			if collected {
				verb = "Collected"
			}
			fmt.Printf("%s: %s\n", verb, p.Title)
		} else {
			outputJSON(map[string]interface{}{"title": p.Title, "collected": collected})
		}
	},
}

// paperTitle maps a 1-based number to the title at that position in the
// node's literature. Anything else is taken as a title.
func paperTitle(n *tree.Node, ref string) string {
	i, err := strconv.Atoi(ref)
	if err != nil || i < 1 || i > len(n.Literature) {
		return ref
	}
	return n.Literature[i-1].Title
}

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collected papers",
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collected papers in collection order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		items := w.exp.State().Collection.Items()
		if collectionLimit > 0 && len(items) > collectionLimit {
			items = items[:collectionLimit]
		}
		printCollected(items)
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Remove a paper from the collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		item, err := w.exp.RemoveCollected(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		w.mustSave()
		w.close()

		if humanOutput {
			fmt.Printf("Removed: %s\n", item.Paper.Title)
		} else {
			outputJSON(item)
		}
	},
}

var collectionSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over collected papers",
	Long: `Full-text search over collected papers.

Query Syntax:
  Plain text      - Searches title, abstract, authors and source keyword
  author:name     - Search author names only
  title:text      - Search title only
  keyword:text    - Search source keyword only

Examples:
  rex collection search "transformer"
  rex collection search "author:Vaswani"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()

		db := mustOpenDatabase(w.root)
		defer db.Close()
		if _, err := db.Rebuild(w.exp.State().Collection.Items()); err != nil {
			exitWithError(ExitError, "indexing collection: %v", err)
		}

		results, err := searchCollection(db, args[0], collectionLimit)
		if err != nil {
			exitWithError(ExitError, "searching: %v", err)
		}
		printCollected(results)
	},
}

// searchCollection dispatches field prefixes to SearchField.
func searchCollection(db *storage.DB, query string, limit int) ([]collection.CollectedPaper, error) {
	for _, field := range []string{"author", "title", "keyword"} {
		if value, ok := strings.CutPrefix(query, field+":"); ok {
			return db.SearchField(field, value, limit)
		}
	}
	return db.Search(query, limit)
}

// mustOpenDatabase opens the collection index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

var collectionExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collected papers",
	Long: `Export collected papers.

Formats:
  csv     Title, Authors, Year, Citations, URL, Source Keyword
  bibtex  One @misc entry per paper
  json    Array of collected papers
  jsonl   One collected paper per line`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		items := w.exp.State().Collection.Items()

		out, closeOut := mustCreateOutput(collectionOutput)
		defer closeOut()

		if err := writeCollection(out, collectionFormat, items); err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
		if collectionOutput != "" && humanOutput {
			fmt.Fprintf(os.Stderr, "Exported %d papers to %s\n", len(items), collectionOutput)
		}
	},
}

func writeCollection(out io.Writer, format string, items []collection.CollectedPaper) error {
	if items == nil {
		items = []collection.CollectedPaper{}
	}
	switch format {
	case "csv":
		return export.WriteCSV(out, items)
	case "bibtex", "bib":
		return export.WriteBibTeX(out, items)
	case "json":
		return writeJSONTo(out, items)
	case "jsonl":
		return storage.EncodeJSONL(out, items)
	default:
		return fmt.Errorf("unknown format %q (valid: csv, bibtex, json, jsonl)", format)
	}
}

func printCollected(items []collection.CollectedPaper) {
	if items == nil {
		items = []collection.CollectedPaper{}
	}
	if !humanOutput {
		outputJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Println("No papers collected")
		return
	}
	for i, item := range items {
		printPaper(i+1, " ", item.Paper, item.SourceKeyword)
	}
}
