package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/explorer"
	"github.com/matsen/rexplorer/internal/tree"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(refreshCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Start a new exploration from seed keywords",
	Long: `Start a new exploration from seed keywords.

Generates one keyword tree per seed, selects every generated keyword and
builds the relationship graph. Trees, graph and selection of the previous
search are replaced; the paper collection is kept. Seeds that differ only
in case or spacing count once. Consumes one operation.

A new search does not reset the operation count. Only 'rex init --reset'
starts a fresh budget.

Examples:
  rex search "graph neural networks"
  rex search "phylogenetics" "bayesian inference"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{keywords: true})
		w.runAction(cmd.Context(), "search", strings.Join(args, ", "), func(ctx context.Context) error {
			return w.exp.Search(ctx, args)
		})
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <node>...",
	Short: "Generate sub-keywords under one or more leaf nodes",
	Long: `Generate sub-keywords under one or more leaf nodes.

A node is named by its id (see 'rex tree') or by its keyword. Each
expansion consumes one operation. Several nodes are expanded concurrently.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{keywords: true})
		ids := mustResolveNodes(w.exp.State().Forest, args)
		w.runAction(cmd.Context(), "expand", strings.Join(ids, ", "), func(ctx context.Context) error {
			if len(ids) == 1 {
				return w.exp.ExpandNode(ctx, ids[0])
			}
			return w.exp.ExpandMany(ctx, ids)
		})
	},
}

var focusCmd = &cobra.Command{
	Use:   "focus <node>",
	Short: "Toggle the literature focus on a node",
	Long: `Toggle the literature focus on a node.

Focusing a node whose papers have not been fetched yet fetches them from
the configured literature source. Focusing the focused node clears the
focus. Results are cached in .rex/cache by keyword. Literature lookups do
not consume operations.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{literature: true})
		id := mustResolveNodes(w.exp.State().Forest, args)[0]
		w.runAction(cmd.Context(), "literature", id, func(ctx context.Context) error {
			return w.exp.FocusLiterature(ctx, id)
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <node>...",
	Short: "Fetch papers for several nodes without changing the focus",
	Long: `Fetch papers for several nodes without changing the focus.

Nodes are fetched concurrently. Nodes that already hold papers are
skipped. Results are cached in .rex/cache by keyword, so nodes sharing a
keyword, or nodes regenerated by 'rex refresh', reuse earlier lookups.
Literature lookups do not consume operations.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{literature: true})
		ids := mustResolveNodes(w.exp.State().Forest, args)
		w.runAction(cmd.Context(), "fetch", strings.Join(ids, ", "), func(ctx context.Context) error {
			return w.exp.FetchLiteratureMany(ctx, ids)
		})
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Rebuild the relationship graph from the selected keywords",
	Long: `Rebuild the relationship graph from the selected keywords.

The graph is replaced wholesale. Consumes one operation, even when fewer
than two keywords are selected and no edges can exist.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{keywords: true})
		w.runAction(cmd.Context(), "graph", "", w.exp.UpdateNetwork)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate every tree from its root keyword",
	Long: `Regenerate every tree from its root keyword.

Expansions and fetched literature are discarded. The selection and graph
are kept. Consumes one operation.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{keywords: true})
		w.runAction(cmd.Context(), "refresh", "", w.exp.RefreshTrees)
	},
}

var errAmbiguousNode = errors.New("keyword matches more than one node")

// resolveNode maps a node id or keyword to a node id. Ids win; a keyword
// must match exactly one node, ignoring case.
func resolveNode(f tree.Forest, ref string) (string, error) {
	if n := tree.Find(f, ref); n != nil {
		return n.ID, nil
	}

	var matches []string
	tree.Walk(f, func(n *tree.Node) bool {
		if strings.EqualFold(n.Keyword, strings.TrimSpace(ref)) {
			matches = append(matches, n.ID)
		}
		return true
	})
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", explorer.ErrNodeNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q (use one of: %s)", errAmbiguousNode, ref, strings.Join(matches, ", "))
	}
}

func mustResolveNodes(f tree.Forest, refs []string) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveNode(f, ref)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		ids = append(ids, id)
	}
	return ids
}
