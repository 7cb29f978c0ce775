package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/explorer"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/tree"
)

func init() {
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(papersCmd)
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().BoolVar(&selectExclude, "exclude", false, "Remove the keywords from the selection instead")
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the keyword forest",
	Long: `Show the keyword forest.

In --human mode each line shows the node id followed by markers:
  [x]  keyword is selected for the graph
  *    node has the literature focus
  (n)  number of fetched papers`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		st := w.exp.State()

		if !humanOutput {
			forest := st.Forest
			if forest == nil {
				forest = tree.Forest{}
			}
			outputJSON(forest)
			return
		}
		if !st.Started() {
			fmt.Println("No trees yet. Start with: rex search <keyword>")
			return
		}
		for _, root := range st.Forest {
			printNode(st, root, "")
		}
	},
}

func printNode(st explorer.State, n *tree.Node, indent string) {
	mark := "[ ]"
	if st.Selection.Includes(n.Keyword) {
		mark = "[x]"
	}
	var extra []string
	if n.Label != "" {
		extra = append(extra, string(n.Label))
	}
	if n.HasLiterature() {
		extra = append(extra, fmt.Sprintf("(%d)", len(n.Literature)))
	}
	if st.Selection.FocusedID() == n.ID {
		extra = append(extra, "*")
	}
	line := fmt.Sprintf("%s%s %s  %s", indent, mark, n.Keyword, n.ID)
	if len(extra) > 0 {
		line += "  " + strings.Join(extra, " ")
	}
	fmt.Println(line)
	for _, c := range n.Children {
		printNode(st, c, indent+"  ")
	}
}

// SessionStatus summarizes the session.
type SessionStatus struct {
	Started    bool                `json:"started"`
	Roots      []string            `json:"roots"`
	Nodes      int                 `json:"nodes"`
	Selected   int                 `json:"selected"`
	GraphNodes int                 `json:"graph_nodes"`
	GraphEdges int                 `json:"graph_edges"`
	Collected  int                 `json:"collected"`
	Focused    string              `json:"focused,omitempty"`
	FocusPath  []string            `json:"focus_path,omitempty"`
	Operations explorer.Operations `json:"operations"`
	Error      string              `json:"error,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the current session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		st := w.exp.State()

		s := SessionStatus{
			Started:    st.Started(),
			Roots:      tree.RootKeywords(st.Forest),
			Nodes:      tree.Count(st.Forest),
			Selected:   st.Selection.Len(),
			GraphNodes: len(st.Graph.Nodes),
			GraphEdges: len(st.Graph.Edges),
			Collected:  st.Collection.Len(),
			Focused:    st.Selection.FocusedID(),
			FocusPath:  keywordPath(st.Forest, st.Selection.FocusedID()),
			Operations: w.exp.Operations(),
			Error:      st.Error,
		}

		if !humanOutput {
			outputJSON(s)
			return
		}
		if len(s.Roots) > 0 {
			fmt.Printf("Roots:      %s\n", strings.Join(s.Roots, ", "))
		} else {
			fmt.Println("Roots:      (none)")
		}
		fmt.Printf("Nodes:      %d (%d selected)\n", s.Nodes, s.Selected)
		fmt.Printf("Graph:      %d keywords, %d relationships\n", s.GraphNodes, s.GraphEdges)
		fmt.Printf("Collection: %d papers\n", s.Collected)
		if s.Focused != "" {
			if len(s.FocusPath) > 0 {
				fmt.Printf("Focused:    %s (%s)\n", strings.Join(s.FocusPath, " > "), s.Focused)
			} else {
				fmt.Printf("Focused:    %s\n", s.Focused)
			}
		}
		fmt.Printf("Operations: %d/%d (%d left)\n", s.Operations.Used, s.Operations.Limit, s.Operations.Remaining)
		if s.Error != "" {
			fmt.Printf("\nError: %s\n  (dismiss with 'rex error dismiss')\n", s.Error)
		}
	},
}

var papersCmd = &cobra.Command{
	Use:   "papers [node]",
	Short: "List the papers fetched for a node",
	Long: `List the papers fetched for a node. Without an argument the focused
node is used. Fetch papers first with 'rex focus <node>'.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		defer w.close()
		st := w.exp.State()

		var n *tree.Node
		if len(args) == 1 {
			n = tree.Find(st.Forest, mustResolveNodes(st.Forest, args)[0])
		} else if n = st.FocusedNode(); n == nil {
			exitWithError(ExitError, "no node is focused\n  Hint: rex focus <node>")
		}

		papers := n.Literature
		if papers == nil {
			papers = []paper.Paper{}
		}
		if !humanOutput {
			outputJSON(papers)
			return
		}
		if len(papers) == 0 {
			fmt.Printf("No papers fetched for %s\n", n.Keyword)
			return
		}
		label := n.Keyword
		if path := keywordPath(st.Forest, n.ID); len(path) > 1 {
			label = strings.Join(path, " > ")
		}
		fmt.Printf("Papers for %s:\n\n", label)
		for i, p := range papers {
			mark := " "
			if st.Collection.Contains(p) {
				mark = "+"
			}
			printPaper(i+1, mark, p, "")
		}
	},
}

// keywordPath lists the keywords from the root down to the node with id.
func keywordPath(f tree.Forest, id string) []string {
	if id == "" {
		return nil
	}
	var keywords []string
	for _, n := range tree.PathTo(f, id) {
		keywords = append(keywords, n.Keyword)
	}
	return keywords
}

func printPaper(idx int, mark string, p paper.Paper, via string) {
	fmt.Printf("%s%d. %s\n", mark, idx, truncateString(p.Title, ListTitleMaxLen))
	fmt.Printf("   %s (%d) citations: %s\n", paper.FormatAuthors(p.Authors), p.Year, formatCitations(p.Citations))
	if p.URL != "" {
		fmt.Printf("   %s\n", p.URL)
	}
	if via != "" {
		fmt.Printf("   via %s\n", via)
	}
	if p.Abstract != "" {
		fmt.Printf("   %s\n", wrapText(p.Abstract, TextWrapWidth, "   "))
	}
	fmt.Println()
}

var selectExclude bool

var selectCmd = &cobra.Command{
	Use:   "select <keyword>...",
	Short: "Include or exclude keywords from the graph selection",
	Long: `Include or exclude keywords from the graph selection.

The graph is not rebuilt until 'rex graph'. Selecting does not consume
operations.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w := mustOpenWorkspace(cmd.Context(), needs{})
		for _, kw := range args {
			w.exp.SetKeywordIncluded(kw, !selectExclude)
		}
		w.mustSave()
		w.close()

		keywords := w.exp.State().Selection.Keywords()
		if keywords == nil {
			keywords = []string{}
		}
		if humanOutput {
			fmt.Printf("%d keywords selected\n", len(keywords))
		} else {
			outputJSON(map[string][]string{"selected_keywords": keywords})
		}
	},
}
