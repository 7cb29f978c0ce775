// Package explorer is the orchestration layer: it owns the session state and
// runs each user action (search, expansion, literature, graph rebuild,
// refresh) against the external services.
package explorer

import (
	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/selection"
	"github.com/matsen/rexplorer/internal/tree"
)

// Loading messages shown while a session-wide action is pending.
const (
	MsgSearching     = "Generating interconnected research network..."
	MsgUpdatingGraph = "Updating keyword network..."
	msgRefreshingFmt = "Refreshing trees for %s..."
)

// State is the whole session. It is a value: transitions return a new
// State and never modify the nodes of the forest they were given.
type State struct {
	Forest     tree.Forest
	Graph      graph.Graph
	Collection collection.Collection
	Selection  selection.Selection

	// Error is the dismissable one-line message of the last failure.
	Error string
	// Loading is set while a session-wide action is pending.
	Loading string
}

// Operations reports budget usage.
type Operations struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Started reports whether a search has produced a forest. A session that
// has not started is still collecting seed keywords.
func (s State) Started() bool {
	return len(s.Forest) > 0
}

// FocusedNode returns the node focused for literature, or nil.
func (s State) FocusedNode() *tree.Node {
	id := s.Selection.FocusedID()
	if id == "" {
		return nil
	}
	return tree.Find(s.Forest, id)
}

func (s State) withError(msg string) State {
	s.Error = msg
	return s
}

func (s State) withLoading(msg string) State {
	s.Loading = msg
	return s
}

func (s State) mutate(id string, m tree.Mutation) (State, bool) {
	f, ok := tree.MutateNode(s.Forest, id, m)
	s.Forest = f
	return s, ok
}

// begin is the Idle to Pending transition for a node action.
func (s State) begin(id string) State {
	s, _ = s.mutate(id, tree.SetLoading(true))
	s.Error = ""
	return s
}

// reset starts a new search: trees, graph and selection are dropped, the
// collection is kept.
func (s State) reset() State {
	return State{Collection: s.Collection, Selection: selection.New()}
}

// seeded installs a freshly generated forest and selects every keyword.
func (s State) seeded(f tree.Forest, g graph.Graph) State {
	s.Forest = f
	s.Graph = g
	s.Selection = selection.New(tree.Keywords(f)...)
	return s
}

// refreshed replaces the forest, keeping selection and graph. The focus is
// dropped if its node no longer exists.
func (s State) refreshed(f tree.Forest) State {
	s.Forest = f
	if id := s.Selection.FocusedID(); id != "" && tree.Find(f, id) == nil {
		s.Selection = s.Selection.ClearFocus()
	}
	return s
}
