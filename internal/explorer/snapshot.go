package explorer

import (
	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/selection"
	"github.com/matsen/rexplorer/internal/tree"
)

// Snapshot is the saved form of a session. It fully reconstructs the
// session state.
type Snapshot struct {
	Trees            tree.Forest                 `json:"trees"`
	Graph            graph.Graph                 `json:"graph"`
	CollectedPapers  []collection.CollectedPaper `json:"collectedPapers"`
	SelectedKeywords []string                    `json:"selectedKeywords"`
	FocusedNodeID    string                      `json:"focusedNodeId,omitempty"`
	Operations       Operations                  `json:"operations"`
	Error            string                      `json:"error,omitempty"`
}

// Snapshot captures the current session.
func (e *Explorer) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	forest := s.Forest
	if forest == nil {
		forest = tree.Forest{}
	}
	g := s.Graph
	if g.Nodes == nil {
		g.Nodes = []graph.Node{}
	}
	if g.Edges == nil {
		g.Edges = []graph.Edge{}
	}
	return Snapshot{
		Trees:            forest,
		Graph:            g,
		CollectedPapers:  s.Collection.Items(),
		SelectedKeywords: s.Selection.Keywords(),
		FocusedNodeID:    s.Selection.FocusedID(),
		Operations:       Operations{Used: e.budget.Used(), Limit: e.budget.Limit(), Remaining: e.budget.Remaining()},
		Error:            s.Error,
	}
}

// Restore replaces the session with a snapshot. In-flight actions are
// cancelled and their results discarded. Loading flags in the snapshot are
// cleared since nothing is in flight for them. The operation counter only
// moves forward. Restore takes ownership of s.Trees.
func (e *Explorer) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelAllLocked()
	e.epoch++

	tree.Walk(s.Trees, func(n *tree.Node) bool {
		n.IsLoading = false
		return true
	})

	sel := selection.New(s.SelectedKeywords...)
	if s.FocusedNodeID != "" && tree.Find(s.Trees, s.FocusedNodeID) != nil {
		sel = sel.WithFocus(s.FocusedNodeID)
	}

	e.state = State{
		Forest:     s.Trees,
		Graph:      s.Graph,
		Collection: collection.New(e.key, s.CollectedPapers...),
		Selection:  sel,
		Error:      s.Error,
	}
	e.loading = 0
	e.budget.Restore(s.Operations.Used)
}
