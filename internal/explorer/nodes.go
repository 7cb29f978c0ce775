package explorer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/rexplorer/internal/service"
	"github.com/matsen/rexplorer/internal/tree"
)

// nodeFlight is a node action between dispatch and completion.
type nodeFlight struct {
	keyword    string
	generation int
}

// dispatch marks a node as loading and captures its generation. Must hold
// e.mu.
func (e *Explorer) dispatch(id string) nodeFlight {
	e.state = e.state.begin(id)
	n := tree.Find(e.state.Forest, id)
	return nodeFlight{keyword: n.Keyword, generation: n.Generation}
}

// settle checks that a node still carries the generation captured at
// dispatch. Must hold e.mu.
func (e *Explorer) settle(a *action, id string, nf nodeFlight) error {
	n := tree.Find(e.state.Forest, id)
	if n == nil || n.Generation != nf.generation {
		a.log.Info("discarding stale result", "dispatched_generation", nf.generation)
		return ErrStale
	}
	return nil
}

// ExpandNode fetches sub-keywords for a leaf and attaches them. It consumes
// one operation. Expanding a node that already has children or has an
// action in flight is rejected before the budget is touched.
func (e *Explorer) ExpandNode(ctx context.Context, nodeID string) error {
	a := e.newAction(ctx, "expand", service.OpExpandNode, nodeID)

	e.mu.Lock()
	n := tree.Find(e.state.Forest, nodeID)
	switch {
	case n == nil:
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	case n.Expanded():
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyExpanded, nodeID)
	case n.IsLoading:
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeBusy, nodeID)
	}
	if err := e.gate(a); err != nil {
		e.mu.Unlock()
		return err
	}
	nf := e.dispatch(nodeID)
	ctx, release := e.register(ctx, flightKey{kind: "node", target: nodeID})
	e.mu.Unlock()
	defer release()

	a.log.Debug("action pending", "keyword", nf.keyword)
	expansions, err := e.keywords.ExpandKeyword(ctx, nf.keyword)

	e.mu.Lock()
	defer e.mu.Unlock()
	if serr := e.settle(a, nodeID, nf); serr != nil {
		return serr
	}
	if err != nil {
		e.state, _ = e.state.mutate(nodeID, tree.SetLoading(false))
		return e.fail(a, err)
	}
	e.state, _ = e.state.mutate(nodeID, tree.Expand(expansions))
	a.log.Info("node expanded", "children", len(expansions))
	return nil
}

// ExpandMany expands several nodes concurrently. Every node is attempted;
// the first error is returned and each failure is published as usual.
func (e *Explorer) ExpandMany(ctx context.Context, nodeIDs []string) error {
	var g errgroup.Group
	g.SetLimit(e.parallel)
	for _, id := range nodeIDs {
		g.Go(func() error {
			return e.ExpandNode(ctx, id)
		})
	}
	return g.Wait()
}

// FocusLiterature toggles the literature focus on a node. Focusing a node
// whose literature has not been fetched yet fetches it; a node that
// already holds papers, or is loading, is never fetched again. Literature
// does not consume operations.
func (e *Explorer) FocusLiterature(ctx context.Context, nodeID string) error {
	a := e.newAction(ctx, "literature", service.OpFindLiterature, nodeID)

	e.mu.Lock()
	n := tree.Find(e.state.Forest, nodeID)
	if n == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	e.state.Selection = e.state.Selection.ToggleFocus(nodeID)
	if e.state.Selection.FocusedID() != nodeID {
		e.mu.Unlock()
		return nil
	}
	return e.fetchLiterature(ctx, a, n)
}

// FetchLiterature fetches papers for a node without touching the focus.
// Nodes that already hold papers or are loading are left alone.
func (e *Explorer) FetchLiterature(ctx context.Context, nodeID string) error {
	a := e.newAction(ctx, "literature", service.OpFindLiterature, nodeID)

	e.mu.Lock()
	n := tree.Find(e.state.Forest, nodeID)
	if n == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return e.fetchLiterature(ctx, a, n)
}

// FetchLiteratureMany fetches papers for several nodes concurrently. Every
// node is attempted and the first error is returned.
func (e *Explorer) FetchLiteratureMany(ctx context.Context, nodeIDs []string) error {
	var g errgroup.Group
	g.SetLimit(e.parallel)
	for _, id := range nodeIDs {
		g.Go(func() error {
			return e.FetchLiterature(ctx, id)
		})
	}
	return g.Wait()
}

// fetchLiterature runs the lookup for n unless it already holds papers or
// is loading. Called with e.mu held; it releases it.
func (e *Explorer) fetchLiterature(ctx context.Context, a *action, n *tree.Node) error {
	nodeID := n.ID
	if n.HasLiterature() || n.IsLoading {
		e.mu.Unlock()
		return nil
	}
	if e.literature == nil {
		e.mu.Unlock()
		return e.report(a, fmt.Errorf("%w: no literature source", service.ErrNotConfigured))
	}
	nf := e.dispatch(nodeID)
	ctx, release := e.register(ctx, flightKey{kind: "node", target: nodeID})
	e.mu.Unlock()
	defer release()

	a.log.Debug("action pending", "keyword", nf.keyword)
	papers, err := e.literature.FindLiterature(ctx, nf.keyword)

	e.mu.Lock()
	defer e.mu.Unlock()
	if serr := e.settle(a, nodeID, nf); serr != nil {
		return serr
	}
	if err != nil {
		e.state, _ = e.state.mutate(nodeID, tree.SetLoading(false))
		return e.fail(a, err)
	}
	e.state, _ = e.state.mutate(nodeID, tree.SetLiterature(papers))
	a.log.Info("literature fetched", "papers", len(papers))
	return nil
}

// report is fail for callers that do not hold e.mu.
func (e *Explorer) report(a *action, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fail(a, err)
}

// SetKeywordIncluded adds or removes a keyword from the graph selection.
// The graph is unchanged until UpdateNetwork.
func (e *Explorer) SetKeywordIncluded(keyword string, included bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Selection = e.state.Selection.SetKeywordIncluded(keyword, included)
}
