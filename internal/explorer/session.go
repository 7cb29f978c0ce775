package explorer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/nodeid"
	"github.com/matsen/rexplorer/internal/service"
	"github.com/matsen/rexplorer/internal/tree"
)

// Search starts a new session from seed keywords. Seeds are trimmed and
// blanks dropped; with none left it fails before any external call. Trees,
// graph and selection are reset (the collection is kept), every generated
// keyword is selected and the graph is built once. The whole action
// consumes one operation. On failure the forest stays empty.
func (e *Explorer) Search(ctx context.Context, seeds []string) error {
	seeds = service.CleanSeeds(seeds)
	a := e.newAction(ctx, "search", service.OpGenerateTrees, strings.Join(seeds, ", "))

	e.mu.Lock()
	if len(seeds) == 0 {
		e.state = e.state.withError(UserMessage(service.ErrNoSeeds))
		e.mu.Unlock()
		a.log.Warn("search rejected", "error", service.ErrNoSeeds)
		return service.ErrNoSeeds
	}
	if err := e.gate(a); err != nil {
		e.mu.Unlock()
		return err
	}
	e.cancelAllLocked()
	e.epoch++
	epoch := e.epoch
	e.state = e.state.reset()
	e.startLoading(MsgSearching)
	ctx, release := e.register(ctx, flightKey{kind: "search"})
	e.mu.Unlock()
	defer release()

	specs, err := e.keywords.GenerateTrees(ctx, seeds)
	var (
		forest tree.Forest
		g      graph.Graph
	)
	if err == nil {
		forest = tree.NewForest(specs)
		e.warnMissingSeeds(a, seeds, forest)
		var dropped []graph.DroppedEdge
		g, dropped, err = graph.Build(ctx, tree.Keywords(forest), e.keywords, tree.Groups(forest))
		if err != nil {
			a.op = service.OpBuildGraph
		}
		logDropped(a, dropped)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoading()
	if e.epoch != epoch {
		a.log.Info("discarding superseded search")
		return ErrStale
	}
	if err != nil {
		return e.fail(a, err)
	}
	e.state = e.state.seeded(forest, g)
	a.log.Info("search complete", "roots", len(forest), "keywords", e.state.Selection.Len(), "edges", len(g.Edges))
	return nil
}

// warnMissingSeeds logs seeds the service did not return a root for.
func (e *Explorer) warnMissingSeeds(a *action, seeds []string, f tree.Forest) {
	have := make(map[string]bool, len(f))
	for _, kw := range tree.RootKeywords(f) {
		have[nodeid.Normalize(kw)] = true
	}
	for _, s := range seeds {
		if !have[nodeid.Normalize(s)] {
			a.log.Warn("requested topic missing from generated trees", "seed", s)
		}
	}
}

func logDropped(a *action, dropped []graph.DroppedEdge) {
	for _, d := range dropped {
		a.log.Debug("dropped relationship", "from", d.Edge.From, "to", d.Edge.To, "reason", d.Reason)
	}
}

// UpdateNetwork rebuilds the graph from the selected keywords, replacing it
// wholesale. It consumes one operation even when fewer than two keywords
// are selected and no external call is needed.
func (e *Explorer) UpdateNetwork(ctx context.Context) error {
	a := e.newAction(ctx, "graph", service.OpBuildGraph, "")

	e.mu.Lock()
	if err := e.gate(a); err != nil {
		e.mu.Unlock()
		return err
	}
	epoch := e.epoch
	keywords := e.state.Selection.Keywords()
	groups := tree.Groups(e.state.Forest)
	e.state = e.state.withError("")
	e.startLoading(MsgUpdatingGraph)
	ctx, release := e.register(ctx, flightKey{kind: "graph"})
	e.mu.Unlock()
	defer release()

	g, dropped, err := graph.Build(ctx, keywords, e.keywords, groups)
	logDropped(a, dropped)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoading()
	if e.epoch != epoch {
		a.log.Info("discarding graph for a replaced session")
		return ErrStale
	}
	if err != nil {
		return e.fail(a, err)
	}
	e.state.Graph = g
	a.log.Info("graph rebuilt", "nodes", len(g.Nodes), "edges", len(g.Edges), "dropped", len(dropped))
	return nil
}

// RefreshTrees regenerates every root tree from the current root keywords
// and replaces the forest. All roots are regenerated together so
// cross-topic bridges stay consistent. In-flight node actions are
// cancelled. Selection and graph are kept; the focus is cleared if its node
// disappeared. It consumes one operation.
func (e *Explorer) RefreshTrees(ctx context.Context) error {
	e.mu.Lock()
	roots := tree.RootKeywords(e.state.Forest)
	a := e.newAction(ctx, "refresh", service.OpGenerateTrees, strings.Join(roots, ", "))
	if len(roots) == 0 {
		e.mu.Unlock()
		return ErrNothingToRefresh
	}
	if err := e.gate(a); err != nil {
		e.mu.Unlock()
		return err
	}
	for k, f := range e.inflight {
		if k.kind == "node" {
			f.cancel()
		}
	}
	epoch := e.epoch
	e.state = e.state.withError("")
	e.startLoading(fmt.Sprintf(msgRefreshingFmt, quoteAll(roots)))
	ctx, release := e.register(ctx, flightKey{kind: "refresh"})
	e.mu.Unlock()
	defer release()

	specs, err := e.keywords.GenerateTrees(ctx, roots)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoading()
	if e.epoch != epoch {
		a.log.Info("discarding refresh for a replaced session")
		return ErrStale
	}
	if err != nil {
		return e.fail(a, err)
	}
	forest := tree.NewForest(specs)
	e.warnMissingSeeds(a, roots, forest)
	e.state = e.state.refreshed(forest)
	a.log.Info("trees refreshed", "roots", len(forest), "nodes", tree.Count(forest))
	return nil
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
