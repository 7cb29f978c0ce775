package explorer

import (
	"context"
	"fmt"
	"sync"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/tree"
)

// fakeService implements service.Keywords and service.LiteratureFinder with
// call counters. Nil hooks fall back to deterministic defaults.
type fakeService struct {
	mu sync.Mutex

	trees      func(ctx context.Context, seeds []string) ([]tree.RootSpec, error)
	expand     func(ctx context.Context, keyword string) ([]tree.Expansion, error)
	relations  func(ctx context.Context, keywords []string) ([]graph.Edge, error)
	literature func(ctx context.Context, keyword string) ([]paper.Paper, error)

	treeCalls       int
	expandCalls     int
	relationCalls   int
	literatureCalls int
	treeSeeds       [][]string
	relationArgs    [][]string
}

func (f *fakeService) GenerateTrees(ctx context.Context, seeds []string) ([]tree.RootSpec, error) {
	f.mu.Lock()
	f.treeCalls++
	f.treeSeeds = append(f.treeSeeds, seeds)
	hook := f.trees
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, seeds)
	}
	specs := make([]tree.RootSpec, len(seeds))
	for i, s := range seeds {
		specs[i] = tree.RootSpec{Keyword: s, Children: children(s, 5)}
	}
	return specs, nil
}

func (f *fakeService) ExpandKeyword(ctx context.Context, keyword string) ([]tree.Expansion, error) {
	f.mu.Lock()
	f.expandCalls++
	hook := f.expand
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, keyword)
	}
	return children(keyword, 3), nil
}

func (f *fakeService) FindRelations(ctx context.Context, keywords []string) ([]graph.Edge, error) {
	f.mu.Lock()
	f.relationCalls++
	f.relationArgs = append(f.relationArgs, keywords)
	hook := f.relations
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, keywords)
	}
	return []graph.Edge{{From: keywords[0], To: keywords[1], Type: graph.Hierarchical}}, nil
}

func (f *fakeService) FindLiterature(ctx context.Context, keyword string) ([]paper.Paper, error) {
	f.mu.Lock()
	f.literatureCalls++
	hook := f.literature
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, keyword)
	}
	return []paper.Paper{
		{Title: "On " + keyword, Authors: []string{"Ada Lovelace"}, Year: 2020, URL: "https://example.org/1"},
		{Title: "More " + keyword, Year: 2021, Citations: paper.IntPtr(3)},
	}, nil
}

func (f *fakeService) counts() (trees, expand, relations, literature int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeCalls, f.expandCalls, f.relationCalls, f.literatureCalls
}

func children(keyword string, n int) []tree.Expansion {
	out := make([]tree.Expansion, n)
	labels := []tree.Label{tree.LabelHot, tree.LabelClassic, tree.LabelNiche}
	for i := range out {
		out[i] = tree.Expansion{Keyword: fmt.Sprintf("%s topic %d", keyword, i), Label: labels[i%len(labels)]}
	}
	return out
}

// blockUntilCancelled returns an expand hook that signals started and then
// waits for its context.
func blockUntilCancelled(started chan<- struct{}) func(context.Context, string) ([]tree.Expansion, error) {
	return func(ctx context.Context, _ string) ([]tree.Expansion, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
