// Package service declares the external AI and literature services the
// explorer depends on.
package service

import (
	"context"
	"strings"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/nodeid"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/tree"
)

// Operation names used in errors and logs.
const (
	OpGenerateTrees  = "generate trees"
	OpExpandNode     = "expand node"
	OpBuildGraph     = "build graph"
	OpFindLiterature = "find literature"
)

// TreeGenerator produces one root tree per seed keyword.
type TreeGenerator interface {
	GenerateTrees(ctx context.Context, seeds []string) ([]tree.RootSpec, error)
}

// NodeExpander produces sub-keywords for a single keyword.
type NodeExpander interface {
	ExpandKeyword(ctx context.Context, keyword string) ([]tree.Expansion, error)
}

// LiteratureFinder looks up papers for a keyword.
type LiteratureFinder interface {
	FindLiterature(ctx context.Context, keyword string) ([]paper.Paper, error)
}

// Keywords is the AI side of the service: trees, expansions and relationships.
type Keywords interface {
	TreeGenerator
	NodeExpander
	graph.RelationFinder
}

// CleanSeeds trims seeds and drops blanks and repeats. Seeds that differ
// only in case or spacing are repeats; the first spelling wins.
func CleanSeeds(seeds []string) []string {
	seen := make(map[string]bool, len(seeds))
	out := make([]string, 0, len(seeds))
	for _, s := range seeds {
		s = strings.TrimSpace(s)
		key := nodeid.Normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
