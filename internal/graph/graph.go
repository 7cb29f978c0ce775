// Package graph owns the derived keyword relationship graph.
package graph

import (
	"context"
	"errors"
)

// RelationType classifies a relationship between two keywords.
type RelationType string

const (
	Hierarchical RelationType = "HIERARCHICAL"
	Dependency   RelationType = "DEPENDENCY"
	Synonym      RelationType = "SYNONYM"
	Contrasting  RelationType = "CONTRASTING"
	Associative  RelationType = "ASSOCIATIVE"
)

// ValidRelationTypes lists the supported relationship types.
var ValidRelationTypes = []RelationType{Hierarchical, Dependency, Synonym, Contrasting, Associative}

// IsValid reports whether t is one of the supported relationship types.
func (t RelationType) IsValid() bool {
	for _, v := range ValidRelationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Node is one selected keyword. ID and Label are both the keyword.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"` // root keyword the keyword was found under
}

// Edge is a typed relationship between two selected keywords.
type Edge struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Type        RelationType `json:"type"`
	Description string       `json:"description,omitempty"`
}

// Validation errors.
var (
	ErrEmptyFrom   = errors.New("from is required")
	ErrEmptyTo     = errors.New("to is required")
	ErrInvalidType = errors.New("relationship type is not supported")
	ErrSelfEdge    = errors.New("from and to cannot be the same")
)

// Validate checks that an edge is well formed.
func (e Edge) Validate() error {
	if e.From == "" {
		return ErrEmptyFrom
	}
	if e.To == "" {
		return ErrEmptyTo
	}
	if !e.Type.IsValid() {
		return ErrInvalidType
	}
	if e.From == e.To {
		return ErrSelfEdge
	}
	return nil
}

// Key returns the identity tuple of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Type: e.Type}
}

// EdgeKey is the identity of an edge.
type EdgeKey struct {
	From string
	To   string
	Type RelationType
}

// Graph is replaced wholesale on every build.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// RelationFinder asks an external service for relationships among keywords.
type RelationFinder interface {
	FindRelations(ctx context.Context, keywords []string) ([]Edge, error)
}

// Build requests relationships restricted to keywords and assembles a new
// graph with one node per distinct keyword. Returned edges that reference a
// keyword outside the set, or are otherwise malformed, are dropped and
// reported. With fewer than two keywords the finder is not called.
//
// groups optionally maps keywords to their root keyword.
func Build(ctx context.Context, keywords []string, finder RelationFinder, groups map[string]string) (Graph, []DroppedEdge, error) {
	keywords = dedupe(keywords)

	nodes := make([]Node, len(keywords))
	for i, kw := range keywords {
		nodes[i] = Node{ID: kw, Label: kw, Group: groups[kw]}
	}

	if len(keywords) < 2 {
		return Graph{Nodes: nodes, Edges: []Edge{}}, nil, nil
	}

	edges, err := finder.FindRelations(ctx, keywords)
	if err != nil {
		return Graph{}, nil, err
	}

	valid, dropped := FilterEdges(edges, keywords)
	return Graph{Nodes: nodes, Edges: valid}, dropped, nil
}

func dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
