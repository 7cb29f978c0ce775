// Package tree owns the forest of keyword trees.
//
// Forests are persistent values: a mutation never edits a node in place.
// It copies the target node and every node on the path up to its root, and
// leaves all other subtrees reference-identical to the input, so callers can
// detect changes with pointer comparison.
package tree

import (
	"github.com/matsen/rexplorer/internal/nodeid"
	"github.com/matsen/rexplorer/internal/paper"
)

// Label is advisory metadata on a generated keyword.
type Label string

const (
	LabelHot     Label = "hot"
	LabelClassic Label = "classic"
	LabelNiche   Label = "niche"
	LabelBridge  Label = "bridge"
)

// ValidLabels lists the supported label values.
var ValidLabels = []Label{LabelHot, LabelClassic, LabelNiche, LabelBridge}

// ParseLabel returns the label named by s, or "" when s is not a known label.
func ParseLabel(s string) Label {
	for _, l := range ValidLabels {
		if string(l) == s {
			return l
		}
	}
	return ""
}

// Node is one keyword in a tree.
type Node struct {
	ID         string        `json:"id"`
	ParentID   string        `json:"parentId,omitempty"`
	Keyword    string        `json:"keyword"`
	Label      Label         `json:"label,omitempty"`
	Children   []*Node       `json:"children"`
	Literature []paper.Paper `json:"literature,omitempty"`
	IsLoading  bool          `json:"isLoading,omitempty"`

	// Generation increments on every mutation of this node. In-flight
	// actions capture it at dispatch and only apply if it still matches.
	Generation int `json:"generation,omitempty"`
}

// Expanded reports whether the node has ever been expanded.
func (n *Node) Expanded() bool {
	return len(n.Children) > 0
}

// HasLiterature reports whether literature has been fetched and is non-empty.
func (n *Node) HasLiterature() bool {
	return len(n.Literature) > 0
}

// Expansion is a generated child keyword before it becomes a node.
type Expansion struct {
	Keyword string `json:"keyword"`
	Label   Label  `json:"label,omitempty"`
}

// RootSpec is a generated root keyword with its first level of children.
type RootSpec struct {
	Keyword  string      `json:"keyword"`
	Children []Expansion `json:"children"`
}

// Forest is the ordered sequence of root trees, one per seed keyword.
type Forest []*Node

// NewForest builds a forest from generated root specs. Roots whose
// keywords normalize to the same id are kept apart with a numeric suffix,
// so ids stay unique across the forest.
func NewForest(specs []RootSpec) Forest {
	forest := make(Forest, 0, len(specs))
	used := make(map[string]bool, len(specs))
	for _, spec := range specs {
		id := nodeid.MakeRootID(spec.Keyword, 0)
		for n := 1; used[id]; n++ {
			id = nodeid.MakeRootID(spec.Keyword, n)
		}
		used[id] = true
		forest = append(forest, newRoot(id, spec))
	}
	return forest
}

func newRoot(id string, spec RootSpec) *Node {
	root := &Node{ID: id, Keyword: spec.Keyword}
	root.Children = newChildren(id, spec.Children)
	return root
}

func newChildren(parentID string, expansions []Expansion) []*Node {
	children := make([]*Node, 0, len(expansions))
	for i, exp := range expansions {
		children = append(children, &Node{
			ID:       nodeid.MakeChildID(parentID, exp.Keyword, i),
			ParentID: parentID,
			Keyword:  exp.Keyword,
			Label:    exp.Label,
			Children: []*Node{},
		})
	}
	return children
}
