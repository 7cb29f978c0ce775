package tree

import "github.com/matsen/rexplorer/internal/paper"

// Mutation edits a shallow copy of a node.
type Mutation func(n *Node)

// MutateNode applies mutate to a copy of the node whose id equals targetID.
// The returned forest shares every subtree that is not on the path from the
// root to the target. When no node matches, the input forest is returned
// unchanged and found is false.
func MutateNode(f Forest, targetID string, mutate Mutation) (Forest, bool) {
	for i, root := range f {
		updated, ok := mutateIn(root, targetID, mutate)
		if !ok {
			continue
		}
		out := make(Forest, len(f))
		copy(out, f)
		out[i] = updated
		return out, true
	}
	return f, false
}

func mutateIn(n *Node, targetID string, mutate Mutation) (*Node, bool) {
	if n.ID == targetID {
		c := *n
		mutate(&c)
		c.Generation = n.Generation + 1
		return &c, true
	}

	for i, child := range n.Children {
		updated, ok := mutateIn(child, targetID, mutate)
		if !ok {
			continue
		}
		c := *n
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
		c.Children[i] = updated
		return &c, true
	}

	return nil, false
}

// SetLoading marks a node as having an action in flight (or not).
func SetLoading(loading bool) Mutation {
	return func(n *Node) {
		n.IsLoading = loading
	}
}

// SetLiterature caches fetched literature on a node and clears its loading flag.
func SetLiterature(papers []paper.Paper) Mutation {
	return func(n *Node) {
		n.Literature = papers
		n.IsLoading = false
	}
}

// Expand attaches generated children to a leaf and clears its loading flag.
// Expansion is monotonic: a node that already has children keeps them.
func Expand(expansions []Expansion) Mutation {
	return func(n *Node) {
		if len(n.Children) == 0 {
			n.Children = newChildren(n.ID, expansions)
		}
		n.IsLoading = false
	}
}

// ExpandNode is MutateNode with the Expand mutation.
func ExpandNode(f Forest, targetID string, expansions []Expansion) (Forest, bool) {
	return MutateNode(f, targetID, Expand(expansions))
}
