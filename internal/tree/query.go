package tree

import "github.com/matsen/rexplorer/internal/nodeid"

// Walk visits every node depth-first, roots in order. Returning false from
// fn stops the walk.
func Walk(f Forest, fn func(n *Node) bool) {
	for _, root := range f {
		if !walk(root, fn) {
			return
		}
	}
}

func walk(n *Node, fn func(n *Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id, or nil.
func Find(f Forest, id string) *Node {
	var found *Node
	Walk(f, func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// PathTo returns the nodes from the root down to the node with the given
// id, or nil when it is absent. Only subtrees whose id is a lineage prefix
// of id are searched.
func PathTo(f Forest, id string) []*Node {
	var path []*Node
	level := []*Node(f)
	for {
		next := onPath(level, id)
		if next == nil {
			return nil
		}
		path = append(path, next)
		if next.ID == id {
			return path
		}
		level = next.Children
	}
}

func onPath(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id || nodeid.IsAncestor(n.ID, id) {
			return n
		}
	}
	return nil
}

// Keywords returns every distinct keyword in the forest in depth-first order.
func Keywords(f Forest) []string {
	seen := make(map[string]bool)
	var keywords []string
	Walk(f, func(n *Node) bool {
		if !seen[n.Keyword] {
			seen[n.Keyword] = true
			keywords = append(keywords, n.Keyword)
		}
		return true
	})
	return keywords
}

// RootKeywords returns the keyword of each root in order.
func RootKeywords(f Forest) []string {
	keywords := make([]string, len(f))
	for i, root := range f {
		keywords[i] = root.Keyword
	}
	return keywords
}

// Groups maps each keyword to the root keyword of the first tree it appears in.
func Groups(f Forest) map[string]string {
	groups := make(map[string]string)
	for _, root := range f {
		walk(root, func(n *Node) bool {
			if _, ok := groups[n.Keyword]; !ok {
				groups[n.Keyword] = root.Keyword
			}
			return true
		})
	}
	return groups
}

// Count returns the number of nodes in the forest.
func Count(f Forest) int {
	count := 0
	Walk(f, func(*Node) bool {
		count++
		return true
	})
	return count
}

// Loading returns the ids of nodes with an action in flight.
func Loading(f Forest) []string {
	var ids []string
	Walk(f, func(n *Node) bool {
		if n.IsLoading {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}
