package explorer

import (
	"fmt"
	"strings"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/tree"
)

// ToggleCollect adds the paper to the collection, or removes it if a paper
// with the same identity is already there. It reports whether the paper is
// collected afterwards.
func (e *Explorer) ToggleCollect(p paper.Paper, sourceKeyword string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Collection = e.state.Collection.Toggle(p, sourceKeyword)
	return e.state.Collection.Contains(p)
}

// CollectFromNode toggles a paper from a node's fetched literature, chosen
// by case-insensitive title. The node's keyword is the source keyword.
// With keep set, an already collected paper stays collected.
func (e *Explorer) CollectFromNode(nodeID, title string, keep bool) (paper.Paper, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := tree.Find(e.state.Forest, nodeID)
	if n == nil {
		return paper.Paper{}, false, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	for _, p := range n.Literature {
		if strings.EqualFold(p.Title, title) {
			if keep {
				e.state.Collection = e.state.Collection.Add(p, n.Keyword)
			} else {
				e.state.Collection = e.state.Collection.Toggle(p, n.Keyword)
			}
			return p, e.state.Collection.Contains(p), nil
		}
	}
	return paper.Paper{}, false, fmt.Errorf("%w: %q under %s", ErrPaperNotFound, title, nodeID)
}

// RemoveCollected removes the collected paper with the given title.
func (e *Explorer) RemoveCollected(title string) (collection.CollectedPaper, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.state.Collection.FindByTitle(title)
	if !ok {
		return collection.CollectedPaper{}, fmt.Errorf("%w: %q", ErrPaperNotFound, title)
	}
	e.state.Collection = e.state.Collection.Remove(item.Paper)
	return item, nil
}
