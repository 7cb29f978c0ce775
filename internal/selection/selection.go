// Package selection tracks the focused node and the keyword set included in
// the relationship graph. The two are independent: changing the keyword set
// has no effect on the graph until a rebuild is requested.
package selection

import "sort"

// Selection is an immutable value; every operation returns a new Selection.
type Selection struct {
	focusedID string
	keywords  map[string]struct{}
}

// New returns a selection with no focus and the given keywords included.
func New(keywords ...string) Selection {
	s := Selection{keywords: make(map[string]struct{}, len(keywords))}
	for _, kw := range keywords {
		s.keywords[kw] = struct{}{}
	}
	return s
}

// FocusedID returns the node focused for literature, or "" when none is.
func (s Selection) FocusedID() string {
	return s.focusedID
}

// ToggleFocus focuses nodeID, or clears the focus if nodeID is already focused.
func (s Selection) ToggleFocus(nodeID string) Selection {
	out := s
	if s.focusedID == nodeID {
		out.focusedID = ""
	} else {
		out.focusedID = nodeID
	}
	return out
}

// ClearFocus removes any focus.
func (s Selection) ClearFocus() Selection {
	out := s
	out.focusedID = ""
	return out
}

// WithFocus sets the focus without toggling.
func (s Selection) WithFocus(nodeID string) Selection {
	out := s
	out.focusedID = nodeID
	return out
}

// SetKeywordIncluded adds or removes one keyword from the graph set.
func (s Selection) SetKeywordIncluded(keyword string, included bool) Selection {
	next := make(map[string]struct{}, len(s.keywords)+1)
	for kw := range s.keywords {
		next[kw] = struct{}{}
	}
	if included {
		next[keyword] = struct{}{}
	} else {
		delete(next, keyword)
	}
	out := s
	out.keywords = next
	return out
}

// Includes reports whether keyword is in the graph set.
func (s Selection) Includes(keyword string) bool {
	_, ok := s.keywords[keyword]
	return ok
}

// Keywords returns the graph set sorted for stable output.
func (s Selection) Keywords() []string {
	keywords := make([]string, 0, len(s.keywords))
	for kw := range s.keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// Len returns the size of the graph set.
func (s Selection) Len() int {
	return len(s.keywords)
}
