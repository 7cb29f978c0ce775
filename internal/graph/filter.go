package graph

// Drop reasons reported by FilterEdges.
const (
	ReasonMissingFrom = "missing_from"
	ReasonMissingTo   = "missing_to"
	ReasonMissingBoth = "missing_both"
	ReasonInvalid     = "invalid"
	ReasonDuplicate   = "duplicate"
)

// DroppedEdge records an edge removed by FilterEdges and why.
type DroppedEdge struct {
	Edge   Edge   `json:"edge"`
	Reason string `json:"reason"`
}

// FilterEdges keeps the edges whose endpoints both belong to keywords,
// that pass Validate, and that are not repeats of an earlier edge.
func FilterEdges(edges []Edge, keywords []string) (valid []Edge, dropped []DroppedEdge) {
	allowed := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		allowed[kw] = true
	}

	valid = []Edge{}
	seen := make(map[EdgeKey]bool, len(edges))
	for _, e := range edges {
		fromOK := allowed[e.From]
		toOK := allowed[e.To]

		switch {
		case !fromOK && !toOK:
			dropped = append(dropped, DroppedEdge{Edge: e, Reason: ReasonMissingBoth})
		case !fromOK:
			dropped = append(dropped, DroppedEdge{Edge: e, Reason: ReasonMissingFrom})
		case !toOK:
			dropped = append(dropped, DroppedEdge{Edge: e, Reason: ReasonMissingTo})
		case e.Validate() != nil:
			dropped = append(dropped, DroppedEdge{Edge: e, Reason: ReasonInvalid})
		case seen[e.Key()]:
			dropped = append(dropped, DroppedEdge{Edge: e, Reason: ReasonDuplicate})
		default:
			seen[e.Key()] = true
			valid = append(valid, e)
		}
	}
	return valid, dropped
}

// Degree counts the edges touching each keyword.
func Degree(g Graph) map[string]int {
	degree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.From]++
		degree[e.To]++
	}
	return degree
}
