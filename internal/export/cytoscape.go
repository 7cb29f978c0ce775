package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matsen/rexplorer/internal/graph"
)

// CytoscapeElements is the Cytoscape.js elements format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode wraps a keyword for Cytoscape.js.
type CytoscapeNode struct {
	Data CytoscapeNodeData `json:"data"`
}

// CytoscapeNodeData holds the keyword fields. Degree is the number of
// relationships touching the keyword, for sizing.
type CytoscapeNodeData struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Group  string `json:"group,omitempty"`
	Degree int    `json:"degree"`
}

// CytoscapeEdge wraps a relationship for Cytoscape.js.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData holds the relationship fields.
type CytoscapeEdgeData struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ToCytoscape converts the relationship graph to Cytoscape.js elements.
func ToCytoscape(g graph.Graph) CytoscapeElements {
	degree := graph.Degree(g)
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		elements.Nodes = append(elements.Nodes, CytoscapeNode{Data: CytoscapeNodeData{
			ID:     n.ID,
			Label:  n.Label,
			Group:  n.Group,
			Degree: degree[n.ID],
		}})
	}
	for i, e := range g.Edges {
		elements.Edges = append(elements.Edges, CytoscapeEdge{Data: CytoscapeEdgeData{
			ID:          edgeID(e, i),
			Source:      e.From,
			Target:      e.To,
			Type:        string(e.Type),
			Description: e.Description,
		}})
	}
	return elements
}

// WriteCytoscape writes the graph as Cytoscape.js elements JSON.
func WriteCytoscape(w io.Writer, g graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToCytoscape(g)); err != nil {
		return fmt.Errorf("encoding cytoscape elements: %w", err)
	}
	return nil
}

// edgeID is unique within one export. Ids are positional and not stable
// across graph rebuilds.
func edgeID(e graph.Edge, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", e.From, e.To, e.Type, index)
}
