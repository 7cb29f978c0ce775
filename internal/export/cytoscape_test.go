package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/matsen/rexplorer/internal/graph"
)

func TestToCytoscape(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "graphs", Label: "graphs", Group: "math"},
			{ID: "trees", Label: "trees", Group: "math"},
			{ID: "forests", Label: "forests"},
		},
		Edges: []graph.Edge{
			{From: "trees", To: "graphs", Type: graph.Hierarchical},
			{From: "forests", To: "trees", Type: graph.Hierarchical, Description: "a forest is a set of trees"},
		},
	}

	el := ToCytoscape(g)

	if len(el.Nodes) != 3 || len(el.Edges) != 2 {
		t.Fatalf("elements = %d nodes, %d edges", len(el.Nodes), len(el.Edges))
	}
	degrees := map[string]int{}
	for _, n := range el.Nodes {
		degrees[n.Data.ID] = n.Data.Degree
	}
	if degrees["trees"] != 2 || degrees["graphs"] != 1 || degrees["forests"] != 1 {
		t.Errorf("degrees = %v", degrees)
	}
	if el.Edges[0].Data.ID == el.Edges[1].Data.ID {
		t.Error("edge ids collide")
	}
	if el.Edges[1].Data.Source != "forests" || el.Edges[1].Data.Type != "HIERARCHICAL" {
		t.Errorf("edge = %+v", el.Edges[1].Data)
	}
}

func TestWriteCytoscape_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCytoscape(&buf, graph.Graph{}); err != nil {
		t.Fatalf("WriteCytoscape() error = %v", err)
	}

	var got map[string][]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["nodes"] == nil || got["edges"] == nil {
		t.Errorf("empty graph = %s, want empty arrays", buf.String())
	}
}
