package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/explorer"
	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/tree"
)

func testSnapshot() explorer.Snapshot {
	forest := tree.NewForest([]tree.RootSpec{{
		Keyword:  "graph theory",
		Children: []tree.Expansion{{Keyword: "spectral graphs", Label: tree.LabelClassic}},
	}})
	return explorer.Snapshot{
		Trees: forest,
		Graph: graph.Graph{
			Nodes: []graph.Node{{ID: "graph theory", Label: "graph theory"}, {ID: "spectral graphs", Label: "spectral graphs"}},
			Edges: []graph.Edge{{From: "graph theory", To: "spectral graphs", Type: graph.Hierarchical}},
		},
		CollectedPapers: []collection.CollectedPaper{{
			Paper:         paper.Paper{Title: "Spectra", Authors: []string{"Chung"}, Year: 1997, Citations: paper.IntPtr(9)},
			SourceKeyword: "spectral graphs",
		}},
		SelectedKeywords: []string{"graph theory", "spectral graphs"},
		FocusedNodeID:    forest[0].Children[0].ID,
		Operations:       explorer.Operations{Used: 2, Limit: 20},
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	want := testSnapshot()

	if err := SaveSession(path, want); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	got, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("LoadSession() = %+v\nwant %+v", *got, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestLoadSession_Missing(t *testing.T) {
	snap, err := LoadSession(filepath.Join(t.TempDir(), "session.json"))
	if err != nil || snap != nil {
		t.Errorf("LoadSession() = %v, %v; want nil, nil", snap, err)
	}
}

func TestLoadSession_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{trees"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSession(path); err == nil {
		t.Error("LoadSession() should fail on invalid JSON")
	}
}
