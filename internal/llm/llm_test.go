package llm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/service"
	"github.com/matsen/rexplorer/internal/tree"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, prompt string, _ *genai.Schema) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestExtractFromCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"key\": \"value\"}\n```", "{\"key\": \"value\"}"},
		{"plain code block", "```\n{\"key\": \"value\"}\n```", "{\"key\": \"value\"}"},
		{"no closing fence", "```json\n{\"key\": \"value\"}", "{\"key\": \"value\"}"},
		{"single line", "```", "```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFromCodeBlock(tt.input); got != tt.expected {
				t.Errorf("extractFromCodeBlock() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", `{"a": 1}`, false},
		{"fenced", "```json\n{\"a\": 1}\n```", false},
		{"whitespace", "\n  {\"a\": 1}  \n", false},
		{"empty", "   ", true},
		{"preamble", "Here you go: {\"a\": 1}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]int
			err := decodeJSON(tt.input, &v)
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateTrees(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + `{"trees": [
		{"keyword": "graph theory", "children": [
			{"keyword": "spectral methods", "label": "classic"},
			{"keyword": "  ", "label": "hot"},
			{"keyword": "graph neural networks", "label": "Bridge"},
			{"keyword": "random graphs", "label": "unknown"}
		]},
		{"keyword": "", "children": []}
	]}` + "\n```"}
	svc := NewService(gen, nil)

	roots, err := svc.GenerateTrees(context.Background(), []string{" graph theory ", ""})
	if err != nil {
		t.Fatalf("GenerateTrees() error = %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(roots))
	}
	want := []tree.Expansion{
		{Keyword: "spectral methods", Label: tree.LabelClassic},
		{Keyword: "graph neural networks", Label: tree.LabelBridge},
		{Keyword: "random graphs"},
	}
	if !reflect.DeepEqual(roots[0].Children, want) {
		t.Errorf("children = %+v, want %+v", roots[0].Children, want)
	}
	if !strings.Contains(gen.prompts[0], `["graph theory"]`) {
		t.Errorf("prompt missing cleaned seeds: %s", gen.prompts[0])
	}
}

func TestGenerateTrees_NoSeeds(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(gen, nil)

	_, err := svc.GenerateTrees(context.Background(), []string{" ", ""})
	if !errors.Is(err, service.ErrNoSeeds) {
		t.Errorf("error = %v, want ErrNoSeeds", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestGenerateTrees_Errors(t *testing.T) {
	tests := []struct {
		name      string
		gen       *fakeGenerator
		wantParse bool
	}{
		{"service failure", &fakeGenerator{err: errors.New("quota exceeded")}, false},
		{"not json", &fakeGenerator{response: "sorry, I can't"}, true},
		{"missing trees", &fakeGenerator{response: `{"roots": []}`}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.gen, nil).GenerateTrees(context.Background(), []string{"x"})
			if !service.IsServiceError(err) {
				t.Fatalf("error = %v, want service error", err)
			}
			if service.IsParseError(err) != tt.wantParse {
				t.Errorf("IsParseError() = %v, want %v", service.IsParseError(err), tt.wantParse)
			}
		})
	}
}

func TestExpandKeyword(t *testing.T) {
	gen := &fakeGenerator{response: `{"expansions": [{"keyword": "attention", "label": "hot"}, {"keyword": "rnn"}]}`}

	exps, err := NewService(gen, nil).ExpandKeyword(context.Background(), "transformers")
	if err != nil {
		t.Fatalf("ExpandKeyword() error = %v", err)
	}
	if len(exps) != 2 || exps[0].Label != tree.LabelHot || exps[1].Label != "" {
		t.Errorf("expansions = %+v", exps)
	}
	if !strings.Contains(gen.prompts[0], `"transformers"`) {
		t.Errorf("prompt missing keyword: %s", gen.prompts[0])
	}
}

func TestFindRelations(t *testing.T) {
	gen := &fakeGenerator{response: `{"connections": [
		{"from": "A", "to": "B", "type": "synonym", "description": "same"},
		{"from": "A", "to": "C", "type": "ASSOCIATIVE"},
		{"from": "B", "to": "A", "type": "RIVALS"}
	]}`}

	edges, err := NewService(gen, nil).FindRelations(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("FindRelations() error = %v", err)
	}
	want := []graph.Edge{{From: "A", To: "B", Type: graph.Synonym, Description: "same"}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %+v, want %+v", edges, want)
	}
}

func TestFindRelations_FewKeywords(t *testing.T) {
	gen := &fakeGenerator{}

	edges, err := NewService(gen, nil).FindRelations(context.Background(), []string{"A"})
	if err != nil || len(edges) != 0 {
		t.Errorf("FindRelations() = %v, %v", edges, err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestSchemas(t *testing.T) {
	s := relationsSchema()
	typ := s.Properties["connections"].Items.Properties["type"]
	if len(typ.Enum) != len(graph.ValidRelationTypes) {
		t.Errorf("relation enum = %v", typ.Enum)
	}
	exp := expandSchema().Properties["expansions"].Items.Properties["label"]
	for _, l := range exp.Enum {
		if l == string(tree.LabelBridge) {
			t.Error("expansion schema offers the bridge label")
		}
	}
	if len(treesSchema().Required) != 1 {
		t.Error("trees schema must require trees")
	}
}
