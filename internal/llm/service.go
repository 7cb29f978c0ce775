// Package llm generates keyword trees, expansions and relationship graphs
// with a generative model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/service"
	"github.com/matsen/rexplorer/internal/tree"
	"google.golang.org/genai"
)

// Generator returns the raw JSON text a model produced for prompt. schema
// describes the expected shape; backends without native structured output
// may pass it to the model as text.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Service implements service.Keywords on top of a Generator.
type Service struct {
	gen Generator
	log *logger.Logger
}

var _ service.Keywords = (*Service)(nil)

// NewService creates a keyword service. A nil logger discards logs.
func NewService(gen Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gen: gen, log: log}
}

func (s *Service) generate(ctx context.Context, op, prompt string, schema *genai.Schema, v any) error {
	text, err := s.gen.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		s.log.Error("model call failed", "op", op, "kind", "service", "error", err)
		return service.Wrap(op, err)
	}
	if err := decodeJSON(text, v); err != nil {
		s.log.Error("model response malformed", "op", op, "kind", "parse", "error", err)
		return service.Parse(op, err)
	}
	return nil
}

// GenerateTrees builds one tree per seed. Seeds are trimmed and blanks
// dropped; with nothing left it fails with service.ErrNoSeeds before any
// model call.
func (s *Service) GenerateTrees(ctx context.Context, seeds []string) ([]tree.RootSpec, error) {
	seeds = service.CleanSeeds(seeds)
	if len(seeds) == 0 {
		return nil, service.ErrNoSeeds
	}

	var resp treesResponse
	if err := s.generate(ctx, service.OpGenerateTrees, buildTreesPrompt(seeds), treesSchema(), &resp); err != nil {
		return nil, err
	}
	if resp.Trees == nil {
		return nil, service.Parse(service.OpGenerateTrees, fmt.Errorf("%w: trees", errMissingField))
	}

	roots := make([]tree.RootSpec, 0, len(*resp.Trees))
	for _, t := range *resp.Trees {
		keyword := strings.TrimSpace(t.Keyword)
		if keyword == "" {
			continue
		}
		roots = append(roots, tree.RootSpec{Keyword: keyword, Children: toExpansions(t.Children)})
	}
	return roots, nil
}

// ExpandKeyword returns sub-keywords for keyword.
func (s *Service) ExpandKeyword(ctx context.Context, keyword string) ([]tree.Expansion, error) {
	var resp expandResponse
	if err := s.generate(ctx, service.OpExpandNode, buildExpandPrompt(keyword), expandSchema(), &resp); err != nil {
		return nil, err
	}
	if resp.Expansions == nil {
		return nil, service.Parse(service.OpExpandNode, fmt.Errorf("%w: expansions", errMissingField))
	}
	return toExpansions(*resp.Expansions), nil
}

// FindRelations returns relationships among keywords. Fewer than two
// keywords yields no edges and no model call.
func (s *Service) FindRelations(ctx context.Context, keywords []string) ([]graph.Edge, error) {
	if len(keywords) < 2 {
		return []graph.Edge{}, nil
	}

	var resp relationsResponse
	if err := s.generate(ctx, service.OpBuildGraph, buildRelationsPrompt(keywords), relationsSchema(), &resp); err != nil {
		return nil, err
	}
	if resp.Connections == nil {
		return nil, service.Parse(service.OpBuildGraph, fmt.Errorf("%w: connections", errMissingField))
	}

	edges := make([]graph.Edge, 0, len(*resp.Connections))
	for _, c := range *resp.Connections {
		edges = append(edges, graph.Edge{
			From:        strings.TrimSpace(c.From),
			To:          strings.TrimSpace(c.To),
			Type:        graph.RelationType(strings.ToUpper(strings.TrimSpace(c.Type))),
			Description: c.Description,
		})
	}

	valid, dropped := graph.FilterEdges(edges, keywords)
	if len(dropped) > 0 {
		s.log.Warn("dropped relationships outside the keyword set", "op", service.OpBuildGraph, "dropped", len(dropped))
	}
	return valid, nil
}

func toExpansions(payload []expansionPayload) []tree.Expansion {
	out := make([]tree.Expansion, 0, len(payload))
	for _, p := range payload {
		keyword := strings.TrimSpace(p.Keyword)
		if keyword == "" {
			continue
		}
		out = append(out, tree.Expansion{
			Keyword: keyword,
			Label:   tree.ParseLabel(strings.ToLower(strings.TrimSpace(p.Label))),
		})
	}
	return out
}
