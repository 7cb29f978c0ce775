package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/rexplorer/internal/graph"
	"github.com/matsen/rexplorer/internal/tree"
	"google.golang.org/genai"
)

func quoteList(items []string) string {
	data, err := json.Marshal(items)
	if err != nil {
		return strings.Join(items, ", ")
	}
	return string(data)
}

func labelNames(labels []tree.Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	return names
}

func relationNames() []string {
	names := make([]string, len(graph.ValidRelationTypes))
	for i, t := range graph.ValidRelationTypes {
		names[i] = string(t)
	}
	return names
}

// expansionLabels are the labels offered when expanding a single node;
// "bridge" only makes sense when several roots are generated together.
var expansionLabels = []tree.Label{tree.LabelHot, tree.LabelClassic, tree.LabelNiche}

func buildTreesPrompt(seeds []string) string {
	return fmt.Sprintf(`Build a starting research tree for EACH of these academic topics: %s.
Answer in the language of each topic; a topic written in Chinese gets a Chinese tree.
The root of every tree is the topic itself, with 5-7 main sub-keywords as its children.

Prefer sub-keywords that are relevant to their own root AND connect to the OTHER topics,
so the result reads as one interconnected knowledge map.

Label each sub-keyword:
- hot: a trending or popular research area
- classic: a foundational, well-established concept
- niche: a specialized or uncommon subfield
- bridge: a sub-keyword that explicitly links to one of the other topics`, quoteList(seeds))
}

func buildExpandPrompt(keyword string) string {
	return fmt.Sprintf(`Expand the research keyword %q into 5-7 more specific sub-keywords.
Answer in the language of the keyword; a Chinese keyword gets Chinese results.
Cover a diverse range of directions. Label each sub-keyword as hot, classic, or niche.`, keyword)
}

func buildRelationsPrompt(keywords []string) string {
	return fmt.Sprintf(`These are academic keywords: %s.
Identify the direct relationships between them. Answer in the language of the keywords.
Give each connection a from, a to, a type and a short description.

Use ONLY these types:
- HIERARCHICAL: one keyword is a subfield or component of the other
- DEPENDENCY: one keyword enables or is a prerequisite for the other
- SYNONYM: different terms for the same or a very similar concept
- CONTRASTING: opposing or alternative theories or approaches
- ASSOCIATIVE: often studied together, related without hierarchy

Only connect keywords from the list, spelled exactly as given.`, quoteList(keywords))
}

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func enumSchema(values []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: values}
}

func expansionSchema(labels []tree.Label) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"keyword": stringSchema("A concise academic keyword or phrase."),
			"label":   enumSchema(labelNames(labels)),
		},
		Required: []string{"keyword"},
	}
}

func treesSchema() *genai.Schema {
	root := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"keyword": stringSchema("The topic exactly as given."),
			"children": {
				Type:        genai.TypeArray,
				Description: "5-7 child keywords.",
				Items:       expansionSchema(tree.ValidLabels),
			},
		},
		Required: []string{"keyword", "children"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"trees": {Type: genai.TypeArray, Items: root},
		},
		Required: []string{"trees"},
	}
}

func expandSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"expansions": {Type: genai.TypeArray, Items: expansionSchema(expansionLabels)},
		},
		Required: []string{"expansions"},
	}
}

func relationsSchema() *genai.Schema {
	connection := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"from":        stringSchema("One of the provided keywords."),
			"to":          stringSchema("Another one of the provided keywords."),
			"type":        enumSchema(relationNames()),
			"description": stringSchema("A brief explanation of the relationship."),
		},
		Required: []string{"from", "to", "type"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"connections": {Type: genai.TypeArray, Items: connection},
		},
		Required: []string{"connections"},
	}
}
