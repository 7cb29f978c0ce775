package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errMissingField = errors.New("missing field")

// decodeJSON strips an optional markdown fence and decodes text into v.
func decodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = extractFromCodeBlock(text)
	}
	if text == "" {
		return errors.New("empty response")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parsing response as JSON: %w", err)
	}
	return nil
}

// extractFromCodeBlock extracts content from a markdown code block.
func extractFromCodeBlock(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	end := len(lines)
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		end = len(lines) - 1
	}

	return strings.Join(lines[1:end], "\n")
}

type expansionPayload struct {
	Keyword string `json:"keyword"`
	Label   string `json:"label"`
}

type treePayload struct {
	Keyword  string             `json:"keyword"`
	Children []expansionPayload `json:"children"`
}

type treesResponse struct {
	Trees *[]treePayload `json:"trees"`
}

type expandResponse struct {
	Expansions *[]expansionPayload `json:"expansions"`
}

type connectionPayload struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type relationsResponse struct {
	Connections *[]connectionPayload `json:"connections"`
}
