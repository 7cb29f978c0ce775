package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultClaudeModel is the model alias passed to the claude CLI.
	DefaultClaudeModel = "haiku"

	// claudeTimeout bounds a single CLI call.
	claudeTimeout = 2 * time.Minute

	// maxClaudeConcurrency limits how many CLI processes run at once.
	maxClaudeConcurrency = 4
)

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ClaudeCLI generates JSON by shelling out to the claude CLI.
type ClaudeCLI struct {
	model string
	run   runFunc
	sem   chan struct{}
}

// NewClaudeCLI creates a generator using the claude CLI. An empty model
// means DefaultClaudeModel.
func NewClaudeCLI(model string) *ClaudeCLI {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeCLI{
		model: model,
		run:   runCommand,
		sem:   make(chan struct{}, maxClaudeConcurrency),
	}
}

// GenerateJSON appends the schema to the prompt and asks for bare JSON.
func (c *ClaudeCLI) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, claudeTimeout)
	defer cancel()

	output, err := c.run(ctx, "claude", "--model", c.model, "-p", withSchema(prompt, schema))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("claude CLI timed out after %s", claudeTimeout)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("claude CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("claude CLI error: %w", err)
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func withSchema(prompt string, schema *genai.Schema) string {
	if schema == nil {
		return prompt + "\n\nReturn ONLY a JSON object, no other text."
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return prompt + "\n\nReturn ONLY a JSON object, no other text."
	}
	return fmt.Sprintf("%s\n\nReturn ONLY a JSON object matching this schema, no other text:\n%s", prompt, data)
}
