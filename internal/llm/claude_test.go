package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestClaudeCLI_GenerateJSON(t *testing.T) {
	var gotName string
	var gotArgs []string

	c := NewClaudeCLI("")
	c.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("  {\"ok\": true}\n"), nil
	}

	schema := &genai.Schema{Type: genai.TypeObject, Required: []string{"ok"}}
	out, err := c.GenerateJSON(context.Background(), "do it", schema)
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if out != `{"ok": true}` {
		t.Errorf("output = %q", out)
	}
	if gotName != "claude" || gotArgs[0] != "--model" || gotArgs[1] != DefaultClaudeModel || gotArgs[2] != "-p" {
		t.Errorf("command = %s %v", gotName, gotArgs)
	}
	if !strings.Contains(gotArgs[3], "do it") || !strings.Contains(gotArgs[3], `"required":["ok"]`) {
		t.Errorf("prompt = %q", gotArgs[3])
	}
}

func TestClaudeCLI_Errors(t *testing.T) {
	c := NewClaudeCLI("sonnet")
	c.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not installed")
	}
	if _, err := c.GenerateJSON(context.Background(), "p", nil); err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Errorf("error = %v", err)
	}

	c.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("  "), nil
	}
	if _, err := c.GenerateJSON(context.Background(), "p", nil); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestClaudeCLI_Canceled(t *testing.T) {
	c := NewClaudeCLI("")
	c.run = func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GenerateJSON(ctx, "p", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", ""); err == nil {
		t.Error("NewGemini() without key expected error")
	}
}
