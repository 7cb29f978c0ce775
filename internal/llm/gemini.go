package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/rexplorer/internal/service"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// GeminiRateLimit caps requests per second to stay under free-tier quotas.
	GeminiRateLimit = 2.0
)

// ErrEmptyResponse indicates the model returned no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Gemini generates JSON with Google's Gemini API.
type Gemini struct {
	models  *genai.Models
	model   string
	limiter *rate.Limiter
}

// NewGemini creates a Gemini generator. An empty model means DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", service.ErrNotConfigured)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		models:  client.Models,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(GeminiRateLimit), 1),
	}, nil
}

// GenerateJSON asks the model for a JSON document constrained by schema.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
