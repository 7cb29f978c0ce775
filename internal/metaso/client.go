// Package metaso provides a literature finder backed by the Metaso search API.
package metaso

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/service"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Metaso search endpoint.
	BaseURL = "https://metaso.cn/api/v1/search"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is requests per second.
	RateLimit = 5.0

	// DefaultSize is the number of results requested per keyword.
	DefaultSize = 10

	// maxErrorBody caps how much of an error response is kept for logs.
	maxErrorBody = 4096
)

// Placeholders for fields web results leave out.
const (
	NoTitle    = "No Title Provided"
	NoAbstract = "No abstract available."
	NoURL      = "#"
)

// Client is a rate-limited HTTP client for the Metaso search API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	size       int
	log        *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithSize sets the number of results per search.
func WithSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Metaso client. The API key defaults to METASO_API_KEY.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		apiKey:     os.Getenv("METASO_API_KEY"),
		baseURL:    BaseURL,
		size:       DefaultSize,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Q                 string `json:"q"`
	Scope             string `json:"scope"`
	Size              string `json:"size"`
	IncludeSummary    bool   `json:"includeSummary"`
	IncludeRawContent bool   `json:"includeRawContent"`
	ConciseSnippet    bool   `json:"conciseSnippet"`
}

type webpage struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// FindLiterature searches the web scope for keyword and maps results to papers.
func (c *Client) FindLiterature(ctx context.Context, keyword string) ([]paper.Paper, error) {
	const op = service.OpFindLiterature

	if c.apiKey == "" {
		return nil, service.Wrap(op, fmt.Errorf("%w: METASO_API_KEY is not set", service.ErrNotConfigured))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, service.Wrap(op, fmt.Errorf("rate limiter: %w", err))
	}

	body, err := json.Marshal(searchRequest{
		Q:              keyword,
		Scope:          "webpage",
		Size:           fmt.Sprint(c.size),
		IncludeSummary: true,
	})
	if err != nil {
		return nil, service.Wrap(op, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, service.Wrap(op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, service.Wrap(op, fmt.Errorf("network error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error("metaso request failed", "status", resp.StatusCode, "body", string(errBody))
		return nil, service.WrapStatus(op, resp.StatusCode, errors.New("metaso request failed"))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("metaso response malformed", "kind", "parse", "error", err)
		return nil, service.Parse(op, fmt.Errorf("metaso returned invalid JSON: %w", err))
	}

	raw, ok := payload["webpages"]
	if !ok {
		c.log.Warn("metaso response has no webpages", "keyword", keyword)
		return []paper.Paper{}, nil
	}
	var pages []webpage
	if err := json.Unmarshal(raw, &pages); err != nil {
		c.log.Warn("metaso webpages is not an array", "keyword", keyword, "error", err)
		return []paper.Paper{}, nil
	}

	papers := make([]paper.Paper, len(pages))
	for i, p := range pages {
		papers[i] = toPaper(p)
	}
	return papers, nil
}

func toPaper(p webpage) paper.Paper {
	out := paper.Paper{
		Title:    p.Title,
		Authors:  []string{},
		Abstract: p.Snippet,
		URL:      p.Link,
	}
	if out.Title == "" {
		out.Title = NoTitle
	}
	if out.Abstract == "" {
		out.Abstract = NoAbstract
	}
	if out.URL == "" {
		out.URL = NoURL
	}
	return out
}
