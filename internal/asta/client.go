package asta

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/service"
)

const (
	// BaseURL is the ASTA MCP endpoint.
	BaseURL = "https://asta-tools.allen.ai/mcp/v1"

	// StreamTimeout bounds a whole event stream. The server pings every
	// 15s and can be slow to send the first result.
	StreamTimeout = 3 * time.Minute

	// RequestsPerSecond is the documented ASTA rate limit.
	RequestsPerSecond = 10

	// DefaultLimit is the number of papers requested per keyword.
	DefaultLimit = 10

	searchTool   = "search_papers_by_relevance"
	searchFields = "title,abstract,authors,year,url,citationCount"
	maxEventSize = 1024 * 1024
)

// Client finds literature through ASTA relevance search.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	limit      int
	log        *logger.Logger
	nextID     atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the key sent in the x-api-key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithLimit sets the number of papers requested per keyword.
func WithLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithLogger sets the logger for failed requests.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates an ASTA client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: StreamTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RequestsPerSecond), 1),
		baseURL:    BaseURL,
		limit:      DefaultLimit,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindLiterature returns the papers most relevant to keyword.
func (c *Client) FindLiterature(ctx context.Context, keyword string) ([]paper.Paper, error) {
	const op = service.OpFindLiterature

	if c.apiKey == "" {
		return nil, service.Wrap(op, fmt.Errorf("%w: ASTA_API_KEY is not set", service.ErrNotConfigured))
	}

	found, err := c.Search(ctx, keyword)
	if err != nil {
		return nil, classify(op, err)
	}

	papers := make([]paper.Paper, len(found))
	for i, p := range found {
		papers[i] = toPaper(p)
	}
	return papers, nil
}

// classify maps client errors into the service taxonomy.
func classify(op string, err error) error {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return service.WrapStatus(op, se.StatusCode, err)
	case errors.Is(err, ErrMalformed):
		return service.Parse(op, err)
	default:
		return service.Wrap(op, err)
	}
}

// Search runs a relevance search for keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]Paper, error) {
	chunks, err := c.call(ctx, searchTool, map[string]any{
		"keyword": keyword,
		"fields":  searchFields,
		"limit":   c.limit,
	})
	if err != nil {
		return nil, err
	}

	papers := []Paper{}
	for _, chunk := range chunks {
		ps, err := decodePapers(chunk)
		if err != nil {
			c.log.Error("asta result malformed", "kind", "parse", "keyword", keyword, "error", err)
			return nil, err
		}
		papers = append(papers, ps...)
	}
	return papers, nil
}

// decodePapers accepts the shapes the search tool streams: a
// {"result": [...]} wrapper, a bare array, or one paper per chunk.
func decodePapers(chunk string) ([]Paper, error) {
	data := []byte(chunk)

	var wrapped struct {
		Result []Paper `json:"result"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Result != nil {
		return wrapped.Result, nil
	}
	var list []Paper
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var one Paper
	if err := json.Unmarshal(data, &one); err == nil && one.Title != "" {
		return []Paper{one}, nil
	}
	return nil, fmt.Errorf("%w: unexpected search result %.80q", ErrMalformed, chunk)
}

// call runs one MCP tool and returns the text blocks it streamed.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  "tools/call",
		Params:  toolCall{Name: tool, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ASTA: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("asta request failed", "tool", tool, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	texts, err := readEvents(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: stream carried no results", ErrMalformed)
	}
	return texts, nil
}

// readEvents collects the text blocks of every data event in an SSE
// stream. Comments, event names and undecodable data lines are skipped; a
// JSON-RPC error ends the stream.
func readEvents(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var texts []string
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data:")
		if !ok {
			continue
		}
		var msg rpcMessage
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &msg); err != nil {
			continue
		}
		if msg.Error != nil {
			return nil, msg.Error
		}
		if msg.Result == nil {
			continue
		}
		for _, block := range msg.Result.Content {
			if block.Type == "text" && block.Text != "" {
				texts = append(texts, block.Text)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading event stream: %w", err)
	}
	return texts, nil
}

// toPaper maps an ASTA paper to a paper.Paper. Papers without a URL link
// to their Semantic Scholar page.
func toPaper(p Paper) paper.Paper {
	authors := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = a.Name
	}
	url := p.URL
	if url == "" && p.PaperID != "" {
		url = "https://www.semanticscholar.org/paper/" + p.PaperID
	}
	return paper.Paper{
		Title:     p.Title,
		Authors:   authors,
		Year:      p.Year,
		Abstract:  p.Abstract,
		URL:       url,
		Citations: p.CitationCount,
	}
}
