package asta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matsen/rexplorer/internal/service"
)

// event wraps text in one SSE data event carrying a tool result.
func event(t *testing.T, text string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  map[string]any{"content": []map[string]string{{"type": "text", "text": text}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return "event: message\ndata: " + string(data) + "\n\n"
}

func TestReadEvents(t *testing.T) {
	body := ": ping\n\n" + event(t, `{"a":1}`) + "data: not json\n\n" + event(t, `{"a":2}`)

	got, err := readEvents(strings.NewReader(body))
	if err != nil {
		t.Fatalf("readEvents() error = %v", err)
	}
	if len(got) != 2 || got[0] != `{"a":1}` || got[1] != `{"a":2}` {
		t.Errorf("readEvents() = %v", got)
	}
}

func TestReadEvents_RPCError(t *testing.T) {
	body := `data: {"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"tool failed"}}` + "\n"

	_, err := readEvents(strings.NewReader(body))
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Message != "tool failed" {
		t.Errorf("error = %v", err)
	}
}

func TestDecodePapers(t *testing.T) {
	tests := []struct {
		name    string
		chunk   string
		want    []string
		wantErr bool
	}{
		{"wrapped", `{"result":[{"title":"A"},{"title":"B"}]}`, []string{"A", "B"}, false},
		{"array", `[{"title":"A"}]`, []string{"A"}, false},
		{"empty array", `[]`, nil, false},
		{"single paper", `{"paperId":"x","title":"Solo"}`, []string{"Solo"}, false},
		{"truncated", `[{"title":`, nil, true},
		{"unrelated object", `{"count":3}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePapers(tt.chunk)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("decodePapers() error = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodePapers() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decodePapers() = %+v, want titles %v", got, tt.want)
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("paper %d title = %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestFindLiterature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		if req.Method != "tools/call" || req.Params.Name != searchTool || req.Params.Arguments["keyword"] != "graph theory" {
			t.Errorf("request = %+v", req)
		}
		// Streaming results arrive one paper per event.
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, event(t, `{"paperId": "p1", "title": "Graphs", "authors": [{"name": "Erdos"}], "year": 1959, "citationCount": 42}`))
		fmt.Fprint(w, event(t, `{"paperId": "p2", "title": "More Graphs", "url": "https://example.org/p2"}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("k"), WithBaseURL(srv.URL))
	papers, err := c.FindLiterature(context.Background(), "graph theory")
	if err != nil {
		t.Fatalf("FindLiterature() error = %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	p := papers[0]
	if p.Title != "Graphs" || p.Year != 1959 || p.Authors[0] != "Erdos" || p.Citations == nil || *p.Citations != 42 {
		t.Errorf("papers[0] = %+v", p)
	}
	if p.URL != "https://www.semanticscholar.org/paper/p1" {
		t.Errorf("fallback url = %q", p.URL)
	}
	if papers[1].URL != "https://example.org/p2" || papers[1].Citations != nil {
		t.Errorf("papers[1] = %+v", papers[1])
	}
}

func TestFindLiterature_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantParse  bool
		wantStatus int
	}{
		{name: "auth", status: http.StatusUnauthorized, wantStatus: 401},
		{name: "rate limited", status: http.StatusTooManyRequests, wantStatus: 429},
		{name: "server", status: http.StatusInternalServerError, wantStatus: 500},
		{name: "garbage", status: http.StatusOK, body: "data: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{\"content\":[{\"type\":\"text\",\"text\":\"[1,\"}]}}\n", wantParse: true},
		{name: "empty stream", status: http.StatusOK, body: ": ping\n\n", wantParse: true},
		{name: "tool error", status: http.StatusOK, body: "data: {\"jsonrpc\":\"2.0\",\"id\":1,\"error\":{\"code\":1,\"message\":\"bad\"}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(WithAPIKey("k"), WithBaseURL(srv.URL)).FindLiterature(context.Background(), "x")
			if !service.IsServiceError(err) {
				t.Fatalf("error = %v, want service error", err)
			}
			if service.IsParseError(err) != tt.wantParse {
				t.Errorf("IsParseError() = %v, want %v (%v)", service.IsParseError(err), tt.wantParse, err)
			}
			var se *service.Error
			if tt.wantStatus != 0 && (!errors.As(err, &se) || se.StatusCode != tt.wantStatus) {
				t.Errorf("status of %v, want %d", err, tt.wantStatus)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		code int
		auth bool
		want string
	}{
		{401, true, "ASTA rejected the API key (HTTP 401)"},
		{403, true, "ASTA rejected the API key (HTTP 403)"},
		{429, false, "ASTA rate limit exceeded (HTTP 429)"},
		{502, false, "ASTA returned HTTP 502"},
	}
	for _, tt := range tests {
		e := &StatusError{StatusCode: tt.code}
		if e.Unauthorized() != tt.auth || e.Error() != tt.want {
			t.Errorf("StatusError{%d} = %q, unauthorized %v", tt.code, e.Error(), e.Unauthorized())
		}
	}
}

func TestFindLiterature_MissingKey(t *testing.T) {
	_, err := NewClient().FindLiterature(context.Background(), "x")
	if !errors.Is(err, service.ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
