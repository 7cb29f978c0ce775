package metaso

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matsen/rexplorer/internal/service"
)

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFindLiterature(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"webpages": [
		{"title": "Graph Theory Basics", "snippet": "An intro.", "link": "https://example.org/a"},
		{}
	]}`, func(r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("Authorization = %q", got)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Q != "graph theory" || req.Scope != "webpage" || req.Size != "10" || !req.IncludeSummary {
			t.Errorf("request = %+v", req)
		}
	})

	c := NewClient(WithAPIKey("key-1"), WithBaseURL(srv.URL))
	papers, err := c.FindLiterature(context.Background(), "graph theory")
	if err != nil {
		t.Fatalf("FindLiterature() error = %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers[0].Title != "Graph Theory Basics" || papers[0].URL != "https://example.org/a" || papers[0].Abstract != "An intro." {
		t.Errorf("papers[0] = %+v", papers[0])
	}
	if papers[1].Title != NoTitle || papers[1].Abstract != NoAbstract || papers[1].URL != NoURL {
		t.Errorf("placeholders not applied: %+v", papers[1])
	}
	if papers[0].Year != 0 || papers[0].Citations != nil || len(papers[0].Authors) != 0 {
		t.Errorf("web results should carry no bibliographic data: %+v", papers[0])
	}
}

func TestFindLiterature_MissingKey(t *testing.T) {
	t.Setenv("METASO_API_KEY", "")
	c := NewClient()

	_, err := c.FindLiterature(context.Background(), "x")
	if !errors.Is(err, service.ErrNotConfigured) || !service.IsServiceError(err) {
		t.Errorf("error = %v, want ErrNotConfigured service error", err)
	}
}

func TestFindLiterature_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, `{"error": "bad key"}`, nil)
	c := NewClient(WithAPIKey("k"), WithBaseURL(srv.URL))

	_, err := c.FindLiterature(context.Background(), "x")
	var se *service.Error
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Errorf("error = %v, want status 401 service error", err)
	}
}

func TestFindLiterature_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `<html>oops</html>`, nil)
	c := NewClient(WithAPIKey("k"), WithBaseURL(srv.URL))

	_, err := c.FindLiterature(context.Background(), "x")
	if !service.IsParseError(err) {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestFindLiterature_NoWebpages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{"total": 0}`},
		{"not an array", `{"webpages": "none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body, nil)
			c := NewClient(WithAPIKey("k"), WithBaseURL(srv.URL))

			papers, err := c.FindLiterature(context.Background(), "x")
			if err != nil || len(papers) != 0 {
				t.Errorf("FindLiterature() = %v, %v; want empty, nil", papers, err)
			}
		})
	}
}
