// Package asta provides a literature finder backed by the ASTA MCP API,
// which serves Semantic Scholar's paper database.
package asta

// rpcRequest is a JSON-RPC tools/call request.
type rpcRequest struct {
	JSONRPC string   `json:"jsonrpc"`
	ID      int64    `json:"id"`
	Method  string   `json:"method"`
	Params  toolCall `json:"params"`
}

type toolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// rpcMessage is one JSON-RPC message carried by a data event.
type rpcMessage struct {
	Result *struct {
		Content []contentBlock `json:"content"`
	} `json:"result,omitempty"`
	Error *RPCError `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Paper is a Semantic Scholar paper as returned by relevance search.
type Paper struct {
	PaperID       string   `json:"paperId"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract,omitempty"`
	Authors       []Author `json:"authors,omitempty"`
	Year          int      `json:"year,omitempty"`
	URL           string   `json:"url,omitempty"`
	CitationCount *int     `json:"citationCount,omitempty"`
}

// Author is a paper author.
type Author struct {
	Name string `json:"name"`
}
