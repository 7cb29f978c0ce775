package asta

import (
	"errors"
	"fmt"
)

// ErrMalformed marks a stream or tool result that could not be decoded.
var ErrMalformed = errors.New("malformed ASTA response")

// RPCError is a JSON-RPC error reported inside the event stream.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("ASTA tool error %d: %s", e.Code, e.Message)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	switch {
	case e.Unauthorized():
		return fmt.Sprintf("ASTA rejected the API key (HTTP %d)", e.StatusCode)
	case e.StatusCode == 429:
		return "ASTA rate limit exceeded (HTTP 429)"
	default:
		return fmt.Sprintf("ASTA returned HTTP %d", e.StatusCode)
	}
}

// Unauthorized reports whether the key was missing or rejected.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
