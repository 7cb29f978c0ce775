package explorer

import (
	"context"
	"errors"
	"strings"

	"github.com/matsen/rexplorer/internal/budget"
	"github.com/matsen/rexplorer/internal/service"
)

// Errors returned by explorer actions.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrAlreadyExpanded  = errors.New("node is already expanded")
	ErrNodeBusy         = errors.New("node has an action in flight")
	ErrPaperNotFound    = errors.New("paper not found")
	ErrNothingToRefresh = errors.New("no trees to refresh")

	// ErrStale reports that an action's result was discarded because its
	// target changed while the external call was in flight.
	ErrStale = errors.New("result discarded: target changed while in flight")
)

// UserMessage converts an action error into the one-line message shown to
// the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrNoSeeds):
		return "Please enter at least one root keyword to begin."
	case errors.Is(err, budget.ErrExhausted):
		return "Iteration limit reached. Please start a new session to continue."
	}

	var pe *service.ParseError
	if errors.As(err, &pe) {
		return "Failed to " + pe.Op + ": the service returned a malformed response."
	}

	var se *service.Error
	if errors.As(err, &se) {
		if errors.Is(err, context.DeadlineExceeded) {
			return "Failed to " + se.Op + ": the service did not answer in time."
		}
		return "Failed to " + se.Op + ": " + oneLine(se.Err.Error())
	}

	return oneLine(err.Error())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
