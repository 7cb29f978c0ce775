// Package budget caps the number of AI-service round-trips in a session.
package budget

import (
	"errors"
	"sync/atomic"
)

// DefaultLimit is the ceiling used when none is configured.
const DefaultLimit = 20

// ErrExhausted is returned when the operation ceiling has been reached.
var ErrExhausted = errors.New("iteration limit reached; start a new session to continue")

// Budget is a monotonically increasing counter checked against a fixed
// ceiling. It is safe for concurrent use.
type Budget struct {
	used  atomic.Int64
	limit int64
}

// New returns a budget with the given ceiling. A non-positive limit means DefaultLimit.
func New(limit int) *Budget {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Budget{limit: int64(limit)}
}

// TryConsume takes one operation if any remain. It never changes the
// counter once the ceiling is reached.
func (b *Budget) TryConsume() bool {
	for {
		used := b.used.Load()
		if used >= b.limit {
			return false
		}
		if b.used.CompareAndSwap(used, used+1) {
			return true
		}
	}
}

// Used returns the number of operations consumed.
func (b *Budget) Used() int {
	return int(b.used.Load())
}

// Limit returns the ceiling.
func (b *Budget) Limit() int {
	return int(b.limit)
}

// Remaining returns how many operations are left.
func (b *Budget) Remaining() int {
	return int(b.limit - b.used.Load())
}

// Restore sets the counter from a saved session. Values above the ceiling
// are clamped to it; the counter never moves backwards.
func (b *Budget) Restore(used int) {
	n := int64(used)
	if n > b.limit {
		n = b.limit
	}
	for {
		cur := b.used.Load()
		if n <= cur || b.used.CompareAndSwap(cur, n) {
			return
		}
	}
}
