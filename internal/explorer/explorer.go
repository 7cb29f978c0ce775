package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matsen/rexplorer/internal/budget"
	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/selection"
	"github.com/matsen/rexplorer/internal/service"
)

// DefaultExpandConcurrency bounds ExpandMany and FetchLiteratureMany.
const DefaultExpandConcurrency = 4

// Config wires an Explorer to its services.
type Config struct {
	Keywords   service.Keywords
	Literature service.LiteratureFinder

	// Budget defaults to budget.New(budget.DefaultLimit).
	Budget *budget.Budget
	// Logger defaults to logger.Nop().
	Logger *logger.Logger
	// Timeout bounds each external call. Zero means no timeout.
	Timeout time.Duration
	// CollectionKey is the paper identity. Nil means collection.TitleKey.
	CollectionKey collection.KeyFunc
	// ExpandConcurrency bounds ExpandMany and FetchLiteratureMany. Zero
	// means DefaultExpandConcurrency.
	ExpandConcurrency int
}

// Explorer runs user actions against one session State. Transitions are
// applied under a mutex; external calls run outside it, so several actions
// may be pending at once. Completions apply in the order they finish.
type Explorer struct {
	keywords   service.Keywords
	literature service.LiteratureFinder
	budget     *budget.Budget
	log        *logger.Logger
	timeout    time.Duration
	key        collection.KeyFunc
	parallel   int

	mu       sync.Mutex
	state    State
	epoch    uint64 // bumped when a search or restore replaces the session
	inflight map[flightKey]flight
	nextTok  uint64
	loading  int // pending session-wide actions
}

type flightKey struct {
	kind   string // "node" or a session-wide action name
	target string
}

type flight struct {
	token  uint64
	cancel context.CancelFunc
}

// New creates an explorer with an empty session.
func New(cfg Config) *Explorer {
	e := &Explorer{
		keywords:   cfg.Keywords,
		literature: cfg.Literature,
		budget:     cfg.Budget,
		log:        cfg.Logger,
		timeout:    cfg.Timeout,
		key:        cfg.CollectionKey,
		parallel:   cfg.ExpandConcurrency,
		inflight:   make(map[flightKey]flight),
	}
	if e.budget == nil {
		e.budget = budget.New(budget.DefaultLimit)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.key == nil {
		e.key = collection.TitleKey
	}
	if e.parallel <= 0 {
		e.parallel = DefaultExpandConcurrency
	}
	e.state = State{Collection: collection.New(e.key), Selection: selection.New()}
	return e
}

// State returns the current session state. The forest is shared and must
// be treated as read-only.
func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Operations reports how much of the operation budget has been used.
func (e *Explorer) Operations() Operations {
	return Operations{Used: e.budget.Used(), Limit: e.budget.Limit(), Remaining: e.budget.Remaining()}
}

// DismissError clears the global error message.
func (e *Explorer) DismissError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = e.state.withError("")
}

func (e *Explorer) cancelAllLocked() {
	for _, f := range e.inflight {
		f.cancel()
	}
}

// register derives the context for an external call and records its cancel
// func. A previous action on the same key is superseded. Must hold e.mu.
func (e *Explorer) register(ctx context.Context, key flightKey) (context.Context, func()) {
	if prev, ok := e.inflight[key]; ok {
		prev.cancel()
	}

	var cancel context.CancelFunc
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	e.nextTok++
	tok := e.nextTok
	e.inflight[key] = flight{token: tok, cancel: cancel}

	return ctx, func() {
		cancel()
		e.mu.Lock()
		defer e.mu.Unlock()
		if f, ok := e.inflight[key]; ok && f.token == tok {
			delete(e.inflight, key)
		}
	}
}

// startLoading and stopLoading track session-wide pending actions. Must
// hold e.mu.
func (e *Explorer) startLoading(msg string) {
	e.loading++
	e.state = e.state.withLoading(msg)
}

func (e *Explorer) stopLoading() {
	if e.loading > 0 {
		e.loading--
	}
	if e.loading == 0 {
		e.state = e.state.withLoading("")
	}
}

// action is one run of the Idle, Pending, Success/Failed state machine.
type action struct {
	name string
	op   string
	log  *logger.Logger
}

type actionIDKey struct{}

// WithActionID tags the next action run with ctx so callers can correlate
// their own records with the explorer's logs.
func WithActionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actionIDKey{}, id)
}

func (e *Explorer) newAction(ctx context.Context, name, op, target string) *action {
	id, _ := ctx.Value(actionIDKey{}).(string)
	if id == "" {
		id = uuid.NewString()
	}
	return &action{
		name: name,
		op:   op,
		log:  e.log.With("action", name, "action_id", id, "target", target),
	}
}

// gate consumes one operation. On exhaustion the budget error is published
// and returned without any external call. Must hold e.mu.
func (e *Explorer) gate(a *action) error {
	if e.budget.TryConsume() {
		a.log.Debug("operation consumed", "used", e.budget.Used(), "limit", e.budget.Limit())
		return nil
	}
	a.log.Warn("operation budget exhausted", "limit", e.budget.Limit())
	e.state = e.state.withError(UserMessage(budget.ErrExhausted))
	return budget.ErrExhausted
}

// fail is the Pending to Failed transition's error half: the error is
// tagged with the action's operation, logged and published. Cancellations
// are logged only. Must hold e.mu.
func (e *Explorer) fail(a *action, err error) error {
	if service.IsCanceled(err) {
		a.log.Info("action cancelled")
		return err
	}
	err = service.Wrap(a.op, err)
	kind := "service"
	if service.IsParseError(err) {
		kind = "parse"
	}
	a.log.Error("action failed", "kind", kind, "error", err)
	e.state = e.state.withError(UserMessage(err))
	return err
}
