package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/btree/internal/core/blackboard"
	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

var ErrNilTree = errors.New("agent: tree is nil")

// Result describes one step of an agent.
type Result struct {
	Agent    uuid.UUID
	Name     string
	Tick     uint64
	Status   bt.Status
	Active   string
	Duration time.Duration
}

// Observer is notified after every step.
type Observer interface {
	Observe(a *Agent, r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(a *Agent, r Result)

func (f ObserverFunc) Observe(a *Agent, r Result) { f(a, r) }

// Agent pairs a tree, which may be shared with other agents, with a private
// blackboard. Steps on one agent are serialized.
type Agent struct {
	id        uuid.UUID
	name      string
	tree      *bt.Tree
	bb        blackboard.Blackboard
	logger    log.Log
	observers []Observer

	mu   sync.Mutex
	tick uint64
}

type Option func(*Agent)

func WithID(id uuid.UUID) Option { return func(a *Agent) { a.id = id } }

func WithBlackboard(bb blackboard.Blackboard) Option {
	return func(a *Agent) { a.bb = bb }
}

func WithLogger(l log.Log) Option { return func(a *Agent) { a.logger = l } }

func WithObservers(obs ...Observer) Option {
	return func(a *Agent) { a.observers = append(a.observers, obs...) }
}

// New creates an agent. Unset options default to a random ID, an empty
// blackboard and a discarding logger.
func New(name string, tree *bt.Tree, opts ...Option) (*Agent, error) {
	if tree == nil {
		return nil, ErrNilTree
	}
	a := &Agent{name: name, tree: tree}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == uuid.Nil {
		a.id = uuid.New()
	}
	if a.bb == nil {
		a.bb = blackboard.New()
	}
	if a.logger == nil {
		a.logger = log.Nop()
	}
	a.logger = a.logger.With(log.String("agent", name), log.String("agent_id", a.id.String()))
	return a, nil
}

func (a *Agent) ID() uuid.UUID                     { return a.id }
func (a *Agent) Name() string                      { return a.name }
func (a *Agent) Tree() *bt.Tree                    { return a.tree }
func (a *Agent) Blackboard() blackboard.Blackboard { return a.bb }

// Ticks returns how many steps have completed.
func (a *Agent) Ticks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick
}

// Step evaluates the tree once from the root. A cancelled context is
// reported before anything is evaluated.
func (a *Agent) Step(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	a.mu.Lock()
	a.tick++
	tick := a.tick
	start := time.Now()
	status, active := a.tree.Evaluate(bt.NewTickContext(ctx, a.bb, tick))
	res := Result{
		Agent:    a.id,
		Name:     a.name,
		Tick:     tick,
		Status:   status,
		Duration: time.Since(start),
	}
	if active != nil {
		res.Active = active.Name()
	}
	a.mu.Unlock()

	a.logger.Debug("agent stepped",
		log.Uint64("tick", res.Tick),
		log.Stringer("status", res.Status),
		log.String("active", res.Active),
		log.Duration("took", res.Duration),
	)
	for _, o := range a.observers {
		o.Observe(a, res)
	}
	return res, nil
}
