package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/btree/internal/core/observability/log"
	"github.com/zeusync/btree/pkg/concurrent"
)

// Fleet steps a set of agents together.
type Fleet struct {
	mu     sync.RWMutex
	agents []*Agent
	limit  int
	logger log.Log
}

// NewFleet returns an empty fleet stepping at most limit agents at once
// (0 means no limit).
func NewFleet(limit int, logger log.Log) *Fleet {
	if logger == nil {
		logger = log.Nop()
	}
	return &Fleet{limit: limit, logger: logger}
}

func (f *Fleet) Add(agents ...*Agent) {
	f.mu.Lock()
	f.agents = append(f.agents, agents...)
	f.mu.Unlock()
}

// Remove drops the agent with id and reports whether it was present.
func (f *Fleet) Remove(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.agents {
		if a.ID() == id {
			f.agents = append(f.agents[:i], f.agents[i+1:]...)
			return true
		}
	}
	return false
}

// Agents returns a copy of the member list in insertion order.
func (f *Fleet) Agents() []*Agent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Agent, len(f.agents))
	copy(out, f.agents)
	return out
}

func (f *Fleet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.agents)
}

// TickAll steps every agent once. Results follow insertion order; agents
// that failed to step leave a zero Result and their errors are joined.
func (f *Fleet) TickAll(ctx context.Context) ([]Result, error) {
	agents := f.Agents()
	results, err := concurrent.Map(ctx, agents, f.limit, func(ctx context.Context, a *Agent) (Result, error) {
		res, err := a.Step(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("agent %s: %w", a.Name(), err)
		}
		return res, nil
	})
	if err != nil {
		f.logger.Warn("fleet tick incomplete", log.Int("agents", len(agents)), log.Error(err))
	}
	return results, err
}

// TickAllStrict steps every agent once but stops at the first error: agents
// not yet stepped see a cancelled context and are skipped. Results follow
// insertion order; skipped agents leave a zero Result.
func (f *Fleet) TickAllStrict(ctx context.Context) ([]Result, error) {
	agents := f.Agents()
	results := make([]Result, len(agents))
	slots := make([]int, len(agents))
	for i := range slots {
		slots[i] = i
	}
	err := concurrent.Each(ctx, slots, f.limit, func(ctx context.Context, i int) error {
		res, err := agents[i].Step(ctx)
		if err != nil {
			return fmt.Errorf("agent %s: %w", agents[i].Name(), err)
		}
		results[i] = res
		return nil
	})
	if err != nil {
		f.logger.Warn("fleet tick aborted", log.Int("agents", len(agents)), log.Error(err))
	}
	return results, err
}
