package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/btree/internal/core/blackboard"
	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// patrolTree runs "walk" until the "stop" key is set, then fails.
func patrolTree(t *testing.T) *bt.Tree {
	t.Helper()
	tree, err := bt.NewBuilder().
		Sequence("patrol").
		Not().Condition("stopped", func(tc bt.TickContext) bool { return tc.BB.Has("stop") }).Finish().
		Action("walk", bt.Fixed(true)).
		Finish().
		Build()
	require.NoError(t, err)
	return tree
}

func TestNew(t *testing.T) {
	_, err := New("nil", nil)
	require.ErrorIs(t, err, ErrNilTree)

	a, err := New("guard", patrolTree(t))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, a.ID())
	require.Equal(t, "guard", a.Name())
	require.NotNil(t, a.Blackboard())

	id := uuid.New()
	bb := blackboard.New()
	a, err = New("guard", patrolTree(t), WithID(id), WithBlackboard(bb))
	require.NoError(t, err)
	require.Equal(t, id, a.ID())
	require.Same(t, bb, a.Blackboard())
}

func TestStep(t *testing.T) {
	var seen []Result
	a, err := New("guard", patrolTree(t), WithObservers(ObserverFunc(func(_ *Agent, r Result) {
		seen = append(seen, r)
	})))
	require.NoError(t, err)

	res, err := a.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.Tick)
	require.Equal(t, bt.StatusRunning, res.Status)
	require.Equal(t, "walk", res.Active)
	require.Equal(t, a.ID(), res.Agent)

	a.Blackboard().Set("stop", true)
	res, err = a.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), res.Tick)
	require.Equal(t, bt.StatusFailed, res.Status)

	require.Len(t, seen, 2)
	require.Equal(t, uint64(2), a.Ticks())
}

func TestStepCancelled(t *testing.T) {
	evaluated := false
	tree := bt.NewBuilder().
		Action("work", func(bt.TickContext) bool { evaluated = true; return true }).
		MustBuild()
	a, err := New("idle", tree)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Step(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, evaluated)
	require.Zero(t, a.Ticks())
}

func TestStepLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a, err := New("guard", patrolTree(t), WithLogger(log.NewFromCore(core, log.LevelDebug)))
	require.NoError(t, err)

	_, err = a.Step(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessage("agent stepped").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "guard", fields["agent"])
	require.Equal(t, "walk", fields["active"])
	require.Equal(t, "Running", fields["status"])
}

func TestSharedTree(t *testing.T) {
	tree := patrolTree(t)
	a, err := New("a", tree)
	require.NoError(t, err)
	b, err := New("b", tree)
	require.NoError(t, err)

	b.Blackboard().Set("stop", true)

	ra, err := a.Step(context.Background())
	require.NoError(t, err)
	rb, err := b.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, bt.StatusRunning, ra.Status)
	require.Equal(t, bt.StatusFailed, rb.Status)
}

func TestConcurrentSteps(t *testing.T) {
	a, err := New("busy", patrolTree(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = a.Step(context.Background())
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(200), a.Ticks())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("btree", reg)
	require.NoError(t, err)

	a, err := New("guard", patrolTree(t), WithObservers(m))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = a.Step(context.Background())
		require.NoError(t, err)
	}
	a.Blackboard().Set("stop", true)
	_, err = a.Step(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var observed uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "btree_ticks_total":
			for _, metric := range mf.GetMetric() {
				counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
			}
		case "btree_tick_duration_seconds":
			for _, metric := range mf.GetMetric() {
				observed += metric.GetHistogram().GetSampleCount()
			}
		}
	}
	require.Equal(t, map[string]float64{"Running": 3, "Failed": 1}, counts)
	require.Equal(t, uint64(4), observed)

	_, err = NewMetrics("btree", reg)
	require.Error(t, err, "duplicate registration")
}
