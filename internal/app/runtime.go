package app

import (
	"errors"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/btree/internal/config"
	"github.com/zeusync/btree/internal/core/agent"
	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/btconfig"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// ProviderSet holds everything the injector needs to assemble a Runtime.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRegistry,
	btconfig.NewLoader,
	ProvidePrometheus,
	ProvideMetrics,
	ProvideFleet,
	wire.Struct(new(Runtime), "*"),
)

// Runtime bundles the engine services shared by every agent of a process.
type Runtime struct {
	Config     *config.Config
	Logger     *log.Logger
	Loader     *btconfig.Loader
	Prometheus *prometheus.Registry
	// Metrics is nil when metrics are disabled.
	Metrics *agent.Metrics
	Fleet   *agent.Fleet
}

// ProvideLogger builds the logger described by cfg. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	l, err := log.New(cfg.LogOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return l, func() { _ = l.Sync() }, nil
}

// ProvideRegistry returns a registry holding the built-in leaves.
func ProvideRegistry() *btconfig.Registry {
	reg := btconfig.NewRegistry()
	btconfig.RegisterBuiltins(reg)
	return reg
}

func ProvidePrometheus() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) (*agent.Metrics, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil
	}
	return agent.NewMetrics(cfg.Metrics.Namespace, reg)
}

func ProvideFleet(cfg *config.Config, logger log.Log) *agent.Fleet {
	return agent.NewFleet(cfg.Fleet.Concurrency, logger)
}

// Spawn creates an agent running tree, wires the runtime's logger and
// metrics into it and adds it to the fleet.
func (r *Runtime) Spawn(name string, tree *bt.Tree, opts ...agent.Option) (*agent.Agent, error) {
	base := []agent.Option{agent.WithLogger(r.Logger)}
	if r.Metrics != nil {
		base = append(base, agent.WithObservers(r.Metrics))
	}
	a, err := agent.New(name, tree, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	r.Fleet.Add(a)
	return a, nil
}

// Summary reports ticks_total per status, or nil when metrics are disabled.
func (r *Runtime) Summary() (map[string]float64, error) {
	if r.Metrics == nil {
		return nil, nil
	}
	families, err := r.Prometheus.Gather()
	if err != nil {
		return nil, err
	}
	want := prometheus.BuildFQName(r.Config.Metrics.Namespace, "", "ticks_total")
	for _, mf := range families {
		if mf.GetName() != want {
			continue
		}
		out := make(map[string]float64, len(mf.GetMetric()))
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" {
					out[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
		return out, nil
	}
	return map[string]float64{}, nil
}

var errNoTree = errors.New("no tree definition given")

// LoadTree builds the definition at path with the runtime's loader.
func (r *Runtime) LoadTree(path string) (*bt.Tree, error) {
	if path == "" {
		return nil, errNoTree
	}
	return r.Loader.LoadFile(path)
}
