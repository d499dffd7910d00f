package agent

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records agent steps as Prometheus series.
type Metrics struct {
	ticks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Agent steps by resulting status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating a tree for one agent step.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"status"}),
	}
	for _, c := range []prometheus.Collector{m.ticks, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Observe(_ *Agent, r Result) {
	status := r.Status.String()
	m.ticks.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(r.Duration.Seconds())
}
