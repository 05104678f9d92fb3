package proxy

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Prometheus-backed Observer.
//
// Exposed series:
//
//	lazyproxy_materializations_total{interface,outcome}
//	lazyproxy_materialization_seconds{interface}
//	lazyproxy_dispatchers_generated_total
type Metrics struct {
	materializations *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	dispatchers      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		materializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyproxy",
			Name:      "materializations_total",
			Help:      "Lazy targets materialized, by interface and outcome.",
		}, []string{"interface", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lazyproxy",
			Name:      "materialization_seconds",
			Help:      "Time spent running lazy target factories.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"interface"}),
		dispatchers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lazyproxy",
			Name:      "dispatchers_generated_total",
			Help:      "Proxy dispatchers generated and published to a cache.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.materializations, m.duration, m.dispatchers} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("proxy: register metrics: %w", err)
		}
	}
	return m, nil
}

// Materialized implements Observer.
func (m *Metrics) Materialized(e Event) {
	name := e.Descriptor.String()
	outcome := "ok"
	if e.Err != nil {
		outcome = "error"
	}
	m.materializations.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(e.Duration.Seconds())
}

// DispatcherGenerated counts a published dispatcher; install it with
// Cache.OnGenerate.
func (m *Metrics) DispatcherGenerated(*Dispatcher) { m.dispatchers.Inc() }

// Instrument wires m into the cache's generation hook.
func (m *Metrics) Instrument(c *Cache) { c.OnGenerate(m.DispatcherGenerated) }
