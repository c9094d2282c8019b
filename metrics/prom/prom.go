// Package prom exports kvstore metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/shardkv/kvstore"
)

// Adapter implements kvstore.Metrics on Prometheus counters and gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  prometheus.Counter
	rejects *prometheus.CounterVec
	entries prometheus.Gauge
}

// New constructs and registers a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Get hits"),
		misses: counter("misses_total", "Get misses"),
		evicts: counter("evictions_total", "LRU evictions"),
		rejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "rejects_total",
				Help:        "Puts rejected for exceeding a length bound",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.rejects, a.entries)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Reject increments the reject counter for the exceeded bound.
func (a *Adapter) Reject(r kvstore.RejectReason) {
	a.rejects.WithLabelValues(r.String()).Inc()
}

// Entries moves the resident-entries gauge by delta.
func (a *Adapter) Entries(delta int) { a.entries.Add(float64(delta)) }

var _ kvstore.Metrics = (*Adapter)(nil)
