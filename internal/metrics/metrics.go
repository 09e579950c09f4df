// Package metrics exposes Prometheus instruments for the record store.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirinyoku/boxoffice/internal/domain"
)

const namespace = "boxoffice"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	records    *prometheus.GaugeVec
	treeHeight prometheus.Gauge
	cascade    prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Store operations by name and result",
			},
			[]string{"operation", "result"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Records currently held, by kind",
			},
			[]string{"kind"},
		),
		treeHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_height",
				Help:      "Height of the record tree",
			},
		),
		cascade: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cascade_tickets_removed",
				Help:      "Tickets removed together with their event",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}

	reg.MustRegister(m.operations, m.records, m.treeHeight, m.cascade)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveOp(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) SetStats(st domain.StoreStats) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(domain.KindEvent.String()).Set(float64(st.Events))
	m.records.WithLabelValues(domain.KindTicket.String()).Set(float64(st.Tickets))
	m.treeHeight.Set(float64(st.Height))
}

func (m *Metrics) ObserveCascade(removed int) {
	if m == nil {
		return
	}
	m.cascade.Observe(float64(removed))
}
