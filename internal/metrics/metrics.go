// Package metrics exports store activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/concierge/pkg/store"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Observer implements store.Observer with Prometheus collectors.
type Observer struct {
	Operations   *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Errors       *prometheus.CounterVec
	SnapshotSize *prometheus.GaugeVec
}

// New registers the store metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_store_operations_total",
			Help: "Remote calls made by resource stores, by outcome",
		}, []string{"collection", "op", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "concierge_store_operation_duration_seconds",
			Help:    "Duration of remote calls made by resource stores",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collection", "op"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_store_errors_total",
			Help: "Failed remote calls made by resource stores, by error kind",
		}, []string{"collection", "kind"}),
		SnapshotSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "concierge_store_collection_size",
			Help: "Number of entities in the last fetched snapshot",
		}, []string{"collection"}),
	}
}

// OnSuccess records a successful remote call.
func (o *Observer) OnSuccess(collection string, op store.Op, count int, d time.Duration) {
	o.Operations.WithLabelValues(collection, string(op), ResultSuccess).Inc()
	o.Duration.WithLabelValues(collection, string(op)).Observe(d.Seconds())
	if op == store.OpFetch {
		o.SnapshotSize.WithLabelValues(collection).Set(float64(count))
	}
}

// OnError records a failed remote call.
func (o *Observer) OnError(collection string, op store.Op, kind store.Kind, d time.Duration) {
	o.Operations.WithLabelValues(collection, string(op), ResultError).Inc()
	o.Duration.WithLabelValues(collection, string(op)).Observe(d.Seconds())
	o.Errors.WithLabelValues(collection, kind.String()).Inc()
}
