package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/volreg/volreg/errors"
)

const metricsNamespace = "volreg"

// Metrics collects the engine instrumentation.
type Metrics struct {
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	minted         prometheus.Counter
	sales          prometheus.Counter
	activeListings prometheus.Gauge
}

// NewMetrics creates the engine metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Number of engine operations by result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_seconds",
			Help:      "Time spent executing mutating engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tokens_minted_total",
			Help:      "Number of tokens minted.",
		}),
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sales_total",
			Help:      "Number of executed sales.",
		}),
		activeListings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_listings",
			Help:      "Number of unsold market items.",
		}),
	}

	collectors := []prometheus.Collector{m.operations, m.duration, m.minted, m.sales, m.activeListings}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(errors.ErrState, "register metrics: %s", err)
		}
	}
	return m, nil
}

// observe counts a finished operation. The result label is "ok" or the
// description of the root error.
func (m *Metrics) observe(op string, err error) {
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := errors.Kind(err); kind != nil {
		return kind.Error()
	}
	return "internal"
}
