package dispatch

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// unknownEndpointLabel is the endpoint label for calls to unregistered
// names, so callers cannot create series at will.
const unknownEndpointLabel = "<unknown>"

type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics registers the call metrics on reg. Dispatchers sharing a
// registerer share the same collectors.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	calls, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractabi",
			Name:      "calls_total",
			Help:      "Total number of dispatched calls by endpoint and status",
		},
		[]string{"endpoint", "status"},
	))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contractabi",
			Name:      "call_duration_seconds",
			Help:      "Dispatched call duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		},
		[]string{"endpoint"},
	))
	if err != nil {
		return nil, err
	}
	return &metrics{calls: calls, duration: duration}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func (m *metrics) observe(endpoint string, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(endpoint, status.String()).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
