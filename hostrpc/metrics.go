package hostrpc

import (
	"time"

	"github.com/breez/lnbind/bindings/codes"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lnbind"

type metrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	inFlight  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total host requests handled, by method and status code kind.",
		}, []string{"method", "code"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of host requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "rpc",
			Name:      "requests_in_flight",
			Help:      "Host requests currently being handled.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.durations, m.inFlight)
	}
	return m
}

func (m *metrics) observe(method string, code codes.Code, elapsed time.Duration) {
	m.requests.WithLabelValues(method, code.String()).Inc()
	if elapsed > 0 {
		m.durations.WithLabelValues(method).Observe(elapsed.Seconds())
	}
}
