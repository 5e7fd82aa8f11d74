// Package metrics holds the server's Prometheus collectors and the ops HTTP
// endpoint that exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safe360"

// Metrics is registered on its own registry so tests can build as many as
// they like.
type Metrics struct {
	Registry *prometheus.Registry

	AuthFailures        *prometheus.CounterVec
	TokensIssued        *prometheus.CounterVec
	RateLimitRejections *prometheus.CounterVec
	QuotaRejections     *prometheus.CounterVec
	StoreSaveDuration   prometheus.Histogram
	GRPCRequests        *prometheus.CounterVec
	GRPCDuration        *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Failed authentications by reason.",
		}, []string{"reason"}),
		TokensIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens issued by kind.",
		}, []string{"kind"}),
		RateLimitRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejections_total",
			Help:      "Requests rejected by admission control, by endpoint.",
		}, []string{"endpoint"}),
		QuotaRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Mutations rejected by plan limits, by limit.",
		}, []string{"limit"}),
		StoreSaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_save_duration_seconds",
			Help:      "Time spent writing the store document.",
			Buckets:   prometheus.DefBuckets,
		}),
		GRPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		GRPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (m *Metrics) TokenIssued(kind string) {
	m.TokensIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) AuthFailed(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) RateLimited(endpoint string) {
	m.RateLimitRejections.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) QuotaRejected(limit string) {
	m.QuotaRejections.WithLabelValues(limit).Inc()
}

func (m *Metrics) StoreSaved(d time.Duration) {
	m.StoreSaveDuration.Observe(d.Seconds())
}

func (m *Metrics) RequestHandled(method, code string, d time.Duration) {
	m.GRPCRequests.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(d.Seconds())
}
