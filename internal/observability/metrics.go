// Package observability exposes the daemon's Prometheus metrics.
package observability

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Registry *prometheus.Registry

	Uploads        prometheus.Counter
	Shares         prometheus.Counter
	Revocations    prometheus.Counter
	Opens          prometheus.Counter
	UnwrapFailures prometheus.Counter
	RateLimited    prometheus.Counter
	PayloadBytes   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "uploads_total",
			Help: "Documents encrypted and recorded.",
		}),
		Shares: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "shares_total",
			Help: "Wrapped keys issued to recipients.",
		}),
		Revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "revocations_total",
			Help: "Access-list entries removed.",
		}),
		Opens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "opens_total",
			Help: "Documents decrypted locally.",
		}),
		UnwrapFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "unwrap_failures_total",
			Help: "Wrapped-key opens that did not verify.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docseal", Name: "rate_limited_total",
			Help: "Operations rejected by the per-identity limiter.",
		}),
		PayloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docseal", Name: "payload_bytes",
			Help:    "Plaintext sizes at upload.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		}),
	}
	m.Registry.MustRegister(
		m.Uploads, m.Shares, m.Revocations, m.Opens,
		m.UnwrapFailures, m.RateLimited, m.PayloadBytes,
	)
	return m
}
