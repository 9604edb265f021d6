package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linsolve",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "linsolve",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linsolve",
			Name:      "solve_outcomes_total",
			Help:      "Results of solve attempts: solved, parse, singular or range.",
		}, []string{"outcome"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linsolve",
			Name:      "parse_cache_lookups_total",
			Help:      "Parsed-equation cache lookups by result.",
		}, []string{"result"}),
	}
}
