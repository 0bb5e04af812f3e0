package vetting

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WHOIS lookup outcomes used as metric labels.
const (
	whoisOutcomeSuccess = "success"
	whoisOutcomeFailure = "failure"
	whoisOutcomeTimeout = "timeout"
	whoisOutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus collectors of the analysis pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	analyses      *prometheus.CounterVec
	failures      prometheus.Counter
	scores        prometheus.Histogram
	whoisLookups  *prometheus.CounterVec
	whoisDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "urlvet",
			Name:      "analyses_total",
			Help:      "Completed static analyses by risk level.",
		}, []string{"level"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "urlvet",
			Name:      "analysis_failures_total",
			Help:      "Static analyses aborted by an internal error.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "urlvet",
			Name:      "risk_score",
			Help:      "Distribution of static risk scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		whoisLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "urlvet",
			Name:      "whois_lookups_total",
			Help:      "Domain age lookups by outcome.",
		}, []string{"outcome"}),
		whoisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "urlvet",
			Name:      "whois_lookup_duration_seconds",
			Help:      "Time spent on domain age lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.analyses, m.failures, m.scores, m.whoisLookups, m.whoisDuration)
	}
	return m
}

func (m *Metrics) observeAnalysis(score int) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(string(ClassifyRisk(score))).Inc()
	m.scores.Observe(float64(score))
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *Metrics) observeWhois(elapsed time.Duration, err error, skipped bool) {
	if m == nil {
		return
	}

	outcome := whoisOutcomeSuccess
	switch {
	case skipped:
		outcome = whoisOutcomeSkipped
	case errors.Is(err, context.DeadlineExceeded):
		outcome = whoisOutcomeTimeout
	case err != nil:
		outcome = whoisOutcomeFailure
	}

	m.whoisLookups.WithLabelValues(outcome).Inc()
	if !skipped {
		m.whoisDuration.Observe(elapsed.Seconds())
	}
}
