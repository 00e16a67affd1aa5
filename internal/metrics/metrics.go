// Package metrics exposes Prometheus collectors for screening runs.
//
// Metrics:
//   - headline_screener_oracle_calls_total{stage}
//   - headline_screener_oracle_failures_total{stage}
//   - headline_screener_oracle_duration_seconds{stage}
//   - headline_screener_articles_total{site,tier}
//   - headline_screener_validation_flags_total{field}
//   - headline_screener_runs_total{site,status}
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

const namespace = "headline_screener"

// Oracle call stages.
const (
	StageRelevance  = "relevance"
	StageExtraction = "extraction"
)

// Metrics holds the screener collectors.
type Metrics struct {
	OracleCalls     *prometheus.CounterVec
	OracleFailures  *prometheus.CounterVec
	OracleDuration  *prometheus.HistogramVec
	Articles        *prometheus.CounterVec
	ValidationFlags *prometheus.CounterVec
	Runs            *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Total number of oracle completions requested",
		}, []string{"stage"}),
		OracleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_failures_total",
			Help:      "Total number of oracle completions that returned an error",
		}, []string{"stage"}),
		OracleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Latency of oracle completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
		Articles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_total",
			Help:      "Articles screened, by output tier",
		}, []string{"site", "tier"}),
		ValidationFlags: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_flags_total",
			Help:      "Stage 2 fields scored below the validation threshold",
		}, []string{"field"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed site runs by outcome",
		}, []string{"site", "status"}),
	}
}

// ObserveResults counts tiers and validation flags of a finished run.
func (m *Metrics) ObserveResults(results domain.Results) {
	if m == nil {
		return
	}
	for tier, n := range results.Counts() {
		m.Articles.WithLabelValues(results.Site, string(tier)).Add(float64(n))
	}
	for _, v := range results.Stage2 {
		for _, field := range v.Validation.Flagged {
			m.ValidationFlags.WithLabelValues(field).Inc()
		}
	}
}

// ObserveRun records the outcome of one site run.
func (m *Metrics) ObserveRun(site string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(site, status).Inc()
}

// InstrumentOracle wraps next so every call is counted under stage.
func (m *Metrics) InstrumentOracle(next ports.Oracle, stage string) ports.Oracle {
	if m == nil || next == nil {
		return next
	}
	return &instrumentedOracle{next: next, stage: stage, m: m}
}

type instrumentedOracle struct {
	next  ports.Oracle
	stage string
	m     *Metrics
}

func (o *instrumentedOracle) Complete(ctx context.Context, prompt string, format domain.ResponseFormat) (string, error) {
	start := time.Now()
	out, err := o.next.Complete(ctx, prompt, format)

	o.m.OracleCalls.WithLabelValues(o.stage).Inc()
	o.m.OracleDuration.WithLabelValues(o.stage).Observe(time.Since(start).Seconds())
	if err != nil {
		o.m.OracleFailures.WithLabelValues(o.stage).Inc()
	}
	return out, err
}
