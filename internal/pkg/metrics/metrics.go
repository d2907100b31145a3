// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payroll"

var (
	// RunTransitions counts run lifecycle operations by operation and outcome.
	RunTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_transitions_total",
		Help:      "Payroll run lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_calculation_duration_seconds",
		Help:      "Time spent calculating a payroll run.",
		Buckets:   prometheus.DefBuckets,
	})

	LineItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "line_items_calculated_total",
		Help:      "Line items produced by run calculations.",
	})

	Exclusions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_exclusions_total",
		Help:      "Employees excluded from a run calculation, by reason.",
	}, []string{"reason"})

	TaxLookupCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tax_lookup_cache_total",
		Help:      "Withholding lookup cache results.",
	}, []string{"result"})

	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox events handled by the relay, by result.",
	}, []string{"result"})

	CronRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cron_job_runs_total",
		Help:      "Scheduled job executions by job and outcome.",
	}, []string{"job", "outcome"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the per-user rate limiter.",
	})
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
