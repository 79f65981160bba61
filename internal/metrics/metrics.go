// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitme"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of Connect RPCs handled.",
		},
		[]string{"procedure", "code"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "Duration of Connect RPCs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"procedure"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		},
	)

	ledgerRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records_total",
			Help:      "Groups, expenses and settlements recorded.",
		},
		[]string{"kind"},
	)

	reconcileEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "events_total",
			Help:      "Contract events applied to the local store.",
		},
		[]string{"event", "outcome"},
	)

	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconciliation passes by result.",
		},
		[]string{"success"},
	)

	reconcileBlock = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "cursor_block",
			Help:      "Last block whose events were applied.",
		},
	)
)

// Ledger record kinds.
const (
	KindGroup      = "group"
	KindExpense    = "expense"
	KindSettlement = "settlement"
)

func init() {
	Registry.MustRegister(
		rpcRequests,
		rpcDuration,
		rateLimited,
		ledgerRecords,
		reconcileEvents,
		reconcileRuns,
		reconcileBlock,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRPC records one finished RPC. code is "ok" or a Connect code name.
func ObserveRPC(procedure, code string, d time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// RateLimited counts a rejected request.
func RateLimited() {
	rateLimited.Inc()
}

// RecordLedger counts n new ledger records of a kind.
func RecordLedger(kind string, n int) {
	ledgerRecords.WithLabelValues(kind).Add(float64(n))
}

// ReconcileEvent counts one applied contract event.
func ReconcileEvent(event, outcome string) {
	reconcileEvents.WithLabelValues(event, outcome).Inc()
}

// ReconcileRun records the result of a reconciliation pass.
func ReconcileRun(success bool, cursor uint64) {
	if success {
		reconcileRuns.WithLabelValues("true").Inc()
		reconcileBlock.Set(float64(cursor))
		return
	}
	reconcileRuns.WithLabelValues("false").Inc()
}
