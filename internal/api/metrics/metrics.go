// Package metrics defines and registers all custom Prometheus metrics for the
// ClearCut entitlement API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clearcut"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential exchanges.
// Labels:
//   - kind: "login" or "register"
//   - outcome: "ok", "not_found", or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and register attempts, by outcome.",
	},
	[]string{"kind", "outcome"},
)

// ── Usage metrics ─────────────────────────────────────────────────────────────

// UsageEventsRecordedTotal counts usage events persisted to the log.
// Label:
//   - action: the processing action reported (e.g. "background_removal")
var UsageEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_events_recorded_total",
		Help:      "Total number of usage events successfully recorded.",
	},
	[]string{"action"},
)

// UsageEventsErrorsTotal counts usage events that failed persistence.
// Label:
//   - reason: short description of the failure (e.g. "insert_failed")
var UsageEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_events_errors_total",
		Help:      "Total number of usage events that failed to record.",
	},
	[]string{"reason"},
)

// UsageQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var UsageQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "usage_queue_depth",
		Help:      "Current number of usage events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// CheckoutSessionsTotal counts checkout sessions opened.
var CheckoutSessionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of checkout sessions created.",
	},
)

// WebhooksTotal counts provider webhook deliveries.
// Label:
//   - status: the provider-reported payment status ("completed", "failed", …)
var WebhooksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhooks_total",
		Help:      "Total number of payment webhooks processed, by provider status.",
	},
	[]string{"status"},
)
