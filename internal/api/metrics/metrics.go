// Package metrics defines and registers all custom Prometheus metrics for the
// NutriData portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login submissions by outcome.
// Label:
//   - outcome: "success", "invalid", "rejected", "unavailable", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login submissions, by outcome.",
	},
	[]string{"outcome"},
)

// PasswordResetRequestsTotal counts forgot-password submissions by outcome.
// Label:
//   - outcome: "accepted", "invalid", "rejected", "unavailable"
var PasswordResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_requests_total",
		Help:      "Total number of password reset submissions, by outcome.",
	},
	[]string{"outcome"},
)

// LogoutsTotal counts logout requests.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout requests.",
	},
)

// ── Sessions ─────────────────────────────────────────────────────────────────

// SessionHydrationsTotal counts auth-context hydrations.
// Label:
//   - result: "authenticated", "anonymous", "error"
var SessionHydrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_hydrations_total",
		Help:      "Total number of session hydrations, by resulting state.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts role guard decisions.
// Label:
//   - decision: "allow", "loading", "unauthenticated", "wrong_role"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of role guard decisions.",
	},
	[]string{"decision"},
)

// ── Practice API ─────────────────────────────────────────────────────────────

// UpstreamRequestDuration measures calls made to the practice API.
// Labels:
//   - endpoint: "login" or "forgot_password"
//   - status: HTTP status code, or "error" on transport failure
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the practice API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "status"},
)

// ── Audit trail ──────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by result.
// Label:
//   - result: "written", "failed", "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by write result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each worker channel.",
	},
	[]string{"worker_id"},
)
