// Package metrics defines and registers all custom Prometheus metrics for the
// portal client daemon. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// import time and are served by the local status API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal_client"

// PollsTotal counts notification poll ticks.
// Label:
//   - result: "applied", "stale", "failed", or "skipped" (no session)
var PollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_polls_total",
		Help:      "Total number of unread-count poll ticks, by outcome.",
	},
	[]string{"result"},
)

// AlertsTotal counts alert events emitted by the sync engine.
// Label:
//   - cue: "urgent" or "subtle"
var AlertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Total number of alert events raised, by cue.",
	},
	[]string{"cue"},
)

// SessionOpsTotal counts session lifecycle operations.
// Labels:
//   - op: "restore", "login", "logout", "refresh_status", "reset_workflow"
//   - result: "ok" or "error"
var SessionOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Total number of session lifecycle operations, by outcome.",
	},
	[]string{"op", "result"},
)

// MutationsTotal counts optimistic notification mutations.
// Labels:
//   - op: "mark_read", "mark_all_read", "delete"
//   - result: "ok", "error", or "rolled_back"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_mutations_total",
		Help:      "Total number of optimistic notification mutations, by outcome.",
	},
	[]string{"op", "result"},
)

// UnreadCount tracks the current cached unread badge value.
var UnreadCount = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unread_count",
		Help:      "Current cached unread notification count.",
	},
)
