// Package metrics defines all custom Prometheus metrics for the expense
// tracker API. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry at import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense_tracker"

// ── Transaction metrics ───────────────────────────────────────────────────────

// TransactionsCreatedTotal counts persisted transactions.
// Labels:
//   - kind: "income" or "expense"
//   - category: the transaction's category
var TransactionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_created_total",
		Help:      "Total number of transactions created, by kind and category.",
	},
	[]string{"kind", "category"},
)

// BalanceRejectionsTotal counts expense mutations rejected by the
// balance-sufficiency rule.
// Label:
//   - operation: "add" or "update"
var BalanceRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_rejections_total",
		Help:      "Total number of expense mutations rejected for exceeding the available balance.",
	},
	[]string{"operation"},
)

// ── Alert metrics ─────────────────────────────────────────────────────────────

// AlertsSentTotal counts threshold alert emails delivered (flag set).
// Label:
//   - threshold: the crossed level ("75", "50", "25", "10", "5")
var AlertsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_sent_total",
		Help:      "Total number of threshold alert emails delivered.",
	},
	[]string{"threshold"},
)

// AlertSendFailuresTotal counts alert emails that failed delivery; the flag
// stays unset so the alert retries on the next evaluation.
var AlertSendFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_send_failures_total",
		Help:      "Total number of threshold alert emails that failed delivery.",
	},
	[]string{"threshold"},
)

// AlertsResetTotal counts threshold flags re-armed after the expense
// percentage dropped back below the level.
var AlertsResetTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_reset_total",
		Help:      "Total number of threshold flags reset after the percentage dropped below the level.",
	},
	[]string{"threshold"},
)

// AlertEvaluationDuration measures one full state-machine evaluation,
// aggregate reads and mail sends included.
var AlertEvaluationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "alert_evaluation_duration_seconds",
		Help:      "Duration of a single alert state machine evaluation.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── OTP metrics ───────────────────────────────────────────────────────────────

// OTPRequestsTotal counts OTP issue attempts.
// Label:
//   - result: "sent", "cooldown", or "error"
var OTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of OTP issue attempts, by result.",
	},
	[]string{"result"},
)
