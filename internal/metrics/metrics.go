// Package metrics defines the Prometheus metrics exported by the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsRecorded counts ledger entries created, by status
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_payments_recorded_total",
			Help: "Total number of payment ledger entries recorded",
		},
		[]string{"status"},
	)

	// PaymentStatusUpdates counts status updates on ledger entries, by selector and new status
	PaymentStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_payment_status_updates_total",
			Help: "Total number of payment status updates",
		},
		[]string{"selector", "status"},
	)

	// RequestTransitions counts payment request state transitions, by outcome
	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_request_transitions_total",
			Help: "Total number of payment request state transitions",
		},
		[]string{"to"},
	)

	// RewardNotifications counts reward attribution calls, by result
	RewardNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_reward_notifications_total",
			Help: "Total number of reward attribution notifications",
		},
		[]string{"result"},
	)

	// ReconcilerRepairs counts records fixed by the reconciler, by kind
	ReconcilerRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_reconciler_repairs_total",
			Help: "Total number of records repaired by the reconciler",
		},
		[]string{"kind"},
	)

	// ReconcilerRuns counts reconciliation passes, by result
	ReconcilerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenpay_reconciler_runs_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"result"},
	)
)
