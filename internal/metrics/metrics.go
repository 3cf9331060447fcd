// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session operation metrics
var (
	// LoginTotal tracks login attempts by outcome
	// (granted, refreshed, approval_required, declined, rejected)
	LoginTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_login_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	// ApproveTotal tracks ownership transfer approvals by outcome (ok, mismatch)
	ApproveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_approve_total",
			Help: "Ownership transfer approvals by outcome",
		},
		[]string{"result"},
	)

	// DeclineTotal tracks declined transfer requests
	DeclineTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_decline_total",
			Help: "Declined ownership transfer requests",
		},
	)

	// LogoutTotal tracks logouts by outcome (ok, not_found)
	LogoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_logout_total",
			Help: "Logout attempts by outcome",
		},
		[]string{"result"},
	)

	// HeartbeatTotal tracks heartbeat validations by outcome (valid, overwritten, unknown_account)
	HeartbeatTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_heartbeat_total",
			Help: "Heartbeat validations by outcome",
		},
		[]string{"result"},
	)
)

// Sweeper metrics
var (
	// SweepReclaimedTotal tracks accounts force-logged-out due to inactivity
	SweepReclaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_reclaimed_accounts_total",
			Help: "Accounts reclaimed (forced to logged_out) by the liveness sweeper",
		},
	)

	// SweepDuration tracks sweep pass latency in seconds
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweeper_sweep_duration_seconds",
			Help:    "Duration of a full sweeper pass in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Store metrics
var (
	// StoreSavesTotal tracks account table persistence attempts by status (ok, error)
	StoreSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_saves_total",
			Help: "Account table save attempts by status",
		},
		[]string{"status"},
	)

	// StoreSaveDuration tracks account table save latency in seconds
	StoreSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_save_duration_seconds",
			Help:    "Account table save duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		},
	)
)
