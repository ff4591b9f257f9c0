// Package metrics exposes Prometheus counters for the booking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcomes.
const (
	OutcomeBooked      = "booked"
	OutcomeFull        = "capacity_full"
	OutcomeDuplicate   = "duplicate"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	BookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_hub_booking_attempts_total",
			Help: "Session booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_hub_booking_cancellations_total",
			Help: "Bookings cancelled, by who initiated the cancellation",
		},
		[]string{"initiator"},
	)

	SessionCascades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_hub_session_cascade_appointments_total",
			Help: "Appointments moved by a session cancel or complete cascade",
		},
		[]string{"status"},
	)

	CapacityDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "study_hub_capacity_drift_repairs_total",
			Help: "Sessions whose cached capacity fields were repaired by reconciliation",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_hub_emails_total",
			Help: "Transactional emails by result",
		},
		[]string{"result"},
	)
)
