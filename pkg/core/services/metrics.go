package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rsvpSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "members",
		Name:      "rsvp_submissions_total",
		Help:      "RSVP submissions by outcome",
	}, []string{"outcome"})

	waitlistPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "members",
		Name:      "waitlist_promotions_total",
		Help:      "Waitlisted registrations promoted to confirmed",
	})

	shiftSignups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "members",
		Name:      "shift_signups_total",
		Help:      "Shift signup attempts by outcome",
	}, []string{"outcome"})
)

// outcomeLabel maps a service error to a low-cardinality metric label
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFull), errors.Is(err, ErrAlreadyFull):
		return "full"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrDuplicateSignup):
		return "duplicate"
	case errors.Is(err, ErrScheduleConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
