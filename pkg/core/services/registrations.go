package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/waitlist"
	"github.com/cornerstone-fellowship/members/pkg/db"
	"github.com/cornerstone-fellowship/members/pkg/notify"
)

// Registrant identifies the person submitting an RSVP
type Registrant struct {
	Name  string `validate:"required,max=200"`
	Email string `validate:"required,email,max=254"`
	Phone string `validate:"omitempty,max=40"`
}

// RSVPResult is the outcome of a submission
type RSVPResult struct {
	RSVP       *db.RSVP
	Waitlisted bool
}

// CancelResult is the outcome of a cancellation, including any waitlisted
// registrations that were confirmed into the freed seats
type CancelResult struct {
	RSVP     *db.RSVP
	Promoted []db.RSVP
}

// CapacityStatus describes whether an event can take more registrations
type CapacityStatus struct {
	Available         bool
	SpotsLeft         *int // nil means unlimited
	WaitlistAvailable bool
}

// SubmitRSVP registers a party of 1+guests for an event.
// The party is confirmed if enough seats remain, waitlisted if the event is full and has a
// waitlist, and rejected with ErrFull otherwise. The capacity check and the attendee count
// update happen under the event lock so concurrent submissions cannot overbook.
func SubmitRSVP(ctx context.Context, store db.EventStore, notifier notify.Notifier, logger *zap.Logger, eventID string, registrant Registrant, guests int) (*RSVPResult, error) {
	registrant.Name = strings.TrimSpace(registrant.Name)
	registrant.Email = strings.TrimSpace(registrant.Email)
	registrant.Phone = strings.TrimSpace(registrant.Phone)

	result, err := submitRSVP(ctx, store, notifier, logger, eventID, registrant, guests)
	rsvpSubmissions.WithLabelValues(submissionOutcome(result, err)).Inc()
	return result, err
}

func submitRSVP(ctx context.Context, store db.EventStore, notifier notify.Notifier, logger *zap.Logger, eventID string, registrant Registrant, guests int) (*RSVPResult, error) {
	if err := validateInput(registrant); err != nil {
		return nil, err
	}
	if guests < 0 {
		return nil, fmt.Errorf("%w: guests must not be negative, got %d", ErrInvalidInput, guests)
	}

	code, err := newConfirmationCode()
	if err != nil {
		return nil, err
	}

	logger.Debug("Submitting RSVP",
		zap.String("event_id", eventID),
		zap.String("email", registrant.Email),
		zap.Int("guests", guests))

	rsvp := &db.RSVP{
		ID:               uuid.New().String(),
		ConfirmationCode: code,
		EventID:          eventID,
		Name:             registrant.Name,
		Email:            registrant.Email,
		Phone:            registrant.Phone,
		Guests:           guests,
	}

	var event db.Event
	err = store.WithEventTx(ctx, eventID, func(tx db.EventTx, locked *db.Event) error {
		if locked.Status == db.EventStatusCancelled || locked.Status == db.EventStatusCompleted {
			return fmt.Errorf("%w: event %s is %s", ErrInvalidState, eventID, locked.Status)
		}

		spotsLeft := locked.SpotsLeft()
		switch {
		case spotsLeft == nil || *spotsLeft >= rsvp.PartySize():
			updated, err := tx.AdjustEventAttendeeCount(ctx, eventID, rsvp.PartySize())
			if errors.Is(err, db.ErrCapacityExceeded) {
				return fmt.Errorf("%w: %s has no room for a party of %d", ErrFull, locked.Title, rsvp.PartySize())
			}
			if err != nil {
				return fmt.Errorf("failed to update attendee count: %w", err)
			}
			rsvp.Status = db.RSVPStatusConfirmed
			locked = updated
		case locked.WaitlistEnabled:
			rsvp.Status = db.RSVPStatusWaitlisted
		default:
			return fmt.Errorf("%w: %s has %d spots left, party of %d requested", ErrFull, locked.Title, *spotsLeft, rsvp.PartySize())
		}

		if err := tx.CreateRSVP(ctx, rsvp); err != nil {
			return fmt.Errorf("failed to create rsvp: %w", err)
		}

		event = *locked
		return nil
	})
	if err != nil {
		return nil, notFound(err, "event %s", eventID)
	}

	waitlisted := rsvp.Status == db.RSVPStatusWaitlisted
	logger.Info("RSVP recorded",
		zap.String("event_id", eventID),
		zap.String("rsvp_id", rsvp.ID),
		zap.String("status", string(rsvp.Status)),
		zap.Int("party_size", rsvp.PartySize()),
		zap.Int("current_attendees", event.CurrentAttendees))

	if waitlisted {
		notifier.Notify(notify.RSVPWaitlisted(&event, rsvp))
	} else {
		notifier.Notify(notify.RSVPConfirmed(&event, rsvp))
	}

	return &RSVPResult{RSVP: rsvp, Waitlisted: waitlisted}, nil
}

func submissionOutcome(result *RSVPResult, err error) string {
	switch {
	case err != nil:
		return outcomeLabel(err)
	case result.Waitlisted:
		return "waitlisted"
	default:
		return "confirmed"
	}
}

// CancelRSVP cancels a registration by confirmation code.
// Seats freed by a confirmed registration are offered to the waitlist in submission order:
// every waitlisted party that fits in the remaining capacity is confirmed, and parties too
// large for what is left are skipped rather than blocking those behind them.
func CancelRSVP(ctx context.Context, store db.EventStore, notifier notify.Notifier, logger *zap.Logger, code string) (*CancelResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: confirmation code is required", ErrInvalidInput)
	}

	logger.Debug("Cancelling RSVP", zap.String("code", code))

	existing, err := store.GetRSVPByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "registration %s", code)
	}

	var event db.Event
	result := &CancelResult{}
	err = store.WithEventTx(ctx, existing.EventID, func(tx db.EventTx, locked *db.Event) error {
		// Re-read under the lock; a concurrent cancel may have won
		rsvp, err := tx.GetRSVPByCode(ctx, code)
		if err != nil {
			return err
		}
		if rsvp.Status == db.RSVPStatusCancelled {
			return fmt.Errorf("%w: registration %s is already cancelled", ErrNotFound, code)
		}

		wasConfirmed := rsvp.Status == db.RSVPStatusConfirmed
		cancelled, err := tx.UpdateRSVPStatus(ctx, rsvp.ID, db.RSVPStatusCancelled)
		if err != nil {
			return fmt.Errorf("failed to cancel rsvp: %w", err)
		}
		result.RSVP = cancelled

		current := locked
		if wasConfirmed {
			current, err = tx.AdjustEventAttendeeCount(ctx, locked.ID, -rsvp.PartySize())
			if err != nil {
				return fmt.Errorf("failed to release seats: %w", err)
			}
		}

		if current.Status == db.EventStatusUpcoming || current.Status == db.EventStatusOngoing {
			promoted, updated, err := promoteWaitlist(ctx, tx, current)
			if err != nil {
				return err
			}
			result.Promoted = promoted
			current = updated
		}

		event = *current
		return nil
	})
	if err != nil {
		return nil, notFound(err, "registration %s", code)
	}

	logger.Info("RSVP cancelled",
		zap.String("event_id", event.ID),
		zap.String("rsvp_id", result.RSVP.ID),
		zap.Int("promoted", len(result.Promoted)),
		zap.Int("current_attendees", event.CurrentAttendees))

	notifier.Notify(notify.RSVPCancelled(&event, result.RSVP))
	for i := range result.Promoted {
		notifier.Notify(notify.RSVPPromoted(&event, &result.Promoted[i]))
	}
	waitlistPromotions.Add(float64(len(result.Promoted)))

	return result, nil
}

// promoteWaitlist confirms every waitlisted party that fits in the event's remaining capacity
func promoteWaitlist(ctx context.Context, tx db.EventTx, event *db.Event) ([]db.RSVP, *db.Event, error) {
	waitlisted, err := tx.ListWaitlisted(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list waitlist: %w", err)
	}

	var promoted []db.RSVP
	for _, candidate := range waitlist.PlanPromotions(waitlisted, event.SpotsLeft()) {
		updated, err := tx.AdjustEventAttendeeCount(ctx, event.ID, candidate.PartySize())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reserve seats for %s: %w", candidate.ID, err)
		}
		event = updated

		confirmed, err := tx.UpdateRSVPStatus(ctx, candidate.ID, db.RSVPStatusConfirmed)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to promote rsvp %s: %w", candidate.ID, err)
		}
		promoted = append(promoted, *confirmed)
	}

	return promoted, event, nil
}

// CheckCapacity reports whether an event can accept a new registration.
// Cancelled and completed events report nothing available.
func CheckCapacity(ctx context.Context, store db.EventStore, eventID string) (*CapacityStatus, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event %s", eventID)
	}

	spotsLeft := event.SpotsLeft()
	if event.Status == db.EventStatusCancelled || event.Status == db.EventStatusCompleted {
		return &CapacityStatus{SpotsLeft: spotsLeft}, nil
	}
	if spotsLeft == nil {
		return &CapacityStatus{Available: true}, nil
	}

	return &CapacityStatus{
		Available:         *spotsLeft > 0,
		SpotsLeft:         spotsLeft,
		WaitlistAvailable: *spotsLeft <= 0 && event.WaitlistEnabled,
	}, nil
}

// GetRSVP looks up a registration by confirmation code
func GetRSVP(ctx context.Context, store db.EventStore, code string) (*db.RSVP, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rsvp, err := store.GetRSVPByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "registration %s", code)
	}
	return rsvp, nil
}

// ListRSVPs returns every registration for an event in submission order
func ListRSVPs(ctx context.Context, store db.EventStore, eventID string) ([]db.RSVP, error) {
	if _, err := store.GetEvent(ctx, eventID); err != nil {
		return nil, notFound(err, "event %s", eventID)
	}

	rsvps, err := store.ListRSVPs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, nil
}
