package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

// NewEvent holds the organizer-supplied fields for an event
type NewEvent struct {
	Slug            string     `validate:"required,max=100"`
	Title           string     `validate:"required,max=200"`
	StartsAt        time.Time  `validate:"required"`
	EndsAt          *time.Time
	Location        string     `validate:"max=200"`
	MaxCapacity     *int       `validate:"omitempty,min=1"`
	WaitlistEnabled bool
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// eventStatusRank orders the forward lifecycle; cancelled sits outside it
var eventStatusRank = map[db.EventStatus]int{
	db.EventStatusUpcoming:  0,
	db.EventStatusOngoing:   1,
	db.EventStatusCompleted: 2,
}

// CreateEvent validates and stores a new upcoming event with no attendees
func CreateEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, input NewEvent) (*db.Event, error) {
	input.Slug = strings.TrimSpace(input.Slug)
	input.Title = strings.TrimSpace(input.Title)

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, fmt.Errorf("%w: slug %q must be lowercase words joined by hyphens", ErrInvalidInput, input.Slug)
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("%w: event must end after it starts", ErrInvalidInput)
	}

	event := &db.Event{
		ID:              uuid.New().String(),
		Slug:            input.Slug,
		Title:           input.Title,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		Location:        input.Location,
		MaxCapacity:     input.MaxCapacity,
		Status:          db.EventStatusUpcoming,
		WaitlistEnabled: input.WaitlistEnabled,
	}

	logger.Debug("Creating event", zap.String("id", event.ID), zap.String("slug", event.Slug))

	if err := store.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, fmt.Errorf("%w: slug %q is already in use", ErrInvalidInput, event.Slug)
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logger.Info("Event created", zap.String("id", event.ID), zap.String("title", event.Title))
	return event, nil
}

// UpdateEventStatus moves an event along its lifecycle.
// Events only move forward (upcoming, ongoing, completed) or to cancelled, and a
// completed or cancelled event never changes again.
func UpdateEventStatus(ctx context.Context, store db.EventStore, logger *zap.Logger, eventID string, status db.EventStatus) (*db.Event, error) {
	var event db.Event
	err := store.WithEventTx(ctx, eventID, func(tx db.EventTx, locked *db.Event) error {
		if err := checkEventTransition(locked.Status, status); err != nil {
			return err
		}
		if err := tx.UpdateEventStatus(ctx, eventID, status); err != nil {
			return fmt.Errorf("failed to update event status: %w", err)
		}
		event = *locked
		event.Status = status
		return nil
	})
	if err != nil {
		return nil, notFound(err, "event %s", eventID)
	}

	logger.Info("Event status updated", zap.String("id", eventID), zap.String("status", string(status)))
	return &event, nil
}

func checkEventTransition(from, to db.EventStatus) error {
	if from == db.EventStatusCancelled || from == db.EventStatusCompleted {
		return fmt.Errorf("%w: event is %s", ErrInvalidState, from)
	}
	if to == db.EventStatusCancelled {
		return nil
	}

	toRank, ok := eventStatusRank[to]
	if !ok {
		return fmt.Errorf("%w: unknown event status %q", ErrInvalidInput, to)
	}
	if toRank <= eventStatusRank[from] {
		return fmt.Errorf("%w: cannot move event from %s to %s", ErrInvalidState, from, to)
	}
	return nil
}
