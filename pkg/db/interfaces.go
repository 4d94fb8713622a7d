package db

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrCapacityExceeded is returned when an attendee count update would overrun event capacity
	ErrCapacityExceeded = errors.New("event capacity exceeded")
	// ErrNegativeAttendees is returned when an attendee count update would drop below zero.
	// It means the stored count no longer matches the confirmed registrations.
	ErrNegativeAttendees = errors.New("attendee count would become negative")
	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("record conflicts with an existing record")
)

// EventTx is the set of operations available while an event row is locked.
// Everything done through an EventTx commits or rolls back together.
type EventTx interface {
	GetRSVPByCode(ctx context.Context, code string) (*RSVP, error)
	UpdateEventStatus(ctx context.Context, id string, status EventStatus) error
	CreateRSVP(ctx context.Context, rsvp *RSVP) error
	UpdateRSVPStatus(ctx context.Context, id string, status RSVPStatus) (*RSVP, error)
	// AdjustEventAttendeeCount adds delta to the confirmed attendee count.
	// Returns ErrCapacityExceeded if the result would exceed a finite capacity and
	// ErrNegativeAttendees if it would drop below zero.
	AdjustEventAttendeeCount(ctx context.Context, eventID string, delta int) (*Event, error)
	// ListWaitlisted returns waitlisted RSVPs in submission order
	ListWaitlisted(ctx context.Context, eventID string) ([]RSVP, error)
}

// EventStore defines the persistence operations for events and registrations
type EventStore interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetRSVPByCode(ctx context.Context, code string) (*RSVP, error)
	ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error)
	// WithEventTx locks the event and runs fn in a single transaction.
	// Returns ErrNotFound if the event does not exist.
	WithEventTx(ctx context.Context, eventID string, fn func(tx EventTx, event *Event) error) error
}

// ShiftTx is the set of operations available while a shift row is locked
type ShiftTx interface {
	ListActiveAssignments(ctx context.Context, shiftID string) ([]Assignment, error)
	ListActiveAssignmentsForVolunteerOnDate(ctx context.Context, volunteerID, date string) ([]ScheduledAssignment, error)
	CreateAssignment(ctx context.Context, assignment *Assignment) error
	UpdateAssignmentStatus(ctx context.Context, id string, status AssignmentStatus) error
	UpdateShiftStatus(ctx context.Context, id string, status ShiftStatus) error
	RecordAttendance(ctx context.Context, id string, checkedInAt, checkedOutAt *time.Time) error
}

// ShiftStore defines the persistence operations for shifts and assignments
type ShiftStore interface {
	CreateShift(ctx context.Context, shift *Shift) error
	GetShift(ctx context.Context, id string) (*Shift, error)
	// ListShifts returns shifts dated between from and to inclusive, ordered by date and start time
	ListShifts(ctx context.Context, from, to string) ([]Shift, error)
	// WithShiftTx locks the shift (and the volunteer, when volunteerID is non-empty)
	// and runs fn in a single transaction. Returns ErrNotFound if the shift does not exist.
	WithShiftTx(ctx context.Context, shiftID, volunteerID string, fn func(tx ShiftTx, shift *Shift) error) error
}

// Database defines the interface for all database operations.
// Both the in-memory memstore.Store and postgres.DB implement this interface.
type Database interface {
	EventStore
	ShiftStore
}
