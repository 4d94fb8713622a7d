package db

import "time"

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// RSVPStatus is the state of a registration
type RSVPStatus string

const (
	RSVPStatusConfirmed  RSVPStatus = "confirmed"
	RSVPStatusWaitlisted RSVPStatus = "waitlisted"
	RSVPStatusCancelled  RSVPStatus = "cancelled"
)

// ShiftStatus is the state of a volunteer shift
type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "open"
	ShiftStatusFilled    ShiftStatus = "filled"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// AssignmentStatus is the state of a shift signup
type AssignmentStatus string

const (
	AssignmentStatusScheduled AssignmentStatus = "scheduled"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// Event represents an event record
type Event struct {
	ID               string
	Slug             string
	Title            string
	StartsAt         time.Time
	EndsAt           *time.Time
	Location         string
	MaxCapacity      *int // nil means unlimited
	CurrentAttendees int
	Status           EventStatus
	WaitlistEnabled  bool
	CreatedAt        time.Time
}

// SpotsLeft returns the remaining confirmed seats, or nil for unlimited events
func (e *Event) SpotsLeft() *int {
	if e.MaxCapacity == nil {
		return nil
	}
	left := *e.MaxCapacity - e.CurrentAttendees
	return &left
}

// RSVP represents a registration record
type RSVP struct {
	ID               string
	ConfirmationCode string
	EventID          string
	Name             string
	Email            string
	Phone            string
	Guests           int
	Status           RSVPStatus
	Seq              int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PartySize is the number of seats the registration occupies (registrant plus guests)
func (r *RSVP) PartySize() int {
	return 1 + r.Guests
}

// Shift represents a volunteer shift record.
// Date is formatted as 2006-01-02, StartTime and EndTime as 15:04.
type Shift struct {
	ID          string
	Title       string
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Role        string
	SpotsNeeded int
	Status      ShiftStatus
	CreatedAt   time.Time
}

// Assignment represents a volunteer's signup for a shift
type Assignment struct {
	ID             string
	ShiftID        string
	VolunteerID    string
	VolunteerName  string
	VolunteerEmail string
	Status         AssignmentStatus
	CheckedInAt    *time.Time
	CheckedOutAt   *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScheduledAssignment pairs an assignment with the shift it references
type ScheduledAssignment struct {
	Assignment Assignment
	Shift      Shift
}
