package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cornerstone-fellowship/members/pkg/core/waitlist"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

// tx implements db.EventTx and db.ShiftTx against a staged copy of the state
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) GetRSVPByCode(ctx context.Context, code string) (*db.RSVP, error) {
	return t.st.rsvpByCode(code)
}

func (t *tx) UpdateEventStatus(ctx context.Context, id string, status db.EventStatus) error {
	e, ok := t.st.events[id]
	if !ok {
		return db.ErrNotFound
	}
	e.Status = status
	t.st.events[id] = e
	return nil
}

func (t *tx) CreateRSVP(ctx context.Context, rsvp *db.RSVP) error {
	if _, exists := t.st.rsvps[rsvp.ID]; exists {
		return fmt.Errorf("rsvp %s: %w", rsvp.ID, db.ErrConflict)
	}
	if _, err := t.st.rsvpByCode(rsvp.ConfirmationCode); err == nil {
		return fmt.Errorf("confirmation code: %w", db.ErrConflict)
	}

	t.st.seq++
	rsvp.Seq = t.st.seq
	now := t.now()
	if rsvp.CreatedAt.IsZero() {
		rsvp.CreatedAt = now
	}
	rsvp.UpdatedAt = now
	t.st.rsvps[rsvp.ID] = *rsvp
	return nil
}

func (t *tx) UpdateRSVPStatus(ctx context.Context, id string, status db.RSVPStatus) (*db.RSVP, error) {
	r, ok := t.st.rsvps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = t.now()
	t.st.rsvps[id] = r
	return &r, nil
}

func (t *tx) AdjustEventAttendeeCount(ctx context.Context, eventID string, delta int) (*db.Event, error) {
	e, ok := t.st.events[eventID]
	if !ok {
		return nil, db.ErrNotFound
	}
	next := e.CurrentAttendees + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: event %s has %d attendees, delta %d", db.ErrNegativeAttendees, eventID, e.CurrentAttendees, delta)
	}
	if e.MaxCapacity != nil && next > *e.MaxCapacity {
		return nil, db.ErrCapacityExceeded
	}
	e.CurrentAttendees = next
	t.st.events[eventID] = e
	return &e, nil
}

func (t *tx) ListWaitlisted(ctx context.Context, eventID string) ([]db.RSVP, error) {
	var out []db.RSVP
	for _, r := range t.st.rsvps {
		if r.EventID == eventID && r.Status == db.RSVPStatusWaitlisted {
			out = append(out, r)
		}
	}
	waitlist.SortFIFO(out)
	return out, nil
}

func (t *tx) ListActiveAssignments(ctx context.Context, shiftID string) ([]db.Assignment, error) {
	var out []db.Assignment
	for _, a := range t.st.assignments {
		if a.ShiftID == shiftID && a.Status == db.AssignmentStatusScheduled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *tx) ListActiveAssignmentsForVolunteerOnDate(ctx context.Context, volunteerID, date string) ([]db.ScheduledAssignment, error) {
	var out []db.ScheduledAssignment
	for _, a := range t.st.assignments {
		if a.VolunteerID != volunteerID || a.Status != db.AssignmentStatusScheduled {
			continue
		}
		sh, ok := t.st.shifts[a.ShiftID]
		if !ok || sh.Date != date {
			continue
		}
		out = append(out, db.ScheduledAssignment{Assignment: a, Shift: sh})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shift.StartTime < out[j].Shift.StartTime })
	return out, nil
}

func (t *tx) CreateAssignment(ctx context.Context, assignment *db.Assignment) error {
	if _, exists := t.st.assignments[assignment.ID]; exists {
		return fmt.Errorf("assignment %s: %w", assignment.ID, db.ErrConflict)
	}
	for _, a := range t.st.assignments {
		if a.ShiftID == assignment.ShiftID && a.VolunteerID == assignment.VolunteerID && a.Status == db.AssignmentStatusScheduled {
			return fmt.Errorf("volunteer %s already scheduled: %w", assignment.VolunteerID, db.ErrConflict)
		}
	}
	now := t.now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	t.st.assignments[assignment.ID] = *assignment
	return nil
}

func (t *tx) UpdateAssignmentStatus(ctx context.Context, id string, status db.AssignmentStatus) error {
	a, ok := t.st.assignments[id]
	if !ok {
		return db.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = t.now()
	t.st.assignments[id] = a
	return nil
}

func (t *tx) UpdateShiftStatus(ctx context.Context, id string, status db.ShiftStatus) error {
	sh, ok := t.st.shifts[id]
	if !ok {
		return db.ErrNotFound
	}
	sh.Status = status
	t.st.shifts[id] = sh
	return nil
}

func (t *tx) RecordAttendance(ctx context.Context, id string, checkedInAt, checkedOutAt *time.Time) error {
	a, ok := t.st.assignments[id]
	if !ok {
		return db.ErrNotFound
	}
	a.CheckedInAt = checkedInAt
	a.CheckedOutAt = checkedOutAt
	a.UpdatedAt = t.now()
	t.st.assignments[id] = a
	return nil
}
