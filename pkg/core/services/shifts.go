package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/scheduling"
	"github.com/cornerstone-fellowship/members/pkg/db"
	"github.com/cornerstone-fellowship/members/pkg/notify"
)

// Volunteer identifies the person signing up. Identity is verified by the caller.
type Volunteer struct {
	ID    string `validate:"required,max=100"`
	Name  string `validate:"required,max=200"`
	Email string `validate:"required,email,max=254"`
}

// NewShift holds the organizer-supplied fields for a shift
type NewShift struct {
	Title       string `validate:"required,max=200"`
	Date        string `validate:"required,datetime=2006-01-02"`
	StartTime   string `validate:"required,datetime=15:04"`
	EndTime     string `validate:"required,datetime=15:04"`
	Location    string `validate:"max=200"`
	Role        string `validate:"max=100"`
	SpotsNeeded int    `validate:"min=1"`
}

// SignUpForShift schedules a volunteer for a shift.
// The signup is rejected if the shift is not open or has already started (at now in loc), has no
// spots left, already includes the volunteer, or overlaps another shift the volunteer is
// scheduled for on the same day.
func SignUpForShift(ctx context.Context, store db.ShiftStore, notifier notify.Notifier, logger *zap.Logger, shiftID string, volunteer Volunteer, notes string, now time.Time, loc *time.Location) (*db.Assignment, error) {
	volunteer.Name = strings.TrimSpace(volunteer.Name)
	volunteer.Email = strings.TrimSpace(volunteer.Email)

	shift, assignment, err := signUpForShift(ctx, store, logger, shiftID, volunteer, notes, now, loc)
	shiftSignups.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	notifier.Notify(notify.ShiftConfirmed(shift, assignment))
	return assignment, nil
}

func signUpForShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, shiftID string, volunteer Volunteer, notes string, now time.Time, loc *time.Location) (*db.Shift, *db.Assignment, error) {
	if err := validateInput(volunteer); err != nil {
		return nil, nil, err
	}

	logger.Debug("Signing up for shift",
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteer.ID))

	assignment := &db.Assignment{
		ID:             uuid.New().String(),
		ShiftID:        shiftID,
		VolunteerID:    volunteer.ID,
		VolunteerName:  volunteer.Name,
		VolunteerEmail: volunteer.Email,
		Status:         db.AssignmentStatusScheduled,
		Notes:          strings.TrimSpace(notes),
	}

	var shift db.Shift
	err := store.WithShiftTx(ctx, shiftID, volunteer.ID, func(tx db.ShiftTx, locked *db.Shift) error {
		if locked.Status != db.ShiftStatusOpen {
			return fmt.Errorf("%w: shift %s is %s", ErrInvalidState, shiftID, locked.Status)
		}

		// A started shift could never be withdrawn from again
		start, err := scheduling.ShiftStart(locked, loc)
		if err != nil {
			return err
		}
		if !now.Before(start) {
			return fmt.Errorf("%w: shift %s started at %s", ErrInvalidState, shiftID, start.Format(time.RFC3339))
		}

		active, err := tx.ListActiveAssignments(ctx, shiftID)
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		if len(active) >= locked.SpotsNeeded {
			return fmt.Errorf("%w: %s needs %d volunteers", ErrAlreadyFull, locked.Title, locked.SpotsNeeded)
		}
		for _, a := range active {
			if a.VolunteerID == volunteer.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateSignup, locked.Title)
			}
		}

		sameDay, err := tx.ListActiveAssignmentsForVolunteerOnDate(ctx, volunteer.ID, locked.Date)
		if err != nil {
			return fmt.Errorf("failed to list volunteer schedule: %w", err)
		}
		conflict, err := scheduling.FindConflict(locked, sameDay)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ScheduleConflictError{Shift: *conflict}
		}

		if err := tx.CreateAssignment(ctx, assignment); err != nil {
			if errors.Is(err, db.ErrConflict) {
				return fmt.Errorf("%w: %s", ErrDuplicateSignup, locked.Title)
			}
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		if len(active)+1 >= locked.SpotsNeeded {
			if err := tx.UpdateShiftStatus(ctx, shiftID, db.ShiftStatusFilled); err != nil {
				return fmt.Errorf("failed to mark shift filled: %w", err)
			}
			locked.Status = db.ShiftStatusFilled
		}

		shift = *locked
		return nil
	})
	if err != nil {
		return nil, nil, notFound(err, "shift %s", shiftID)
	}

	logger.Info("Volunteer signed up for shift",
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteer.ID),
		zap.String("shift_status", string(shift.Status)))

	return &shift, assignment, nil
}

// CancelShiftSignup withdraws a volunteer from a shift that has not started yet.
// A filled shift reopens; there is no waitlist for shifts.
func CancelShiftSignup(ctx context.Context, store db.ShiftStore, logger *zap.Logger, shiftID, volunteerID string, now time.Time, loc *time.Location) (*db.Assignment, error) {
	logger.Debug("Cancelling shift signup",
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteerID))

	var cancelled db.Assignment
	err := store.WithShiftTx(ctx, shiftID, volunteerID, func(tx db.ShiftTx, locked *db.Shift) error {
		assignment, err := findActiveAssignment(ctx, tx, shiftID, volunteerID)
		if err != nil {
			return err
		}

		start, err := scheduling.ShiftStart(locked, loc)
		if err != nil {
			return err
		}
		if !now.Before(start) {
			return fmt.Errorf("%w: %s started at %s", ErrTooLate, locked.Title, start.Format(time.RFC3339))
		}

		if err := tx.UpdateAssignmentStatus(ctx, assignment.ID, db.AssignmentStatusCancelled); err != nil {
			return fmt.Errorf("failed to cancel assignment: %w", err)
		}
		if locked.Status == db.ShiftStatusFilled {
			if err := tx.UpdateShiftStatus(ctx, shiftID, db.ShiftStatusOpen); err != nil {
				return fmt.Errorf("failed to reopen shift: %w", err)
			}
		}

		cancelled = *assignment
		cancelled.Status = db.AssignmentStatusCancelled
		return nil
	})
	if err != nil {
		return nil, notFound(err, "shift %s", shiftID)
	}

	logger.Info("Shift signup cancelled",
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteerID))

	return &cancelled, nil
}

func findActiveAssignment(ctx context.Context, tx db.ShiftTx, shiftID, volunteerID string) (*db.Assignment, error) {
	active, err := tx.ListActiveAssignments(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	for i := range active {
		if active[i].VolunteerID == volunteerID {
			return &active[i], nil
		}
	}
	return nil, fmt.Errorf("%w: volunteer %s is not scheduled for shift %s", ErrNotFound, volunteerID, shiftID)
}

// CreateShift validates and stores a new open shift
func CreateShift(ctx context.Context, store db.ShiftStore, logger *zap.Logger, input NewShift) (*db.Shift, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := scheduling.NewInterval(input.StartTime, input.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	shift := &db.Shift{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		Role:        input.Role,
		SpotsNeeded: input.SpotsNeeded,
		Status:      db.ShiftStatusOpen,
	}

	if err := store.CreateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	logger.Info("Shift created",
		zap.String("id", shift.ID),
		zap.String("title", shift.Title),
		zap.String("date", shift.Date))
	return shift, nil
}

// ListShifts returns shifts dated between from and to inclusive
func ListShifts(ctx context.Context, store db.ShiftStore, from, to string) ([]db.Shift, error) {
	for _, d := range []string{from, to} {
		if _, err := time.Parse(scheduling.DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, d)
		}
	}
	if to < from {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrInvalidInput)
	}

	shifts, err := store.ListShifts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// ShiftRoster returns the volunteers currently scheduled for a shift in signup order
func ShiftRoster(ctx context.Context, store db.ShiftStore, shiftID string) ([]db.Assignment, error) {
	var roster []db.Assignment
	err := store.WithShiftTx(ctx, shiftID, "", func(tx db.ShiftTx, _ *db.Shift) error {
		active, err := tx.ListActiveAssignments(ctx, shiftID)
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		roster = active
		return nil
	})
	if err != nil {
		return nil, notFound(err, "shift %s", shiftID)
	}
	return roster, nil
}

// CancelShift is the organizer cancelling a whole shift. Every scheduled volunteer is
// released and told the shift is off.
func CancelShift(ctx context.Context, store db.ShiftStore, notifier notify.Notifier, logger *zap.Logger, shiftID string) (*db.Shift, error) {
	var shift db.Shift
	var released []db.Assignment
	err := store.WithShiftTx(ctx, shiftID, "", func(tx db.ShiftTx, locked *db.Shift) error {
		if locked.Status == db.ShiftStatusCancelled {
			return fmt.Errorf("%w: shift %s is already cancelled", ErrInvalidState, shiftID)
		}

		active, err := tx.ListActiveAssignments(ctx, shiftID)
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		for _, a := range active {
			if err := tx.UpdateAssignmentStatus(ctx, a.ID, db.AssignmentStatusCancelled); err != nil {
				return fmt.Errorf("failed to cancel assignment %s: %w", a.ID, err)
			}
			a.Status = db.AssignmentStatusCancelled
			released = append(released, a)
		}

		if err := tx.UpdateShiftStatus(ctx, shiftID, db.ShiftStatusCancelled); err != nil {
			return fmt.Errorf("failed to cancel shift: %w", err)
		}
		shift = *locked
		shift.Status = db.ShiftStatusCancelled
		return nil
	})
	if err != nil {
		return nil, notFound(err, "shift %s", shiftID)
	}

	logger.Info("Shift cancelled",
		zap.String("shift_id", shiftID),
		zap.Int("released_volunteers", len(released)))

	for i := range released {
		notifier.Notify(notify.ShiftCancelled(&shift, &released[i]))
	}
	return &shift, nil
}

// CheckIn records a scheduled volunteer's arrival
func CheckIn(ctx context.Context, store db.ShiftStore, logger *zap.Logger, shiftID, volunteerID string, now time.Time) (*db.Assignment, error) {
	var updated db.Assignment
	err := store.WithShiftTx(ctx, shiftID, volunteerID, func(tx db.ShiftTx, locked *db.Shift) error {
		if locked.Status == db.ShiftStatusCancelled {
			return fmt.Errorf("%w: shift %s is cancelled", ErrInvalidState, shiftID)
		}
		assignment, err := findActiveAssignment(ctx, tx, shiftID, volunteerID)
		if err != nil {
			return err
		}
		if assignment.CheckedInAt != nil {
			return fmt.Errorf("%w: already checked in at %s", ErrInvalidState, assignment.CheckedInAt.Format(time.RFC3339))
		}

		if err := tx.RecordAttendance(ctx, assignment.ID, &now, nil); err != nil {
			return fmt.Errorf("failed to record check-in: %w", err)
		}
		updated = *assignment
		updated.CheckedInAt = &now
		return nil
	})
	if err != nil {
		return nil, notFound(err, "shift %s", shiftID)
	}

	logger.Info("Volunteer checked in", zap.String("shift_id", shiftID), zap.String("volunteer_id", volunteerID))
	return &updated, nil
}

// CheckOut records a checked-in volunteer's departure
func CheckOut(ctx context.Context, store db.ShiftStore, logger *zap.Logger, shiftID, volunteerID string, now time.Time) (*db.Assignment, error) {
	var updated db.Assignment
	err := store.WithShiftTx(ctx, shiftID, volunteerID, func(tx db.ShiftTx, locked *db.Shift) error {
		assignment, err := findActiveAssignment(ctx, tx, shiftID, volunteerID)
		if err != nil {
			return err
		}
		if assignment.CheckedInAt == nil {
			return fmt.Errorf("%w: volunteer %s has not checked in", ErrInvalidState, volunteerID)
		}
		if assignment.CheckedOutAt != nil {
			return fmt.Errorf("%w: already checked out at %s", ErrInvalidState, assignment.CheckedOutAt.Format(time.RFC3339))
		}
		if now.Before(*assignment.CheckedInAt) {
			return fmt.Errorf("%w: check-out precedes check-in", ErrInvalidInput)
		}

		if err := tx.RecordAttendance(ctx, assignment.ID, assignment.CheckedInAt, &now); err != nil {
			return fmt.Errorf("failed to record check-out: %w", err)
		}
		updated = *assignment
		updated.CheckedOutAt = &now
		return nil
	})
	if err != nil {
		return nil, notFound(err, "shift %s", shiftID)
	}

	logger.Info("Volunteer checked out", zap.String("shift_id", shiftID), zap.String("volunteer_id", volunteerID))
	return &updated, nil
}
