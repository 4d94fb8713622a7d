package services

import (
	"errors"
	"fmt"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrFull             = errors.New("event is full")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyFull      = errors.New("shift is already full")
	ErrDuplicateSignup  = errors.New("volunteer is already signed up for this shift")
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrTooLate          = errors.New("too late to cancel")
	ErrInvalidInput     = errors.New("invalid input")
)

// ScheduleConflictError reports the already-scheduled shift that overlaps a requested signup
type ScheduleConflictError struct {
	Shift db.Shift
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: already scheduled for %s (%s-%s)",
		ErrScheduleConflict, e.Shift.Title, e.Shift.StartTime, e.Shift.EndTime)
}

func (e *ScheduleConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}

// notFound translates a store miss into the service error, leaving other errors wrapped as-is
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
