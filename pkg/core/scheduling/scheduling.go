package scheduling

import (
	"fmt"
	"time"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Clock is a time of day expressed as minutes since midnight
type Clock int

// ParseClock parses an HH:MM time of day
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Interval is a half-open [Start, End) time range within a single day
type Interval struct {
	Start Clock
	End   Clock
}

// NewInterval parses start and end times and requires start < end
func NewInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Back-to-back intervals (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// ShiftInterval returns the time-of-day interval covered by a shift
func ShiftInterval(shift *db.Shift) (Interval, error) {
	interval, err := NewInterval(shift.StartTime, shift.EndTime)
	if err != nil {
		return Interval{}, fmt.Errorf("shift %s has invalid times: %w", shift.ID, err)
	}
	return interval, nil
}

// ShiftStart combines the shift's date and start time in the given location
func ShiftStart(shift *db.Shift, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout+" "+ClockLayout, shift.Date+" "+shift.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("shift %s has invalid start: %w", shift.ID, err)
	}
	return start, nil
}

// FindConflict returns the first scheduled shift that overlaps the candidate on the same date.
// Assignments for the candidate shift itself and shifts that were cancelled are ignored.
func FindConflict(candidate *db.Shift, existing []db.ScheduledAssignment) (*db.Shift, error) {
	want, err := ShiftInterval(candidate)
	if err != nil {
		return nil, err
	}

	for i := range existing {
		other := &existing[i].Shift
		if other.ID == candidate.ID || other.Date != candidate.Date {
			continue
		}
		if other.Status == db.ShiftStatusCancelled || existing[i].Assignment.Status != db.AssignmentStatusScheduled {
			continue
		}
		got, err := ShiftInterval(other)
		if err != nil {
			return nil, err
		}
		if want.Overlaps(got) {
			return other, nil
		}
	}

	return nil, nil
}
