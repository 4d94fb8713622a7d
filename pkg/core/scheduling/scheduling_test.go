package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	_, err = ParseClock("9.30")
	assert.Error(t, err)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestNewInterval_RejectsEmptyOrInverted(t *testing.T) {
	_, err := NewInterval("10:00", "10:00")
	assert.Error(t, err)

	_, err = NewInterval("11:00", "10:00")
	assert.Error(t, err)

	i, err := NewInterval("09:00", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00-10:00", i.String())
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     [2]string
		overlaps bool
	}{
		{"partial overlap", [2]string{"09:00", "10:00"}, [2]string{"09:30", "10:30"}, true},
		{"back to back", [2]string{"09:00", "10:00"}, [2]string{"10:00", "11:00"}, false},
		{"back to back reversed", [2]string{"10:00", "11:00"}, [2]string{"09:00", "10:00"}, false},
		{"contained", [2]string{"08:00", "12:00"}, [2]string{"09:00", "10:00"}, true},
		{"identical", [2]string{"09:00", "10:00"}, [2]string{"09:00", "10:00"}, true},
		{"disjoint", [2]string{"07:00", "08:00"}, [2]string{"09:00", "10:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewInterval(tt.a[0], tt.a[1])
			require.NoError(t, err)
			b, err := NewInterval(tt.b[0], tt.b[1])
			require.NoError(t, err)

			assert.Equal(t, tt.overlaps, a.Overlaps(b))
			assert.Equal(t, tt.overlaps, b.Overlaps(a))
		})
	}
}

func TestShiftStart_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	shift := &db.Shift{ID: "s1", Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00"}
	start, err := ShiftStart(shift, loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC), start.UTC())
}

func TestFindConflict(t *testing.T) {
	candidate := &db.Shift{ID: "new", Title: "Greeter", Date: "2025-06-01", StartTime: "09:30", EndTime: "10:30"}

	existing := []db.ScheduledAssignment{
		{
			Assignment: db.Assignment{ID: "a1", Status: db.AssignmentStatusScheduled},
			Shift:      db.Shift{ID: "other-day", Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00"},
		},
		{
			Assignment: db.Assignment{ID: "a2", Status: db.AssignmentStatusScheduled},
			Shift:      db.Shift{ID: "cancelled", Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00", Status: db.ShiftStatusCancelled},
		},
		{
			Assignment: db.Assignment{ID: "a3", Status: db.AssignmentStatusScheduled},
			Shift:      db.Shift{ID: "coffee", Title: "Coffee", Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00", Status: db.ShiftStatusOpen},
		},
	}

	conflict, err := FindConflict(candidate, existing)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, "coffee", conflict.ID)

	conflict, err = FindConflict(candidate, existing[:2])
	require.NoError(t, err)
	assert.Nil(t, conflict)
}
