package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

func intPtr(i int) *int { return &i }

func seedEvent(t *testing.T, s *Store, capacity *int) *db.Event {
	t.Helper()
	event := &db.Event{
		ID:          "evt-1",
		Slug:        "summer-picnic",
		Title:       "Summer Picnic",
		StartsAt:    time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC),
		MaxCapacity: capacity,
		Status:      db.EventStatusUpcoming,
	}
	require.NoError(t, s.CreateEvent(context.Background(), event))
	return event
}

func TestCreateEvent_DuplicateSlug(t *testing.T) {
	s := New()
	seedEvent(t, s, nil)

	err := s.CreateEvent(context.Background(), &db.Event{ID: "evt-2", Slug: "summer-picnic"})
	assert.ErrorIs(t, err, db.ErrConflict)
}

func TestWithEventTx_RollsBackOnError(t *testing.T) {
	s := New()
	seedEvent(t, s, intPtr(10))
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithEventTx(ctx, "evt-1", func(tx db.EventTx, event *db.Event) error {
		require.NoError(t, tx.CreateRSVP(ctx, &db.RSVP{ID: "r1", ConfirmationCode: "CODE1", EventID: "evt-1", Status: db.RSVPStatusConfirmed}))
		_, err := tx.AdjustEventAttendeeCount(ctx, "evt-1", 1)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	event, err := s.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 0, event.CurrentAttendees)

	_, err = s.GetRSVPByCode(ctx, "CODE1")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestWithEventTx_UnknownEvent(t *testing.T) {
	s := New()
	err := s.WithEventTx(context.Background(), "missing", func(tx db.EventTx, event *db.Event) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAdjustEventAttendeeCount_GuardsCapacity(t *testing.T) {
	s := New()
	seedEvent(t, s, intPtr(3))
	ctx := context.Background()

	err := s.WithEventTx(ctx, "evt-1", func(tx db.EventTx, event *db.Event) error {
		updated, err := tx.AdjustEventAttendeeCount(ctx, "evt-1", 3)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.CurrentAttendees)

		_, err = tx.AdjustEventAttendeeCount(ctx, "evt-1", 1)
		return err
	})
	assert.ErrorIs(t, err, db.ErrCapacityExceeded)
}

func TestAdjustEventAttendeeCount_RejectsNegative(t *testing.T) {
	s := New()
	seedEvent(t, s, nil)
	ctx := context.Background()

	err := s.WithEventTx(ctx, "evt-1", func(tx db.EventTx, event *db.Event) error {
		_, err := tx.AdjustEventAttendeeCount(ctx, "evt-1", 2)
		require.NoError(t, err)

		_, err = tx.AdjustEventAttendeeCount(ctx, "evt-1", -3)
		return err
	})
	assert.ErrorIs(t, err, db.ErrNegativeAttendees)

	event, err := s.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 0, event.CurrentAttendees)
}

func TestListWaitlisted_FIFO(t *testing.T) {
	s := New()
	seedEvent(t, s, intPtr(1))
	ctx := context.Background()
	fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	err := s.WithEventTx(ctx, "evt-1", func(tx db.EventTx, event *db.Event) error {
		for _, id := range []string{"first", "second", "third"} {
			if err := tx.CreateRSVP(ctx, &db.RSVP{ID: id, ConfirmationCode: id, EventID: "evt-1", Status: db.RSVPStatusWaitlisted}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.WithEventTx(ctx, "evt-1", func(tx db.EventTx, event *db.Event) error {
		list, err := tx.ListWaitlisted(ctx, "evt-1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "first", list[0].ID)
		assert.Equal(t, "second", list[1].ID)
		assert.Equal(t, "third", list[2].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestShiftTx_VolunteerAssignmentsOnDate(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateShift(ctx, &db.Shift{ID: "s1", Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00", SpotsNeeded: 2, Status: db.ShiftStatusOpen}))
	require.NoError(t, s.CreateShift(ctx, &db.Shift{ID: "s2", Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00", SpotsNeeded: 2, Status: db.ShiftStatusOpen}))

	for _, shiftID := range []string{"s1", "s2"} {
		err := s.WithShiftTx(ctx, shiftID, "vol-1", func(tx db.ShiftTx, shift *db.Shift) error {
			return tx.CreateAssignment(ctx, &db.Assignment{ID: "a-" + shiftID, ShiftID: shiftID, VolunteerID: "vol-1", Status: db.AssignmentStatusScheduled})
		})
		require.NoError(t, err)
	}

	err := s.WithShiftTx(ctx, "s1", "vol-1", func(tx db.ShiftTx, shift *db.Shift) error {
		onDate, err := tx.ListActiveAssignmentsForVolunteerOnDate(ctx, "vol-1", "2025-06-01")
		require.NoError(t, err)
		require.Len(t, onDate, 1)
		assert.Equal(t, "s1", onDate[0].Shift.ID)

		return tx.CreateAssignment(ctx, &db.Assignment{ID: "dup", ShiftID: "s1", VolunteerID: "vol-1", Status: db.AssignmentStatusScheduled})
	})
	assert.ErrorIs(t, err, db.ErrConflict)
}

func TestListShifts_Range(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, date := range []string{"2025-06-03", "2025-06-01", "2025-07-01"} {
		require.NoError(t, s.CreateShift(ctx, &db.Shift{ID: string(rune('a' + i)), Date: date, StartTime: "09:00", EndTime: "10:00"}))
	}

	shifts, err := s.ListShifts(ctx, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "2025-06-01", shifts[0].Date)
	assert.Equal(t, "2025-06-03", shifts[1].Date)
}
