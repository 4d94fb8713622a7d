package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/db"
	"github.com/cornerstone-fellowship/members/pkg/memstore"
	"github.com/cornerstone-fellowship/members/pkg/notify"
)

// recordingNotifier captures messages instead of sending them
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Notify(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]string, len(n.messages))
	for i, m := range n.messages {
		kinds[i] = m.Kind
	}
	return kinds
}

func (n *recordingNotifier) to(kind string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var to []string
	for _, m := range n.messages {
		if m.Kind == kind {
			to = append(to, m.To)
		}
	}
	return to
}

func intPtr(i int) *int { return &i }

// steppingClock returns a clock that advances one second per call, so records get distinct timestamps
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestStore() *memstore.Store {
	store := memstore.New()
	store.SetClock(steppingClock(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)))
	return store
}

func createTestEvent(t *testing.T, store db.EventStore, capacity *int, waitlist bool) *db.Event {
	t.Helper()
	event, err := CreateEvent(context.Background(), store, zap.NewNop(), NewEvent{
		Slug:            "harvest-dinner",
		Title:           "Harvest Dinner",
		StartsAt:        time.Date(2025, 10, 4, 18, 30, 0, 0, time.UTC),
		Location:        "Fellowship Hall",
		MaxCapacity:     capacity,
		WaitlistEnabled: waitlist,
	})
	require.NoError(t, err)
	return event
}

func submit(t *testing.T, store db.EventStore, notifier notify.Notifier, eventID, name string, guests int) *RSVPResult {
	t.Helper()
	result, err := SubmitRSVP(context.Background(), store, notifier, zap.NewNop(), eventID,
		Registrant{Name: name, Email: name + "@example.com"}, guests)
	require.NoError(t, err)
	return result
}

func createTestShift(t *testing.T, store db.ShiftStore, title, date, start, end string, spots int) *db.Shift {
	t.Helper()
	shift, err := CreateShift(context.Background(), store, zap.NewNop(), NewShift{
		Title:       title,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		SpotsNeeded: spots,
	})
	require.NoError(t, err)
	return shift
}

func volunteer(id string) Volunteer {
	return Volunteer{ID: id, Name: "Volunteer " + id, Email: id + "@example.com"}
}
