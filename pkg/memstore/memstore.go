package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cornerstone-fellowship/members/pkg/core/waitlist"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

// Store is an in-memory implementation of db.Database.
// Transactions are serialized by a single mutex and run against a private copy of the
// state, which replaces the live state only when the transaction function returns nil.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	events      map[string]db.Event
	rsvps       map[string]db.RSVP
	shifts      map[string]db.Shift
	assignments map[string]db.Assignment
	seq         int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		state: &state{
			events:      make(map[string]db.Event),
			rsvps:       make(map[string]db.RSVP),
			shifts:      make(map[string]db.Shift),
			assignments: make(map[string]db.Assignment),
		},
		now: time.Now,
	}
}

// SetClock overrides the clock used for record timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (st *state) clone() *state {
	c := &state{
		events:      make(map[string]db.Event, len(st.events)),
		rsvps:       make(map[string]db.RSVP, len(st.rsvps)),
		shifts:      make(map[string]db.Shift, len(st.shifts)),
		assignments: make(map[string]db.Assignment, len(st.assignments)),
		seq:         st.seq,
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	for k, v := range st.rsvps {
		c.rsvps[k] = v
	}
	for k, v := range st.shifts {
		c.shifts[k] = v
	}
	for k, v := range st.assignments {
		c.assignments[k] = v
	}
	return c
}

// CreateEvent inserts a new event record
func (s *Store) CreateEvent(ctx context.Context, event *db.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.events[event.ID]; exists {
		return fmt.Errorf("event %s: %w", event.ID, db.ErrConflict)
	}
	for _, e := range s.state.events {
		if e.Slug == event.Slug {
			return fmt.Errorf("event slug %s: %w", event.Slug, db.ErrConflict)
		}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.state.events[event.ID] = *event
	return nil
}

// GetEvent retrieves an event by ID
func (s *Store) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

// GetRSVPByCode retrieves a registration by confirmation code
func (s *Store) GetRSVPByCode(ctx context.Context, code string) (*db.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.rsvpByCode(code)
}

// ListRSVPs returns all registrations for an event in submission order
func (s *Store) ListRSVPs(ctx context.Context, eventID string) ([]db.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []db.RSVP
	for _, r := range s.state.rsvps {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	waitlist.SortFIFO(out)
	return out, nil
}

// WithEventTx runs fn with exclusive access to the store
func (s *Store) WithEventTx(ctx context.Context, eventID string, fn func(tx db.EventTx, event *db.Event) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.events[eventID]
	if !ok {
		return db.ErrNotFound
	}

	staged := s.state.clone()
	if err := fn(&tx{st: staged, now: s.now}, &e); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// CreateShift inserts a new shift record
func (s *Store) CreateShift(ctx context.Context, shift *db.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.shifts[shift.ID]; exists {
		return fmt.Errorf("shift %s: %w", shift.ID, db.ErrConflict)
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = s.now()
	}
	s.state.shifts[shift.ID] = *shift
	return nil
}

// GetShift retrieves a shift by ID
func (s *Store) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.state.shifts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &sh, nil
}

// ListShifts returns shifts dated between from and to inclusive
func (s *Store) ListShifts(ctx context.Context, from, to string) ([]db.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []db.Shift
	for _, sh := range s.state.shifts {
		if sh.Date >= from && sh.Date <= to {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// WithShiftTx runs fn with exclusive access to the store
func (s *Store) WithShiftTx(ctx context.Context, shiftID, volunteerID string, fn func(tx db.ShiftTx, shift *db.Shift) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.state.shifts[shiftID]
	if !ok {
		return db.ErrNotFound
	}

	staged := s.state.clone()
	if err := fn(&tx{st: staged, now: s.now}, &sh); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (st *state) rsvpByCode(code string) (*db.RSVP, error) {
	for _, r := range st.rsvps {
		if r.ConfirmationCode == code {
			return &r, nil
		}
	}
	return nil, db.ErrNotFound
}
