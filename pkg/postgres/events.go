package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

const eventColumns = `id, slug, title, starts_at, ends_at, location, max_capacity,
	current_attendees, status, waitlist_enabled, created_at`

func scanEvent(row rowScanner) (*db.Event, error) {
	var e db.Event
	var status string
	if err := row.Scan(&e.ID, &e.Slug, &e.Title, &e.StartsAt, &e.EndsAt, &e.Location, &e.MaxCapacity,
		&e.CurrentAttendees, &status, &e.WaitlistEnabled, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Status = db.EventStatus(status)
	return &e, nil
}

// CreateEvent inserts a new event record
func (d *DB) CreateEvent(ctx context.Context, event *db.Event) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO event (id, slug, title, starts_at, ends_at, location, max_capacity,
			current_attendees, status, waitlist_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, event.ID, event.Slug, event.Title, event.StartsAt, event.EndsAt, event.Location, event.MaxCapacity,
		event.CurrentAttendees, string(event.Status), event.WaitlistEnabled).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", mapError(err))
	}
	return nil
}

// GetEvent retrieves an event by ID
func (d *DB) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	event, err := scanEvent(d.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM event WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return event, nil
}

// GetRSVPByCode retrieves a registration by confirmation code
func (d *DB) GetRSVPByCode(ctx context.Context, code string) (*db.RSVP, error) {
	return getRSVPByCode(ctx, d.pool, code)
}

// ListRSVPs returns all registrations for an event in submission order
func (d *DB) ListRSVPs(ctx context.Context, eventID string) ([]db.RSVP, error) {
	return listRSVPs(ctx, d.pool, `WHERE event_id = $1`, eventID)
}

// WithEventTx locks the event row for the duration of fn.
// Concurrent transactions on the same event queue behind the lock.
func (d *DB) WithEventTx(ctx context.Context, eventID string, fn func(tx db.EventTx, event *db.Event) error) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		event, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM event WHERE id = $1 FOR UPDATE`, eventID))
		if err != nil {
			return mapError(err)
		}
		return fn(&eventTx{q: tx}, event)
	})
}

// eventTx implements db.EventTx within a pgx transaction
type eventTx struct {
	q querier
}

func (t *eventTx) GetRSVPByCode(ctx context.Context, code string) (*db.RSVP, error) {
	return getRSVPByCode(ctx, t.q, code)
}

func (t *eventTx) UpdateEventStatus(ctx context.Context, id string, status db.EventStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE event SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// AdjustEventAttendeeCount applies delta in a single guarded UPDATE, so the count can never pass
// a finite capacity or drop below zero even without the row lock
func (t *eventTx) AdjustEventAttendeeCount(ctx context.Context, eventID string, delta int) (*db.Event, error) {
	event, err := scanEvent(t.q.QueryRow(ctx, `
		UPDATE event
		SET current_attendees = current_attendees + $2
		WHERE id = $1
		  AND current_attendees + $2 >= 0
		  AND (max_capacity IS NULL OR current_attendees + $2 <= max_capacity)
		RETURNING `+eventColumns, eventID, delta))
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update attendee count: %w", err)
	}

	var current int
	err = t.q.QueryRow(ctx, `SELECT current_attendees FROM event WHERE id = $1`, eventID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check event: %w", err)
	}
	if current+delta < 0 {
		return nil, fmt.Errorf("%w: event %s has %d attendees, delta %d", db.ErrNegativeAttendees, eventID, current, delta)
	}
	return nil, db.ErrCapacityExceeded
}

func (t *eventTx) CreateRSVP(ctx context.Context, rsvp *db.RSVP) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO rsvp (id, confirmation_code, event_id, name, email, phone, guests, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq, created_at, updated_at
	`, rsvp.ID, rsvp.ConfirmationCode, rsvp.EventID, rsvp.Name, rsvp.Email, rsvp.Phone, rsvp.Guests,
		string(rsvp.Status)).Scan(&rsvp.Seq, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rsvp: %w", mapError(err))
	}
	return nil
}

func (t *eventTx) UpdateRSVPStatus(ctx context.Context, id string, status db.RSVPStatus) (*db.RSVP, error) {
	rsvp, err := scanRSVP(t.q.QueryRow(ctx, `
		UPDATE rsvp SET status = $2, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING `+rsvpColumns, id, string(status)))
	if err != nil {
		return nil, mapError(err)
	}
	return rsvp, nil
}

func (t *eventTx) ListWaitlisted(ctx context.Context, eventID string) ([]db.RSVP, error) {
	return listRSVPs(ctx, t.q, `WHERE event_id = $1 AND status = 'waitlisted'`, eventID)
}
