package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

// Times are selected as text so they round-trip as 15:04 strings
const shiftColumns = `s.id, s.title, s.shift_date, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
	s.location, s.role, s.spots_needed, s.status, s.created_at`

func scanShift(row rowScanner) (*db.Shift, error) {
	var s db.Shift
	var date time.Time
	var status string
	if err := row.Scan(&s.ID, &s.Title, &date, &s.StartTime, &s.EndTime,
		&s.Location, &s.Role, &s.SpotsNeeded, &status, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Date = date.Format(time.DateOnly)
	s.Status = db.ShiftStatus(status)
	return &s, nil
}

// CreateShift inserts a new shift record
func (d *DB) CreateShift(ctx context.Context, shift *db.Shift) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO shift (id, title, shift_date, start_time, end_time, location, role, spots_needed, status)
		VALUES ($1, $2, $3::text::date, $4::text::time, $5::text::time, $6, $7, $8, $9)
		RETURNING created_at
	`, shift.ID, shift.Title, shift.Date, shift.StartTime, shift.EndTime, shift.Location, shift.Role,
		shift.SpotsNeeded, string(shift.Status)).Scan(&shift.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", mapError(err))
	}
	return nil
}

// GetShift retrieves a shift by ID
func (d *DB) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	shift, err := scanShift(d.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift s WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return shift, nil
}

// ListShifts returns shifts dated between from and to inclusive
func (d *DB) ListShifts(ctx context.Context, from, to string) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shift s
		WHERE s.shift_date BETWEEN $1::text::date AND $2::text::date
		ORDER BY s.shift_date, s.start_time, s.created_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// WithShiftTx runs fn with the shift row locked. When volunteerID is set, a transaction-scoped
// advisory lock keyed on the volunteer is taken first, so two signups by the same volunteer for
// different shifts cannot both pass the schedule conflict check.
func (d *DB) WithShiftTx(ctx context.Context, shiftID, volunteerID string, fn func(tx db.ShiftTx, shift *db.Shift) error) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		if volunteerID != "" {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "volunteer:"+volunteerID); err != nil {
				return fmt.Errorf("failed to lock volunteer: %w", err)
			}
		}

		shift, err := scanShift(tx.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift s WHERE s.id = $1 FOR UPDATE`, shiftID))
		if err != nil {
			return mapError(err)
		}
		return fn(&shiftTx{q: tx}, shift)
	})
}
