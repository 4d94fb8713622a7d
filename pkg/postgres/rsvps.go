package postgres

import (
	"context"
	"fmt"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

const rsvpColumns = `id, confirmation_code, event_id, name, email, phone, guests, status, seq, created_at, updated_at`

func scanRSVP(row rowScanner) (*db.RSVP, error) {
	var r db.RSVP
	var status string
	if err := row.Scan(&r.ID, &r.ConfirmationCode, &r.EventID, &r.Name, &r.Email, &r.Phone, &r.Guests,
		&status, &r.Seq, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = db.RSVPStatus(status)
	return &r, nil
}

func getRSVPByCode(ctx context.Context, q querier, code string) (*db.RSVP, error) {
	rsvp, err := scanRSVP(q.QueryRow(ctx, `SELECT `+rsvpColumns+` FROM rsvp WHERE confirmation_code = $1`, code))
	if err != nil {
		return nil, mapError(err)
	}
	return rsvp, nil
}

// listRSVPs runs a filtered query and returns rows in submission order
func listRSVPs(ctx context.Context, q querier, where string, args ...any) ([]db.RSVP, error) {
	rows, err := q.Query(ctx, `SELECT `+rsvpColumns+` FROM rsvp `+where+` ORDER BY created_at, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []db.RSVP
	for rows.Next() {
		r, err := scanRSVP(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvps = append(rsvps, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rsvps: %w", err)
	}

	return rsvps, nil
}
