package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

const assignmentColumns = `a.id, a.shift_id, a.volunteer_id, a.volunteer_name, a.volunteer_email, a.status,
	a.checked_in_at, a.checked_out_at, a.notes, a.created_at, a.updated_at`

func scanAssignment(row rowScanner, extra ...any) (*db.Assignment, error) {
	var a db.Assignment
	var status string
	dest := append([]any{&a.ID, &a.ShiftID, &a.VolunteerID, &a.VolunteerName, &a.VolunteerEmail, &status,
		&a.CheckedInAt, &a.CheckedOutAt, &a.Notes, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Status = db.AssignmentStatus(status)
	return &a, nil
}

// shiftTx implements db.ShiftTx within a pgx transaction
type shiftTx struct {
	q querier
}

func (t *shiftTx) ListActiveAssignments(ctx context.Context, shiftID string) ([]db.Assignment, error) {
	rows, err := t.q.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM shift_assignment a
		WHERE a.shift_id = $1 AND a.status = 'scheduled'
		ORDER BY a.created_at, a.id
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// ListActiveAssignmentsForVolunteerOnDate joins each live signup with its shift.
// Cancelled shifts are returned too; callers decide whether they still block.
func (t *shiftTx) ListActiveAssignmentsForVolunteerOnDate(ctx context.Context, volunteerID, date string) ([]db.ScheduledAssignment, error) {
	rows, err := t.q.Query(ctx, `
		SELECT `+assignmentColumns+`, `+shiftColumns+`
		FROM shift_assignment a
		JOIN shift s ON s.id = a.shift_id
		WHERE a.volunteer_id = $1 AND a.status = 'scheduled' AND s.shift_date = $2::text::date
		ORDER BY s.start_time
	`, volunteerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteer schedule: %w", err)
	}
	defer rows.Close()

	var scheduled []db.ScheduledAssignment
	for rows.Next() {
		var s db.Shift
		var shiftDate time.Time
		var shiftStatus string
		a, err := scanAssignment(rows, &s.ID, &s.Title, &shiftDate, &s.StartTime, &s.EndTime,
			&s.Location, &s.Role, &s.SpotsNeeded, &shiftStatus, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled assignment: %w", err)
		}
		s.Date = shiftDate.Format(time.DateOnly)
		s.Status = db.ShiftStatus(shiftStatus)
		scheduled = append(scheduled, db.ScheduledAssignment{Assignment: *a, Shift: s})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating volunteer schedule: %w", err)
	}

	return scheduled, nil
}

func (t *shiftTx) CreateAssignment(ctx context.Context, assignment *db.Assignment) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO shift_assignment (id, shift_id, volunteer_id, volunteer_name, volunteer_email, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, assignment.ID, assignment.ShiftID, assignment.VolunteerID, assignment.VolunteerName,
		assignment.VolunteerEmail, string(assignment.Status), assignment.Notes).
		Scan(&assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", mapError(err))
	}
	return nil
}

func (t *shiftTx) UpdateAssignmentStatus(ctx context.Context, id string, status db.AssignmentStatus) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE shift_assignment SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (t *shiftTx) UpdateShiftStatus(ctx context.Context, id string, status db.ShiftStatus) error {
	tag, err := t.q.Exec(ctx, `UPDATE shift SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update shift status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (t *shiftTx) RecordAttendance(ctx context.Context, id string, checkedInAt, checkedOutAt *time.Time) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE shift_assignment
		SET checked_in_at = $2, checked_out_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, checkedInAt, checkedOutAt)
	if err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
