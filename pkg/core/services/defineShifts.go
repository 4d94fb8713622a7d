package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/core/scheduling"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

// DefineShifts expands the configured shift templates into concrete shifts dated from..to
// inclusive (YYYY-MM-DD). Occurrences that already exist with the same title, date and start
// time are skipped, so running it twice over the same range creates nothing new.
func DefineShifts(ctx context.Context, store db.ShiftStore, logger *zap.Logger, templates []config.ShiftTemplate, from, to string, loc *time.Location) ([]db.Shift, error) {
	if loc == nil {
		loc = time.UTC
	}

	start, err := time.ParseInLocation(scheduling.DateLayout, from, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %q must be YYYY-MM-DD", ErrInvalidInput, from)
	}
	end, err := time.ParseInLocation(scheduling.DateLayout, to, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: to date %q must be YYYY-MM-DD", ErrInvalidInput, to)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrInvalidInput)
	}

	logger.Debug("Defining shifts from templates",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("templates", len(templates)))

	existing, err := store.ListShifts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing shifts: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[shiftKey(s.Title, s.Date, s.StartTime)] = true
	}

	var created []db.Shift
	skipped := 0
	for i, tmpl := range templates {
		dates, err := occurrences(tmpl.RRule, start, end, loc)
		if err != nil {
			return created, fmt.Errorf("template %d (%s): %w", i, tmpl.Title, err)
		}

		for _, date := range dates {
			key := shiftKey(tmpl.Title, date, tmpl.StartTime)
			if seen[key] {
				logger.Debug("Shift already exists, skipping", zap.String("title", tmpl.Title), zap.String("date", date))
				skipped++
				continue
			}

			shift := &db.Shift{
				ID:          uuid.New().String(),
				Title:       tmpl.Title,
				Date:        date,
				StartTime:   tmpl.StartTime,
				EndTime:     tmpl.EndTime,
				Location:    tmpl.Location,
				Role:        tmpl.Role,
				SpotsNeeded: tmpl.SpotsNeeded,
				Status:      db.ShiftStatusOpen,
			}
			if err := store.CreateShift(ctx, shift); err != nil {
				return created, fmt.Errorf("failed to create shift %s on %s: %w", tmpl.Title, date, err)
			}
			seen[key] = true
			created = append(created, *shift)
		}
	}

	logger.Info("Defined shifts",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("created", len(created)),
		zap.Int("skipped", skipped))

	return created, nil
}

// occurrences returns the dates an rrule fires on between start and end inclusive.
// A rule without DTSTART is anchored at the start of the range.
func occurrences(rule string, start, end time.Time, loc *time.Location) ([]string, error) {
	opt, err := rrule.StrToROptionInLocation(rule, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule: %w", err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = start
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule: %w", err)
	}

	// Include every occurrence on the final day regardless of its time of day
	times := r.Between(start, end.AddDate(0, 0, 1), true)

	var dates []string
	for _, t := range times {
		d := t.In(loc)
		if !d.Before(end.AddDate(0, 0, 1)) {
			continue
		}
		dates = append(dates, d.Format(scheduling.DateLayout))
	}
	return dates, nil
}

func shiftKey(title, date, startTime string) string {
	return title + "|" + date + "|" + startTime
}
