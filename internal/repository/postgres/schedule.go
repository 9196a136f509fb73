package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

type scheduleRepository struct {
	BaseRepository
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{BaseRepository: NewBaseRepository(db)}
}

// ListForStaff loads the weekday default rows plus any single-date
// override for the given date, breaks included. The calendar resolver
// decides precedence.
func (r *scheduleRepository) ListForStaff(ctx context.Context, staffID, branchID uuid.UUID, date time.Time) ([]model.StaffSchedule, error) {
	query := `
		SELECT id, staff_id, branch_id, weekday, start_minute, end_minute,
		       working, override, override_date, valid_from, valid_until,
		       created_at, updated_at
		FROM staff_schedules
		WHERE staff_id = $1 AND branch_id = $2
		AND (override = false OR override_date = $3::date)
	`
	var rows []model.StaffSchedule
	if err := r.db.SelectContext(ctx, &rows, query, staffID, branchID, date); err != nil {
		return nil, fmt.Errorf("failed to list staff schedules: %w", err)
	}

	for i := range rows {
		breakQuery := `
			SELECT id, schedule_id, start_minute, end_minute, label
			FROM schedule_breaks
			WHERE schedule_id = $1
			ORDER BY start_minute ASC
		`
		if err := r.db.SelectContext(ctx, &rows[i].Breaks, breakQuery, rows[i].ID); err != nil {
			return nil, fmt.Errorf("failed to list schedule breaks: %w", err)
		}
	}
	return rows, nil
}

func (r *scheduleRepository) CreateSchedule(ctx context.Context, s *model.StaffSchedule) error {
	if s.End <= s.Start && s.Working {
		return fmt.Errorf("schedule start must precede end")
	}
	for i, b := range s.Breaks {
		if b.Start < s.Start || b.End > s.End || b.Start >= b.End {
			return fmt.Errorf("break %d must lie inside the working window", i)
		}
		for _, other := range s.Breaks[:i] {
			if b.Start < other.End && b.End > other.Start {
				return fmt.Errorf("breaks must not overlap")
			}
		}
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		s.ID = uuid.New()
		now := time.Now()
		s.CreatedAt = now
		s.UpdatedAt = now

		query := `
			INSERT INTO staff_schedules (
				id, staff_id, branch_id, weekday, start_minute, end_minute,
				working, override, override_date, valid_from, valid_until,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := tx.ExecContext(ctx, query,
			s.ID, s.StaffID, s.BranchID, s.Weekday, s.Start, s.End,
			s.Working, s.Override, s.Date, s.ValidFrom, s.ValidUntil,
			s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}

		for i := range s.Breaks {
			b := &s.Breaks[i]
			b.ID = uuid.New()
			b.ScheduleID = s.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schedule_breaks (id, schedule_id, start_minute, end_minute, label) VALUES ($1, $2, $3, $4, $5)`,
				b.ID, b.ScheduleID, b.Start, b.End, b.Label,
			)
			if err != nil {
				return fmt.Errorf("failed to create schedule break: %w", err)
			}
		}
		return nil
	})
}

func (r *scheduleRepository) ListTimeOff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]model.StaffTimeOff, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, status, reason, created_at, updated_at
		FROM staff_time_off
		WHERE staff_id = $1 AND start_date <= $2::date AND end_date >= $3::date
	`
	var rows []model.StaffTimeOff
	if err := r.db.SelectContext(ctx, &rows, query, staffID, to, from); err != nil {
		return nil, fmt.Errorf("failed to list time off: %w", err)
	}
	return rows, nil
}

func (r *scheduleRepository) CreateTimeOff(ctx context.Context, t *model.StaffTimeOff) error {
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("time off end date precedes start date")
	}

	t.ID = uuid.New()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = model.TimeOffStatusPending
	}

	query := `
		INSERT INTO staff_time_off (id, staff_id, start_date, end_date, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.StaffID, t.StartDate, t.EndDate, t.Status, t.Reason, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create time off: %w", err)
	}
	return nil
}

func (r *scheduleRepository) SetTimeOffStatus(ctx context.Context, id uuid.UUID, status model.TimeOffStatus) error {
	query := `UPDATE staff_time_off SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update time off status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
