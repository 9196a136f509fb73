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

type seriesRepository struct {
	BaseRepository
}

func NewSeriesRepository(db *sqlx.DB) repository.SeriesRepository {
	return &seriesRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *seriesRepository) Create(ctx context.Context, s *model.RecurrenceSeries) error {
	s.ID = uuid.New()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = "active"
	}

	query := `
		INSERT INTO recurrence_series (
			id, tenant_id, pattern, interval, weekdays, day_of_month,
			until, count, exceptions, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TenantID, s.Pattern, s.Interval, s.Weekdays, s.DayOfMonth,
		s.Until, s.Count, s.Exceptions, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recurrence series: %w", err)
	}
	return nil
}

func (r *seriesRepository) Get(ctx context.Context, id uuid.UUID) (*model.RecurrenceSeries, error) {
	query := `
		SELECT id, tenant_id, pattern, interval, weekdays, day_of_month,
		       until, count, exceptions, status, created_at, updated_at
		FROM recurrence_series
		WHERE id = $1
	`
	var series model.RecurrenceSeries
	if err := r.db.GetContext(ctx, &series, query, id); err != nil {
		return nil, fmt.Errorf("failed to get recurrence series: %w", mapScanError(err))
	}
	return &series, nil
}

func (r *seriesRepository) AddException(ctx context.Context, id uuid.UUID, date time.Time) error {
	query := `
		UPDATE recurrence_series
		SET exceptions = array_append(exceptions, $1), updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, date.Format("2006-01-02"), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to add series exception: %w", err)
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

func (r *seriesRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE recurrence_series SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update series status: %w", err)
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
