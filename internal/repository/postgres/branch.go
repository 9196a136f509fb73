package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

type branchRepository struct {
	BaseRepository
}

func NewBranchRepository(db *sqlx.DB) repository.BranchRepository {
	return &branchRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *branchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	query := `
		SELECT id, tenant_id, name, address, timezone, status, created_at, updated_at
		FROM branches
		WHERE id = $1
	`
	var branch model.Branch
	if err := r.db.GetContext(ctx, &branch, query, id); err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", mapScanError(err))
	}
	return &branch, nil
}

func (r *branchRepository) GetHours(ctx context.Context, branchID uuid.UUID) (model.BranchHours, error) {
	query := `
		SELECT branch_id, weekday, open_minute, close_minute, closed
		FROM branch_hours
		WHERE branch_id = $1
	`
	var rows []model.OperatingWindow
	if err := r.db.SelectContext(ctx, &rows, query, branchID); err != nil {
		return nil, fmt.Errorf("failed to get branch hours: %w", err)
	}

	hours := make(model.BranchHours, len(rows))
	for _, w := range rows {
		hours[w.Weekday] = w
	}
	return hours, nil
}

func (r *branchRepository) SetHours(ctx context.Context, branchID uuid.UUID, hours []model.OperatingWindow) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM branch_hours WHERE branch_id = $1`, branchID); err != nil {
			return fmt.Errorf("failed to clear branch hours: %w", err)
		}
		for _, w := range hours {
			if !w.Closed && w.Open >= w.Close {
				return fmt.Errorf("invalid operating window for weekday %d: open must precede close", w.Weekday)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO branch_hours (branch_id, weekday, open_minute, close_minute, closed) VALUES ($1, $2, $3, $4, $5)`,
				branchID, w.Weekday, w.Open, w.Close, w.Closed,
			)
			if err != nil {
				return fmt.Errorf("failed to insert branch hours: %w", err)
			}
		}
		return nil
	})
}
