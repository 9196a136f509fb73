package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

type staffRepository struct {
	BaseRepository
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, tenant_id, branch_id, email, name, status, created_at, updated_at
		FROM staff
		WHERE id = $1
	`
	var staff model.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", mapScanError(err))
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, tenant_id, branch_id, email, name, status, created_at, updated_at
		FROM staff
		WHERE branch_id = $1 AND status = 'active'
		ORDER BY name ASC
	`
	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query, branchID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
