package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

type resourceRepository struct {
	BaseRepository
}

func NewResourceRepository(db *sqlx.DB) repository.ResourceRepository {
	return &resourceRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *resourceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	query := `
		SELECT id, tenant_id, branch_id, name, kind, status, created_at, updated_at
		FROM resources
		WHERE id = $1
	`
	var res model.Resource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", mapScanError(err))
	}
	return &res, nil
}

func (r *resourceRepository) List(ctx context.Context, branchID uuid.UUID) ([]*model.Resource, error) {
	query := `
		SELECT id, tenant_id, branch_id, name, kind, status, created_at, updated_at
		FROM resources
		WHERE branch_id = $1 AND status = 'active'
		ORDER BY name ASC
	`
	var resources []*model.Resource
	if err := r.db.SelectContext(ctx, &resources, query, branchID); err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}
