package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

const serviceColumns = `
	id, tenant_id, branch_id, name, description,
	duration_minutes, buffer_before_minutes, buffer_after_minutes,
	price, status, created_at, updated_at
`

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc model.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", mapScanError(err))
	}
	return &svc, nil
}

func (r *serviceRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ANY($1)`

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) Capability(ctx context.Context, staffID, serviceID uuid.UUID) (*model.StaffService, error) {
	query := `
		SELECT staff_id, service_id, price
		FROM staff_services
		WHERE staff_id = $1 AND service_id = $2
	`
	var cap model.StaffService
	if err := r.db.GetContext(ctx, &cap, query, staffID, serviceID); err != nil {
		return nil, fmt.Errorf("failed to check capability: %w", mapScanError(err))
	}
	return &cap, nil
}
