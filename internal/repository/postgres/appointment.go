package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
)

const appointmentColumns = `
	id, tenant_id, branch_id, staff_id, client_id,
	start_time, end_time, status,
	buffer_before_minutes, buffer_after_minutes,
	series_id, detached, notes, cancel_reason,
	created_at, updated_at
`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapScanError(err))
	}
	if err := r.loadJoins(ctx, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentRepository) loadJoins(ctx context.Context, apt *model.Appointment) error {
	svcQuery := `
		SELECT appointment_id, service_id, staff_id, price
		FROM appointment_services
		WHERE appointment_id = $1
	`
	if err := r.db.SelectContext(ctx, &apt.Services, svcQuery, apt.ID); err != nil {
		return fmt.Errorf("failed to load appointment services: %w", err)
	}

	resQuery := `SELECT resource_id FROM appointment_resources WHERE appointment_id = $1`
	if err := r.db.SelectContext(ctx, &apt.Resources, resQuery, apt.ID); err != nil {
		return fmt.Errorf("failed to load appointment resources: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE tenant_id = $1`
	args := []interface{}{filters.TenantID}
	argCount := 2

	addEq := func(column string, value interface{}) {
		query += fmt.Sprintf(" AND %s = $%d", column, argCount)
		args = append(args, value)
		argCount++
	}

	if filters.BranchID != uuid.Nil {
		addEq("branch_id", filters.BranchID)
	}
	if filters.StaffID != uuid.Nil {
		addEq("staff_id", filters.StaffID)
	}
	if filters.ClientID != uuid.Nil {
		addEq("client_id", filters.ClientID)
	}
	if filters.SeriesID != uuid.Nil {
		addEq("series_id", filters.SeriesID)
	}
	if filters.Status != "" {
		addEq("status", filters.Status)
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND end_time > $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBlocking(ctx context.Context, tenantID uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	return listBlocking(ctx, r.db, tenantID, f)
}

func (r *appointmentRepository) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE series_id = $1 ORDER BY start_time ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, seriesID); err != nil {
		return nil, fmt.Errorf("failed to list series appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, apt.Status, apt.CancelReason, apt.UpdatedAt, apt.ID)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
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

func (r *appointmentRepository) SetDetached(ctx context.Context, id uuid.UUID, detached bool) error {
	query := `UPDATE appointments SET detached = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, detached, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to detach appointment: %w", err)
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

// Atomically wraps fn in a SERIALIZABLE transaction so the conflict
// read and the insert commit as one unit.
func (r *appointmentRepository) Atomically(ctx context.Context, fn func(tx repository.AppointmentTx) error) error {
	return r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&appointmentTx{tx: tx})
	})
}

type appointmentTx struct {
	tx *sqlx.Tx
}

func (t *appointmentTx) ListBlocking(ctx context.Context, tenantID uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	return listBlocking(ctx, t.tx, tenantID, f)
}

func (t *appointmentTx) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, tenant_id, branch_id, staff_id, client_id,
			start_time, end_time, status,
			buffer_before_minutes, buffer_after_minutes,
			series_id, detached, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	now := time.Now()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	_, err := t.tx.ExecContext(ctx, query,
		apt.ID,
		apt.TenantID,
		apt.BranchID,
		apt.StaffID,
		apt.ClientID,
		apt.StartTime,
		apt.EndTime,
		apt.Status,
		apt.BufferBefore,
		apt.BufferAfter,
		apt.SeriesID,
		apt.Detached,
		apt.Notes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	for _, svc := range apt.Services {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO appointment_services (appointment_id, service_id, staff_id, price) VALUES ($1, $2, $3, $4)`,
			apt.ID, svc.ServiceID, svc.StaffID, svc.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to attach service: %w", err)
		}
	}
	for _, rid := range apt.Resources {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO appointment_resources (appointment_id, resource_id) VALUES ($1, $2)`,
			apt.ID, rid,
		)
		if err != nil {
			return fmt.Errorf("failed to attach resource: %w", err)
		}
	}
	return nil
}

func (t *appointmentTx) UpdateTimes(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	query := `UPDATE appointments SET start_time = $1, end_time = $2, updated_at = $3 WHERE id = $4`
	result, err := t.tx.ExecContext(ctx, query, start, end, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to move appointment: %w", err)
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

// listBlocking reads every non-freed appointment able to conflict with
// the filter: same staff, same client, or holding one of the resources.
// It runs against the pool for availability reads and against the
// serializable tx on the booking path.
func listBlocking(ctx context.Context, q sqlx.QueryerContext, tenantID uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	query := `
		SELECT DISTINCT ` + appointmentColumns + `
		FROM appointments a
		LEFT JOIN appointment_resources ar ON ar.appointment_id = a.id
		WHERE a.tenant_id = $1
		AND a.status NOT IN ('cancelled', 'no_show')
		AND a.start_time < $2
		AND a.end_time > $3
		AND (a.staff_id = $4 OR a.client_id = $5 OR ar.resource_id = ANY($6))
	`
	args := []interface{}{
		tenantID,
		f.To,
		f.From,
		f.StaffID,
		f.ClientID,
		pq.Array(f.ResourceIDs),
	}
	if f.ExcludeID != uuid.Nil {
		query += " AND a.id != $7"
		args = append(args, f.ExcludeID)
	}
	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := sqlx.SelectContext(ctx, q, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list blocking appointments: %w", err)
	}

	for _, apt := range appointments {
		resQuery := `SELECT resource_id FROM appointment_resources WHERE appointment_id = $1`
		if err := sqlx.SelectContext(ctx, q, &apt.Resources, resQuery, apt.ID); err != nil {
			return nil, fmt.Errorf("failed to load appointment resources: %w", err)
		}
	}
	return appointments, nil
}
