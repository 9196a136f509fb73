package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/model"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = errors.New("not found")

// ErrSerialization is returned when the database aborts a transaction
// because of a serialization conflict. The booking orchestrator retries
// the whole read-check-write sequence on this error and nothing else.
var ErrSerialization = errors.New("serialization conflict")

// BlockingFilter selects the non-cancelled appointments that can block
// a candidate interval: same staff, same client, or holding one of the
// resources, inside the date window.
type BlockingFilter struct {
	StaffID     uuid.UUID
	ClientID    uuid.UUID
	ResourceIDs []uuid.UUID
	From        time.Time
	To          time.Time
	ExcludeID   uuid.UUID
}

// AppointmentTx is the view of the appointment store inside one
// serializable transaction. The conflict read and the insert both go
// through it, so check-and-create is a single isolation boundary.
type AppointmentTx interface {
	ListBlocking(ctx context.Context, tenantID uuid.UUID, f BlockingFilter) ([]*model.Appointment, error)
	Create(ctx context.Context, apt *model.Appointment) error
	UpdateTimes(ctx context.Context, id uuid.UUID, start, end time.Time) error
}

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListBlocking(ctx context.Context, tenantID uuid.UUID, f BlockingFilter) ([]*model.Appointment, error)
		ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, apt *model.Appointment) error
		SetDetached(ctx context.Context, id uuid.UUID, detached bool) error

		// Atomically runs fn inside one serializable transaction and
		// maps serialization aborts to ErrSerialization.
		Atomically(ctx context.Context, fn func(tx AppointmentTx) error) error
	}

	BranchRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Branch, error)
		GetHours(ctx context.Context, branchID uuid.UUID) (model.BranchHours, error)
		SetHours(ctx context.Context, branchID uuid.UUID, hours []model.OperatingWindow) error
	}

	StaffRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		List(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error)
	}

	ClientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
	}

	ServiceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Service, error)
		// Capability returns the staff-service row, or ErrNotFound when
		// the staff member cannot perform the service.
		Capability(ctx context.Context, staffID, serviceID uuid.UUID) (*model.StaffService, error)
	}

	ScheduleRepository interface {
		ListForStaff(ctx context.Context, staffID, branchID uuid.UUID, date time.Time) ([]model.StaffSchedule, error)
		CreateSchedule(ctx context.Context, s *model.StaffSchedule) error
		ListTimeOff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]model.StaffTimeOff, error)
		CreateTimeOff(ctx context.Context, t *model.StaffTimeOff) error
		SetTimeOffStatus(ctx context.Context, id uuid.UUID, status model.TimeOffStatus) error
	}

	ResourceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Resource, error)
		List(ctx context.Context, branchID uuid.UUID) ([]*model.Resource, error)
	}

	SeriesRepository interface {
		Create(ctx context.Context, s *model.RecurrenceSeries) error
		Get(ctx context.Context, id uuid.UUID) (*model.RecurrenceSeries, error)
		AddException(ctx context.Context, id uuid.UUID, date time.Time) error
		SetStatus(ctx context.Context, id uuid.UUID, status string) error
	}

	OutboxRepository interface {
		Enqueue(ctx context.Context, eventType string, payload interface{}) error
		// ClaimPending locks up to limit pending rows so concurrent
		// worker instances never double-publish.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	}
)
