package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusCheckedIn  AppointmentStatus = "checked_in"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// Blocking reports whether an appointment in this status still occupies
// its interval. Cancelled and no-show appointments free their slot.
func (s AppointmentStatus) Blocking() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusNoShow
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// validTransitions encodes the simple status lifecycle; the hard
// invariants live in the conflict detector and the booking path.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusCheckedIn, AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusCheckedIn:  {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is the booked record. It is never physically deleted:
// cancellation is a status transition so historical conflict queries
// stay correct.
//
// SeriesID is nil for standalone appointments. A detached occurrence
// keeps its SeriesID back-reference but is skipped by series-wide
// mutations.
type Appointment struct {
	Base
	TenantID     uuid.UUID         `db:"tenant_id" json:"tenant_id"`
	BranchID     uuid.UUID         `db:"branch_id" json:"branch_id"`
	StaffID      uuid.UUID         `db:"staff_id" json:"staff_id"`
	ClientID     uuid.UUID         `db:"client_id" json:"client_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	BufferBefore int               `db:"buffer_before_minutes" json:"buffer_before_minutes"`
	BufferAfter  int               `db:"buffer_after_minutes" json:"buffer_after_minutes"`
	SeriesID     *uuid.UUID        `db:"series_id" json:"series_id,omitempty"`
	Detached     bool              `db:"detached" json:"detached"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`

	Services  []AppointmentService `db:"-" json:"services,omitempty"`
	Resources []uuid.UUID          `db:"-" json:"resources,omitempty"`
}

// AppointmentService ties one requested service (and the staff member
// performing it) to an appointment.
type AppointmentService struct {
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	ServiceID     uuid.UUID `db:"service_id" json:"service_id"`
	StaffID       uuid.UUID `db:"staff_id" json:"staff_id"`
	Price         float64   `db:"price" json:"price"`
}

// ServiceRequest is one (service, assigned staff) pair of a booking.
type ServiceRequest struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	StaffID   uuid.UUID `json:"staff_id" validate:"required"`
}

// BookingRequest carries everything the orchestrator needs to create a
// single appointment. Tenant scoping is assumed validated by the caller.
type BookingRequest struct {
	TenantID    uuid.UUID        `json:"tenant_id" validate:"required"`
	BranchID    uuid.UUID        `json:"branch_id" validate:"required"`
	StaffID     uuid.UUID        `json:"staff_id" validate:"required"`
	ClientID    uuid.UUID        `json:"client_id" validate:"required"`
	Services    []ServiceRequest `json:"services" validate:"required,min=1,dive"`
	StartTime   time.Time        `json:"start_time" validate:"required"`
	ResourceIDs []uuid.UUID      `json:"resource_ids,omitempty"`
	Notes       string           `json:"notes,omitempty" validate:"max=1000"`
}

// TimeSlot is one bookable candidate returned by availability queries.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityResult is the outcome of a point-in-time conflict check.
type AvailabilityResult struct {
	Available bool        `json:"available"`
	Conflicts []uuid.UUID `json:"conflicts,omitempty"`
}

// CancelResult reports the status transition together with the notice
// the client gave. Fee/refund policy is the caller's concern; the core
// only flags a late cancellation.
type CancelResult struct {
	Appointment *Appointment  `json:"appointment"`
	Notice      time.Duration `json:"notice"`
	Late        bool          `json:"late"`
}

// OccurrenceResult is the per-occurrence outcome of a recurrence batch;
// a failure on one date never aborts the rest.
type OccurrenceResult struct {
	Date        time.Time    `json:"date"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Error       string       `json:"error,omitempty"`
	ErrorKind   string       `json:"error_kind,omitempty"`
}

type AppointmentFilters struct {
	TenantID   uuid.UUID
	BranchID   uuid.UUID
	StaffID    uuid.UUID
	ClientID   uuid.UUID
	ResourceID uuid.UUID
	SeriesID   uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}
