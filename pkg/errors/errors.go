package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a class of booking failure.
type Kind string

const (
	KindClientNotFound      Kind = "CLIENT_NOT_FOUND"
	KindStaffNotFound       Kind = "STAFF_NOT_FOUND"
	KindServiceNotFound     Kind = "SERVICE_NOT_FOUND"
	KindBranchNotFound      Kind = "BRANCH_NOT_FOUND"
	KindResourceNotFound    Kind = "RESOURCE_NOT_FOUND"
	KindAppointmentNotFound Kind = "APPOINTMENT_NOT_FOUND"
	KindStaffCannotPerform  Kind = "STAFF_CANNOT_PERFORM_SERVICE"
	KindBranchClosed        Kind = "BRANCH_CLOSED"
	KindSlotUnavailable     Kind = "SLOT_UNAVAILABLE"
	KindBelowMinimumNotice  Kind = "BELOW_MINIMUM_NOTICE"
	KindExceedsMaxAdvance   Kind = "EXCEEDS_MAX_ADVANCE"
	KindInvalidRecurrence   Kind = "INVALID_RECURRENCE_PATTERN"
	KindValidation          Kind = "VALIDATION"
	KindInvalidTransition   Kind = "INVALID_STATUS_TRANSITION"
	KindConcurrentConflict  Kind = "CONCURRENT_BOOKING_CONFLICT"
	KindInternal            Kind = "INTERNAL"
)

// BookingError is the typed error returned by the scheduling core. It
// carries enough structured detail for callers to render an actionable
// message without exposing persistence internals.
type BookingError struct {
	Kind        Kind          `json:"kind"`
	Message     string        `json:"message"`
	ConflictIDs []uuid.UUID   `json:"conflict_ids,omitempty"` // populated for SLOT_UNAVAILABLE
	Required    time.Duration `json:"required,omitempty"`     // policy bound for notice/advance violations
	Given       time.Duration `json:"given,omitempty"`        // the computed value that violated it
	Err         error         `json:"-"`
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is match on Kind, so callers can compare against any
// BookingError of the same kind without caring about detail fields.
func (e *BookingError) Is(target error) bool {
	var be *BookingError
	if errors.As(target, &be) {
		return e.Kind == be.Kind
	}
	return false
}

// IsKind reports whether err is a BookingError of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Kind == kind
}

func NotFound(kind Kind, id uuid.UUID) *BookingError {
	resource := strings.ToLower(strings.TrimSuffix(string(kind), "_NOT_FOUND"))
	return &BookingError{
		Kind:    kind,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

func StaffCannotPerform(staffID, serviceID uuid.UUID) *BookingError {
	return &BookingError{
		Kind:    KindStaffCannotPerform,
		Message: fmt.Sprintf("staff %s cannot perform service %s", staffID, serviceID),
	}
}

func BranchClosed(branchID uuid.UUID, day time.Time) *BookingError {
	return &BookingError{
		Kind:    KindBranchClosed,
		Message: fmt.Sprintf("branch %s has no open window covering the requested time on %s", branchID, day.Format("2006-01-02")),
	}
}

func SlotUnavailable(conflicts []uuid.UUID) *BookingError {
	return &BookingError{
		Kind:        KindSlotUnavailable,
		Message:     fmt.Sprintf("requested slot conflicts with %d existing appointment(s)", len(conflicts)),
		ConflictIDs: conflicts,
	}
}

func BelowMinimumNotice(required, given time.Duration) *BookingError {
	return &BookingError{
		Kind:     KindBelowMinimumNotice,
		Message:  fmt.Sprintf("booking requires %s notice, got %s", required, given),
		Required: required,
		Given:    given,
	}
}

func ExceedsMaxAdvance(limit, given time.Duration) *BookingError {
	return &BookingError{
		Kind:     KindExceedsMaxAdvance,
		Message:  fmt.Sprintf("booking is %s ahead, limit is %s", given, limit),
		Required: limit,
		Given:    given,
	}
}

func InvalidRecurrence(reason string) *BookingError {
	return &BookingError{
		Kind:    KindInvalidRecurrence,
		Message: fmt.Sprintf("invalid recurrence pattern: %s", reason),
	}
}

func Validation(msg string) *BookingError {
	return &BookingError{
		Kind:    KindValidation,
		Message: msg,
	}
}

func InvalidTransition(from, to string) *BookingError {
	return &BookingError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition appointment from %s to %s", from, to),
	}
}

func ConcurrentConflict(attempts int, err error) *BookingError {
	return &BookingError{
		Kind:    KindConcurrentConflict,
		Message: fmt.Sprintf("booking aborted after %d concurrent attempts", attempts),
		Err:     err,
	}
}

func Internal(err error) *BookingError {
	return &BookingError{
		Kind:    KindInternal,
		Message: "internal error",
		Err:     err,
	}
}
