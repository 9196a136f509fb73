package booking

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
	"github.com/apptly/booking-api/internal/scheduling"
	"github.com/apptly/booking-api/pkg/errors"
	"github.com/apptly/booking-api/pkg/logger"
)

// Policy is the booking policy the orchestrator enforces.
type Policy struct {
	MinimumNotice   time.Duration
	MaxAdvance      time.Duration
	CancelNotice    time.Duration
	ConflictRetries int
}

// CalendarResolver supplies the open windows a booking must fit.
// Satisfied by the availability service.
type CalendarResolver interface {
	OpenIntervals(ctx context.Context, branchID, staffID uuid.UUID, date time.Time) ([]scheduling.Interval, error)
}

// Notifier receives fire-and-forget appointment events. Implementations
// must never fail the booking: errors are theirs to log and retry.
type Notifier interface {
	AppointmentBooked(ctx context.Context, apt *model.Appointment, serviceNames []string)
	AppointmentRescheduled(ctx context.Context, apt *model.Appointment)
	AppointmentCancelled(ctx context.Context, apt *model.Appointment, reason string)
}

// Service is the single source of truth for creating and mutating
// appointments. Every creation goes through one serializable
// check-and-create transaction; no caller may insert appointments any
// other way.
type Service struct {
	appointments repository.AppointmentRepository
	staff        repository.StaffRepository
	clients      repository.ClientRepository
	services     repository.ServiceRepository
	resources    repository.ResourceRepository
	series       repository.SeriesRepository
	calendar     CalendarResolver
	notifier     Notifier
	policy       Policy
	logger       *logger.Logger

	now func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	staff repository.StaffRepository,
	clients repository.ClientRepository,
	services repository.ServiceRepository,
	resources repository.ResourceRepository,
	series repository.SeriesRepository,
	calendar CalendarResolver,
	notifier Notifier,
	policy Policy,
	log *logger.Logger,
) *Service {
	if policy.ConflictRetries <= 0 {
		policy.ConflictRetries = 3
	}
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{
		appointments: appointments,
		staff:        staff,
		clients:      clients,
		services:     services,
		resources:    resources,
		series:       series,
		calendar:     calendar,
		notifier:     notifier,
		policy:       policy,
		logger:       log,
		now:          time.Now,
	}
}

// Book validates and creates a standalone appointment.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	return s.book(ctx, req, nil)
}

func (s *Service) book(ctx context.Context, req *model.BookingRequest, seriesID *uuid.UUID) (*model.Appointment, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.checkPolicy(req.StartTime); err != nil {
		return nil, err
	}

	if err := s.checkWindow(ctx, req, prepared); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		TenantID:     req.TenantID,
		BranchID:     req.BranchID,
		StaffID:      req.StaffID,
		ClientID:     req.ClientID,
		StartTime:    req.StartTime,
		EndTime:      req.StartTime.Add(prepared.duration),
		Status:       model.AppointmentStatusScheduled,
		BufferBefore: int(prepared.bufferBefore / time.Minute),
		BufferAfter:  int(prepared.bufferAfter / time.Minute),
		SeriesID:     seriesID,
		Notes:        req.Notes,
		Services:     prepared.services,
		Resources:    req.ResourceIDs,
	}
	apt.ID = uuid.New()

	if err := s.createAtomically(ctx, apt); err != nil {
		return nil, err
	}

	// Fire-and-forget: a notification failure never rolls back a
	// committed booking.
	s.notifier.AppointmentBooked(ctx, apt, prepared.serviceNames)

	return apt, nil
}

type preparedBooking struct {
	duration     time.Duration
	bufferBefore time.Duration
	bufferAfter  time.Duration
	services     []model.AppointmentService
	serviceNames []string
}

// prepare resolves referenced entities and the staff-service capability
// table, and aggregates durations, buffers and prices.
func (s *Service) prepare(ctx context.Context, req *model.BookingRequest) (*preparedBooking, error) {
	if len(req.Services) == 0 {
		return nil, errors.Validation("at least one service is required")
	}

	if _, err := s.clients.Get(ctx, req.ClientID); err != nil {
		return nil, s.mapLookupErr(err, errors.KindClientNotFound, req.ClientID)
	}
	if _, err := s.staff.Get(ctx, req.StaffID); err != nil {
		return nil, s.mapLookupErr(err, errors.KindStaffNotFound, req.StaffID)
	}
	for _, rid := range req.ResourceIDs {
		if _, err := s.resources.Get(ctx, rid); err != nil {
			return nil, s.mapLookupErr(err, errors.KindResourceNotFound, rid)
		}
	}

	ids := make([]uuid.UUID, 0, len(req.Services))
	for _, sr := range req.Services {
		ids = append(ids, sr.ServiceID)
	}
	loaded, err := s.services.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.Internal(err)
	}
	byID := make(map[uuid.UUID]*model.Service, len(loaded))
	for _, svc := range loaded {
		byID[svc.ID] = svc
	}

	prepared := &preparedBooking{}
	for i, sr := range req.Services {
		svc, ok := byID[sr.ServiceID]
		if !ok {
			return nil, errors.NotFound(errors.KindServiceNotFound, sr.ServiceID)
		}

		capability, err := s.services.Capability(ctx, sr.StaffID, sr.ServiceID)
		if err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil, errors.StaffCannotPerform(sr.StaffID, sr.ServiceID)
			}
			return nil, errors.Internal(err)
		}

		price := svc.Price
		if capability.Price != nil {
			price = *capability.Price
		}

		prepared.duration += svc.Duration()
		if i == 0 {
			prepared.bufferBefore = time.Duration(svc.BufferBefore) * time.Minute
		}
		if i == len(req.Services)-1 {
			prepared.bufferAfter = time.Duration(svc.BufferAfter) * time.Minute
		}
		prepared.services = append(prepared.services, model.AppointmentService{
			ServiceID: sr.ServiceID,
			StaffID:   sr.StaffID,
			Price:     price,
		})
		prepared.serviceNames = append(prepared.serviceNames, svc.Name)
	}
	return prepared, nil
}

func (s *Service) mapLookupErr(err error, kind errors.Kind, id uuid.UUID) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(kind, id)
	}
	return errors.Internal(err)
}

func (s *Service) checkPolicy(start time.Time) error {
	notice := start.Sub(s.now())
	if notice < s.policy.MinimumNotice {
		return errors.BelowMinimumNotice(s.policy.MinimumNotice, notice)
	}
	if s.policy.MaxAdvance > 0 && notice > s.policy.MaxAdvance {
		return errors.ExceedsMaxAdvance(s.policy.MaxAdvance, notice)
	}
	return nil
}

// checkWindow verifies the buffered footprint of the request lies inside
// one resolved open window for the staff member on that date.
func (s *Service) checkWindow(ctx context.Context, req *model.BookingRequest, prepared *preparedBooking) error {
	open, err := s.calendar.OpenIntervals(ctx, req.BranchID, req.StaffID, req.StartTime)
	if err != nil {
		return errors.Internal(err)
	}

	footprint := scheduling.Interval{
		Start: req.StartTime.Add(-prepared.bufferBefore),
		End:   req.StartTime.Add(prepared.duration + prepared.bufferAfter),
	}
	for _, iv := range open {
		if iv.Contains(footprint) {
			return nil
		}
	}
	return errors.BranchClosed(req.BranchID, req.StartTime)
}

// createAtomically performs the read-check-write sequence inside one
// serializable transaction and retries a bounded number of times when
// the database aborts with a serialization conflict. All other errors
// are terminal on first detection.
func (s *Service) createAtomically(ctx context.Context, apt *model.Appointment) error {
	dayStart := time.Date(apt.StartTime.Year(), apt.StartTime.Month(), apt.StartTime.Day(), 0, 0, 0, 0, apt.StartTime.Location())
	filter := repository.BlockingFilter{
		StaffID:     apt.StaffID,
		ClientID:    apt.ClientID,
		ResourceIDs: apt.Resources,
		From:        dayStart.Add(-24 * time.Hour),
		To:          dayStart.Add(48 * time.Hour),
	}

	var lastErr error
	for attempt := 0; attempt < s.policy.ConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = s.appointments.Atomically(ctx, func(tx repository.AppointmentTx) error {
			existing, err := tx.ListBlocking(ctx, apt.TenantID, filter)
			if err != nil {
				return err
			}
			result := scheduling.CheckConflicts(scheduling.Candidate{
				Interval:    scheduling.Interval{Start: apt.StartTime, End: apt.EndTime},
				StaffID:     apt.StaffID,
				ClientID:    apt.ClientID,
				ResourceIDs: apt.Resources,
			}, existing)
			if !result.Available {
				return errors.SlotUnavailable(result.Conflicts)
			}
			return tx.Create(ctx, apt)
		})

		if lastErr == nil {
			return nil
		}
		if !stderrors.Is(lastErr, repository.ErrSerialization) {
			var be *errors.BookingError
			if stderrors.As(lastErr, &be) {
				return lastErr
			}
			return errors.Internal(lastErr)
		}
		s.logger.Warn("serialization conflict on booking, retrying",
			"appointment_id", apt.ID.String(), "attempt", attempt+1)
	}
	return errors.ConcurrentConflict(s.policy.ConflictRetries, lastErr)
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.mapLookupErr(err, errors.KindAppointmentNotFound, id)
	}
	return apt, nil
}

// List returns appointments matching the filters.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Reschedule re-validates the target interval (excluding the moving
// appointment from its own conflict set) and updates the times inside
// the same serializable boundary used for creation.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status.Terminal() {
		return nil, errors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusScheduled))
	}

	if err := s.checkPolicy(newStart); err != nil {
		return nil, err
	}

	duration := apt.EndTime.Sub(apt.StartTime)
	newEnd := newStart.Add(duration)

	open, err := s.calendar.OpenIntervals(ctx, apt.BranchID, apt.StaffID, newStart)
	if err != nil {
		return nil, errors.Internal(err)
	}
	footprint := scheduling.Interval{
		Start: newStart.Add(-time.Duration(apt.BufferBefore) * time.Minute),
		End:   newEnd.Add(time.Duration(apt.BufferAfter) * time.Minute),
	}
	fits := false
	for _, iv := range open {
		if iv.Contains(footprint) {
			fits = true
			break
		}
	}
	if !fits {
		return nil, errors.BranchClosed(apt.BranchID, newStart)
	}

	dayStart := time.Date(newStart.Year(), newStart.Month(), newStart.Day(), 0, 0, 0, 0, newStart.Location())
	filter := repository.BlockingFilter{
		StaffID:     apt.StaffID,
		ClientID:    apt.ClientID,
		ResourceIDs: apt.Resources,
		From:        dayStart.Add(-24 * time.Hour),
		To:          dayStart.Add(48 * time.Hour),
		ExcludeID:   apt.ID,
	}

	var lastErr error
	for attempt := 0; attempt < s.policy.ConflictRetries; attempt++ {
		lastErr = s.appointments.Atomically(ctx, func(tx repository.AppointmentTx) error {
			existing, err := tx.ListBlocking(ctx, apt.TenantID, filter)
			if err != nil {
				return err
			}
			result := scheduling.CheckConflicts(scheduling.Candidate{
				Interval:    scheduling.Interval{Start: newStart, End: newEnd},
				StaffID:     apt.StaffID,
				ClientID:    apt.ClientID,
				ResourceIDs: apt.Resources,
				ExcludeID:   apt.ID,
			}, existing)
			if !result.Available {
				return errors.SlotUnavailable(result.Conflicts)
			}
			return tx.UpdateTimes(ctx, apt.ID, newStart, newEnd)
		})

		if lastErr == nil {
			apt.StartTime = newStart
			apt.EndTime = newEnd
			s.notifier.AppointmentRescheduled(ctx, apt)
			return apt, nil
		}
		if !stderrors.Is(lastErr, repository.ErrSerialization) {
			var be *errors.BookingError
			if stderrors.As(lastErr, &be) {
				return nil, lastErr
			}
			return nil, errors.Internal(lastErr)
		}
	}
	return nil, errors.ConcurrentConflict(s.policy.ConflictRetries, lastErr)
}

// Cancel transitions the appointment to cancelled and reports the
// notice the client gave. A late cancellation still succeeds; the fee
// decision belongs to the caller.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.CancelResult, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !apt.Status.CanTransitionTo(model.AppointmentStatusCancelled) {
		return nil, errors.InvalidTransition(string(apt.Status), string(model.AppointmentStatusCancelled))
	}

	notice := apt.StartTime.Sub(s.now())

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason
	if err := s.appointments.UpdateStatus(ctx, apt); err != nil {
		return nil, errors.Internal(err)
	}

	s.notifier.AppointmentCancelled(ctx, apt, reason)

	return &model.CancelResult{
		Appointment: apt,
		Notice:      notice,
		Late:        notice < s.policy.CancelNotice,
	}, nil
}

// Transition applies a simple status change (check-in, start, complete,
// no-show). The hard invariants live elsewhere; this only guards the
// lifecycle order.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !apt.Status.CanTransitionTo(next) {
		return nil, errors.InvalidTransition(string(apt.Status), string(next))
	}
	apt.Status = next
	if err := s.appointments.UpdateStatus(ctx, apt); err != nil {
		return nil, errors.Internal(err)
	}
	return apt, nil
}

// Detach excludes one occurrence from series-wide mutations while
// keeping its back-reference for reporting.
func (s *Service) Detach(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.SeriesID == nil {
		return nil, errors.Validation("appointment does not belong to a series")
	}
	if err := s.appointments.SetDetached(ctx, id, true); err != nil {
		return nil, errors.Internal(err)
	}
	apt.Detached = true
	return apt, nil
}
