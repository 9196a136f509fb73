package notification

import (
	"context"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
	"github.com/apptly/booking-api/pkg/logger"
)

// Service translates appointment lifecycle changes into outbox events.
// Every method is fire-and-forget: an enqueue failure is logged and
// swallowed so it can never affect a committed booking.
type Service struct {
	outbox repository.OutboxRepository
	logger *logger.Logger
}

func NewService(outbox repository.OutboxRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{outbox: outbox, logger: log}
}

func (s *Service) AppointmentBooked(ctx context.Context, apt *model.Appointment, serviceNames []string) {
	event := eventFrom(apt)
	event.ServiceNames = serviceNames
	s.enqueue(ctx, model.EventAppointmentBooked, event)
}

func (s *Service) AppointmentRescheduled(ctx context.Context, apt *model.Appointment) {
	s.enqueue(ctx, model.EventAppointmentRescheduled, eventFrom(apt))
}

func (s *Service) AppointmentCancelled(ctx context.Context, apt *model.Appointment, reason string) {
	event := eventFrom(apt)
	event.Reason = reason
	s.enqueue(ctx, model.EventAppointmentCancelled, event)
}

func (s *Service) enqueue(ctx context.Context, eventType string, event *model.AppointmentEvent) {
	if err := s.outbox.Enqueue(ctx, eventType, event); err != nil {
		s.logger.Error(err, "failed to enqueue notification",
			"event_type", eventType,
			"appointment_id", event.AppointmentID.String())
	}
}

func eventFrom(apt *model.Appointment) *model.AppointmentEvent {
	return &model.AppointmentEvent{
		AppointmentID: apt.ID,
		TenantID:      apt.TenantID,
		BranchID:      apt.BranchID,
		StaffID:       apt.StaffID,
		ClientID:      apt.ClientID,
		StartTime:     apt.StartTime,
		EndTime:       apt.EndTime,
	}
}
