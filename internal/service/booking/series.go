package booking

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/scheduling"
	"github.com/apptly/booking-api/pkg/errors"
)

// SeriesRequest books a recurring series: the first occurrence plus a
// pattern describing the rest.
type SeriesRequest struct {
	Booking    model.BookingRequest  `json:"booking" validate:"required"`
	Recurrence model.RecurrenceSpec  `json:"recurrence" validate:"required"`
}

// SeriesOutcome pairs a created series with its per-occurrence results.
// Booked and failed dates coexist: a conflict on one occurrence never
// aborts the others.
type SeriesOutcome struct {
	Series      *model.RecurrenceSeries  `json:"series"`
	Occurrences []model.OccurrenceResult `json:"occurrences"`
	Booked      int                      `json:"booked"`
	Failed      int                      `json:"failed"`
}

// BookSeries expands the recurrence pattern and books every occurrence
// independently through the same validated path as a standalone
// appointment.
func (s *Service) BookSeries(ctx context.Context, req *SeriesRequest) (*SeriesOutcome, error) {
	dates, err := scheduling.ExpandSeries(req.Recurrence, req.Booking.StartTime)
	if err != nil {
		return nil, err
	}

	series := &model.RecurrenceSeries{
		TenantID:   req.Booking.TenantID,
		Pattern:    req.Recurrence.Pattern,
		Interval:   req.Recurrence.Interval,
		DayOfMonth: req.Recurrence.DayOfMonth,
		Until:      req.Recurrence.Until,
		Count:      req.Recurrence.Count,
		Status:     model.SeriesStatusActive,
	}
	series.ID = uuid.New()
	for _, wd := range req.Recurrence.Weekdays {
		series.Weekdays = append(series.Weekdays, int64(wd))
	}
	for _, exc := range req.Recurrence.Exceptions {
		series.Exceptions = append(series.Exceptions, exc.Format("2006-01-02"))
	}
	if err := s.series.Create(ctx, series); err != nil {
		return nil, errors.Internal(err)
	}

	outcome := &SeriesOutcome{Series: series}
	for _, start := range dates {
		occReq := req.Booking
		occReq.StartTime = start

		apt, bookErr := s.book(ctx, &occReq, &series.ID)
		result := model.OccurrenceResult{Date: start}
		if bookErr != nil {
			result.Error = bookErr.Error()
			var be *errors.BookingError
			if stderrors.As(bookErr, &be) {
				result.ErrorKind = string(be.Kind)
			}
			outcome.Failed++
		} else {
			result.Appointment = apt
			outcome.Booked++
		}
		outcome.Occurrences = append(outcome.Occurrences, result)
	}
	return outcome, nil
}

// CancelSeries cancels every non-detached, still-cancellable occurrence
// of a series. Occurrences that already passed or reached a terminal
// status are reported as failures without stopping the rest.
func (s *Service) CancelSeries(ctx context.Context, seriesID uuid.UUID, reason string) (*SeriesOutcome, error) {
	series, err := s.series.Get(ctx, seriesID)
	if err != nil {
		return nil, s.mapLookupErr(err, errors.KindAppointmentNotFound, seriesID)
	}

	appointments, err := s.appointments.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	outcome := &SeriesOutcome{Series: series}
	for _, apt := range appointments {
		if apt.Detached {
			continue
		}
		result := model.OccurrenceResult{Date: apt.StartTime}
		if _, cancelErr := s.Cancel(ctx, apt.ID, reason); cancelErr != nil {
			result.Error = cancelErr.Error()
			var be *errors.BookingError
			if stderrors.As(cancelErr, &be) {
				result.ErrorKind = string(be.Kind)
			}
			outcome.Failed++
		} else {
			result.Appointment = apt
			outcome.Booked++
		}
		outcome.Occurrences = append(outcome.Occurrences, result)
	}

	if err := s.series.SetStatus(ctx, seriesID, model.SeriesStatusCancelled); err != nil {
		s.logger.Error(err, "failed to mark series cancelled", "series_id", seriesID.String())
	}
	return outcome, nil
}

// ShiftSeries moves every non-detached future occurrence by the given
// offset. Each move is validated and committed independently.
func (s *Service) ShiftSeries(ctx context.Context, seriesID uuid.UUID, offset time.Duration) (*SeriesOutcome, error) {
	series, err := s.series.Get(ctx, seriesID)
	if err != nil {
		return nil, s.mapLookupErr(err, errors.KindAppointmentNotFound, seriesID)
	}

	appointments, err := s.appointments.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := s.now()
	outcome := &SeriesOutcome{Series: series}
	for _, apt := range appointments {
		if apt.Detached || !apt.Status.Blocking() || apt.StartTime.Before(now) {
			continue
		}
		result := model.OccurrenceResult{Date: apt.StartTime}
		moved, moveErr := s.Reschedule(ctx, apt.ID, apt.StartTime.Add(offset))
		if moveErr != nil {
			result.Error = moveErr.Error()
			var be *errors.BookingError
			if stderrors.As(moveErr, &be) {
				result.ErrorKind = string(be.Kind)
			}
			outcome.Failed++
		} else {
			result.Appointment = moved
			outcome.Booked++
		}
		outcome.Occurrences = append(outcome.Occurrences, result)
	}
	return outcome, nil
}

// AddException records a skip date on the series. It only affects
// future expansion; already booked occurrences on that date must be
// cancelled separately.
func (s *Service) AddException(ctx context.Context, seriesID uuid.UUID, date time.Time) error {
	if _, err := s.series.Get(ctx, seriesID); err != nil {
		return s.mapLookupErr(err, errors.KindAppointmentNotFound, seriesID)
	}
	if err := s.series.AddException(ctx, seriesID, date); err != nil {
		return errors.Internal(err)
	}
	return nil
}
