package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
	"github.com/apptly/booking-api/internal/scheduling"
)

// Service answers "when can this staff member be booked" questions. All
// computations are pure; the service only assembles inputs from the
// repositories and caches the slow-changing ones.
type Service struct {
	appointments repository.AppointmentRepository
	branches     repository.BranchRepository
	schedules    repository.ScheduleRepository
	services     repository.ServiceRepository

	granularity time.Duration
	cache       *gocache.Cache
}

type Config struct {
	Granularity  time.Duration
	CacheTTL     time.Duration
	CacheCleanup time.Duration
}

func NewService(
	appointments repository.AppointmentRepository,
	branches repository.BranchRepository,
	schedules repository.ScheduleRepository,
	services repository.ServiceRepository,
	cfg Config,
) *Service {
	if cfg.Granularity <= 0 {
		cfg.Granularity = 15 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.CacheCleanup <= 0 {
		cfg.CacheCleanup = 5 * time.Minute
	}
	return &Service{
		appointments: appointments,
		branches:     branches,
		schedules:    schedules,
		services:     services,
		granularity:  cfg.Granularity,
		cache:        gocache.New(cfg.CacheTTL, cfg.CacheCleanup),
	}
}

// OpenIntervals resolves the bookable windows for one staff member on
// one date, before conflict filtering.
func (s *Service) OpenIntervals(ctx context.Context, branchID, staffID uuid.UUID, date time.Time) ([]scheduling.Interval, error) {
	hours, err := s.branchHours(ctx, branchID)
	if err != nil {
		return nil, err
	}

	rows, err := s.staffSchedules(ctx, staffID, branchID, date)
	if err != nil {
		return nil, err
	}

	timeOff, err := s.schedules.ListTimeOff(ctx, staffID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load time off: %w", err)
	}

	return scheduling.ResolveDay(scheduling.DayContext{
		Date:    date,
		Hours:   hours,
		Rows:    rows,
		TimeOff: timeOff,
	}), nil
}

// ComputeAvailability returns every candidate slot on the date whose
// buffered footprint fits an open window and clears all three conflict
// classes for the requested services' total duration.
func (s *Service) ComputeAvailability(ctx context.Context, tenantID, branchID, staffID uuid.UUID, serviceIDs []uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	open, err := s.OpenIntervals(ctx, branchID, staffID, date)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	duration, bufBefore, bufAfter, err := s.aggregateServices(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	existing, err := s.appointments.ListBlocking(ctx, tenantID, repository.BlockingFilter{
		StaffID: staffID,
		From:    dayStart.Add(-24 * time.Hour),
		To:      dayStart.Add(48 * time.Hour),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	iter := scheduling.Slots(open, scheduling.SlotRequest{
		Duration:     duration,
		Granularity:  s.granularity,
		BufferBefore: bufBefore,
		BufferAfter:  bufAfter,
	})

	var slots []model.TimeSlot
	for {
		start, ok := iter.Next()
		if !ok {
			break
		}
		result := scheduling.CheckConflicts(scheduling.Candidate{
			Interval: scheduling.NewInterval(start, start.Add(duration)),
			StaffID:  staffID,
		}, existing)
		if result.Available {
			slots = append(slots, model.TimeSlot{Start: start, End: start.Add(duration)})
		}
	}
	return slots, nil
}

// CheckAvailability runs a point conflict check for an explicit
// interval, outside any transaction. The booking path re-checks inside
// its serializable transaction; this is the advisory read callers use
// to render availability.
func (s *Service) CheckAvailability(ctx context.Context, tenantID, staffID, clientID uuid.UUID, interval scheduling.Interval, resourceIDs []uuid.UUID, excludeID uuid.UUID) (*model.AvailabilityResult, error) {
	existing, err := s.appointments.ListBlocking(ctx, tenantID, repository.BlockingFilter{
		StaffID:     staffID,
		ClientID:    clientID,
		ResourceIDs: resourceIDs,
		From:        interval.Start.Add(-24 * time.Hour),
		To:          interval.End.Add(24 * time.Hour),
		ExcludeID:   excludeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	result := scheduling.CheckConflicts(scheduling.Candidate{
		Interval:    interval,
		StaffID:     staffID,
		ClientID:    clientID,
		ResourceIDs: resourceIDs,
		ExcludeID:   excludeID,
	}, existing)

	return &model.AvailabilityResult{Available: result.Available, Conflicts: result.Conflicts}, nil
}

// aggregateServices sums durations across a multi-service booking; the
// first service's buffer-before and the last service's buffer-after
// bound the combined footprint.
func (s *Service) aggregateServices(ctx context.Context, serviceIDs []uuid.UUID) (duration, before, after time.Duration, err error) {
	if len(serviceIDs) == 0 {
		return 0, 0, 0, fmt.Errorf("at least one service is required")
	}
	services, err := s.services.GetMany(ctx, serviceIDs)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to load services: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	for i, id := range serviceIDs {
		svc, ok := byID[id]
		if !ok {
			return 0, 0, 0, fmt.Errorf("service %s not found", id)
		}
		duration += svc.Duration()
		if i == 0 {
			before = time.Duration(svc.BufferBefore) * time.Minute
		}
		if i == len(serviceIDs)-1 {
			after = time.Duration(svc.BufferAfter) * time.Minute
		}
	}
	return duration, before, after, nil
}

func (s *Service) branchHours(ctx context.Context, branchID uuid.UUID) (model.BranchHours, error) {
	key := "hours:" + branchID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(model.BranchHours), nil
	}
	hours, err := s.branches.GetHours(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch hours: %w", err)
	}
	s.cache.SetDefault(key, hours)
	return hours, nil
}

func (s *Service) staffSchedules(ctx context.Context, staffID, branchID uuid.UUID, date time.Time) ([]model.StaffSchedule, error) {
	key := fmt.Sprintf("sched:%s:%s:%s", staffID, branchID, date.Format("2006-01-02"))
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]model.StaffSchedule), nil
	}
	rows, err := s.schedules.ListForStaff(ctx, staffID, branchID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff schedules: %w", err)
	}
	s.cache.SetDefault(key, rows)
	return rows, nil
}
