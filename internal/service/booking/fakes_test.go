package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
	"github.com/apptly/booking-api/internal/scheduling"
)

// fakeStore is an in-memory appointment repository. Atomically serializes
// transactions behind a mutex so concurrent bookings observe each
// other's committed state, like serializable isolation would.
type fakeStore struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment

	// abortNext makes the next N transactions fail with a
	// serialization conflict before running.
	abortNext int
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: map[uuid.UUID]*model.Appointment{}}
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apt, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *apt
	return &cp, nil
}

func (s *fakeStore) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range s.appointments {
		if filters.TenantID != uuid.Nil && apt.TenantID != filters.TenantID {
			continue
		}
		if filters.StaffID != uuid.Nil && apt.StaffID != filters.StaffID {
			continue
		}
		cp := *apt
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) ListBlocking(_ context.Context, tenantID uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listBlockingLocked(tenantID, f), nil
}

func (s *fakeStore) listBlockingLocked(tenantID uuid.UUID, f repository.BlockingFilter) []*model.Appointment {
	var out []*model.Appointment
	for _, apt := range s.appointments {
		if apt.TenantID != tenantID || apt.ID == f.ExcludeID {
			continue
		}
		if !apt.Status.Blocking() {
			continue
		}
		if !apt.StartTime.Before(f.To) || !apt.EndTime.After(f.From) {
			continue
		}
		match := apt.StaffID == f.StaffID || apt.ClientID == f.ClientID
		if !match {
			for _, rid := range f.ResourceIDs {
				for _, held := range apt.Resources {
					if rid == held {
						match = true
					}
				}
			}
		}
		if match {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out
}

func (s *fakeStore) ListBySeries(_ context.Context, seriesID uuid.UUID) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range s.appointments {
		if apt.SeriesID != nil && *apt.SeriesID == seriesID {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, apt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.appointments[apt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = apt.Status
	stored.CancelReason = apt.CancelReason
	return nil
}

func (s *fakeStore) SetDetached(_ context.Context, id uuid.UUID, detached bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Detached = detached
	return nil
}

func (s *fakeStore) Atomically(_ context.Context, fn func(tx repository.AppointmentTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.abortNext > 0 {
		s.abortNext--
		return repository.ErrSerialization
	}
	return fn(&fakeTx{store: s})
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) ListBlocking(_ context.Context, tenantID uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	return t.store.listBlockingLocked(tenantID, f), nil
}

func (t *fakeTx) Create(_ context.Context, apt *model.Appointment) error {
	cp := *apt
	t.store.appointments[apt.ID] = &cp
	return nil
}

func (t *fakeTx) UpdateTimes(_ context.Context, id uuid.UUID, start, end time.Time) error {
	stored, ok := t.store.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.StartTime = start
	stored.EndTime = end
	return nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*model.Staff
}

func (r *fakeStaffRepo) Get(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	if s, ok := r.staff[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStaffRepo) List(_ context.Context, _ uuid.UUID) ([]*model.Staff, error) {
	var out []*model.Staff
	for _, s := range r.staff {
		out = append(out, s)
	}
	return out, nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func (r *fakeClientRepo) Get(_ context.Context, id uuid.UUID) (*model.Client, error) {
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type capKey struct {
	staffID   uuid.UUID
	serviceID uuid.UUID
}

type fakeServiceRepo struct {
	services     map[uuid.UUID]*model.Service
	capabilities map[capKey]*model.StaffService
}

func (r *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if s, ok := r.services[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeServiceRepo) GetMany(_ context.Context, ids []uuid.UUID) ([]*model.Service, error) {
	var out []*model.Service
	for _, id := range ids {
		if s, ok := r.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) Capability(_ context.Context, staffID, serviceID uuid.UUID) (*model.StaffService, error) {
	if c, ok := r.capabilities[capKey{staffID, serviceID}]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type fakeResourceRepo struct {
	resources map[uuid.UUID]*model.Resource
}

func (r *fakeResourceRepo) Get(_ context.Context, id uuid.UUID) (*model.Resource, error) {
	if res, ok := r.resources[id]; ok {
		return res, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeResourceRepo) List(_ context.Context, _ uuid.UUID) ([]*model.Resource, error) {
	return nil, nil
}

type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[uuid.UUID]*model.RecurrenceSeries
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{series: map[uuid.UUID]*model.RecurrenceSeries{}}
}

func (r *fakeSeriesRepo) Create(_ context.Context, s *model.RecurrenceSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[s.ID] = s
	return nil
}

func (r *fakeSeriesRepo) Get(_ context.Context, id uuid.UUID) (*model.RecurrenceSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.series[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSeriesRepo) AddException(_ context.Context, id uuid.UUID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Exceptions = append(s.Exceptions, date.Format("2006-01-02"))
	return nil
}

func (r *fakeSeriesRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	return nil
}

// fixedCalendar opens the same daily window on every date.
type fixedCalendar struct {
	openHour  int
	closeHour int
}

func (c *fixedCalendar) OpenIntervals(_ context.Context, _, _ uuid.UUID, date time.Time) ([]scheduling.Interval, error) {
	y, m, d := date.Date()
	return []scheduling.Interval{{
		Start: time.Date(y, m, d, c.openHour, 0, 0, 0, date.Location()),
		End:   time.Date(y, m, d, c.closeHour, 0, 0, 0, date.Location()),
	}}, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	booked     []uuid.UUID
	moved      []uuid.UUID
	cancelled  []uuid.UUID
	lastReason string
}

func (n *recordingNotifier) AppointmentBooked(_ context.Context, apt *model.Appointment, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, apt.ID)
}

func (n *recordingNotifier) AppointmentRescheduled(_ context.Context, apt *model.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moved = append(n.moved, apt.ID)
}

func (n *recordingNotifier) AppointmentCancelled(_ context.Context, apt *model.Appointment, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, apt.ID)
	n.lastReason = reason
}
