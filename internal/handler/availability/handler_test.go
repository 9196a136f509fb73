package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository"
	availabilityService "github.com/apptly/booking-api/internal/service/availability"
)

type stubAppointments struct {
	blocking []*model.Appointment
}

func (r *stubAppointments) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}

func (r *stubAppointments) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *stubAppointments) ListBlocking(_ context.Context, _ uuid.UUID, f repository.BlockingFilter) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.blocking {
		if apt.ID != f.ExcludeID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r *stubAppointments) ListBySeries(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *stubAppointments) UpdateStatus(_ context.Context, _ *model.Appointment) error { return nil }

func (r *stubAppointments) SetDetached(_ context.Context, _ uuid.UUID, _ bool) error { return nil }

func (r *stubAppointments) Atomically(_ context.Context, _ func(tx repository.AppointmentTx) error) error {
	return nil
}

type stubBranches struct{}

func (stubBranches) Get(_ context.Context, _ uuid.UUID) (*model.Branch, error) {
	return nil, repository.ErrNotFound
}

func (stubBranches) GetHours(_ context.Context, _ uuid.UUID) (model.BranchHours, error) {
	return model.BranchHours{
		time.Monday: {Weekday: time.Monday, Open: 9 * 60, Close: 17 * 60},
	}, nil
}

func (stubBranches) SetHours(_ context.Context, _ uuid.UUID, _ []model.OperatingWindow) error {
	return nil
}

type stubSchedules struct{}

func (stubSchedules) ListForStaff(_ context.Context, staffID, _ uuid.UUID, _ time.Time) ([]model.StaffSchedule, error) {
	return []model.StaffSchedule{{
		StaffID: staffID,
		Weekday: time.Monday,
		Start:   9 * 60,
		End:     17 * 60,
		Working: true,
	}}, nil
}

func (stubSchedules) CreateSchedule(_ context.Context, _ *model.StaffSchedule) error { return nil }

func (stubSchedules) ListTimeOff(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]model.StaffTimeOff, error) {
	return nil, nil
}

func (stubSchedules) CreateTimeOff(_ context.Context, _ *model.StaffTimeOff) error { return nil }

func (stubSchedules) SetTimeOffStatus(_ context.Context, _ uuid.UUID, _ model.TimeOffStatus) error {
	return nil
}

type stubServices struct {
	id uuid.UUID
}

func (r *stubServices) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if id == r.id {
		return &model.Service{Base: model.Base{ID: id}, DurationMinutes: 60}, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubServices) GetMany(_ context.Context, ids []uuid.UUID) ([]*model.Service, error) {
	var out []*model.Service
	for _, id := range ids {
		if svc, err := r.Get(context.Background(), id); err == nil {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (r *stubServices) Capability(_ context.Context, _, _ uuid.UUID) (*model.StaffService, error) {
	return nil, repository.ErrNotFound
}

type env struct {
	engine       *gin.Engine
	appointments *stubAppointments
	staffID      uuid.UUID
	serviceID    uuid.UUID
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{
		appointments: &stubAppointments{},
		staffID:      uuid.New(),
		serviceID:    uuid.New(),
	}

	svc := availabilityService.NewService(
		e.appointments, stubBranches{}, stubSchedules{}, &stubServices{id: e.serviceID},
		availabilityService.Config{Granularity: time.Hour})

	e.engine = gin.New()
	NewHandler(svc).RegisterRoutes(e.engine.Group("/api/v1"))
	return e
}

func TestSlotsEndpoint(t *testing.T) {
	e := setup(t)

	url := "/api/v1/availability/slots?branch_id=" + uuid.New().String() +
		"&staff_id=" + e.staffID.String() +
		"&service_id=" + e.serviceID.String() +
		"&date=2024-06-03"
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Slots []model.TimeSlot `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 09:00 through 16:00 on an hourly grid.
	assert.Len(t, resp.Data.Slots, 8)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), resp.Data.Slots[0].Start)
}

func TestSlotsEndpointBadDate(t *testing.T) {
	e := setup(t)

	url := "/api/v1/availability/slots?branch_id=" + uuid.New().String() +
		"&staff_id=" + e.staffID.String() +
		"&service_id=" + e.serviceID.String() +
		"&date=03/06/2024"
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckEndpoint(t *testing.T) {
	e := setup(t)

	existing := &model.Appointment{
		StaffID:   e.staffID,
		StartTime: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC),
		Status:    model.AppointmentStatusScheduled,
	}
	existing.ID = uuid.New()
	e.appointments.blocking = append(e.appointments.blocking, existing)

	body, err := json.Marshal(map[string]interface{}{
		"staff_id":   e.staffID.String(),
		"start_time": "2024-06-03T10:30:00Z",
		"end_time":   "2024-06-03T11:30:00Z",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/availability/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.AvailabilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Available)
	assert.Equal(t, []uuid.UUID{existing.ID}, resp.Data.Conflicts)
}
