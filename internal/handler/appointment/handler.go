package appointment

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/middleware"
	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/service/booking"
	"github.com/apptly/booking-api/pkg/httputil"
)

type Handler struct {
	service  *booking.Service
	validate *validator.Validate
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id/reschedule", h.Reschedule)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/checkin", h.transitionTo(model.AppointmentStatusCheckedIn))
		appointments.POST("/:id/start", h.transitionTo(model.AppointmentStatusInProgress))
		appointments.POST("/:id/complete", h.transitionTo(model.AppointmentStatusCompleted))
		appointments.POST("/:id/noshow", h.transitionTo(model.AppointmentStatusNoShow))
		appointments.POST("/:id/detach", h.Detach)
	}

	series := rg.Group("/series")
	{
		series.POST("", h.BookSeries)
		series.POST("/:id/cancel", h.CancelSeries)
		series.POST("/:id/shift", h.ShiftSeries)
		series.POST("/:id/exceptions", h.AddException)
	}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if tenantID, ok := middleware.TenantID(c); ok {
		req.TenantID = tenantID
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) BookSeries(c *gin.Context) {
	var req booking.SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if tenantID, ok := middleware.TenantID(c); ok {
		req.Booking.TenantID = tenantID
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}

	outcome, err := h.service.BookSeries(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, outcome)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid appointment ID")
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}
	if tenantID, ok := middleware.TenantID(c); ok {
		filters.TenantID = tenantID
	}

	for query, target := range map[string]*uuid.UUID{
		"branch_id": &filters.BranchID,
		"staff_id":  &filters.StaffID,
		"client_id": &filters.ClientID,
		"series_id": &filters.SeriesID,
	} {
		if raw := c.Query(query); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httputil.RespondWithValidationError(c, "invalid "+query)
				return
			}
			*target = id
		}
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if raw := c.Query("start_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondWithValidationError(c, "invalid start_date")
			return
		}
		filters.StartDate = d
	}
	if raw := c.Query("end_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondWithValidationError(c, "invalid end_date")
			return
		}
		filters.EndDate = d
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid appointment ID")
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, req.StartTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid appointment ID")
		return
	}

	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithValidationError(c, err.Error())
			return
		}
	}

	result, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) transitionTo(status model.AppointmentStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httputil.RespondWithValidationError(c, "invalid appointment ID")
			return
		}

		apt, err := h.service.Transition(c.Request.Context(), id, status)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, apt)
	}
}

func (h *Handler) Detach(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid appointment ID")
		return
	}

	apt, err := h.service.Detach(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelSeries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid series ID")
		return
	}

	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithValidationError(c, err.Error())
			return
		}
	}

	outcome, err := h.service.CancelSeries(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, outcome)
}

type shiftRequest struct {
	OffsetMinutes int `json:"offset_minutes" validate:"required"`
}

func (h *Handler) ShiftSeries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid series ID")
		return
	}

	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}

	outcome, err := h.service.ShiftSeries(c.Request.Context(), id, time.Duration(req.OffsetMinutes)*time.Minute)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, outcome)
}

type exceptionRequest struct {
	Date string `json:"date" validate:"required"`
}

func (h *Handler) AddException(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid series ID")
		return
	}

	var req exceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := h.service.AddException(c.Request.Context(), id, date); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"series_id": id, "date": req.Date})
}
