package availability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/apptly/booking-api/internal/middleware"
	"github.com/apptly/booking-api/internal/scheduling"
	"github.com/apptly/booking-api/internal/service/availability"
	"github.com/apptly/booking-api/pkg/httputil"
)

type Handler struct {
	service  *availability.Service
	validate *validator.Validate
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/availability")
	{
		group.GET("/slots", h.Slots)
		group.POST("/check", h.Check)
	}
}

// Slots returns the bookable start times for one staff member, branch,
// date and service combination.
func (h *Handler) Slots(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid branch_id")
		return
	}
	staffID, err := uuid.Parse(c.Query("staff_id"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid staff_id")
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithValidationError(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	rawServices := c.QueryArray("service_id")
	if len(rawServices) == 0 {
		httputil.RespondWithValidationError(c, "at least one service_id is required")
		return
	}
	serviceIDs := make([]uuid.UUID, 0, len(rawServices))
	for _, raw := range rawServices {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithValidationError(c, "invalid service_id")
			return
		}
		serviceIDs = append(serviceIDs, id)
	}

	tenantID, _ := middleware.TenantID(c)

	slots, err := h.service.ComputeAvailability(c.Request.Context(),
		tenantID, branchID, staffID, serviceIDs, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"date":  c.Query("date"),
		"slots": slots,
	})
}

type checkRequest struct {
	StaffID     uuid.UUID   `json:"staff_id" validate:"required"`
	ClientID    uuid.UUID   `json:"client_id"`
	StartTime   time.Time   `json:"start_time" validate:"required"`
	EndTime     time.Time   `json:"end_time" validate:"required"`
	ResourceIDs []uuid.UUID `json:"resource_ids,omitempty"`
	ExcludeID   uuid.UUID   `json:"exclude_id,omitempty"`
}

// Check runs an advisory point-in-time conflict check. The booking path
// re-validates inside its transaction regardless of this answer.
func (h *Handler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithValidationError(c, err.Error())
		return
	}
	if !req.EndTime.After(req.StartTime) {
		httputil.RespondWithValidationError(c, "end_time must be after start_time")
		return
	}

	tenantID, _ := middleware.TenantID(c)

	result, err := h.service.CheckAvailability(c.Request.Context(),
		tenantID, req.StaffID, req.ClientID,
		scheduling.NewInterval(req.StartTime, req.EndTime),
		req.ResourceIDs, req.ExcludeID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}
