package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apptly/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code        string      `json:"code"`
	Message     string      `json:"message"`
	ConflictIDs interface{} `json:"conflict_ids,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// statusFor maps the booking error taxonomy onto HTTP statuses.
// Missing entities are 404, unavailable or contended slots are 409,
// policy and lifecycle violations are 422, malformed input is 400.
var statusFor = map[errors.Kind]int{
	errors.KindClientNotFound:      http.StatusNotFound,
	errors.KindStaffNotFound:       http.StatusNotFound,
	errors.KindServiceNotFound:     http.StatusNotFound,
	errors.KindBranchNotFound:      http.StatusNotFound,
	errors.KindResourceNotFound:    http.StatusNotFound,
	errors.KindAppointmentNotFound: http.StatusNotFound,
	errors.KindSlotUnavailable:     http.StatusConflict,
	errors.KindConcurrentConflict:  http.StatusConflict,
	errors.KindStaffCannotPerform:  http.StatusUnprocessableEntity,
	errors.KindBranchClosed:        http.StatusUnprocessableEntity,
	errors.KindBelowMinimumNotice:  http.StatusUnprocessableEntity,
	errors.KindExceedsMaxAdvance:   http.StatusUnprocessableEntity,
	errors.KindInvalidTransition:   http.StatusUnprocessableEntity,
	errors.KindInvalidRecurrence:   http.StatusBadRequest,
	errors.KindValidation:          http.StatusBadRequest,
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	apiErr := &Error{
		Code:    string(errors.KindInternal),
		Message: "Internal server error",
	}

	var be *errors.BookingError
	if stderrors.As(err, &be) {
		if s, ok := statusFor[be.Kind]; ok {
			status = s
		}
		apiErr.Code = string(be.Kind)
		if be.Kind != errors.KindInternal {
			apiErr.Message = be.Message
		}
		if len(be.ConflictIDs) > 0 {
			apiErr.ConflictIDs = be.ConflictIDs
		}
	}

	c.JSON(status, Response{
		Success: false,
		Error:   apiErr,
	})
}

// RespondWithValidationError sends a 400 for malformed request bodies.
func RespondWithValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &Error{
			Code:    string(errors.KindValidation),
			Message: message,
		},
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, total int) {
	totalPages := (total + pageSize - 1) / pageSize

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Data: data,
			Pagination: Pagination{
				Page:      page,
				PageSize:  pageSize,
				Total:     total,
				TotalPage: totalPages,
			},
		},
	})
}
