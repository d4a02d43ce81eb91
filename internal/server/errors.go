package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/parkline/internal/authorization"
	"github.com/smallbiznis/parkline/pkg/db"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case db.IsDuplicateKeyErr(err):
		// Driver text stays out of the response.
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isParkingValidationError(err),
		isReservationValidationError(err),
		isSubscriptionValidationError(err),
		errors.Is(err, staydomain.ErrInvalidRevenueSpan):
		return true
	default:
		return false
	}
}

// isConflictError covers state conflicts: the request is well formed
// and the target exists, but its current state refuses the transition.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, reservationdomain.ErrCapacityExhausted),
		errors.Is(err, reservationdomain.ErrParkingClosed),
		errors.Is(err, reservationdomain.ErrNotCancellable),
		errors.Is(err, staydomain.ErrReservationEntered),
		errors.Is(err, staydomain.ErrReservationClosed),
		errors.Is(err, staydomain.ErrAlreadyClosed),
		errors.Is(err, staydomain.ErrNoActiveStay),
		errors.Is(err, subscriptiondomain.ErrOverlappingSubscription):
		return true
	default:
		return false
	}
}

// Ownership failures map to not found so facility and reservation
// existence never leaks to non-owners.
func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, parkingdomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrNotOwner),
		errors.Is(err, staydomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "missing_weekly_slots" {
		return "weekly_slots"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func isParkingValidationError(err error) bool {
	switch err {
	case parkingdomain.ErrInvalidName,
		parkingdomain.ErrInvalidCapacity,
		parkingdomain.ErrInvalidHourlyRate,
		parkingdomain.ErrInvalidOpeningTime,
		parkingdomain.ErrInvalidOpeningDay:
		return true
	default:
		return false
	}
}

func isReservationValidationError(err error) bool {
	switch err {
	case reservationdomain.ErrInvalidTimeRange,
		reservationdomain.ErrInvalidVehicleType:
		return true
	default:
		return false
	}
}

func isSubscriptionValidationError(err error) bool {
	switch err {
	case subscriptiondomain.ErrInvalidMonths,
		subscriptiondomain.ErrInvalidStartDate,
		subscriptiondomain.ErrMissingWeeklySlots,
		subscriptiondomain.ErrInvalidWeeklySlot:
		return true
	default:
		return false
	}
}
