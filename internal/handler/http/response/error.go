package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserIDRequired):
		Unauthorized(w, "Unauthorized")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		slog.Error("Attendance store unavailable", "error", err)
		ServiceUnavailable(w, "Attendance store unavailable, please retry")
	case errors.Is(err, attendance.ErrInvalidTimeValue):
		BadRequest(w, "Invalid date or time value", nil)
	case errors.Is(err, attendance.ErrNoFieldsToUpdate):
		BadRequest(w, "No fields to update", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// HandleResult writes an applied session result as 200 and a rejected one as 409.
func HandleResult(w http.ResponseWriter, res attendance.Result) {
	if res.IsApplied() {
		Success(w, res)
		return
	}
	InvalidState(w, "Operation not allowed in the current attendance state", map[string]string{
		"operation": string(res.Operation),
		"phase":     string(res.Phase),
	}, res)
}
