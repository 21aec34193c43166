package http

import (
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// AdminHandler exposes on-demand maintenance of open sessions.
type AdminHandler interface {
	SweepStaleSessions(w http.ResponseWriter, r *http.Request)
	AutoCloseRecord(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAdminHandler(attendanceService attendance.AttendanceService) AdminHandler {
	return &adminHandlerImpl{
		attendanceService: attendanceService,
	}
}

// SweepStaleSessions handles POST /admin/attendance/sweep
func (h *adminHandlerImpl) SweepStaleSessions(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendanceService.SweepStaleSessions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Stale sessions closed", summary)
}

// AutoCloseRecord handles POST /admin/attendance/{id}/auto-close
func (h *adminHandlerImpl) AutoCloseRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	res, err := h.attendanceService.AutoCloseRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.HandleResult(w, res)
}
