package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

const streamKeepalive = 30 * time.Second

type AttendanceHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	UpdateNotes(w http.ResponseWriter, r *http.Request)

	// SSE
	Live(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		hub:               hub,
	}
}

func sessionRequest(r *http.Request) attendance.SessionRequest {
	return attendance.SessionRequest{UserID: middleware.UserIDFromContext(r.Context())}
}

// Status handles GET /attendance/status
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendanceService.GetStatus(r.Context(), sessionRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// ClockIn handles POST /attendance/clock-in
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendanceService.ClockIn(r.Context(), sessionRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.HandleResult(w, res)
}

// ClockOut handles POST /attendance/clock-out
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendanceService.ClockOut(r.Context(), sessionRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.HandleResult(w, res)
}

// StartBreak handles POST /attendance/breaks/start
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendanceService.StartBreak(r.Context(), sessionRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.HandleResult(w, res)
}

// EndBreak handles POST /attendance/breaks/end
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	res, err := h.attendanceService.EndBreak(r.Context(), sessionRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.HandleResult(w, res)
}

// History handles GET /attendance/history?start_date=&end_date=
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	filter := attendance.HistoryFilter{
		UserID:    middleware.UserIDFromContext(r.Context()),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	history, err := h.attendanceService.GetHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, history)
}

// UpdateNotes handles PATCH /attendance/{id}/notes
func (h *attendanceHandlerImpl) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.UserID = middleware.UserIDFromContext(r.Context())

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.attendanceService.UpdateNotes(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notes updated", rec)
}

func writeEvent(w http.ResponseWriter, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}

// Live handles GET /attendance/live. It streams working_hours ticks and
// attendance.changed events for the caller until the client disconnects.
func (h *attendanceHandlerImpl) Live(w http.ResponseWriter, r *http.Request) {
	req := sessionRequest(r)

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(req.UserID)
	defer cleanup()

	_ = writeEvent(w, "connected", map[string]string{"status": "connected", "user_id": req.UserID})

	// Initial snapshot so the client does not wait for the first tick
	if snapshot, err := h.attendanceService.LiveHours(r.Context(), req); err != nil {
		slog.Warn("Failed to build live hours snapshot", "user_id", req.UserID, "error", err)
	} else {
		_ = writeEvent(w, attendance.EventWorkingHours, snapshot)
	}
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event.Event, event.Data); err != nil {
				slog.Warn("Failed to write stream event", "user_id", req.UserID, "event", event.Event, "error", err)
				continue
			}
			flusher.Flush()

		case <-keepalive.C:
			_ = writeEvent(w, "ping", map[string]int64{"timestamp": time.Now().Unix()})
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
