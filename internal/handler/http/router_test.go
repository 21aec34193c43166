package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/attendance"
	reportService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	handlerTestUser   = "user-1"
)

type testEnv struct {
	router *chi.Mux
	clock  *clock.Fixed
	jwt    jwt.Service
}

func newTestEnv(t *testing.T, singleUserID string, seed ...attendance.AttendanceRecord) *testEnv {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	store := memory.NewAttendanceRepository(seed...)
	hub := sse.NewHub()
	svc := attendanceService.NewAttendanceService(store, clk, hub)
	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")

	router := NewRouter(
		RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test", SingleUserID: singleUserID},
		jwtSvc,
		NewAttendanceHandler(svc, hub),
		NewReportHandler(reportService.NewReportService(store, clk)),
		NewAdminHandler(svc),
	)
	return &testEnv{router: router, clock: clk, jwt: jwtSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec, payload
}

func (e *testEnv) token(t *testing.T, userID string, admin bool) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(userID, admin)
	require.NoError(t, err)
	return token
}

func dataOf(payload map[string]interface{}) map[string]interface{} {
	data, _ := payload["data"].(map[string]interface{})
	return data
}

func TestAttendanceHandler_SessionFlow(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.token(t, handlerTestUser, false)

	rec, payload := env.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "working", dataOf(payload)["phase"])

	env.clock.Set(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/breaks/start", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	env.clock.Set(time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC))
	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/breaks/end", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	env.clock.Set(time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC))
	rec, payload = env.do(t, http.MethodPost, "/api/v1/attendance/clock-out", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	record := dataOf(payload)["record"].(map[string]interface{})
	assert.Equal(t, 8.5, record["totalHours"])
	assert.Equal(t, 8.0, record["netWorkHours"])

	rec, payload = env.do(t, http.MethodGet, "/api/v1/attendance/status", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := dataOf(payload)
	assert.Equal(t, "closed", status["phase"])
	assert.Equal(t, false, status["can_clock_in"])
	assert.Equal(t, 8.0, status["weekly_hours"])
}

func TestAttendanceHandler_RejectedIsConflict(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.token(t, handlerTestUser, false)

	rec, payload := env.do(t, http.MethodPost, "/api/v1/attendance/breaks/start", token, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	errDetail := payload["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_STATE_FOR_OPERATION", errDetail["code"])
	details := errDetail["details"].(map[string]interface{})
	assert.Equal(t, "not_started", details["phase"])
	assert.Equal(t, "start_break", details["operation"])
}

func TestAttendanceHandler_Unauthorized(t *testing.T) {
	env := newTestEnv(t, "")

	rec, _ := env.do(t, http.MethodGet, "/api/v1/attendance/status", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/attendance/status", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, _, err := jwt.NewJWTService(handlerTestSecret, "-1h").GenerateAccessToken(handlerTestUser, false)
	require.NoError(t, err)
	rec, payload := env.do(t, http.MethodGet, "/api/v1/attendance/status", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	errDetail := payload["error"].(map[string]interface{})
	assert.Equal(t, "Token expired", errDetail["message"])
}

func TestAttendanceHandler_History(t *testing.T) {
	out := "17:00"
	in := "09:00"
	net := 8.0
	env := newTestEnv(t, "",
		attendance.AttendanceRecord{ID: "a", UserID: handlerTestUser, Date: "2026-03-01", ClockIn: &in, ClockOut: &out, TotalHours: 8, NetWorkHours: &net, Status: attendance.StatusPresent},
		attendance.AttendanceRecord{ID: "b", UserID: "someone-else", Date: "2026-03-01", ClockIn: &in, ClockOut: &out, TotalHours: 8, Status: attendance.StatusPresent},
	)
	token := env.token(t, handlerTestUser, false)

	rec, payload := env.do(t, http.MethodGet, "/api/v1/attendance/history?start_date=2026-03-01&end_date=2026-03-31", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(payload)
	assert.Equal(t, float64(1), data["total_count"])
	assert.Equal(t, 8.0, data["total_hours"])

	rec, payload = env.do(t, http.MethodGet, "/api/v1/attendance/history?start_date=03/01/2026", token, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := payload["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "start_date")
}

func TestAttendanceHandler_UpdateNotes(t *testing.T) {
	in := "09:00"
	env := newTestEnv(t, "",
		attendance.AttendanceRecord{ID: "mine", UserID: handlerTestUser, Date: "2026-03-02", ClockIn: &in, Status: attendance.StatusPresent},
		attendance.AttendanceRecord{ID: "theirs", UserID: "someone-else", Date: "2026-03-02", ClockIn: &in, Status: attendance.StatusPresent},
	)
	token := env.token(t, handlerTestUser, false)

	rec, payload := env.do(t, http.MethodPatch, "/api/v1/attendance/mine/notes", token, `{"notes":"site visit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "site visit", dataOf(payload)["notes"])

	rec, _ = env.do(t, http.MethodPatch, "/api/v1/attendance/theirs/notes", token, `{"notes":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodPatch, "/api/v1/attendance/mine/notes", token, `{"notes":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPatch, "/api/v1/attendance/mine/notes", token, `{"notes":"`+strings.Repeat("a", 1001)+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReportHandler_Summary(t *testing.T) {
	in, out := "09:00", "17:00"
	net := 7.5
	env := newTestEnv(t, "",
		attendance.AttendanceRecord{ID: "a", UserID: handlerTestUser, Date: "2026-03-02", ClockIn: &in, ClockOut: &out, TotalHours: 8, NetWorkHours: &net, Status: attendance.StatusPresent},
	)
	token := env.token(t, handlerTestUser, false)

	rec, payload := env.do(t, http.MethodGet, "/api/v1/reports/summary?period=monthly&month=3&year=2026", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7.5, dataOf(payload)["total_hours"])

	rec, _ = env.do(t, http.MethodGet, "/api/v1/reports/summary?month=march", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/reports/summary?period=daily", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminHandler_Sweep(t *testing.T) {
	in := "09:00"
	env := newTestEnv(t, "",
		attendance.AttendanceRecord{ID: "stale", UserID: "u2", Date: "2026-03-01", ClockIn: &in, Status: attendance.StatusPresent},
	)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/admin/attendance/sweep", env.token(t, handlerTestUser, false), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := env.token(t, "admin", true)
	rec, payload := env.do(t, http.MethodPost, "/api/v1/admin/attendance/sweep", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataOf(payload)["closed"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/attendance/stale/auto-close", admin, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/attendance/missing/auto-close", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSingleUserMode(t *testing.T) {
	env := newTestEnv(t, "solo")

	rec, payload := env.do(t, http.MethodPost, "/api/v1/attendance/clock-in", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	record := dataOf(payload)["record"].(map[string]interface{})
	assert.Equal(t, "solo", record["userId"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/attendance/sweep", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendanceHandler_LiveStream(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.token(t, handlerTestUser, false)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/attendance/live?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(events) < 2 {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"connected", attendance.EventWorkingHours}, events)
}
