package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/core/services"
	"github.com/cornerstone-fellowship/members/pkg/memstore"
	"github.com/cornerstone-fellowship/members/pkg/notify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type discardNotifier struct{}

func (discardNotifier) Notify(notify.Message) {}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *gin.Engine) {
	t.Helper()
	srv := NewServer(memstore.New(), discardNotifier{}, zap.NewNop(), time.UTC)
	return srv, srv.Router(cfg)
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createEvent(t *testing.T, router *gin.Engine, capacity int, waitlist bool) eventResponse {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/v1/events", map[string]any{
		"slug":            "harvest-dinner",
		"title":           "Harvest Dinner",
		"startsAt":        "2030-10-04T18:30:00Z",
		"maxCapacity":     capacity,
		"waitlistEnabled": waitlist,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[eventResponse](t, w)
}

func rsvpBody(name string, guests int) map[string]any {
	return map[string]any{"name": name, "email": name + "@example.com", "guests": guests}
}

func TestRSVPLifecycle(t *testing.T) {
	_, router := newTestServer(t, config.ServerConfig{})
	event := createEvent(t, router, 2, true)
	assert.Equal(t, "upcoming", event.Status)

	w := performRequest(router, http.MethodPost, "/v1/events/"+event.ID+"/rsvps", rsvpBody("ruth", 1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[submitRSVPResponse](t, w)
	assert.False(t, first.Waitlisted)
	assert.Equal(t, "confirmed", first.RSVP.Status)

	w = performRequest(router, http.MethodPost, "/v1/events/"+event.ID+"/rsvps", rsvpBody("boaz", 0))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	second := decode[submitRSVPResponse](t, w)
	assert.True(t, second.Waitlisted)

	w = performRequest(router, http.MethodGet, "/v1/events/"+event.ID+"/capacity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	capacity := decode[capacityResponse](t, w)
	assert.False(t, capacity.Available)
	require.NotNil(t, capacity.SpotsLeft)
	assert.Equal(t, 0, *capacity.SpotsLeft)
	assert.True(t, capacity.WaitlistAvailable)

	w = performRequest(router, http.MethodDelete, "/v1/rsvps/"+first.RSVP.ConfirmationCode, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decode[cancelRSVPResponse](t, w)
	assert.Equal(t, "cancelled", cancelled.RSVP.Status)
	require.Len(t, cancelled.Promoted, 1)
	assert.Equal(t, second.RSVP.ConfirmationCode, cancelled.Promoted[0].ConfirmationCode)

	w = performRequest(router, http.MethodGet, "/v1/rsvps/"+second.RSVP.ConfirmationCode, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode[rsvpResponse](t, w).Status)
}

func TestSubmitRSVP_FullReturnsProblem(t *testing.T) {
	_, router := newTestServer(t, config.ServerConfig{})
	event := createEvent(t, router, 1, false)

	w := performRequest(router, http.MethodPost, "/v1/events/"+event.ID+"/rsvps", rsvpBody("ruth", 1))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, problemContentType, w.Header().Get("Content-Type"))
	problem := decode[Problem](t, w)
	assert.Equal(t, "/problems/event-full", problem.Type)
	assert.Equal(t, http.StatusConflict, problem.Status)
	assert.Equal(t, "/v1/events/"+event.ID+"/rsvps", problem.Instance)
}

func TestRequestErrors(t *testing.T) {
	_, router := newTestServer(t, config.ServerConfig{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantType   string
	}{
		{name: "unknown rsvp", method: http.MethodGet, path: "/v1/rsvps/ABC", wantStatus: http.StatusNotFound, wantType: "/problems/not-found"},
		{name: "unknown event capacity", method: http.MethodGet, path: "/v1/events/missing/capacity", wantStatus: http.StatusNotFound, wantType: "/problems/not-found"},
		{name: "malformed body", method: http.MethodPost, path: "/v1/events", body: "not an object", wantStatus: http.StatusBadRequest, wantType: "/problems/invalid-input"},
		{name: "invalid event", method: http.MethodPost, path: "/v1/events", body: map[string]any{"slug": "x"}, wantStatus: http.StatusBadRequest, wantType: "/problems/invalid-input"},
		{name: "shift range missing", method: http.MethodGet, path: "/v1/shifts", wantStatus: http.StatusBadRequest, wantType: "/problems/invalid-input"},
		{name: "unknown shift signup", method: http.MethodPost, path: "/v1/shifts/missing/signups", body: map[string]any{"volunteerId": "v1", "name": "Eli", "email": "eli@example.com"}, wantStatus: http.StatusNotFound, wantType: "/problems/not-found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantType, decode[Problem](t, w).Type)
		})
	}
}

func TestSubmitRSVP_RateLimited(t *testing.T) {
	_, router := newTestServer(t, config.ServerConfig{
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1},
	})
	event := createEvent(t, router, 10, false)

	w := performRequest(router, http.MethodPost, "/v1/events/"+event.ID+"/rsvps", rsvpBody("ruth", 0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPost, "/v1/events/"+event.ID+"/rsvps", rsvpBody("naomi", 0))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "/problems/rate-limited", decode[Problem](t, w).Type)

	// Other routes are not limited
	w = performRequest(router, http.MethodGet, "/v1/events/"+event.ID+"/capacity", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShiftLifecycle(t *testing.T) {
	srv, router := newTestServer(t, config.ServerConfig{})

	w := performRequest(router, http.MethodPost, "/v1/shifts", map[string]any{
		"title":       "Food bank sorting",
		"date":        "2030-06-01",
		"startTime":   "09:00",
		"endTime":     "11:00",
		"spotsNeeded": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shift := decode[shiftResponse](t, w)

	signup := map[string]any{"volunteerId": "v1", "name": "Eli", "email": "eli@example.com"}
	w = performRequest(router, http.MethodPost, "/v1/shifts/"+shift.ID+"/signups", signup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "scheduled", decode[assignmentResponse](t, w).Status)

	w = performRequest(router, http.MethodPost, "/v1/shifts/"+shift.ID+"/signups", signup)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/problems/duplicate-signup", decode[Problem](t, w).Type)

	w = performRequest(router, http.MethodGet, "/v1/shifts?from=2030-06-01&to=2030-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]shiftResponse](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, shift.ID, listed[0].ID)

	srv.now = func() time.Time { return time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC) }
	w = performRequest(router, http.MethodDelete, "/v1/shifts/"+shift.ID+"/signups/v1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "/problems/too-late", decode[Problem](t, w).Type)

	w = performRequest(router, http.MethodPost, "/v1/shifts/"+shift.ID+"/signups/v1/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode[assignmentResponse](t, w).CheckedInAt)

	srv.now = func() time.Time { return time.Date(2030, 5, 30, 12, 0, 0, 0, time.UTC) }
	w = performRequest(router, http.MethodDelete, "/v1/shifts/"+shift.ID+"/signups/v1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[assignmentResponse](t, w).Status)
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t, config.ServerConfig{})

	w := performRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProblemFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "/problems/not-found"},
		{services.ErrFull, http.StatusConflict, "/problems/event-full"},
		{services.ErrAlreadyFull, http.StatusConflict, "/problems/shift-full"},
		{services.ErrDuplicateSignup, http.StatusConflict, "/problems/duplicate-signup"},
		{&services.ScheduleConflictError{}, http.StatusConflict, "/problems/schedule-conflict"},
		{services.ErrInvalidState, http.StatusConflict, "/problems/invalid-state"},
		{services.ErrTooLate, http.StatusUnprocessableEntity, "/problems/too-late"},
		{fmt.Errorf("%w: bad email", services.ErrInvalidInput), http.StatusBadRequest, "/problems/invalid-input"},
		{errors.New("connection refused"), http.StatusInternalServerError, "about:blank"},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			p := problemFor(tt.err)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
		})
	}
}

func TestProblemFor_HidesInternalDetail(t *testing.T) {
	p := problemFor(errors.New("password authentication failed for user members"))
	assert.Empty(t, p.Detail)
}
