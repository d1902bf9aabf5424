package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fittracker-api/internal/config"
	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/router"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine *gin.Engine
	hub    *service.RealtimeHub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	dailyRepo := repository.NewDailyActivityRepository(db)
	manualRepo := repository.NewManualEntryRepository(db)

	hub := service.NewRealtimeHub(nil)
	weekly := service.NewWeeklyService(userRepo, dailyRepo, manualRepo, nil, time.Minute, nil)
	weekly.SetClock(func() time.Time {
		return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	})

	engine := router.New(router.Services{
		Auth:          service.NewAuthService(userRepo, config.JWTConfig{Secret: "router-test", ExpireHours: 1}),
		User:          service.NewUserService(userRepo, weekly),
		DailyActivity: service.NewDailyActivityService(dailyRepo, userRepo, weekly, hub),
		ManualEntry:   service.NewManualEntryService(manualRepo, userRepo, weekly, hub),
		Weekly:        weekly,
		Hub:           hub,
	}, router.Options{Version: "test"})

	return &testServer{engine: engine, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) createUser(t *testing.T, username string) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/add-user/", fmt.Sprintf(
		`{"username": %q, "password": "pw-123", "email": "%s@example.com", "age": 30}`, username, username))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	decode(t, w, &user)
	return user.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestUserSignupAndProfile(t *testing.T) {
	s := newTestServer(t)
	id := s.createUser(t, "alice")

	w := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d/", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "alice", body["username"])
	assert.EqualValues(t, models.DefaultStepGoal, body["step_goal"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")

	w = s.do(t, http.MethodPost, "/add-user/", `{"username": "alice", "password": "x", "email": "other@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"username"`)

	w = s.do(t, http.MethodPost, "/add-user/", `{"username": "bob", "password": "x", "email": "bob@example.com", "age": 200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"age": ["Must be at most 150."]}`, w.Body.String())
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	id := s.createUser(t, "alice")
	path := fmt.Sprintf("/update-user/%d/", id)

	w := s.do(t, http.MethodPatch, path, `{"weight": 72, "gender": "F"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user models.User
	decode(t, w, &user)
	require.NotNil(t, user.Weight)
	assert.Equal(t, 72, *user.Weight)
	require.NotNil(t, user.Gender)
	assert.Equal(t, "F", *user.Gender)

	w = s.do(t, http.MethodPatch, path, `{"email": "new@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail": "Only age, height, weight, gender, and step_goal can be updated."}`, w.Body.String())

	w = s.do(t, http.MethodPatch, path, `{"step_goal": 500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"step_goal": ["Must be at least 1000."]}`, w.Body.String())

	w = s.do(t, http.MethodPatch, "/update-user/999/", `{"age": 20}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDailyActivityEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	w := s.do(t, http.MethodPost, "/daily-activity/", fmt.Sprintf(
		`{"user": %d, "date": "2024-03-10", "steps": 0, "distance": 0, "calories": 0}`, alice))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var activity models.DailyActivity
	decode(t, w, &activity)
	assert.Equal(t, "2024-03-10", activity.Date.String())
	assert.Equal(t, alice, activity.UserID)

	w = s.do(t, http.MethodPost, "/daily-activity/", fmt.Sprintf(
		`{"user": %d, "date": "2024-03-10", "steps": 100001, "distance": 1, "calories": 1}`, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"steps"`)

	w = s.do(t, http.MethodPost, "/daily-activity/", `{"user": 999, "date": "2024-03-10", "steps": 1, "distance": 1, "calories": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"user"`)

	w = s.do(t, http.MethodPost, "/daily-activity/", fmt.Sprintf(
		`{"user": %d, "date": "10/03/2024", "steps": 1, "distance": 1, "calories": 1}`, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	itemPath := fmt.Sprintf("/daily-activity/%d/", activity.ID)
	w = s.do(t, http.MethodPatch, itemPath, `{"steps": 4200}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &activity)
	assert.Equal(t, 4200, activity.Steps)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/daily-activity/user/%d/", alice), "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.DailyActivity
	decode(t, w, &list)
	require.Len(t, list, 1)

	w = s.do(t, http.MethodGet, "/daily-activity/?date=2024-03-11", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/daily-activity/?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/delete-activity/%d/", activity.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, itemPath, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodGet, "/daily-activity/abc/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualEntryEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	w := s.do(t, http.MethodPost, "/manual-entry/", fmt.Sprintf(
		`{"user": %d, "date": "2024-03-12", "activity": "Running", "duration": 30, "calories": 300}`, alice))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry models.ManualEntry
	decode(t, w, &entry)

	w = s.do(t, http.MethodPost, "/manual-entry/", fmt.Sprintf(
		`{"user": %d, "date": "2024-03-12", "activity": "R", "calories": 300}`, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"activity"`)

	w = s.do(t, http.MethodGet, "/manual-entry/?activity=running", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.ManualEntry
	decode(t, w, &list)
	require.Len(t, list, 1)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/manual-entry/%d/", entry.ID), fmt.Sprintf(
		`{"user": %d, "date": "2024-03-13", "activity": "Hiking", "calories": 500}`, alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &entry)
	assert.Equal(t, "Hiking", entry.Activity)
	assert.Zero(t, entry.Duration)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/manual-entry/%d/", entry.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWeeklyActivity(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	post := func(path, body string) {
		w := s.do(t, http.MethodPost, path, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	post("/daily-activity/", fmt.Sprintf(`{"user": %d, "date": "2024-03-09", "steps": 1000, "distance": 1.0, "calories": 100}`, alice))
	post("/daily-activity/", fmt.Sprintf(`{"user": %d, "date": "2024-03-14", "steps": 3000, "distance": 2.0, "calories": 200}`, alice))
	post("/manual-entry/", fmt.Sprintf(`{"user": %d, "date": "2024-03-11", "activity": "Yoga", "calories": 50}`, alice))

	w := s.do(t, http.MethodGet, fmt.Sprintf("/weekly-activity/%d/", alice), "")
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.WeeklySummary
	decode(t, w, &summary)
	assert.InDelta(t, 2000.0, summary.AverageSteps, 1e-9)
	assert.InDelta(t, 1.5, summary.AverageDistance, 1e-9)
	assert.Equal(t, 350, summary.TotalCalories)
	assert.InDelta(t, 116.67, summary.AverageCalories, 0.01)

	w = s.do(t, http.MethodGet, "/weekly-activity/999/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	w := s.do(t, http.MethodPost, "/daily-activity/", fmt.Sprintf(
		`{"user": %d, "date": "2024-03-10", "steps": 5, "distance": 0.1, "calories": 1}`, alice))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d/", alice), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/daily-activity/?user_id=%d", alice), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	w := s.do(t, http.MethodPost, "/login/", `{"username": "alice", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/login/", `{"username": "alice", "password": "pw-123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		User        models.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	decode(t, w, &login)
	assert.Equal(t, alice, login.User.ID)
	require.NotEmpty(t, login.AccessToken)

	w = s.do(t, http.MethodGet, "/me/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/me/", "", "Authorization", "Bearer "+login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/users/", "")

	w := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRealtimeFeed(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/ws/activity/%d/", alice)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Subscribers(alice) == 1 }, 2*time.Second, 10*time.Millisecond)

	body := fmt.Sprintf(`{"user": %d, "date": "2024-03-10", "steps": 10, "distance": 0.5, "calories": 3}`, alice)
	resp, err := http.Post(srv.URL+"/daily-activity/", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type models.EventType     `json:"type"`
		Data models.DailyActivity `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventDailyActivityCreated, event.Type)
	assert.Equal(t, 10, event.Data.Steps)

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/activity/999/", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignupPasswordLength(t *testing.T) {
	s := newTestServer(t)

	signup := func(username, password string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/add-user/", fmt.Sprintf(
			`{"username": %q, "password": %q, "email": "%s@example.com"}`, username, password, username))
	}

	w := signup("long", strings.Repeat("p", 80))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"password": ["Must be at most 72."]}`, w.Body.String())

	// 40 two-byte runes pass the character limit but not bcrypt's byte limit
	w = signup("wide", strings.Repeat("é", 40))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"password": ["Must be at most 72 bytes."]}`, w.Body.String())

	password := strings.Repeat("p", 72)
	w = signup("edge", password)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/login/", fmt.Sprintf(`{"username": "edge", "password": %q}`, password))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPanicIsCountedInMetrics(t *testing.T) {
	s := newTestServer(t)
	s.engine.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := s.do(t, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "internal server error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/boom",status="500"`)
}
