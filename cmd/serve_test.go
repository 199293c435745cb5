package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/config"
	"github.com/coolcity/heatscan/internal/model"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Surface.Width = 120
	cfg.Surface.Height = 80
	cfg.Render.HeatOpacity = 0.35
	cfg.Server.Port = 8080
	cfg.Server.TaskRetentionHours = 24
	cfg.Server.ShutdownTimeoutSecs = 10
	return cfg
}

func newTestServer() *server {
	return newServer(
		context.Background(),
		testConfig(),
		analysis.NewService(),
		analysis.NewRegistry(),
		nil,
	)
}

// startAnalysis posts a local-only analysis and returns the accepted task.
func startAnalysis(t *testing.T, handler http.Handler) model.Task {
	t.Helper()

	payload := map[string]any{
		"lat":        40.7589,
		"lng":        -73.9851,
		"zoom":       15,
		"local_only": true,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var task model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)
	return task
}

// waitCompleted polls the task endpoint until the task finishes.
func waitCompleted(t *testing.T, handler http.Handler, id string) model.Task {
	t.Helper()

	var task model.Task
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &task); err != nil {
			return false
		}
		return task.Status == model.TaskCompleted || task.Status == model.TaskFailed
	}, 5*time.Second, 20*time.Millisecond)

	require.Equal(t, model.TaskCompleted, task.Status)
	return task
}

func TestServer_Health(t *testing.T) {
	handler := newTestServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_AnalyzeLifecycle(t *testing.T) {
	handler := newTestServer().routes()

	task := startAnalysis(t, handler)
	assert.Equal(t, model.TaskQueued, task.Status)

	done := waitCompleted(t, handler, task.ID)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.GreaterOrEqual(t, done.Result.Intensity, 0.0)
	assert.LessOrEqual(t, done.Result.Intensity, 10.0)
}

func TestServer_Analyze_InvalidBody(t *testing.T) {
	handler := newTestServer().routes()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestServer_Analyze_CoordinatesOutOfRange(t *testing.T) {
	handler := newTestServer().routes()

	payload := map[string]any{"lat": 91.0, "lng": 0.0}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "coordinates out of range")
}

func TestServer_GetTask_NotFound(t *testing.T) {
	handler := newTestServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_GetResult(t *testing.T) {
	handler := newTestServer().routes()

	task := startAnalysis(t, handler)
	waitCompleted(t, handler, task.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/results/"+task.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Metrics)
	assert.NotEmpty(t, result.Sources)
	assert.Greater(t, result.Summary.TotalCost, 0.0, "recommendation summary ships with the result")
}

func TestServer_GetResult_Pending(t *testing.T) {
	srv := newTestServer()
	handler := srv.routes()

	// A task the server never ran stays queued.
	task := srv.reg.Create()

	req := httptest.NewRequest(http.MethodGet, "/api/results/"+task.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "queued")
}

func TestServer_ListTasks(t *testing.T) {
	handler := newTestServer().routes()

	startAnalysis(t, handler)
	startAnalysis(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 2)
}

func TestServer_RenderCompletedTask(t *testing.T) {
	handler := newTestServer().routes()

	task := startAnalysis(t, handler)
	waitCompleted(t, handler, task.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/render/"+task.ID+".png", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	img, err := png.Decode(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestServer_RenderConcurrentTasks(t *testing.T) {
	handler := newTestServer().routes()

	first := startAnalysis(t, handler)
	second := startAnalysis(t, handler)
	waitCompleted(t, handler, first.ID)
	waitCompleted(t, handler, second.ID)

	// Overlapping renders for different tasks must not supersede each other.
	var wg sync.WaitGroup
	recorders := make([]*httptest.ResponseRecorder, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		recorders[i] = httptest.NewRecorder()
		go func(rr *httptest.ResponseRecorder, id string) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/render/"+id+".png", nil)
			handler.ServeHTTP(rr, req)
		}(recorders[i], id)
	}
	wg.Wait()

	for _, rr := range recorders {
		require.Equal(t, http.StatusOK, rr.Code)
		_, err := png.Decode(rr.Body)
		require.NoError(t, err)
	}
}

func TestServer_Render_NotFound(t *testing.T) {
	handler := newTestServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/api/render/nope.png", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
