package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
)

type stubRunner struct {
	startErr  error
	statusErr error
	status    *dto.RunStatusResponse
}

func (s *stubRunner) StartRun(context.Context, dto.StartRunRequest) (*dto.StartRunResponse, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	return &dto.StartRunResponse{RunID: "run-1", Status: "PENDING"}, nil
}

func (s *stubRunner) RunStatus(context.Context, string) (*dto.RunStatusResponse, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.status, nil
}

func (s *stubRunner) RunReport(context.Context, string) (*dto.RunReportResponse, error) {
	return &dto.RunReportResponse{RunID: "run-1"}, nil
}

func newSchedulerRouter(runner scheduleRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &SchedulerHandler{service: runner}
	r := gin.New()
	r.POST("/scheduler/runs", h.StartRun)
	r.GET("/scheduler/runs/:id", h.RunStatus)
	r.GET("/scheduler/runs/:id/report", h.RunReport)
	return r
}

func TestStartRunAccepted(t *testing.T) {
	router := newSchedulerRouter(&stubRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scheduler/runs", strings.NewReader(`{"maxAttempts":2}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var body struct {
		Data dto.StartRunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.Data.RunID)
}

func TestStartRunAllowsEmptyBody(t *testing.T) {
	router := newSchedulerRouter(&stubRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scheduler/runs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code, "an empty body runs with server defaults")
}

func TestStartRunConflictWhenBusy(t *testing.T) {
	router := newSchedulerRouter(&stubRunner{startErr: appErrors.ErrRunInProgress})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scheduler/runs", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRunStatusNotFoundPassesThrough(t *testing.T) {
	router := newSchedulerRouter(&stubRunner{statusErr: appErrors.ErrNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scheduler/runs/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunStatusOK(t *testing.T) {
	router := newSchedulerRouter(&stubRunner{status: &dto.RunStatusResponse{RunID: "run-1", Status: "RUNNING", Progress: 40}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scheduler/runs/run-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"RUNNING"`)
}
