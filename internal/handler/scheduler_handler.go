package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/service"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/response"
)

type scheduleRunner interface {
	StartRun(ctx context.Context, req dto.StartRunRequest) (*dto.StartRunResponse, error)
	RunStatus(ctx context.Context, runID string) (*dto.RunStatusResponse, error)
	RunReport(ctx context.Context, runID string) (*dto.RunReportResponse, error)
}

// SchedulerHandler exposes the generation-run endpoints.
type SchedulerHandler struct {
	service scheduleRunner
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(svc *service.ScheduleService) *SchedulerHandler {
	return &SchedulerHandler{service: svc}
}

// StartRun accepts a generation request and returns the queued run ID.
func (h *SchedulerHandler) StartRun(c *gin.Context) {
	// An empty body is fine: the run falls back to server defaults.
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run payload"))
		return
	}
	resp, err := h.service.StartRun(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": resp})
}

// RunStatus reports lifecycle and progress for one run.
func (h *SchedulerHandler) RunStatus(c *gin.Context) {
	resp, err := h.service.RunStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// RunReport returns the validation report of a completed run.
func (h *SchedulerHandler) RunReport(c *gin.Context) {
	resp, err := h.service.RunReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
