package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/service"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/response"
)

type scheduleReader interface {
	ListSchedule(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, *models.Pagination, error)
}

// ScheduleHandler serves the published timetable.
type ScheduleHandler struct {
	service scheduleReader
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List returns persisted schedule entries with optional class/teacher/day filters.
func (h *ScheduleHandler) List(c *gin.Context) {
	var query dto.ScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule query"))
		return
	}
	entries, pagination, err := h.service.ListSchedule(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
