package handler

import (
	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// ActivityHandler audit log endpoints
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler creates an ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// List audit entries
// GET /api/v1/admin/logs
func (h *ActivityHandler) List(c *gin.Context) {
	var req dto.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	logs, total, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetLimit())
}

// ListErrors failed actions only
// GET /api/v1/admin/error-logs
func (h *ActivityHandler) ListErrors(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	logs, total, err := h.activitySvc.ListErrors(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetLimit())
}
