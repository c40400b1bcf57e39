package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// ShareHandler share tracking and short-link endpoints
type ShareHandler struct {
	shareSvc service.ShareService
}

// NewShareHandler creates a ShareHandler
func NewShareHandler(shareSvc service.ShareService) *ShareHandler {
	return &ShareHandler{shareSvc: shareSvc}
}

// TrackShare records a share button press
// POST /api/v1/forms/submissions/:id/share
func (h *ShareHandler) TrackShare(c *gin.Context) {
	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TrackShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.shareSvc.TrackShare(c.Request.Context(), id, &req, c.ClientIP())
	if err != nil {
		h.handleShareError(c, err)
		return
	}

	response.OK(c, result)
}

// Stats per-submission share counters
// GET /api/v1/forms/submissions/:id/share-stats
func (h *ShareHandler) Stats(c *gin.Context) {
	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	response.OK(c, h.shareSvc.Stats(c.Request.Context(), id))
}

// Redirect resolves a share link and records the visit
// GET /s/:code
func (h *ShareHandler) Redirect(c *gin.Context) {
	target := h.shareSvc.Redirect(c.Request.Context(), c.Param("code"), c.ClientIP(), c.Request.UserAgent())
	c.Redirect(http.StatusFound, target)
}

// Analytics funnel and share breakdown
// GET /api/v1/forms/analytics
func (h *ShareHandler) Analytics(c *gin.Context) {
	result, err := h.shareSvc.Analytics(c.Request.Context())
	if err != nil {
		h.handleShareError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ShareHandler) handleShareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		response.NotFound(c, 12101, "submission not found")
	case errors.Is(err, service.ErrShareCodeCollision):
		response.Error(c, http.StatusServiceUnavailable, 13101, "could not allocate a share code, please retry")
	default:
		response.InternalError(c)
	}
}
