package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// LeadHandler form submission endpoints
type LeadHandler struct {
	leadSvc service.LeadService
}

// NewLeadHandler creates a LeadHandler
func NewLeadHandler(leadSvc service.LeadService) *LeadHandler {
	return &LeadHandler{leadSvc: leadSvc}
}

// Submit public interest form
// POST /api/v1/forms/submit
func (h *LeadHandler) Submit(c *gin.Context) {
	var req dto.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	req.Normalize()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.leadSvc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleLeadError(c, err)
		return
	}

	response.Created(c, result)
}

// Stats public landing-page counters
// GET /api/v1/forms/stats
func (h *LeadHandler) Stats(c *gin.Context) {
	response.OK(c, h.leadSvc.Stats(c.Request.Context()))
}

// List submissions with filters
// GET /api/v1/forms/submissions
func (h *LeadHandler) List(c *gin.Context) {
	var req dto.LeadListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	leads, total, err := h.leadSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleLeadError(c, err)
		return
	}

	response.OKPage(c, leads, total, req.GetPage(), req.GetLimit())
}

// Get submission detail
// GET /api/v1/forms/submissions/:id
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	lead, err := h.leadSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleLeadError(c, err)
		return
	}

	response.OK(c, lead)
}

// Update status, notes or share platforms
// PATCH /api/v1/forms/submissions/:id
func (h *LeadHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	lead, err := h.leadSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleLeadError(c, err)
		return
	}

	response.OK(c, lead)
}

// Delete removes a submission and repairs duplicate links
// DELETE /api/v1/forms/submissions/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.leadSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleLeadError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *LeadHandler) handleLeadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		response.NotFound(c, 12101, "submission not found")
	case errors.Is(err, service.ErrLeadHasEnrollment):
		response.Conflict(c, 12102, "submission has an enrollment and cannot be deleted")
	default:
		response.InternalError(c)
	}
}
