package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// RevenueHandler payment terms and commission reporting, super admin only
type RevenueHandler struct {
	termsSvc   service.PaymentTermsService
	revenueSvc service.RevenueService
}

// NewRevenueHandler creates a RevenueHandler
func NewRevenueHandler(termsSvc service.PaymentTermsService, revenueSvc service.RevenueService) *RevenueHandler {
	return &RevenueHandler{termsSvc: termsSvc, revenueSvc: revenueSvc}
}

// GetTerms active payment terms, or the configured defaults
// GET /api/v1/enrollments/revenue/terms
func (h *RevenueHandler) GetTerms(c *gin.Context) {
	terms, err := h.termsSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleRevenueError(c, err)
		return
	}

	response.OK(c, terms)
}

// UpdateTerms stores a new active version of the payment terms
// PUT /api/v1/enrollments/revenue/terms
func (h *RevenueHandler) UpdateTerms(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePaymentTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	terms, err := h.termsSvc.Update(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRevenueError(c, err)
		return
	}

	response.OK(c, terms)
}

// TermsHistory every stored version, newest first
// GET /api/v1/enrollments/revenue/terms/history
func (h *RevenueHandler) TermsHistory(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	history, total, err := h.termsSvc.History(c.Request.Context(), &req)
	if err != nil {
		h.handleRevenueError(c, err)
		return
	}

	response.OKPage(c, history, total, req.GetPage(), req.GetLimit())
}

// Metrics revenue and commission report
// GET /api/v1/enrollments/revenue/metrics
func (h *RevenueHandler) Metrics(c *gin.Context) {
	metrics, err := h.revenueSvc.Metrics(c.Request.Context())
	if err != nil {
		h.handleRevenueError(c, err)
		return
	}

	response.OK(c, metrics)
}

func (h *RevenueHandler) handleRevenueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPayoutDayInvalid):
		response.BadRequest(c, 16101, "payout day is out of range for the payout frequency")
	default:
		response.InternalError(c)
	}
}
