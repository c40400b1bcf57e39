package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// EnrollmentHandler enrollment and payment endpoints
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Create converts a submission into an enrollment
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	enrollment, err := h.enrollmentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// List enrollments with commission views
// GET /api/v1/enrollments
func (h *EnrollmentHandler) List(c *gin.Context) {
	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	enrollments, total, err := h.enrollmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OKPage(c, enrollments, total, req.GetPage(), req.GetLimit())
}

// Get enrollment detail with payment history
// GET /api/v1/enrollments/:submissionId
func (h *EnrollmentHandler) Get(c *gin.Context) {
	submissionID, ok := MustGetUUIDParam(c, "submissionId")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Get(c.Request.Context(), submissionID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// Update status, amounts or notes
// PATCH /api/v1/enrollments/:submissionId
func (h *EnrollmentHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submissionID, ok := MustGetUUIDParam(c, "submissionId")
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	enrollment, err := h.enrollmentSvc.Update(c.Request.Context(), submissionID, &req, callerID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// RecordPayment appends a payment
// POST /api/v1/enrollments/:submissionId/payment
func (h *EnrollmentHandler) RecordPayment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submissionID, ok := MustGetUUIDParam(c, "submissionId")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	enrollment, err := h.enrollmentSvc.RecordPayment(c.Request.Context(), submissionID, &req, callerID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// Refund marks the enrollment refunded
// POST /api/v1/enrollments/:submissionId/refund
func (h *EnrollmentHandler) Refund(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submissionID, ok := MustGetUUIDParam(c, "submissionId")
	if !ok {
		return
	}

	var req dto.RefundEnrollmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationError(c, err)
			return
		}
	}

	enrollment, err := h.enrollmentSvc.Refund(c.Request.Context(), submissionID, &req, callerID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, enrollment)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		response.NotFound(c, 12101, "submission not found")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 14101, "enrollment not found")
	case errors.Is(err, service.ErrEnrollmentExists):
		response.Conflict(c, 14102, "an enrollment already exists for this submission")
	case errors.Is(err, service.ErrEnrollmentTransition):
		response.Conflict(c, 14103, "enrollment status change not allowed")
	case errors.Is(err, service.ErrEnrollmentRefunded):
		response.Conflict(c, 14104, "enrollment has been refunded")
	case errors.Is(err, service.ErrEnrollmentConflict):
		response.Conflict(c, 14105, "enrollment was modified concurrently, reload and retry")
	default:
		response.InternalError(c)
	}
}
