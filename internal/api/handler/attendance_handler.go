package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// AttendanceHandler attendance and QR check-in endpoints
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Record creates an attendance record with a fresh QR code
// POST /api/v1/attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	record, err := h.attendanceSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, record)
}

// List attendance records
// GET /api/v1/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	records, total, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, records, total, req.GetPage(), req.GetLimit())
}

// ValidateQR looks up a QR code without checking in
// GET /api/v1/attendance/qr/:qrCode
func (h *AttendanceHandler) ValidateQR(c *gin.Context) {
	result, err := h.attendanceSvc.ValidateQR(c.Request.Context(), c.Param("qrCode"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Update status change or check-in commit
// PATCH /api/v1/attendance/:id
func (h *AttendanceHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	record, err := h.attendanceSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// Calendar downloads the enrollment's workshop dates as .ics
// GET /api/v1/attendance/calendar/:enrollmentId
func (h *AttendanceHandler) Calendar(c *gin.Context) {
	enrollmentID, ok := MustGetUUIDParam(c, "enrollmentId")
	if !ok {
		return
	}

	data, filename, err := h.attendanceSvc.Calendar(c.Request.Context(), enrollmentID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 14101, "enrollment not found")
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 15101, "attendance record not found")
	case errors.Is(err, service.ErrAttendanceExists):
		response.Conflict(c, 15102, "attendance already recorded for this workshop date")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 15103, "attendee is already checked in")
	case errors.Is(err, service.ErrAttendanceTransition):
		response.Conflict(c, 15104, "attendance status change not allowed")
	case errors.Is(err, service.ErrAttendanceDateInvalid):
		response.BadRequest(c, 15105, "invalid attendance date")
	case errors.Is(err, service.ErrAttendanceConflict):
		response.Conflict(c, 15106, "attendance was modified concurrently, reload and retry")
	default:
		response.InternalError(c)
	}
}
