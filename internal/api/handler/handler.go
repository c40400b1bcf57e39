package handler

import "workshop-funnel/internal/service"

// Handler aggregate entry point for all handlers
type Handler struct {
	Auth       *AuthHandler
	Lead       *LeadHandler
	Share      *ShareHandler
	Enrollment *EnrollmentHandler
	Attendance *AttendanceHandler
	Revenue    *RevenueHandler
	Activity   *ActivityHandler
	Export     *ExportHandler
}

// NewHandler creates the handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Lead:       NewLeadHandler(svc.Lead),
		Share:      NewShareHandler(svc.Share),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Revenue:    NewRevenueHandler(svc.PaymentTerms, svc.Revenue),
		Activity:   NewActivityHandler(svc.Activity),
		Export:     NewExportHandler(svc.Export),
	}
}
