package service

import (
	"go.uber.org/zap"

	"workshop-funnel/config"
	"workshop-funnel/internal/repository"
	"workshop-funnel/pkg/jwt"
)

// Service aggregate entry point for all services
type Service struct {
	Auth         AuthService
	Admin        AdminService
	Lead         LeadService
	Share        ShareService
	Enrollment   EnrollmentService
	Attendance   AttendanceService
	PaymentTerms PaymentTermsService
	Revenue      RevenueService
	Activity     ActivityService
	Export       ExportService
}

// NewService wires every service over one repository aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	activity := NewActivityService(repo, logger)
	terms := NewPaymentTermsService(repo, &cfg.Revenue, activity, logger)

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, blacklist, activity, logger),
		Admin:        NewAdminService(repo, logger),
		Lead:         NewLeadService(repo, activity, logger),
		Share:        NewShareService(repo, cfg, logger),
		Enrollment:   NewEnrollmentService(repo, terms, activity, logger),
		Attendance:   NewAttendanceService(repo, activity, logger),
		PaymentTerms: terms,
		Revenue:      NewRevenueService(repo, terms, &cfg.Revenue, logger),
		Activity:     activity,
		Export:       NewExportService(repo, terms, logger),
	}
}
