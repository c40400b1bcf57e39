package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	"workshop-funnel/pkg/metrics"
)

// Audited actions
const (
	ActionAdminLogin         = "admin.login"
	ActionLeadUpdate         = "lead.update"
	ActionLeadDelete         = "lead.delete"
	ActionEnrollmentCreate   = "enrollment.create"
	ActionEnrollmentUpdate   = "enrollment.update"
	ActionEnrollmentPayment  = "enrollment.payment"
	ActionEnrollmentRefund   = "enrollment.refund"
	ActionAttendanceCreate   = "attendance.create"
	ActionAttendanceUpdate   = "attendance.update"
	ActionPaymentTermsUpdate = "payment_terms.update"
)

// Audited resource types
const (
	ResourceAdmin        = "admin"
	ResourceLead         = "lead"
	ResourceEnrollment   = "enrollment"
	ResourceAttendance   = "attendance"
	ResourcePaymentTerms = "payment_terms"
)

// ActivityEntry one audited action; a non-nil Err marks it failed
type ActivityEntry struct {
	AdminID      string
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	Err          error
}

// ActivityService best-effort admin audit trail
type ActivityService interface {
	// Record never fails the caller; write errors are logged and counted.
	Record(ctx context.Context, entry ActivityEntry)
	List(ctx context.Context, req *dto.ActivityLogListRequest) ([]dto.ActivityLogResponse, int64, error)
	ListErrors(ctx context.Context, page *dto.PaginationRequest) ([]dto.ActivityLogResponse, int64, error)
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService creates an ActivityService
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	log := &model.ActivityLog{
		AdminID:      strPtr(entry.AdminID),
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Success:      entry.Err == nil,
	}
	if len(entry.Details) > 0 {
		log.Details = datatypes.JSONMap(entry.Details)
	}
	if entry.Err != nil {
		log.ErrorMessage = entry.Err.Error()
	}

	// audit rows must survive a cancelled request context
	if err := s.repo.ActivityLog.Create(context.WithoutCancel(ctx), log); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Warn("activity log write failed",
			zap.String("action", entry.Action),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

// ────────────────────── List ──────────────────────

func (s *activityService) List(ctx context.Context, req *dto.ActivityLogListRequest) ([]dto.ActivityLogResponse, int64, error) {
	filter := repository.ActivityLogFilter{
		AdminID:      req.AdminID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
	}
	return s.list(ctx, filter, &req.PaginationRequest)
}

func (s *activityService) ListErrors(ctx context.Context, page *dto.PaginationRequest) ([]dto.ActivityLogResponse, int64, error) {
	return s.list(ctx, repository.ActivityLogFilter{FailedOnly: true}, page)
}

func (s *activityService) list(ctx context.Context, filter repository.ActivityLogFilter, page *dto.PaginationRequest) ([]dto.ActivityLogResponse, int64, error) {
	logs, total, err := s.repo.ActivityLog.List(ctx, filter, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("list activity logs failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ActivityLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toActivityLogResponse(&logs[i]))
	}
	return result, total, nil
}

func toActivityLogResponse(l *model.ActivityLog) dto.ActivityLogResponse {
	return dto.ActivityLogResponse{
		ID:           l.LogID,
		AdminID:      derefStr(l.AdminID),
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Details:      map[string]interface{}(l.Details),
		Success:      l.Success,
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    formatTime(l.CreatedAt),
	}
}
