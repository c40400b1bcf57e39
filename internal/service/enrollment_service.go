package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	pkgerrors "workshop-funnel/pkg/errors"
	"workshop-funnel/pkg/metrics"
)

// ── enrollment errors ──

var (
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrEnrollmentExists     = errors.New("an enrollment already exists for this submission")
	ErrEnrollmentTransition = errors.New("enrollment status change not allowed")
	ErrEnrollmentRefunded   = errors.New("enrollment has been refunded")
	ErrEnrollmentConflict   = errors.New("enrollment was modified concurrently, reload and retry")
)

// maxPaymentAttempts bounds optimistic-lock retries when recording a payment
const maxPaymentAttempts = 3

// EnrollmentService enrollment and payment management
type EnrollmentService interface {
	Create(ctx context.Context, req *dto.CreateEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error)
	RecordPayment(ctx context.Context, submissionID string, req *dto.RecordPaymentRequest, callerID string) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, submissionID string, req *dto.UpdateEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error)
	Refund(ctx context.Context, submissionID string, req *dto.RefundEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error)
	List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	Get(ctx context.Context, submissionID string) (*dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo     *repository.Repository
	terms    PaymentTermsService
	activity ActivityService
	now      func() time.Time
	logger   *zap.Logger
}

// NewEnrollmentService creates an EnrollmentService
func NewEnrollmentService(repo *repository.Repository, terms PaymentTermsService, activity ActivityService, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		terms:    terms,
		activity: activity,
		now:      time.Now,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *enrollmentService) Create(ctx context.Context, req *dto.CreateEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error) {
	lead, err := s.repo.Lead.GetByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		s.logger.Error("load lead for enrollment failed", zap.Error(err))
		return nil, err
	}

	exists, err := s.repo.Enrollment.ExistsForSubmission(ctx, req.SubmissionID)
	if err != nil {
		s.logger.Error("check existing enrollment failed", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrEnrollmentExists
	}

	terms, _, err := s.terms.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &model.Enrollment{
		SubmissionID:     req.SubmissionID,
		Status:           model.EnrollmentStatusInquiry,
		TotalAmount:      money(*req.TotalAmount),
		PaidAmount:       decimal.Zero,
		Currency:         strings.ToUpper(req.Currency),
		WorkshopName:     req.WorkshopName,
		Notes:            req.Notes,
		CommissionRate:   terms.EnrollmentCommissionRate,
		CommissionAmount: round2(percentOf(money(*req.TotalAmount), terms.EnrollmentCommissionRate)),
		CreatedBy:        strPtr(callerID),
		UpdatedBy:        strPtr(callerID),
	}
	e.Version = 1
	if req.Status != "" {
		e.Status = req.Status
	}
	if e.Currency == "" {
		e.Currency = terms.Currency
	}
	if e.Status == model.EnrollmentStatusEnrolled {
		e.EnrollmentDate = &now
	}
	if req.PaidAmount != nil {
		e.PaidAmount = money(*req.PaidAmount)
	}
	e.ApplyDerivedFields()

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Enrollment.Create(ctx, e); err != nil {
			return err
		}
		// an up-front amount is kept in the payment history like any other payment
		if e.PaidAmount.IsPositive() {
			initial := &model.Payment{
				EnrollmentID: e.EnrollmentID,
				Amount:       e.PaidAmount,
				Method:       model.PaymentMethodOther,
				Notes:        "initial payment",
				PaidAt:       now,
				RecordedBy:   strPtr(callerID),
			}
			if err := tx.Payment.Create(ctx, initial); err != nil {
				return err
			}
			e.Payments = append(e.Payments, *initial)
		}
		locked, err := tx.Lead.GetByIDForUpdate(ctx, req.SubmissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		locked.Status = model.LeadStatusEnrolled
		if err := tx.Lead.Update(ctx, locked); err != nil {
			return err
		}
		lead = locked
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrEnrollmentExists
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionEnrollmentCreate,
		ResourceType: ResourceEnrollment,
		ResourceID:   req.SubmissionID,
		Details: map[string]interface{}{
			"totalAmount": e.TotalAmount.String(),
			"paidAmount":  e.PaidAmount.String(),
			"status":      e.Status,
		},
		Err: err,
	})
	if err != nil {
		if !errors.Is(err, ErrEnrollmentExists) && !errors.Is(err, ErrLeadNotFound) {
			s.logger.Error("create enrollment failed", zap.Error(err))
		}
		return nil, err
	}

	e.Lead = lead
	resp := toEnrollmentResponse(e, terms, false)
	return &resp, nil
}

// ────────────────────── RecordPayment ──────────────────────

func (s *enrollmentService) RecordPayment(ctx context.Context, submissionID string, req *dto.RecordPaymentRequest, callerID string) (*dto.EnrollmentResponse, error) {
	amount := money(*req.Amount)
	var updated *model.Enrollment

	var err error
	for attempt := 0; attempt < maxPaymentAttempts; attempt++ {
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			e, err := tx.Enrollment.GetBySubmissionID(ctx, submissionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEnrollmentNotFound
				}
				return err
			}
			if e.RefundedAt != nil {
				return ErrEnrollmentRefunded
			}

			payment := &model.Payment{
				EnrollmentID: e.EnrollmentID,
				Amount:       amount,
				Method:       req.Method,
				Notes:        req.Notes,
				Reference:    req.Reference,
				PaidAt:       s.now().UTC(),
				RecordedBy:   strPtr(callerID),
			}
			if err := tx.Payment.Create(ctx, payment); err != nil {
				return err
			}

			e.PaidAmount = e.PaidAmount.Add(amount)
			e.UpdatedBy = strPtr(callerID)
			if err := tx.Enrollment.Update(ctx, e); err != nil {
				return err
			}

			e.Payments = append(e.Payments, *payment)
			updated = e
			return nil
		})
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			break
		}
		s.logger.Warn("payment hit a concurrent update, retrying",
			zap.String("submission_id", submissionID), zap.Int("attempt", attempt+1))
	}
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		err = ErrEnrollmentConflict
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionEnrollmentPayment,
		ResourceType: ResourceEnrollment,
		ResourceID:   submissionID,
		Details: map[string]interface{}{
			"amount": amount.String(),
			"method": req.Method,
		},
		Err: err,
	})
	if err != nil {
		if !isEnrollmentClientError(err) {
			s.logger.Error("record payment failed", zap.String("submission_id", submissionID), zap.Error(err))
		}
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(req.Method).Inc()
	return s.respond(ctx, updated)
}

// ────────────────────── Update ──────────────────────

func (s *enrollmentService) Update(ctx context.Context, submissionID string, req *dto.UpdateEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error) {
	e, err := s.getEnrollment(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if e.RefundedAt != nil {
		return nil, ErrEnrollmentRefunded
	}

	now := s.now().UTC()
	changes := map[string]interface{}{}

	if req.Status != nil && *req.Status != e.Status {
		if !model.CanTransitionEnrollment(e.Status, *req.Status) {
			return nil, ErrEnrollmentTransition
		}
		changes["status"] = map[string]interface{}{"from": e.Status, "to": *req.Status}
		e.Status = *req.Status

		switch e.Status {
		case model.EnrollmentStatusEnrolled:
			if e.EnrollmentDate == nil {
				e.EnrollmentDate = &now
			}
		case model.EnrollmentStatusCompleted:
			if e.CompletionDate == nil {
				e.CompletionDate = &now
			}
		}
	}
	if req.TotalAmount != nil {
		e.TotalAmount = money(*req.TotalAmount)
		changes["totalAmount"] = e.TotalAmount.String()
	}
	if req.PaidAmount != nil {
		e.PaidAmount = money(*req.PaidAmount)
		changes["paidAmount"] = e.PaidAmount.String()
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
		changes["notes"] = true
	}
	e.UpdatedBy = strPtr(callerID)

	err = s.repo.Enrollment.Update(ctx, e)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		err = ErrEnrollmentConflict
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionEnrollmentUpdate,
		ResourceType: ResourceEnrollment,
		ResourceID:   submissionID,
		Details:      changes,
		Err:          err,
	})
	if err != nil {
		if !isEnrollmentClientError(err) {
			s.logger.Error("update enrollment failed", zap.String("submission_id", submissionID), zap.Error(err))
		}
		return nil, err
	}

	return s.respond(ctx, e)
}

// ────────────────────── Refund ──────────────────────

func (s *enrollmentService) Refund(ctx context.Context, submissionID string, req *dto.RefundEnrollmentRequest, callerID string) (*dto.EnrollmentResponse, error) {
	e, err := s.getEnrollment(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if e.RefundedAt != nil {
		return nil, ErrEnrollmentRefunded
	}

	now := s.now().UTC()
	e.RefundedAt = &now
	if req.Notes != "" {
		if e.Notes != "" {
			e.Notes += "\n"
		}
		e.Notes += "Refund: " + req.Notes
	}
	e.UpdatedBy = strPtr(callerID)

	err = s.repo.Enrollment.Update(ctx, e)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		err = ErrEnrollmentConflict
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionEnrollmentRefund,
		ResourceType: ResourceEnrollment,
		ResourceID:   submissionID,
		Details:      map[string]interface{}{"paidAmount": e.PaidAmount.String()},
		Err:          err,
	})
	if err != nil {
		if !isEnrollmentClientError(err) {
			s.logger.Error("refund enrollment failed", zap.String("submission_id", submissionID), zap.Error(err))
		}
		return nil, err
	}

	return s.respond(ctx, e)
}

// ────────────────────── List ──────────────────────

func (s *enrollmentService) List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	filter := repository.EnrollmentFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}
	list, total, err := s.repo.Enrollment.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("list enrollments failed", zap.Error(err))
		return nil, 0, err
	}

	terms, _, err := s.terms.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	attended, err := s.attendedSet(ctx)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		_, ok := attended[list[i].EnrollmentID]
		result = append(result, toEnrollmentResponse(&list[i], terms, ok))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *enrollmentService) Get(ctx context.Context, submissionID string) (*dto.EnrollmentResponse, error) {
	e, err := s.getEnrollment(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// ── helpers ──

func (s *enrollmentService) getEnrollment(ctx context.Context, submissionID string) (*model.Enrollment, error) {
	e, err := s.repo.Enrollment.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("load enrollment failed", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// respond builds the detail view with current-policy commission
func (s *enrollmentService) respond(ctx context.Context, e *model.Enrollment) (*dto.EnrollmentResponse, error) {
	terms, _, err := s.terms.Current(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListByEnrollment(ctx, e.EnrollmentID)
	if err != nil {
		s.logger.Error("load attendance for enrollment failed", zap.Error(err))
		return nil, err
	}
	attended := false
	for i := range records {
		if records[i].Status == model.AttendanceStatusAttended {
			attended = true
			break
		}
	}

	resp := toEnrollmentResponse(e, terms, attended)
	return &resp, nil
}

func (s *enrollmentService) attendedSet(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.repo.Attendance.AttendedEnrollmentIDs(ctx)
	if err != nil {
		s.logger.Error("load attended enrollments failed", zap.Error(err))
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func isEnrollmentClientError(err error) bool {
	return errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrEnrollmentRefunded) ||
		errors.Is(err, ErrEnrollmentConflict) ||
		errors.Is(err, ErrEnrollmentTransition)
}

// commissionView commission under the given terms; the attendance part applies only once attended
func commissionView(total decimal.Decimal, terms *model.PaymentTerms, attended bool) dto.CommissionView {
	enrollRaw := percentOf(total, terms.EnrollmentCommissionRate)
	attendRaw := decimal.Zero
	if attended {
		attendRaw = percentOf(total, terms.AttendanceCommissionRate)
	}
	return dto.CommissionView{
		EnrollmentRate:       toFloat(terms.EnrollmentCommissionRate),
		EnrollmentCommission: toFloat(round2(enrollRaw)),
		AttendanceRate:       toFloat(terms.AttendanceCommissionRate),
		AttendanceCommission: toFloat(round2(attendRaw)),
		Total:                toFloat(round2(enrollRaw.Add(attendRaw))),
	}
}

func toEnrollmentResponse(e *model.Enrollment, terms *model.PaymentTerms, attended bool) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:             e.EnrollmentID,
		SubmissionID:   e.SubmissionID,
		Status:         e.Status,
		PaymentStatus:  e.PaymentStatus,
		TotalAmount:    toFloat(e.TotalAmount),
		PaidAmount:     toFloat(e.PaidAmount),
		PendingAmount:  toFloat(e.PendingAmount),
		Currency:       e.Currency,
		WorkshopName:   e.WorkshopName,
		EnrollmentDate: formatTimePtr(e.EnrollmentDate),
		CompletionDate: formatTimePtr(e.CompletionDate),
		RefundedAt:     formatTimePtr(e.RefundedAt),
		Notes:          e.Notes,
		Attended:       attended,
		Commission:     commissionView(e.TotalAmount, terms, attended),
		Snapshot: dto.CommissionSnapshot{
			Rate:   toFloat(e.CommissionRate),
			Amount: toFloat(e.CommissionAmount),
		},
		CreatedAt: formatTime(e.CreatedAt),
		UpdatedAt: formatTime(e.UpdatedAt),
	}
	if e.Lead != nil {
		resp.ParentName = e.Lead.Name
		resp.Whatsapp = e.Lead.Whatsapp
		resp.AgeRange = e.Lead.AgeRange
	}
	for _, p := range e.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:        p.PaymentID,
			Amount:    toFloat(p.Amount),
			Method:    p.Method,
			Notes:     p.Notes,
			Reference: p.Reference,
			PaidAt:    formatTime(p.PaidAt),
		})
	}
	return resp
}
