package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-funnel/config"
	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
)

// ── payment terms errors ──

var (
	ErrPayoutDayInvalid = errors.New("payout day is out of range for the payout frequency")
)

// PaymentTermsService versioned commission/payout configuration
type PaymentTermsService interface {
	GetActive(ctx context.Context) (*dto.PaymentTermsResponse, error)
	Update(ctx context.Context, req *dto.UpdatePaymentTermsRequest, callerID string) (*dto.PaymentTermsResponse, error)
	History(ctx context.Context, page *dto.PaginationRequest) ([]dto.PaymentTermsResponse, int64, error)
	// Current returns the active terms, or the configured defaults when none is stored.
	Current(ctx context.Context) (terms *model.PaymentTerms, isDefault bool, err error)
}

type paymentTermsService struct {
	repo     *repository.Repository
	defaults *config.RevenueConfig
	activity ActivityService
	now      func() time.Time
	logger   *zap.Logger
}

// NewPaymentTermsService creates a PaymentTermsService
func NewPaymentTermsService(repo *repository.Repository, defaults *config.RevenueConfig, activity ActivityService, logger *zap.Logger) PaymentTermsService {
	return &paymentTermsService{
		repo:     repo,
		defaults: defaults,
		activity: activity,
		now:      time.Now,
		logger:   logger,
	}
}

// DefaultPaymentTerms builds the fallback terms from configuration
func DefaultPaymentTerms(cfg *config.RevenueConfig) *model.PaymentTerms {
	return &model.PaymentTerms{
		EnrollmentCommissionRate: decimal.NewFromFloat(cfg.EnrollmentCommissionRate),
		AttendanceCommissionRate: decimal.NewFromFloat(cfg.AttendanceCommissionRate),
		Currency:                 cfg.Currency,
		PayoutFrequency:          cfg.PayoutFrequency,
		PayoutDay:                cfg.PayoutDay,
		MinimumPayoutAmount:      decimal.NewNullDecimal(decimal.NewFromFloat(cfg.MinimumPayoutAmount)),
		IsActive:                 true,
	}
}

func (s *paymentTermsService) Current(ctx context.Context) (*model.PaymentTerms, bool, error) {
	terms, err := s.repo.PaymentTerms.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultPaymentTerms(s.defaults), true, nil
		}
		s.logger.Error("load active payment terms failed", zap.Error(err))
		return nil, false, err
	}
	return terms, false, nil
}

// ────────────────────── GetActive ──────────────────────

func (s *paymentTermsService) GetActive(ctx context.Context) (*dto.PaymentTermsResponse, error) {
	terms, isDefault, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	resp := toPaymentTermsResponse(terms)
	resp.IsDefault = isDefault
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *paymentTermsService) Update(ctx context.Context, req *dto.UpdatePaymentTermsRequest, callerID string) (*dto.PaymentTermsResponse, error) {
	if err := validatePayoutDay(req.PayoutFrequency, req.PayoutDay); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaults.Currency
	}

	terms := &model.PaymentTerms{
		EnrollmentCommissionRate: decimal.NewFromFloat(*req.EnrollmentCommissionRate),
		AttendanceCommissionRate: decimal.NewFromFloat(*req.AttendanceCommissionRate),
		Currency:                 currency,
		PayoutFrequency:          req.PayoutFrequency,
		PayoutDay:                req.PayoutDay,
		IsActive:                 true,
		EffectiveFrom:            s.now().UTC(),
		Notes:                    req.Notes,
		CreatedBy:                strPtr(callerID),
	}
	if req.TaxRate != nil {
		terms.TaxRate = decimal.NewNullDecimal(decimal.NewFromFloat(*req.TaxRate))
	}
	if req.MinimumPayoutAmount != nil {
		terms.MinimumPayoutAmount = decimal.NewNullDecimal(money(*req.MinimumPayoutAmount))
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.PaymentTerms.DeactivateActive(ctx); err != nil {
			return err
		}
		return tx.PaymentTerms.Create(ctx, terms)
	})

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      callerID,
		Action:       ActionPaymentTermsUpdate,
		ResourceType: ResourcePaymentTerms,
		ResourceID:   terms.TermsID,
		Details: map[string]interface{}{
			"enrollmentCommissionRate": *req.EnrollmentCommissionRate,
			"attendanceCommissionRate": *req.AttendanceCommissionRate,
			"payoutFrequency":          req.PayoutFrequency,
			"payoutDay":                req.PayoutDay,
		},
		Err: err,
	})
	if err != nil {
		s.logger.Error("update payment terms failed", zap.Error(err))
		return nil, err
	}

	resp := toPaymentTermsResponse(terms)
	return &resp, nil
}

// ────────────────────── History ──────────────────────

func (s *paymentTermsService) History(ctx context.Context, page *dto.PaginationRequest) ([]dto.PaymentTermsResponse, int64, error) {
	list, total, err := s.repo.PaymentTerms.History(ctx, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("list payment terms history failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PaymentTermsResponse, 0, len(list))
	for i := range list {
		result = append(result, toPaymentTermsResponse(&list[i]))
	}
	return result, total, nil
}

// validatePayoutDay weekly/biweekly take a weekday (0 = Sunday), monthly a day of month
func validatePayoutDay(frequency string, day int) error {
	switch frequency {
	case model.PayoutWeekly, model.PayoutBiweekly:
		if day < 0 || day > 6 {
			return ErrPayoutDayInvalid
		}
	case model.PayoutMonthly:
		if day < 1 || day > 31 {
			return ErrPayoutDayInvalid
		}
	}
	return nil
}

func toPaymentTermsResponse(t *model.PaymentTerms) dto.PaymentTermsResponse {
	return dto.PaymentTermsResponse{
		ID:                       t.TermsID,
		EnrollmentCommissionRate: toFloat(t.EnrollmentCommissionRate),
		AttendanceCommissionRate: toFloat(t.AttendanceCommissionRate),
		Currency:                 t.Currency,
		PayoutFrequency:          t.PayoutFrequency,
		PayoutDay:                t.PayoutDay,
		TaxRate:                  nullToFloat(t.TaxRate),
		MinimumPayoutAmount:      nullToFloat(t.MinimumPayoutAmount),
		IsActive:                 t.IsActive,
		EffectiveFrom:            formatTime(t.EffectiveFrom),
		Notes:                    t.Notes,
	}
}
