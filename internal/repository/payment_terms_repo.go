package repository

import (
	"context"

	"gorm.io/gorm"

	"workshop-funnel/internal/model"
)

// PaymentTermsRepository payment terms data access
type PaymentTermsRepository interface {
	GetActive(ctx context.Context) (*model.PaymentTerms, error)
	Create(ctx context.Context, terms *model.PaymentTerms) error
	// DeactivateActive clears is_active on the current record, if any.
	DeactivateActive(ctx context.Context) error
	History(ctx context.Context, offset, limit int) ([]model.PaymentTerms, int64, error)
}

type paymentTermsRepo struct {
	db *gorm.DB
}

// NewPaymentTermsRepo creates a PaymentTermsRepository
func NewPaymentTermsRepo(db *gorm.DB) PaymentTermsRepository {
	return &paymentTermsRepo{db: db}
}

func (r *paymentTermsRepo) GetActive(ctx context.Context) (*model.PaymentTerms, error) {
	var terms model.PaymentTerms
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("effective_from DESC").
		First(&terms).Error
	if err != nil {
		return nil, err
	}
	return &terms, nil
}

func (r *paymentTermsRepo) Create(ctx context.Context, terms *model.PaymentTerms) error {
	return r.db.WithContext(ctx).Create(terms).Error
}

func (r *paymentTermsRepo) DeactivateActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentTerms{}).
		Where("is_active = ?", true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *paymentTermsRepo) History(ctx context.Context, offset, limit int) ([]model.PaymentTerms, int64, error) {
	var list []model.PaymentTerms
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PaymentTerms{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("effective_from DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}
