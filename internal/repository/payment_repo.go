package repository

import (
	"context"

	"gorm.io/gorm"

	"workshop-funnel/internal/model"
)

// PaymentRepository payment history data access (append-only)
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a PaymentRepository
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("paid_at ASC").
		Find(&payments).Error
	return payments, err
}
