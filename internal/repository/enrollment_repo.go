package repository

import (
	"context"

	"gorm.io/gorm"

	"workshop-funnel/internal/model"
	pkgerrors "workshop-funnel/pkg/errors"
)

// EnrollmentFilter equality filters for enrollment listings
type EnrollmentFilter struct {
	Status        string
	PaymentStatus string
}

// EnrollmentRepository enrollment data access
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetBySubmissionID(ctx context.Context, submissionID string) (*model.Enrollment, error)
	ExistsForSubmission(ctx context.Context, submissionID string) (bool, error)
	List(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error)
	// ListAll every enrollment with its lead, for reports and exports.
	ListAll(ctx context.Context) ([]model.Enrollment, error)
	// Update writes mutable fields guarded by the version column.
	Update(ctx context.Context, enrollment *model.Enrollment) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates an EnrollmentRepository
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Lead", "Payments").Create(enrollment).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		Where("submission_id = ?", submissionID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ExistsForSubmission(ctx context.Context, submissionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) List(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Lead").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *enrollmentRepo) ListAll(ctx context.Context) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) Update(ctx context.Context, e *model.Enrollment) error {
	e.ApplyDerivedFields()

	oldVersion := e.Version
	result := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND version = ?", e.EnrollmentID, oldVersion).
		Updates(map[string]interface{}{
			"status":          e.Status,
			"payment_status":  e.PaymentStatus,
			"total_amount":    e.TotalAmount,
			"paid_amount":     e.PaidAmount,
			"pending_amount":  e.PendingAmount,
			"enrollment_date": e.EnrollmentDate,
			"completion_date": e.CompletionDate,
			"refunded_at":     e.RefundedAt,
			"notes":           e.Notes,
			"updated_by":      e.UpdatedBy,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	e.Version = oldVersion + 1
	return nil
}
