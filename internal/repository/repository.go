package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate entry point for all repositories
type Repository struct {
	db *gorm.DB

	Admin        AdminRepository
	Lead         LeadRepository
	ShareEvent   ShareEventRepository
	Enrollment   EnrollmentRepository
	Payment      PaymentRepository
	Attendance   AttendanceRepository
	PaymentTerms PaymentTermsRepository
	ActivityLog  ActivityLogRepository
}

// NewRepository builds the aggregate over db (or over a transaction handle)
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Admin:        NewAdminRepo(db),
		Lead:         NewLeadRepo(db),
		ShareEvent:   NewShareEventRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Payment:      NewPaymentRepo(db),
		Attendance:   NewAttendanceRepo(db),
		PaymentTerms: NewPaymentTermsRepo(db),
		ActivityLog:  NewActivityLogRepo(db),
	}
}

// Transaction runs fn with an aggregate bound to a single database transaction.
// fn returning an error rolls the transaction back.
// An aggregate assembled without a db (unit tests) runs fn against itself.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
