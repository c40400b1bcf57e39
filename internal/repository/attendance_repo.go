package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"workshop-funnel/internal/model"
	pkgerrors "workshop-funnel/pkg/errors"
)

const dateLayout = "2006-01-02"

// AttendanceFilter equality filters for attendance listings
type AttendanceFilter struct {
	EnrollmentID string
	Status       string
	WorkshopDate *time.Time
}

// AttendanceRepository attendance data access
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	// GetByQRCode loads the record with its enrollment and lead.
	GetByQRCode(ctx context.Context, code string) (*model.Attendance, error)
	QRCodeExists(ctx context.Context, code string) (bool, error)
	ExistsForDate(ctx context.Context, enrollmentID string, date time.Time) (bool, error)
	List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.Attendance, error)
	// AttendedEnrollmentIDs distinct enrollments with at least one attended record.
	AttendedEnrollmentIDs(ctx context.Context) ([]string, error)
	// Update writes mutable fields guarded by the version column.
	Update(ctx context.Context, attendance *model.Attendance) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("Enrollment").Create(a).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Enrollment.Lead").
		Where("attendance_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) GetByQRCode(ctx context.Context, code string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Enrollment.Lead").
		Where("qr_code = ?", code).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) QRCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("qr_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepo) ExistsForDate(ctx context.Context, enrollmentID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("enrollment_id = ? AND workshop_date = ?", enrollmentID, date.Format(dateLayout)).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error) {
	var list []model.Attendance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	if filter.EnrollmentID != "" {
		db = db.Where("enrollment_id = ?", filter.EnrollmentID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.WorkshopDate != nil {
		db = db.Where("workshop_date = ?", filter.WorkshopDate.Format(dateLayout))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Enrollment.Lead").
		Order("workshop_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *attendanceRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("workshop_date ASC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) AttendedEnrollmentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("status = ?", model.AttendanceStatusAttended).
		Distinct().
		Pluck("enrollment_id", &ids).Error
	return ids, err
}

func (r *attendanceRepo) Update(ctx context.Context, a *model.Attendance) error {
	oldVersion := a.Version
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND version = ?", a.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"status":          a.Status,
			"attendance_date": a.AttendanceDate,
			"recorded_by":     a.RecordedBy,
			"recorded_at":     a.RecordedAt,
			"notes":           a.Notes,
			"updated_at":      gorm.Expr("NOW()"),
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version = oldVersion + 1
	return nil
}
