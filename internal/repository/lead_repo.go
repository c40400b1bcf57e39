package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop-funnel/internal/model"
)

// LeadFilter equality filters and sort key for lead listings
type LeadFilter struct {
	Status   string
	AgeRange string
	Source   string
	Sort     string // submittedAt | name | status, "-" prefix for descending
}

// leadSortColumns whitelist of sortable fields
var leadSortColumns = map[string]string{
	"submittedAt": "submitted_at",
	"name":        "name",
	"status":      "status",
}

// LeadOrder translates a sort key into an ORDER BY clause; unknown keys fall back to newest first.
func LeadOrder(sort string) string {
	dir := "ASC"
	key := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		key = strings.TrimPrefix(sort, "-")
	}
	col, ok := leadSortColumns[key]
	if !ok {
		return "submitted_at DESC"
	}
	return col + " " + dir
}

// LeadRepository lead data access
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, id string) (*model.Lead, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Lead, error)
	GetByShareCode(ctx context.Context, code string) (*model.Lead, error)
	ShareCodeExists(ctx context.Context, code string) (bool, error)
	// FindOriginal returns the earliest non-duplicate lead with the same session, name and number, row-locked.
	FindOriginal(ctx context.Context, sessionID, name, whatsapp string) (*model.Lead, error)
	List(ctx context.Context, filter LeadFilter, offset, limit int) ([]model.Lead, int64, error)
	ListAll(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	Update(ctx context.Context, lead *model.Lead) error
	// ClearDuplicateOf unflags every lead that points at originalID.
	ClearDuplicateOf(ctx context.Context, originalID string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountDuplicates(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByAgeRange(ctx context.Context) (map[string]int64, error)
	CountBySource(ctx context.Context) (map[string]int64, error)
}

type leadRepo struct {
	db *gorm.DB
}

// NewLeadRepo creates a LeadRepository
func NewLeadRepo(db *gorm.DB) LeadRepository {
	return &leadRepo{db: db}
}

func (r *leadRepo) Create(ctx context.Context, lead *model.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepo) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) GetByShareCode(ctx context.Context, code string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Where("share_code = ?", code).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("share_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *leadRepo) FindOriginal(ctx context.Context, sessionID, name, whatsapp string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ? AND name = ? AND whatsapp = ? AND is_duplicate = ?", sessionID, name, whatsapp, false).
		Order("submitted_at ASC").
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepo) filtered(ctx context.Context, filter LeadFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Lead{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.AgeRange != "" {
		db = db.Where("age_range = ?", filter.AgeRange)
	}
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	return db
}

func (r *leadRepo) List(ctx context.Context, filter LeadFilter, offset, limit int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	db := r.filtered(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(LeadOrder(filter.Sort)).
		Offset(offset).Limit(limit).
		Find(&leads).Error
	return leads, total, err
}

func (r *leadRepo) ListAll(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.filtered(ctx, filter).
		Order(LeadOrder(filter.Sort)).
		Find(&leads).Error
	return leads, err
}

func (r *leadRepo) Update(ctx context.Context, lead *model.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepo) ClearDuplicateOf(ctx context.Context, originalID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("duplicate_of = ?", originalID).
		Updates(map[string]interface{}{
			"is_duplicate": false,
			"duplicate_of": nil,
			"updated_at":   gorm.Expr("NOW()"),
		}).Error
}

func (r *leadRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		Delete(&model.Lead{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *leadRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Lead{}).Count(&count).Error
	return count, err
}

func (r *leadRepo) CountDuplicates(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("is_duplicate = ?", true).
		Count(&count).Error
	return count, err
}

func (r *leadRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "status")
}

func (r *leadRepo) CountByAgeRange(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "age_range")
}

func (r *leadRepo) CountBySource(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "source")
}

// countBy groups leads by a fixed column name (never user input)
func (r *leadRepo) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}
