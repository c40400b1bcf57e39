package repository

import (
	"context"

	"gorm.io/gorm"

	"workshop-funnel/internal/model"
)

// ShareEventRepository share metric log data access
type ShareEventRepository interface {
	Create(ctx context.Context, events ...*model.ShareEvent) error
	CountsByLead(ctx context.Context, leadID string) (model.ShareCounts, error)
	CountsByLeads(ctx context.Context, leadIDs []string) (map[string]model.ShareCounts, error)
	Totals(ctx context.Context) (model.ShareCounts, error)
	TotalsByPlatform(ctx context.Context) (map[string]model.ShareCounts, error)
}

type shareEventRepo struct {
	db *gorm.DB
}

// NewShareEventRepo creates a ShareEventRepository
func NewShareEventRepo(db *gorm.DB) ShareEventRepository {
	return &shareEventRepo{db: db}
}

func (r *shareEventRepo) Create(ctx context.Context, events ...*model.ShareEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

type kindCountRow struct {
	Key   string
	Kind  string
	Count int64
}

func (r *shareEventRepo) CountsByLead(ctx context.Context, leadID string) (model.ShareCounts, error) {
	var counts model.ShareCounts
	var rows []kindCountRow
	err := r.db.WithContext(ctx).
		Model(&model.ShareEvent{}).
		Select("kind, COUNT(*) AS count").
		Where("lead_id = ?", leadID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Kind, row.Count)
	}
	return counts, nil
}

func (r *shareEventRepo) CountsByLeads(ctx context.Context, leadIDs []string) (map[string]model.ShareCounts, error) {
	out := make(map[string]model.ShareCounts, len(leadIDs))
	if len(leadIDs) == 0 {
		return out, nil
	}

	var rows []kindCountRow
	err := r.db.WithContext(ctx).
		Model(&model.ShareEvent{}).
		Select("lead_id AS key, kind, COUNT(*) AS count").
		Where("lead_id IN ?", leadIDs).
		Group("lead_id, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := out[row.Key]
		c.Add(row.Kind, row.Count)
		out[row.Key] = c
	}
	return out, nil
}

func (r *shareEventRepo) Totals(ctx context.Context) (model.ShareCounts, error) {
	var counts model.ShareCounts
	var rows []kindCountRow
	err := r.db.WithContext(ctx).
		Model(&model.ShareEvent{}).
		Select("kind, COUNT(*) AS count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Kind, row.Count)
	}
	return counts, nil
}

func (r *shareEventRepo) TotalsByPlatform(ctx context.Context) (map[string]model.ShareCounts, error) {
	var rows []kindCountRow
	err := r.db.WithContext(ctx).
		Model(&model.ShareEvent{}).
		Select("platform AS key, kind, COUNT(*) AS count").
		Where("platform <> ''").
		Group("platform, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.ShareCounts)
	for _, row := range rows {
		c := out[row.Key]
		c.Add(row.Kind, row.Count)
		out[row.Key] = c
	}
	return out, nil
}
