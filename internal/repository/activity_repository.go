package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/blog-publisher/internal/models"
)

// ActivityRepository writes the ingestion audit trail.
type ActivityRepository struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the newest audit rows, optionally limited to one slug.
func (r *ActivityRepository) Recent(ctx context.Context, slug string, limit int) ([]models.ActivityLog, error) {
	q := r.db.WithContext(ctx).Order("logged_at DESC").Limit(limit)
	if slug != "" {
		q = q.Where("slug = ?", slug)
	}
	var rows []models.ActivityLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
