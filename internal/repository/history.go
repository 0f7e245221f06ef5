package repository

import (
	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record appends one viewing session. History is a log: rows are never
// merged with or deduplicated against earlier sessions of the same movie.
func (r *HistoryRepository) Record(h *model.WatchHistory) error {
	return r.db.Create(h).Error
}

// ListByUser returns the user's sessions, most recent first.
func (r *HistoryRepository) ListByUser(userID, limit, offset int) ([]*model.WatchHistory, error) {
	var histories []*model.WatchHistory
	err := r.db.Preload("Movie").
		Where("user_id = ?", userID).
		Order("watched_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&histories).Error
	return histories, err
}

// CountByUser returns the number of recorded sessions.
func (r *HistoryRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.WatchHistory{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
