package repository

import (
	"errors"
	"time"

	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Toggle flips watchlist membership for (user, movie) and reports the
// resulting state. The whole operation runs in one transaction: delete-first,
// create when nothing was deleted. A duplicate-key error on the create means
// another request added the row between our delete and create, so the toggle
// resolves it by deleting, keeping at most one row per pair. The create runs
// under a savepoint: Postgres aborts the transaction on the failed insert,
// and rolling back to the savepoint keeps it usable for the recovery delete.
func (r *WatchlistRepository) Toggle(userID, movieID int) (inWatchlist bool, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.Watchlist{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			inWatchlist = false
			return nil
		}

		entry := &model.Watchlist{
			UserID:  userID,
			MovieID: movieID,
			AddedAt: time.Now(),
		}
		if err := tx.SavePoint("watchlist_add").Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if err := tx.RollbackTo("watchlist_add").Error; err != nil {
					return err
				}
				inWatchlist = false
				return tx.Where("user_id = ? AND movie_id = ?", userID, movieID).
					Delete(&model.Watchlist{}).Error
			}
			return err
		}
		inWatchlist = true
		return nil
	})
	return inWatchlist, err
}

// Contains reports membership.
func (r *WatchlistRepository) Contains(userID, movieID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.Watchlist{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's watchlist, newest first, with movies loaded.
func (r *WatchlistRepository) ListByUser(userID, limit, offset int) ([]*model.Watchlist, error) {
	var entries []*model.Watchlist
	err := r.db.Preload("Movie").Preload("Movie.Genres").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

// CountByUser returns the watchlist size.
func (r *WatchlistRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Watchlist{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
