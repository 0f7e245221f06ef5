package repository

import (
	"errors"
	"math"
	"time"

	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert creates the (user, movie) rating or overwrites rating and review in
// place, refreshing updated_at. Runs as a single statement so concurrent
// submissions cannot produce duplicate rows.
func (r *RatingRepository) Upsert(userID, movieID, rating int, review string) error {
	now := time.Now()
	rec := &model.UserRating{
		UserID:    userID,
		MovieID:   movieID,
		Rating:    rating,
		Review:    review,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     rating,
			"review":     review,
			"updated_at": now,
		}),
	}).Create(rec).Error
}

// Average returns the mean rating for a movie rounded to one decimal, or 0
// when the movie has no ratings.
func (r *RatingRepository) Average(movieID int) (float64, error) {
	var avg float64
	err := r.db.Model(&model.UserRating{}).
		Where("movie_id = ?", movieID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return math.Round(avg*10) / 10, nil
}

// ForUser returns the user's rating for a movie, or nil if they have not
// rated it.
func (r *RatingRepository) ForUser(userID, movieID int) (*model.UserRating, error) {
	var rec model.UserRating
	err := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentReviews returns the most recently updated ratings carrying a
// non-empty review text.
func (r *RatingRepository) RecentReviews(movieID, limit int) ([]model.UserRating, error) {
	var reviews []model.UserRating
	err := r.db.Preload("User").
		Where("movie_id = ? AND review <> ''", movieID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// CountForMovie returns the number of ratings a movie has received.
func (r *RatingRepository) CountForMovie(movieID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserRating{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}
