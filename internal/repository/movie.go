package repository

import (
	"errors"
	"strings"

	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
)

// PageSize is the fixed page length for movie listings.
const PageSize = 12

// Sort keys accepted by List. Anything else falls back to SortNewest.
const (
	SortNewest = "newest"
	SortTitle  = "title"
	SortYear   = "year"
	SortViews  = "views"
	SortRating = "rating"
)

// MovieFilters narrows a listing. Zero values mean "no filter".
type MovieFilters struct {
	Search       string
	GenreID      int
	Year         int
	Subscription string
	Sort         string
	Page         int
}

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// List returns one page of movies matching the filters plus the total match
// count. Filters compose conjunctively; an empty page is not an error.
func (r *MovieRepository) List(f MovieFilters) ([]model.Movie, int64, error) {
	q := r.db.Model(&model.Movie{})

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(movies.title) LIKE ? OR LOWER(movies.description) LIKE ?", pattern, pattern)
	}
	if f.GenreID > 0 {
		q = q.Joins("JOIN movie_genres mg ON mg.movie_id = movies.id").
			Where("mg.genre_id = ?", f.GenreID)
	}
	if f.Year > 0 {
		q = q.Where("movies.year = ?", f.Year)
	}
	if model.TierRank(f.Subscription) >= 0 {
		q = q.Where("movies.subscription_required IN ?", tiersUpTo(f.Subscription))
	}

	// Count on a detached session so Distinct does not leak into the Find
	// below and strip the select list down to the id.
	var total int64
	if err := q.Session(&gorm.Session{}).Distinct("movies.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}

	// Rating sort needs the aggregate; the rest are plain column orders.
	// Unrecognized keys fall back to newest-first.
	switch f.Sort {
	case SortTitle:
		q = q.Order("movies.title ASC")
	case SortYear:
		q = q.Order("movies.year DESC, movies.id ASC")
	case SortViews:
		q = q.Order("movies.view_count DESC, movies.id ASC")
	case SortRating:
		q = q.Select("movies.*, COALESCE(AVG(user_ratings.rating), 0) AS average_rating").
			Joins("LEFT JOIN user_ratings ON user_ratings.movie_id = movies.id").
			Group("movies.id").
			Order("average_rating DESC, movies.id ASC")
	default:
		q = q.Order("movies.created_at DESC, movies.id DESC")
	}

	var movies []model.Movie
	err := q.Preload("Genres").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&movies).Error
	return movies, total, err
}

// tiersUpTo lists the tiers watchable at the given tier.
func tiersUpTo(tier string) []string {
	rank := model.TierRank(tier)
	tiers := make([]string, 0, 3)
	for _, t := range []string{model.TierFree, model.TierBasic, model.TierPremium} {
		if model.TierRank(t) <= rank {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// FindByID loads a movie with its genres and moods. Returns nil when the id
// does not resolve.
func (r *MovieRepository) FindByID(id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Preload("Genres").Preload("Moods").First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindBySlug loads a movie by its unique slug.
func (r *MovieRepository) FindBySlug(slug string) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Preload("Genres").Preload("Moods").Where("slug = ?", slug).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Featured returns movies flagged for the trending section.
func (r *MovieRepository) Featured(limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Preload("Genres").
		Where("is_featured = ?", true).
		Order("view_count DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// NewReleases returns movies flagged as new.
func (r *MovieRepository) NewReleases(limit int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Preload("Genres").
		Where("is_new_release = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// Related returns up to limit other movies sharing at least one genre with
// the given movie, deduplicated, the movie itself excluded.
func (r *MovieRepository) Related(movieID, limit int) ([]model.Movie, error) {
	genreIDs := r.db.Table("movie_genres").Select("genre_id").Where("movie_id = ?", movieID)

	var movies []model.Movie
	err := r.db.Model(&model.Movie{}).
		Distinct("movies.*").
		Joins("JOIN movie_genres mg ON mg.movie_id = movies.id").
		Where("mg.genre_id IN (?)", genreIDs).
		Where("movies.id <> ?", movieID).
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// ByMood returns one page of movies tagged with the mood.
func (r *MovieRepository) ByMood(moodID, page int) ([]model.Movie, int64, error) {
	if page < 1 {
		page = 1
	}
	q := r.db.Model(&model.Movie{}).
		Joins("JOIN movie_moods mm ON mm.movie_id = movies.id").
		Where("mm.mood_id = ?", moodID)

	var total int64
	if err := q.Session(&gorm.Session{}).Distinct("movies.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []model.Movie
	err := q.Preload("Genres").
		Order("movies.title ASC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&movies).Error
	return movies, total, err
}

// MoodMovieIDs returns the ids of every movie tagged with the mood.
func (r *MovieRepository) MoodMovieIDs(moodID int) ([]int, error) {
	var ids []int
	err := r.db.Table("movie_moods").
		Where("mood_id = ?", moodID).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// AllMovieIDs returns every movie id in the catalog.
func (r *MovieRepository) AllMovieIDs() ([]int, error) {
	var ids []int
	err := r.db.Model(&model.Movie{}).Pluck("id", &ids).Error
	return ids, err
}

// IncrementViewCount bumps the view counter without touching updated_at.
func (r *MovieRepository) IncrementViewCount(id int) error {
	return r.db.Model(&model.Movie{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Create inserts a movie together with its genre and mood associations.
func (r *MovieRepository) Create(movie *model.Movie) error {
	return r.db.Create(movie).Error
}

// Update saves movie fields and replaces its associations.
func (r *MovieRepository) Update(movie *model.Movie) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Moods").Save(movie).Error; err != nil {
			return err
		}
		if err := tx.Model(movie).Association("Genres").Replace(movie.Genres); err != nil {
			return err
		}
		return tx.Model(movie).Association("Moods").Replace(movie.Moods)
	})
}

// Delete removes a movie and its dependent rows.
func (r *MovieRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&model.UserRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.Watchlist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.WatchHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM movie_genres WHERE movie_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM movie_moods WHERE movie_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Movie{}, id).Error
	})
}

// Count returns the catalog size.
func (r *MovieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Count(&count).Error
	return count, err
}
