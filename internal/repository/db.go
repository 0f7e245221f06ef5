package repository

import (
	"fmt"
	"log"

	"github.com/user/streamly/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the Postgres connection, configures the pool and runs
// migrations.
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and the supporting indexes. Also used by the
// test suites against sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Genre{},
		&model.Mood{},
		&model.Movie{},
		&model.UserRating{},
		&model.Watchlist{},
		&model.WatchHistory{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	// Aggregate and join lookups not covered by the model tags.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_user_ratings_movie ON user_ratings(movie_id)",
		"CREATE INDEX IF NOT EXISTS idx_watchlists_movie ON watchlists(movie_id)",
		"CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)",
		"CREATE INDEX IF NOT EXISTS idx_movie_moods_mood ON movie_moods(mood_id)",
	}
	for _, ddl := range indexes {
		if err := db.Exec(ddl).Error; err != nil {
			log.Printf("[Migrate] index creation failed: %v", err)
		}
	}

	return nil
}

// Repositories bundles every repository behind one handle.
type Repositories struct {
	DB        *gorm.DB
	User      *UserRepository
	Movie     *MovieRepository
	Genre     *GenreRepository
	Mood      *MoodRepository
	Rating    *RatingRepository
	Watchlist *WatchlistRepository
	History   *HistoryRepository
}

// NewRepositories wires the repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:        db,
		User:      NewUserRepository(db),
		Movie:     NewMovieRepository(db),
		Genre:     NewGenreRepository(db),
		Mood:      NewMoodRepository(db),
		Rating:    NewRatingRepository(db),
		Watchlist: NewWatchlistRepository(db),
		History:   NewHistoryRepository(db),
	}
}
