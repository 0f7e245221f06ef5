package model

import (
	"time"
)

// UserRating is one user's star rating for one movie.
// At most one row per (user, movie); repeat submissions update in place.
type UserRating struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_movie_rating"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_user_movie_rating"`
	Rating    int       `json:"rating" db:"rating"`
	Review    string    `json:"review" db:"review"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	User      *User     `json:"user,omitempty"`
	Movie     *Movie    `json:"movie,omitempty"`
}

// Watchlist marks a movie as saved for later. Row presence is membership.
type Watchlist struct {
	ID      int       `json:"id" db:"id"`
	UserID  int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_movie_watchlist"`
	MovieID int       `json:"movie_id" db:"movie_id" gorm:"uniqueIndex:idx_user_movie_watchlist"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
	Movie   *Movie    `json:"movie,omitempty"`
}

// WatchHistory is one viewing session. Append-only; never merged.
type WatchHistory struct {
	ID                   int       `json:"id" db:"id"`
	UserID               int       `json:"user_id" db:"user_id" gorm:"index:idx_user_watched_at"`
	MovieID              int       `json:"movie_id" db:"movie_id"`
	WatchedAt            time.Time `json:"watched_at" db:"watched_at" gorm:"index:idx_user_watched_at"`
	WatchDurationMinutes int       `json:"watch_duration_minutes" db:"watch_duration_minutes"`
	Completed            bool      `json:"completed" db:"completed"`
	Movie                *Movie    `json:"movie,omitempty"`
}
