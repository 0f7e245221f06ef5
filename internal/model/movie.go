package model

import (
	"fmt"
	"time"
)

// Content ratings accepted for a movie.
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG-13"
	RatingR    = "R"
	RatingNC17 = "NC-17"
)

// Genre is a browsing category.
type Genre struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" gorm:"unique"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Mood is a recommendation tag, independent of genre.
type Mood struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name" gorm:"unique"`
	Description string `json:"description" db:"description"`
	Icon        string `json:"icon" db:"icon"`
	Color       string `json:"color" db:"color" gorm:"default:#3b82f6"`
}

// Movie is the catalog entry.
type Movie struct {
	ID              int       `json:"id" db:"id"`
	Title           string    `json:"title" db:"title" gorm:"index"`
	Slug            string    `json:"slug" db:"slug" gorm:"unique"`
	Description     string    `json:"description" db:"description"`
	PosterURL       string    `json:"poster_url" db:"poster_url"`
	PosterImage     string    `json:"poster_image" db:"poster_image"`
	Year            int       `json:"year" db:"year" gorm:"index"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	ContentRating   string    `json:"content_rating" db:"content_rating" gorm:"default:PG-13"`
	IsFeatured      bool      `json:"is_featured" db:"is_featured" gorm:"index"`
	IsNewRelease    bool      `json:"is_new_release" db:"is_new_release" gorm:"index"`
	Subscription    string    `json:"subscription_required" db:"subscription_required" gorm:"column:subscription_required;default:free"`
	ViewCount       int       `json:"view_count" db:"view_count" gorm:"default:0"`
	Genres          []Genre   `json:"genres,omitempty" gorm:"many2many:movie_genres"`
	Moods           []Mood    `json:"moods,omitempty" gorm:"many2many:movie_moods"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	// AverageRating is filled by aggregate queries, not stored.
	AverageRating float64 `json:"average_rating" gorm:"->;-:migration"`
}

// Poster prefers the uploaded image over the external URL.
func (m *Movie) Poster() string {
	if m.PosterImage != "" {
		return m.PosterImage
	}
	return m.PosterURL
}

// FormattedDuration renders the runtime as "2h 28m" or "45m".
func (m *Movie) FormattedDuration() string {
	hours := m.DurationMinutes / 60
	minutes := m.DurationMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// GenreNames flattens the loaded genre associations.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}
