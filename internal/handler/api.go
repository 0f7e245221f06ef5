package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/middleware"
	"github.com/user/streamly/internal/model"
	"github.com/user/streamly/internal/utils"
)

// RateRequest is the body of POST /api/rate.
type RateRequest struct {
	MovieID int    `json:"movie_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Review  string `json:"review"`
}

// Rate upserts the caller's rating for a movie and returns the movie's
// recomputed average.
func (h *Handler) Rate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "movie_id and a rating between 1 and 5 are required")
		return
	}

	movie, err := h.Repos.Movie.FindByID(req.MovieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "movie not found")
		return
	}

	if err := h.Repos.Rating.Upsert(userID, movie.ID, req.Rating, req.Review); err != nil {
		log.Printf("[Rate] upsert failed: %v", err)
		utils.InternalServerError(c, "could not save rating")
		return
	}

	avg, err := h.Repos.Rating.Average(movie.ID)
	if err != nil {
		log.Printf("[Rate] average recompute failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "rating saved",
		"average_rating": avg,
	})
}

// WatchlistToggleRequest is the body of POST /api/watchlist/toggle.
type WatchlistToggleRequest struct {
	MovieID int `json:"movie_id" binding:"required"`
}

// WatchlistToggle flips watchlist membership and reports the new state.
func (h *Handler) WatchlistToggle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	var req WatchlistToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "movie_id is required")
		return
	}

	movie, err := h.Repos.Movie.FindByID(req.MovieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "movie not found")
		return
	}

	inWatchlist, err := h.Repos.Watchlist.Toggle(userID, movie.ID)
	if err != nil {
		log.Printf("[WatchlistToggle] toggle failed: %v", err)
		utils.InternalServerError(c, "could not update watchlist")
		return
	}

	message := "removed from watchlist"
	if inWatchlist {
		message = "added to watchlist"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"in_watchlist": inWatchlist,
		"message":      message,
	})
}

// WatchRecordRequest is the body of POST /api/watch/record.
type WatchRecordRequest struct {
	MovieID         int  `json:"movie_id" binding:"required"`
	DurationMinutes int  `json:"duration_minutes" binding:"omitempty,min=0"`
	Completed       bool `json:"completed"`
}

// WatchRecord appends one viewing session. Every call creates a new row,
// even for a movie watched moments ago.
func (h *Handler) WatchRecord(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	var req WatchRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "movie_id is required")
		return
	}

	movie, err := h.Repos.Movie.FindByID(req.MovieID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "movie not found")
		return
	}

	record := &model.WatchHistory{
		UserID:               userID,
		MovieID:              movie.ID,
		WatchedAt:            time.Now(),
		WatchDurationMinutes: req.DurationMinutes,
		Completed:            req.Completed,
	}
	if err := h.Repos.History.Record(record); err != nil {
		log.Printf("[WatchRecord] append failed: %v", err)
		utils.InternalServerError(c, "could not record watch session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "watch session recorded",
	})
}

// RandomByMoodRequest is the body of POST /api/random-movie-by-mood.
type RandomByMoodRequest struct {
	MoodID int `json:"mood_id" binding:"required"`
}

// RandomMovieByMood picks one movie uniformly among those tagged with the
// mood. An empty pool is a negative result, not an error.
func (h *Handler) RandomMovieByMood(c *gin.Context) {
	var req RandomByMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "mood_id is required")
		return
	}

	mood, err := h.Repos.Mood.FindByID(req.MoodID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if mood == nil {
		utils.NotFound(c, "mood not found")
		return
	}

	movieID, ok, err := h.Recommend.PickByMood(mood.ID)
	if err != nil {
		log.Printf("[RandomMovieByMood] pick failed: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "no movies for this mood",
		})
		return
	}

	movie, err := h.Repos.Movie.FindByID(movieID)
	if err != nil || movie == nil {
		utils.InternalServerError(c, "")
		return
	}
	avg, _ := h.Repos.Rating.Average(movie.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"mood": gin.H{
			"id":    mood.ID,
			"name":  mood.Name,
			"icon":  mood.Icon,
			"color": mood.Color,
		},
		"movie": h.moviePayload(movie, avg),
	})
}

// RandomMovie picks one movie uniformly among the whole catalog.
func (h *Handler) RandomMovie(c *gin.Context) {
	movieID, ok, err := h.Recommend.PickAny()
	if err != nil {
		log.Printf("[RandomMovie] pick failed: %v", err)
		utils.InternalServerError(c, "")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "no movies available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"movie_id": movieID,
	})
}

// moviePayload is the public JSON projection of a movie.
func (h *Handler) moviePayload(movie *model.Movie, avg float64) gin.H {
	return gin.H{
		"id":             movie.ID,
		"title":          movie.Title,
		"slug":           movie.Slug,
		"year":           movie.Year,
		"description":    movie.Description,
		"poster":         movie.Poster(),
		"duration":       movie.FormattedDuration(),
		"content_rating": movie.ContentRating,
		"average_rating": avg,
		"genres":         movie.GenreNames(),
	}
}
