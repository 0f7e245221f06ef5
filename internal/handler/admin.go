package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/model"
	"github.com/user/streamly/internal/utils"
)

// MovieForm is the admin payload for creating or updating a movie.
type MovieForm struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	PosterURL       string `json:"poster_url"`
	PosterImage     string `json:"poster_image"`
	Year            int    `json:"year" binding:"required,min=1888"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
	ContentRating   string `json:"content_rating" binding:"omitempty,oneof=G PG PG-13 R NC-17"`
	IsFeatured      bool   `json:"is_featured"`
	IsNewRelease    bool   `json:"is_new_release"`
	Subscription    string `json:"subscription_required" binding:"omitempty,tier"`
	GenreIDs        []int  `json:"genre_ids"`
	MoodIDs         []int  `json:"mood_ids"`
}

// AdminDashboard reports catalog and user counts.
func (h *Handler) AdminDashboard(c *gin.Context) {
	movieCount, _ := h.Repos.Movie.Count()
	userCount, _ := h.Repos.User.Count()

	utils.Success(c, gin.H{
		"movies": movieCount,
		"users":  userCount,
	})
}

// AdminMovieCreate inserts a catalog entry. The slug derives from the title;
// a collision gets the year appended.
func (h *Handler) AdminMovieCreate(c *gin.Context) {
	var form MovieForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid movie payload")
		return
	}

	movie, err := h.movieFromForm(&form, nil)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	movie.Slug = utils.Slugify(form.Title)
	if existing, _ := h.Repos.Movie.FindBySlug(movie.Slug); existing != nil {
		movie.Slug = movie.Slug + "-" + strconv.Itoa(form.Year)
	}

	if err := h.Repos.Movie.Create(movie); err != nil {
		log.Printf("[AdminMovieCreate] create failed: %v", err)
		utils.InternalServerError(c, "could not create movie")
		return
	}

	h.invalidateCatalogCaches()
	utils.Success(c, movie)
}

// AdminMovieUpdate replaces the fields and associations of a movie.
func (h *Handler) AdminMovieUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid movie id")
		return
	}

	existing, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing == nil {
		utils.NotFound(c, "movie not found")
		return
	}

	var form MovieForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid movie payload")
		return
	}

	movie, err := h.movieFromForm(&form, existing)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	if err := h.Repos.Movie.Update(movie); err != nil {
		log.Printf("[AdminMovieUpdate] update failed: %v", err)
		utils.InternalServerError(c, "could not update movie")
		return
	}

	h.invalidateCatalogCaches()
	utils.Success(c, movie)
}

// AdminMovieDelete removes a movie and its ratings, watchlist entries and
// history rows.
func (h *Handler) AdminMovieDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid movie id")
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "movie not found")
		return
	}

	if err := h.Repos.Movie.Delete(id); err != nil {
		log.Printf("[AdminMovieDelete] delete failed: %v", err)
		utils.InternalServerError(c, "could not delete movie")
		return
	}

	h.invalidateCatalogCaches()
	utils.SuccessWithMessage(c, "movie deleted", nil)
}

// movieFromForm builds the model, resolving genre and mood associations.
func (h *Handler) movieFromForm(form *MovieForm, existing *model.Movie) (*model.Movie, error) {
	genres, err := h.Repos.Genre.FindByIDs(form.GenreIDs)
	if err != nil {
		return nil, err
	}
	moods, err := h.Repos.Mood.FindByIDs(form.MoodIDs)
	if err != nil {
		return nil, err
	}

	movie := &model.Movie{
		Title:           form.Title,
		Description:     form.Description,
		PosterURL:       form.PosterURL,
		PosterImage:     form.PosterImage,
		Year:            form.Year,
		DurationMinutes: form.DurationMinutes,
		ContentRating:   form.ContentRating,
		IsFeatured:      form.IsFeatured,
		IsNewRelease:    form.IsNewRelease,
		Subscription:    form.Subscription,
		Genres:          genres,
		Moods:           moods,
	}
	if movie.ContentRating == "" {
		movie.ContentRating = model.RatingPG13
	}
	if movie.Subscription == "" {
		movie.Subscription = model.TierFree
	}
	if existing != nil {
		movie.ID = existing.ID
		movie.Slug = existing.Slug
		movie.ViewCount = existing.ViewCount
		movie.CreatedAt = existing.CreatedAt
	}
	return movie, nil
}

// GenreForm is the admin payload for genres.
type GenreForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) AdminGenreCreate(c *gin.Context) {
	var form GenreForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid genre payload")
		return
	}

	genre := &model.Genre{Name: form.Name, Description: form.Description}
	if err := h.Repos.Genre.Create(genre); err != nil {
		log.Printf("[AdminGenreCreate] create failed: %v", err)
		utils.InternalServerError(c, "could not create genre")
		return
	}
	utils.Success(c, genre)
}

func (h *Handler) AdminGenreUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid genre id")
		return
	}
	genre, err := h.Repos.Genre.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if genre == nil {
		utils.NotFound(c, "genre not found")
		return
	}

	var form GenreForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid genre payload")
		return
	}

	genre.Name = form.Name
	genre.Description = form.Description
	if err := h.Repos.Genre.Update(genre); err != nil {
		log.Printf("[AdminGenreUpdate] update failed: %v", err)
		utils.InternalServerError(c, "could not update genre")
		return
	}
	utils.Success(c, genre)
}

func (h *Handler) AdminGenreDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid genre id")
		return
	}
	if err := h.Repos.Genre.Delete(id); err != nil {
		log.Printf("[AdminGenreDelete] delete failed: %v", err)
		utils.InternalServerError(c, "could not delete genre")
		return
	}
	utils.SuccessWithMessage(c, "genre deleted", nil)
}

// MoodForm is the admin payload for moods.
type MoodForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (h *Handler) AdminMoodCreate(c *gin.Context) {
	var form MoodForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid mood payload")
		return
	}

	mood := &model.Mood{
		Name:        form.Name,
		Description: form.Description,
		Icon:        form.Icon,
		Color:       form.Color,
	}
	if err := h.Repos.Mood.Create(mood); err != nil {
		log.Printf("[AdminMoodCreate] create failed: %v", err)
		utils.InternalServerError(c, "could not create mood")
		return
	}
	utils.Success(c, mood)
}

func (h *Handler) AdminMoodUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid mood id")
		return
	}
	mood, err := h.Repos.Mood.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if mood == nil {
		utils.NotFound(c, "mood not found")
		return
	}

	var form MoodForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "invalid mood payload")
		return
	}

	mood.Name = form.Name
	mood.Description = form.Description
	mood.Icon = form.Icon
	if form.Color != "" {
		mood.Color = form.Color
	}
	if err := h.Repos.Mood.Update(mood); err != nil {
		log.Printf("[AdminMoodUpdate] update failed: %v", err)
		utils.InternalServerError(c, "could not update mood")
		return
	}
	utils.Success(c, mood)
}

func (h *Handler) AdminMoodDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid mood id")
		return
	}
	if err := h.Repos.Mood.Delete(id); err != nil {
		log.Printf("[AdminMoodDelete] delete failed: %v", err)
		utils.InternalServerError(c, "could not delete mood")
		return
	}
	utils.SuccessWithMessage(c, "mood deleted", nil)
}

// SubscriptionForm is the admin payload for changing an account's tier.
// Paid tiers need a window; moving back to free clears it.
type SubscriptionForm struct {
	Tier      string     `json:"tier" binding:"required,tier"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// AdminUserSubscription moves an account to a new subscription tier.
func (h *Handler) AdminUserSubscription(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.Repos.User.FindByID(id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.NotFound(c, "user not found")
		return
	}

	var form SubscriptionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "a valid tier is required")
		return
	}
	if form.Tier != model.TierFree && (form.StartDate == nil || form.EndDate == nil) {
		utils.BadRequest(c, "paid tiers need start_date and end_date")
		return
	}
	if form.Tier == model.TierFree {
		form.StartDate, form.EndDate = nil, nil
	}

	if err := h.Repos.User.UpdateSubscription(user.ID, form.Tier, form.StartDate, form.EndDate); err != nil {
		log.Printf("[AdminUserSubscription] update failed: %v", err)
		utils.InternalServerError(c, "could not update subscription")
		return
	}
	utils.SuccessWithMessage(c, "subscription updated", nil)
}

// invalidateCatalogCaches drops the cached home lists and random pools after
// a catalog change.
func (h *Handler) invalidateCatalogCaches() {
	utils.CacheDelete("home")
	h.Recommend.InvalidatePools()
}
