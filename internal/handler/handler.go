package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/config"
	"github.com/user/streamly/internal/middleware"
	"github.com/user/streamly/internal/model"
	"github.com/user/streamly/internal/repository"
	"github.com/user/streamly/internal/service"
	"github.com/user/streamly/internal/utils"
)

// Handler holds the shared state for all HTTP handlers.
type Handler struct {
	Repos     *repository.Repositories
	Config    *config.Config
	Recommend *service.RecommendService
}

// NewHandler wires the handler with its repositories and services.
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	return &Handler{
		Repos:     repos,
		Config:    cfg,
		Recommend: service.NewRecommendService(repos.Movie),
	}
}

// RenderData merges the common template data with page-specific values.
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}

	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}

	res["ActiveMenu"] = h.getActiveMenu(c.Request.URL.Path)

	for k, v := range data {
		res[k] = v
	}

	return res
}

func (h *Handler) getActiveMenu(path string) string {
	switch {
	case path == "/":
		return "home"
	case path == "/movies" || strings.HasPrefix(path, "/movie/"):
		return "movies"
	case path == "/genres" || strings.HasPrefix(path, "/genre/"):
		return "genres"
	case path == "/recommendations" || strings.HasPrefix(path, "/mood/"):
		return "recommendations"
	case path == "/watchlist" || path == "/history":
		return "user"
	default:
		return ""
	}
}

// notFoundPage renders the 404 template.
func (h *Handler) notFoundPage(c *gin.Context, title string) {
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": title + " - " + h.Config.SiteName,
	}))
}

// ==================== public pages ====================

// Home shows featured and new-release movies. Both lists are cached for a
// few minutes; the catalog changes rarely.
func (h *Handler) Home(c *gin.Context) {
	type homeData struct {
		Featured    []model.Movie
		NewReleases []model.Movie
	}

	var data homeData
	if cached, found := utils.CacheGet("home"); found {
		data = cached.(homeData)
	} else {
		featured, err := h.Repos.Movie.Featured(repository.PageSize)
		if err != nil {
			log.Printf("[Home] featured query failed: %v", err)
		}
		newReleases, err := h.Repos.Movie.NewReleases(repository.PageSize)
		if err != nil {
			log.Printf("[Home] new releases query failed: %v", err)
		}
		data = homeData{Featured: featured, NewReleases: newReleases}
		utils.CacheSet("home", data, 5*time.Minute)
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title":       h.Config.SiteName + " - Stream movies you love",
		"Featured":    data.Featured,
		"NewReleases": data.NewReleases,
	}))
}

// Movies is the filtered, sorted, paginated catalog listing.
// Query params: search, genre, year, subscription, sort, page.
func (h *Handler) Movies(c *gin.Context) {
	genreID, _ := strconv.Atoi(c.Query("genre"))
	year, _ := strconv.Atoi(c.Query("year"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	filters := repository.MovieFilters{
		Search:       c.Query("search"),
		GenreID:      genreID,
		Year:         year,
		Subscription: c.Query("subscription"),
		Sort:         c.Query("sort"),
		Page:         page,
	}

	movies, total, err := h.Repos.Movie.List(filters)
	if err != nil {
		log.Printf("[Movies] listing query failed: %v", err)
	}

	genres, _ := h.Repos.Genre.List()

	totalPages := int((total + repository.PageSize - 1) / repository.PageSize)

	c.HTML(http.StatusOK, "movies.html", h.RenderData(c, gin.H{
		"Title":      "Browse Movies - " + h.Config.SiteName,
		"Movies":     movies,
		"Genres":     genres,
		"Filters":    filters,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
	}))
}

// MovieDetail shows one movie with the requester's rating, watchlist state,
// related movies and recent reviews.
func (h *Handler) MovieDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.notFoundPage(c, "Movie not found")
		return
	}

	movie, err := h.Repos.Movie.FindByID(id)
	if err != nil || movie == nil {
		h.notFoundPage(c, "Movie not found")
		return
	}

	if err := h.Repos.Movie.IncrementViewCount(movie.ID); err != nil {
		log.Printf("[MovieDetail] view count update failed: %v", err)
	}

	avg, _ := h.Repos.Rating.Average(movie.ID)
	movie.AverageRating = avg
	ratingCount, _ := h.Repos.Rating.CountForMovie(movie.ID)
	related, _ := h.Repos.Movie.Related(movie.ID, 6)
	reviews, _ := h.Repos.Rating.RecentReviews(movie.ID, 5)

	var userRating *model.UserRating
	inWatchlist := false
	canWatch := model.TierRank(movie.Subscription) <= model.TierRank(model.TierFree)
	userID := middleware.GetUserID(c)
	if userID > 0 {
		userRating, _ = h.Repos.Rating.ForUser(userID, movie.ID)
		inWatchlist, _ = h.Repos.Watchlist.Contains(userID, movie.ID)
		if user, _ := h.Repos.User.FindByID(userID); user != nil {
			canWatch = user.CanWatch(movie.Subscription)
		}
	}

	c.HTML(http.StatusOK, "movie.html", h.RenderData(c, gin.H{
		"Title":       movie.Title + " (" + strconv.Itoa(movie.Year) + ") - " + h.Config.SiteName,
		"Movie":       movie,
		"RatingCount": ratingCount,
		"Related":     related,
		"Reviews":     reviews,
		"UserRating":  userRating,
		"InWatchlist": inWatchlist,
		"CanWatch":    canWatch,
	}))
}

// Genres lists all genres.
func (h *Handler) Genres(c *gin.Context) {
	genres, err := h.Repos.Genre.List()
	if err != nil {
		log.Printf("[Genres] query failed: %v", err)
	}

	c.HTML(http.StatusOK, "genres.html", h.RenderData(c, gin.H{
		"Title":  "Genres - " + h.Config.SiteName,
		"Genres": genres,
	}))
}

// GenreDetail lists movies in one genre, paginated.
func (h *Handler) GenreDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.notFoundPage(c, "Genre not found")
		return
	}

	genre, err := h.Repos.Genre.FindByID(id)
	if err != nil || genre == nil {
		h.notFoundPage(c, "Genre not found")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	movies, total, err := h.Repos.Movie.List(repository.MovieFilters{
		GenreID: genre.ID,
		Sort:    repository.SortTitle,
		Page:    page,
	})
	if err != nil {
		log.Printf("[GenreDetail] listing failed: %v", err)
	}

	totalPages := int((total + repository.PageSize - 1) / repository.PageSize)

	c.HTML(http.StatusOK, "genre.html", h.RenderData(c, gin.H{
		"Title":      genre.Name + " Movies - " + h.Config.SiteName,
		"Genre":      genre,
		"Movies":     movies,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}))
}

// Recommendations shows the mood browsing page.
func (h *Handler) Recommendations(c *gin.Context) {
	moods, err := h.Repos.Mood.List()
	if err != nil {
		log.Printf("[Recommendations] query failed: %v", err)
	}

	c.HTML(http.StatusOK, "recommendations.html", h.RenderData(c, gin.H{
		"Title": "What are you in the mood for? - " + h.Config.SiteName,
		"Moods": moods,
	}))
}

// MoodDetail lists movies tagged with one mood.
func (h *Handler) MoodDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.notFoundPage(c, "Mood not found")
		return
	}

	mood, err := h.Repos.Mood.FindByID(id)
	if err != nil || mood == nil {
		h.notFoundPage(c, "Mood not found")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	movies, total, err := h.Repos.Movie.ByMood(mood.ID, page)
	if err != nil {
		log.Printf("[MoodDetail] listing failed: %v", err)
	}

	totalPages := int((total + repository.PageSize - 1) / repository.PageSize)

	c.HTML(http.StatusOK, "mood.html", h.RenderData(c, gin.H{
		"Title":      mood.Name + " - " + h.Config.SiteName,
		"Mood":       mood,
		"Movies":     movies,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}))
}

// ==================== user pages ====================

// WatchlistPage shows the user's saved movies.
func (h *Handler) WatchlistPage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	entries, err := h.Repos.Watchlist.ListByUser(userID, 100, 0)
	if err != nil {
		log.Printf("[WatchlistPage] query failed: %v", err)
	}

	c.HTML(http.StatusOK, "watchlist.html", h.RenderData(c, gin.H{
		"Title":   "My Watchlist - " + h.Config.SiteName,
		"Entries": entries,
	}))
}

// HistoryPage shows the user's viewing sessions.
func (h *Handler) HistoryPage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	histories, err := h.Repos.History.ListByUser(userID, 100, 0)
	if err != nil {
		log.Printf("[HistoryPage] query failed: %v", err)
	}
	count, _ := h.Repos.History.CountByUser(userID)

	c.HTML(http.StatusOK, "history.html", h.RenderData(c, gin.H{
		"Title":   "Watch History - " + h.Config.SiteName,
		"History": histories,
		"Count":   count,
	}))
}

// ==================== auth ====================

// LoginPage renders the login form. Logged-in users go home.
func (h *Handler) LoginPage(c *gin.Context) {
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":    "Log in - " + h.Config.SiteName,
		"Redirect": c.Query("redirect"),
	}))
}

// Login authenticates by username and password.
func (h *Handler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	redirect := c.PostForm("redirect")

	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/"
	}

	user, err := h.Repos.User.FindByUsername(username)
	if err != nil || user == nil || !h.Repos.User.CheckPassword(user, password) {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title": "Log in - " + h.Config.SiteName,
			"Error": "Invalid username or password",
		}))
		return
	}

	if err := h.startSession(c, user); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", h.RenderData(c, gin.H{
			"Title": "Log in - " + h.Config.SiteName,
			"Error": "Login failed, please try again",
		}))
		return
	}

	c.Redirect(http.StatusFound, redirect)
}

// SignupPage renders the signup form.
func (h *Handler) SignupPage(c *gin.Context) {
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "signup.html", h.RenderData(c, gin.H{
		"Title": "Sign up - " + h.Config.SiteName,
	}))
}

// Signup registers a new account. Duplicate username or email is a conflict
// reported back on the form.
func (h *Handler) Signup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	renderError := func(msg string) {
		c.HTML(http.StatusOK, "signup.html", h.RenderData(c, gin.H{
			"Title":    "Sign up - " + h.Config.SiteName,
			"Error":    msg,
			"Username": username,
			"Email":    email,
		}))
	}

	if username == "" || len(username) < 2 || len(username) > 30 {
		renderError("Username must be between 2 and 30 characters")
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		renderError("Please enter a valid email address")
		return
	}
	if password != confirmPassword {
		renderError("Passwords do not match")
		return
	}
	if len(password) < 6 {
		renderError("Password must be at least 6 characters")
		return
	}

	user, err := h.Repos.User.Create(username, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			renderError("That username or email is already registered")
			return
		}
		log.Printf("[Signup] create failed: %v", err)
		renderError("Signup failed, please try again")
		return
	}

	if err := h.startSession(c, user); err != nil {
		log.Printf("[Signup] session start failed: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout drops the token cookie and clears the session.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// startSession issues the JWT cookie and stores the session user.
func (h *Handler) startSession(c *gin.Context, user *model.User) error {
	token, err := middleware.GenerateToken(user.ID, user.Username, user.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		return err
	}
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	session := sessions.Default(c)
	session.Set("userinfo", model.SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
	return session.Save()
}
