package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/handler"
	"github.com/user/streamly/internal/middleware"
)

// RegisterRoutes wires every route.
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== public pages ====================
	pages := r.Group("")
	pages.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		pages.GET("/", h.Home)
		pages.GET("/movies", h.Movies)
		pages.GET("/movie/:id", h.MovieDetail)
		pages.GET("/genres", h.Genres)
		pages.GET("/genre/:id", h.GenreDetail)
		pages.GET("/recommendations", h.Recommendations)
		pages.GET("/mood/:id", h.MoodDetail)

		pages.GET("/login", h.LoginPage)
		pages.POST("/login", h.Login)
		pages.GET("/signup", h.SignupPage)
		pages.POST("/signup", h.Signup)
		pages.POST("/logout", h.Logout)
	}

	// ==================== user pages (login required) ====================
	user := r.Group("")
	user.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		user.GET("/watchlist", h.WatchlistPage)
		user.GET("/history", h.HistoryPage)
	}

	// ==================== JSON API ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.POST("/rate", h.Rate)
		api.POST("/watchlist/toggle", h.WatchlistToggle)
		api.POST("/watch/record", h.WatchRecord)
		api.POST("/random-movie-by-mood", h.RandomMovieByMood)
		api.GET("/random-movie", h.RandomMovie)
	}

	// ==================== admin (role required) ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", h.AdminDashboard)
		admin.POST("/movies", h.AdminMovieCreate)
		admin.PUT("/movies/:id", h.AdminMovieUpdate)
		admin.DELETE("/movies/:id", h.AdminMovieDelete)
		admin.POST("/genres", h.AdminGenreCreate)
		admin.PUT("/genres/:id", h.AdminGenreUpdate)
		admin.DELETE("/genres/:id", h.AdminGenreDelete)
		admin.POST("/moods", h.AdminMoodCreate)
		admin.PUT("/moods/:id", h.AdminMoodUpdate)
		admin.DELETE("/moods/:id", h.AdminMoodDelete)
		admin.PUT("/users/:id/subscription", h.AdminUserSubscription)
	}
}

// LoadTemplates assembles each page from the shared layouts and partials.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"join": strings.Join,
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}

	pagesList := []string{
		"home", "movies", "movie",
		"genres", "genre",
		"recommendations", "mood",
		"login", "signup",
		"watchlist", "history",
		"404",
	}

	for _, page := range pagesList {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
