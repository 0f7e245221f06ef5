package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/config"
	"github.com/user/streamly/internal/handler"
	"github.com/user/streamly/internal/model"
	"github.com/user/streamly/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the JSON API onto a fresh in-memory database. The
// identity middleware injects user_id from the X-Test-User header so tests
// can act as any user without minting tokens.
func newTestRouter(t *testing.T) (*gin.Engine, *repository.Repositories) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.NewRepositories(db)

	cfg := &config.Config{
		AppSecret: "test-secret",
		JWTExpiry: time.Hour,
		SiteName:  "Streamly",
	}
	h := handler.NewHandler(repos, cfg)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if v := c.GetHeader("X-Test-User"); v != "" {
			var id int
			fmt.Sscanf(v, "%d", &id)
			c.Set("user_id", id)
		}
		c.Next()
	})
	api := r.Group("/api")
	{
		api.POST("/rate", h.Rate)
		api.POST("/watchlist/toggle", h.WatchlistToggle)
		api.POST("/watch/record", h.WatchRecord)
		api.POST("/random-movie-by-mood", h.RandomMovieByMood)
		api.GET("/random-movie", h.RandomMovie)
	}
	return r, repos
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}, userID int) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func createMovie(t *testing.T, repos *repository.Repositories, title string) *model.Movie {
	t.Helper()
	m := &model.Movie{Title: title, Slug: title, Year: 2020, DurationMinutes: 100}
	if err := repos.Movie.Create(m); err != nil {
		t.Fatalf("create movie: %v", err)
	}
	return m
}

func createUser(t *testing.T, repos *repository.Repositories, name string) *model.User {
	t.Helper()
	u, err := repos.User.Create(name, name+"@example.com", "secret123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestRateRequiresAuth(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "inception")

	w := postJSON(t, r, "/api/rate", gin.H{"movie_id": movie.ID, "rating": 5}, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["success"] != false {
		t.Error("success should be false")
	}
}

func TestRateValidation(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "inception")
	alice := createUser(t, repos, "alice")

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"rating too high", gin.H{"movie_id": movie.ID, "rating": 6}, http.StatusBadRequest},
		{"rating zero", gin.H{"movie_id": movie.ID, "rating": 0}, http.StatusBadRequest},
		{"missing movie_id", gin.H{"rating": 3}, http.StatusBadRequest},
		{"unknown movie", gin.H{"movie_id": 9999, "rating": 3}, http.StatusNotFound},
		{"valid", gin.H{"movie_id": movie.ID, "rating": 3}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/rate", tt.body, alice.ID)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestRateReturnsAverage(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "inception")
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")

	postJSON(t, r, "/api/rate", gin.H{"movie_id": movie.ID, "rating": 5}, alice.ID)
	w := postJSON(t, r, "/api/rate", gin.H{"movie_id": movie.ID, "rating": 4}, bob.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["average_rating"] != 4.5 {
		t.Fatalf("average_rating = %v, want 4.5", resp["average_rating"])
	}
}

func TestWatchlistToggleFlow(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "inception")
	alice := createUser(t, repos, "alice")

	w := postJSON(t, r, "/api/watchlist/toggle", gin.H{"movie_id": movie.ID}, alice.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["in_watchlist"] != true {
		t.Fatalf("first toggle in_watchlist = %v, want true", resp["in_watchlist"])
	}
	if resp["message"] != "added to watchlist" {
		t.Errorf("message = %q", resp["message"])
	}

	w = postJSON(t, r, "/api/watchlist/toggle", gin.H{"movie_id": movie.ID}, alice.ID)
	resp = decodeBody(t, w)
	if resp["in_watchlist"] != false {
		t.Fatalf("second toggle in_watchlist = %v, want false", resp["in_watchlist"])
	}
	if resp["message"] != "removed from watchlist" {
		t.Errorf("message = %q", resp["message"])
	}

	w = postJSON(t, r, "/api/watchlist/toggle", gin.H{"movie_id": 9999}, alice.ID)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown movie status = %d, want 404", w.Code)
	}

	w = postJSON(t, r, "/api/watchlist/toggle", gin.H{"movie_id": movie.ID}, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}
}

func TestWatchRecordAppends(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "inception")
	alice := createUser(t, repos, "alice")

	for i := 0; i < 2; i++ {
		w := postJSON(t, r, "/api/watch/record", gin.H{
			"movie_id":         movie.ID,
			"duration_minutes": 60,
			"completed":        true,
		}, alice.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
	}

	count, err := repos.History.CountByUser(alice.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 2 {
		t.Fatalf("history count = %d, want 2 separate sessions", count)
	}
}

func TestRandomMovieByMood(t *testing.T) {
	r, repos := newTestRouter(t)

	chill := model.Mood{Name: "Chill", Icon: "😌", Color: "#22c55e"}
	if err := repos.Mood.Create(&chill); err != nil {
		t.Fatalf("create mood: %v", err)
	}
	empty := model.Mood{Name: "Empty"}
	if err := repos.Mood.Create(&empty); err != nil {
		t.Fatalf("create mood: %v", err)
	}

	tagged := &model.Movie{Title: "Tagged", Slug: "tagged", Year: 2020, Moods: []model.Mood{chill}}
	if err := repos.Movie.Create(tagged); err != nil {
		t.Fatalf("create movie: %v", err)
	}
	createMovie(t, repos, "untagged")

	// Picks always come from the tagged pool.
	for i := 0; i < 5; i++ {
		w := postJSON(t, r, "/api/random-movie-by-mood", gin.H{"mood_id": chill.ID}, 0)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		resp := decodeBody(t, w)
		if resp["success"] != true {
			t.Fatalf("success = %v (body %s)", resp["success"], w.Body.String())
		}
		movie := resp["movie"].(map[string]interface{})
		if movie["title"] != "Tagged" {
			t.Fatalf("picked %q, want a movie tagged with the mood", movie["title"])
		}
		mood := resp["mood"].(map[string]interface{})
		if mood["name"] != "Chill" || mood["icon"] != "😌" {
			t.Errorf("mood projection = %v", mood)
		}
	}

	// A mood with no movies is a negative result with HTTP 200.
	w := postJSON(t, r, "/api/random-movie-by-mood", gin.H{"mood_id": empty.ID}, 0)
	if w.Code != http.StatusOK {
		t.Fatalf("empty mood status = %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["success"] != false {
		t.Fatalf("empty mood success = %v, want false", resp["success"])
	}
	if resp["message"] != "no movies for this mood" {
		t.Errorf("message = %q", resp["message"])
	}

	// An unknown mood is a 404.
	w = postJSON(t, r, "/api/random-movie-by-mood", gin.H{"mood_id": 9999}, 0)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown mood status = %d, want 404", w.Code)
	}
}

func TestRandomMovieEmptyCatalog(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/random-movie", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["success"] != false {
		t.Fatalf("success = %v, want false on an empty catalog", resp["success"])
	}
}

func TestRandomMovieFromCatalog(t *testing.T) {
	r, repos := newTestRouter(t)
	movie := createMovie(t, repos, "only-one")

	req := httptest.NewRequest(http.MethodGet, "/api/random-movie", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := decodeBody(t, w)
	if resp["success"] != true {
		t.Fatalf("success = %v (body %s)", resp["success"], w.Body.String())
	}
	if int(resp["movie_id"].(float64)) != movie.ID {
		t.Fatalf("movie_id = %v, want %d", resp["movie_id"], movie.ID)
	}
}
