package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/streamly/internal/config"
	"github.com/user/streamly/internal/handler"
	"github.com/user/streamly/internal/model"
	"github.com/user/streamly/internal/repository"
	"github.com/user/streamly/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newAdminAPI wires the admin routes without the role middleware; the gate
// itself is covered by the middleware tests.
func newAdminAPI(t *testing.T) (*gin.Engine, *repository.Repositories) {
	t.Helper()
	utils.InitCache()

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

	h := handler.NewHandler(repos, &config.Config{
		AppSecret: "test-secret",
		JWTExpiry: time.Hour,
		SiteName:  "Streamly",
	})

	r := gin.New()
	admin := r.Group("/admin")
	{
		admin.POST("/movies", h.AdminMovieCreate)
		admin.PUT("/movies/:id", h.AdminMovieUpdate)
		admin.DELETE("/movies/:id", h.AdminMovieDelete)
		admin.POST("/genres", h.AdminGenreCreate)
		admin.PUT("/users/:id/subscription", h.AdminUserSubscription)
	}
	return r, repos
}

func putJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminMovieCreateSlug(t *testing.T) {
	r, repos := newAdminAPI(t)

	body := gin.H{
		"title":            "The Matrix",
		"year":             1999,
		"duration_minutes": 136,
	}
	w := postJSON(t, r, "/admin/movies", body, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	movie, err := repos.Movie.FindBySlug("the-matrix")
	if err != nil || movie == nil {
		t.Fatalf("movie with derived slug not found: %v", err)
	}
	if movie.ContentRating != model.RatingPG13 || movie.Subscription != model.TierFree {
		t.Errorf("defaults not applied: rating %q, tier %q", movie.ContentRating, movie.Subscription)
	}

	// Same title gets the year appended instead of colliding.
	body["year"] = 2003
	w = postJSON(t, r, "/admin/movies", body, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("second create status = %d (body %s)", w.Code, w.Body.String())
	}
	if sequel, _ := repos.Movie.FindBySlug("the-matrix-2003"); sequel == nil {
		t.Fatal("collision slug the-matrix-2003 not found")
	}
}

func TestAdminMovieCreateRejectsBadTier(t *testing.T) {
	r, _ := newAdminAPI(t)

	w := postJSON(t, r, "/admin/movies", gin.H{
		"title":                 "Bad Tier",
		"year":                  2020,
		"duration_minutes":      90,
		"subscription_required": "gold",
	}, 1)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an unknown tier", w.Code)
	}
}

func TestAdminUserSubscription(t *testing.T) {
	r, repos := newAdminAPI(t)
	alice := createUser(t, repos, "alice")

	start := time.Now()
	end := start.Add(30 * 24 * time.Hour)
	w := putJSON(t, r, "/admin/users/"+strconv.Itoa(alice.ID)+"/subscription", gin.H{
		"tier":       "premium",
		"start_date": start,
		"end_date":   end,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	updated, err := repos.User.FindByID(alice.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if updated.SubscriptionType != model.TierPremium {
		t.Fatalf("tier = %q, want premium", updated.SubscriptionType)
	}
	if !updated.HasActiveSubscription() {
		t.Fatal("subscription should be active inside the window")
	}

	// A paid tier without a window is rejected.
	w = putJSON(t, r, "/admin/users/"+strconv.Itoa(alice.ID)+"/subscription", gin.H{"tier": "basic"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("windowless paid tier status = %d, want 400", w.Code)
	}

	w = putJSON(t, r, "/admin/users/9999/subscription", gin.H{"tier": "free"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user status = %d, want 404", w.Code)
	}
}
