package service

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/user/streamly/internal/repository"
	"github.com/user/streamly/internal/utils"
	"golang.org/x/sync/singleflight"
)

const catalogPoolKey = "catalog"

// RecommendService serves uniform random picks from mood-tagged movie pools
// and from the whole catalog. Pools are id lists cached with a short TTL;
// singleflight keeps concurrent cache misses from stampeding the database.
type RecommendService struct {
	movies *repository.MovieRepository
	pools  *utils.TTLCache[[]int]
	sf     singleflight.Group
}

// NewRecommendService creates the service with a 5 minute pool cache.
func NewRecommendService(movies *repository.MovieRepository) *RecommendService {
	return &RecommendService{
		movies: movies,
		pools:  utils.NewTTLCache[[]int](256, 5*time.Minute),
	}
}

// PickByMood selects one movie id uniformly among movies tagged with the
// mood. ok is false when no movie carries the mood; that is a negative
// result, not an error.
func (s *RecommendService) PickByMood(moodID int) (int, bool, error) {
	ids, err := s.pool("mood:"+strconv.Itoa(moodID), func() ([]int, error) {
		return s.movies.MoodMovieIDs(moodID)
	})
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[rand.IntN(len(ids))], true, nil
}

// PickAny selects one movie id uniformly among the whole catalog. ok is
// false when the catalog is empty.
func (s *RecommendService) PickAny() (int, bool, error) {
	ids, err := s.pool(catalogPoolKey, func() ([]int, error) {
		return s.movies.AllMovieIDs()
	})
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[rand.IntN(len(ids))], true, nil
}

// InvalidatePools drops the cached id lists. Called after catalog changes.
func (s *RecommendService) InvalidatePools() {
	s.pools.Clear()
}

// pool returns the cached id list for key, loading it at most once across
// concurrent callers.
func (s *RecommendService) pool(key string, load func() ([]int, error)) ([]int, error) {
	if ids, ok := s.pools.Get(key); ok {
		return ids, nil
	}

	val, err, _ := s.sf.Do(key, func() (interface{}, error) {
		ids, err := load()
		if err != nil {
			return nil, err
		}
		s.pools.Set(key, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]int), nil
}
