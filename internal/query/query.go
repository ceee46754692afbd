// ABOUTME: Query layer over the repository: range reads and derived views.
// ABOUTME: Results are memoized in a ristretto cache until Invalidate or their TTL expires.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/storage"
	"github.com/harperreed/trainload/internal/stress"
)

// Store is the subset of the repository the query layer reads from.
type Store interface {
	ListActivities(ctx context.Context, from, to time.Time) ([]*models.Activity, error)
	ListHeartRateSamples(ctx context.Context, from, to time.Time) (map[int64][]float64, error)
	ListSpeedSamples(ctx context.Context, sport string, since time.Time) ([]storage.SpeedSample, error)
	ListSleep(ctx context.Context, from, to time.Time) ([]*models.Sleep, error)
}

// Service answers the read queries used by the CLI and MCP server.
type Service struct {
	store Store
	cache *ristretto.Cache
	ttl   time.Duration
	now   func() time.Time
}

// DefaultTTL is how long a cached result lives when no Invalidate reaches it,
// for example after an import run by another process.
const DefaultTTL = time.Minute

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the trailing speed-zone window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTTL overrides DefaultTTL. Zero keeps entries until Invalidate.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// NewService creates a query service with an empty cache.
func NewService(store Store, opts ...Option) (*Service, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10_000,
		MaxCost:            1_000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	s := &Service{store: store, cache: cache, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Invalidate drops every cached result. Called after imports.
func (s *Service) Invalidate() {
	s.cache.Clear()
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

func cacheKey(name string, from, to time.Time) string {
	return name + "|" + from.Format(models.DateLayout) + "|" + to.Format(models.DateLayout)
}

func cached[T any](s *Service, key string, load func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.SetWithTTL(key, v, 1, s.ttl)
	s.cache.Wait()
	return v, nil
}

func checkRange(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("invalid range: %s is after %s", from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	return nil
}

// Activities returns activities started within [from, to], oldest first.
func (s *Service) Activities(ctx context.Context, from, to time.Time) ([]*models.Activity, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return cached(s, cacheKey("activities", from, to), func() ([]*models.Activity, error) {
		return s.store.ListActivities(ctx, from, to)
	})
}

// Sleep returns sleep summaries dated within [from, to].
func (s *Service) Sleep(ctx context.Context, from, to time.Time) ([]*models.Sleep, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return cached(s, cacheKey("sleep", from, to), func() ([]*models.Sleep, error) {
		return s.store.ListSleep(ctx, from, to)
	})
}

// DailyStress returns one score per date with at least one scorable
// activity in [from, to], ascending.
func (s *Service) DailyStress(ctx context.Context, from, to time.Time) ([]stress.DailyScore, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return cached(s, cacheKey("daily_stress", from, to), func() ([]stress.DailyScore, error) {
		inputs, err := s.stressInputs(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return stress.DailyScores(inputs), nil
	})
}

// ActivityScores returns the per-activity breakdown behind DailyStress.
func (s *Service) ActivityScores(ctx context.Context, from, to time.Time) ([]stress.ActivityScore, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return cached(s, cacheKey("activity_scores", from, to), func() ([]stress.ActivityScore, error) {
		inputs, err := s.stressInputs(ctx, from, to)
		if err != nil {
			return nil, err
		}
		var out []stress.ActivityScore
		for _, in := range inputs {
			if score, ok := stress.ScoreActivity(in); ok {
				out = append(out, score)
			}
		}
		return out, nil
	})
}

func (s *Service) stressInputs(ctx context.Context, from, to time.Time) ([]stress.ActivityInput, error) {
	activities, err := s.store.ListActivities(ctx, from, to)
	if err != nil {
		return nil, err
	}
	heartRates, err := s.store.ListHeartRateSamples(ctx, from, to)
	if err != nil {
		return nil, err
	}
	inputs := make([]stress.ActivityInput, 0, len(activities))
	for _, a := range activities {
		inputs = append(inputs, stress.ActivityInput{
			ActivityID: a.ID,
			StartTime:  a.StartTime,
			RPE:        a.RPE,
			Feel:       a.Feel,
			HeartRates: heartRates[a.ID],
		})
	}
	return inputs, nil
}
