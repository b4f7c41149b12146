package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"runready/internal/health"
	"runready/internal/store"
)

// Store is a MetricSource backed by the local SQLite sample store
type Store struct {
	db     *store.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewStore creates a store-backed MetricSource
func NewStore(db *store.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		now:    time.Now,
		logger: logger.With("source", "store"),
	}
}

// Authorize checks that the sample store is reachable
func (s *Store) Authorize(ctx context.Context) error {
	if s.db == nil {
		return &health.AuthError{Source: "store", Err: health.ErrUnavailable}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return &health.AuthError{Source: "store", Err: fmt.Errorf("%w: %v", health.ErrUnavailable, err)}
	}
	return nil
}

func (s *Store) FetchSleepHours(ctx context.Context) float64 {
	start, end := health.SleepWindow(s.now())
	samples, err := s.db.SleepSamples(ctx, start, end)
	if err != nil {
		s.degrade(health.MetricSleep, err)
		return 0
	}
	return health.SumAsleep(samples, start, end)
}

func (s *Store) FetchDailySteps(ctx context.Context) int {
	start, end := health.DayWindow(s.now())
	samples, err := s.db.StepSamples(ctx, start, end)
	if err != nil {
		s.degrade(health.MetricSteps, err)
		return 0
	}
	return health.SumSteps(samples, start, end)
}

func (s *Store) FetchHeartRate(ctx context.Context) float64 {
	now := s.now()
	samples, err := s.db.HeartRateSamples(ctx, now.Add(-health.HeartRateLookback), now)
	if err != nil {
		s.degrade(health.MetricHeartRate, err)
		return 0
	}
	return health.LatestResting(samples, now)
}

func (s *Store) degrade(metric health.Metric, err error) {
	s.logger.Warn("metric unavailable, using 0", "error", &health.FetchError{Metric: metric, Err: err})
}
