package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// CacheRepository is a key/value backend for sheet snapshots: the in-process
// memory cache or Redis.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts a CacheRepository for the tabular store. Backend
// failures never fail a request: reads fall back to the sheet and the
// outage is logged once when it starts and once when it ends.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
	degraded   atomic.Bool
}

// NewCacheService constructs a cache service. A zero ttl means ten minutes.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled reports whether lookups reach a backend.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Degraded reports whether the last backend call failed.
func (s *CacheService) Degraded() bool {
	return s != nil && s.degraded.Load()
}

// Get loads key into dest and reports whether it was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if err != nil && errors.Is(err, appErrors.ErrCacheMiss) {
		err = nil
	}
	s.track("get", key, err)
	return hit, err
}

// Set stores value under key; ttl <= 0 uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	s.track("set", key, err)
	return err
}

// Invalidate drops every key matching the glob pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.repo.DeleteByPattern(ctx, pattern)
	s.track("invalidate", pattern, err)
	return err
}

func (s *CacheService) track(op, key string, err error) {
	if err == nil {
		if s.degraded.CompareAndSwap(true, false) {
			s.logger.Info("table cache recovered", zap.String("op", op))
		}
		return
	}
	if s.degraded.CompareAndSwap(false, true) {
		s.logger.Warn("table cache unavailable, reading through", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("table cache still unavailable", zap.String("op", op), zap.String("key", key), zap.Error(err))
}
