package tabular

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "tabular:"

// RowCache is the subset of a cache service the store wrapper needs.
type RowCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CachedStore decorates a Store with a read-through cache. Writes pass
// straight through; callers invalidate explicitly once a logical write is done.
type CachedStore struct {
	Store
	cache  RowCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps store. A nil cache disables caching.
func NewCachedStore(store Store, cache RowCache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{Store: store, cache: cache, ttl: ttl, logger: logger}
}

// ReadAllCached serves rows from the cache when fresh, otherwise from the store.
func (c *CachedStore) ReadAllCached(ctx context.Context, ref TableRef) ([][]string, error) {
	if c.cache == nil {
		return c.Store.ReadAll(ctx, ref)
	}
	key := cacheKey(ref)
	var rows [][]string
	hit, err := c.cache.Get(ctx, key, &rows)
	if err != nil {
		c.logger.Debug("table cache read failed", zap.String("table", ref.Key()), zap.Error(err))
	}
	if hit {
		return rows, nil
	}
	rows, err = c.Store.ReadAll(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, rows, c.ttl); err != nil {
		c.logger.Debug("table cache write failed", zap.String("table", ref.Key()), zap.Error(err))
	}
	return rows, nil
}

// Invalidate drops cached rows for the given tables.
func (c *CachedStore) Invalidate(ctx context.Context, refs ...TableRef) {
	if c.cache == nil {
		return
	}
	for _, ref := range refs {
		if err := c.cache.Invalidate(ctx, escapeGlob(cacheKey(ref))); err != nil {
			c.logger.Warn("table cache invalidation failed", zap.String("table", ref.Key()), zap.Error(err))
		}
	}
}

// InvalidateAll drops every cached table.
func (c *CachedStore) InvalidateAll(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, cacheKeyPrefix+"*"); err != nil {
		c.logger.Warn("table cache flush failed", zap.Error(err))
	}
}

func cacheKey(ref TableRef) string {
	return cacheKeyPrefix + ref.Key()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
