// Package cache is the short-lived read cache in front of club and event reads.
// Values are stored as JSON so the memory and Redis backends behave the same.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/metrics"
)

// DefaultTTL is how long a cached read stays fresh.
const DefaultTTL = 5 * time.Minute

// Cache is a key/value store for JSON-encodable values.
type Cache interface {
	// Get decodes the value at key into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}) error
	// Generation is the invalidation counter of a key family.
	Generation(ctx context.Context, family string) (uint64, error)
	// SetIfGeneration stores value only while the family of key is still at gen.
	// The check and the write are atomic.
	SetIfGeneration(ctx context.Context, key string, value interface{}, gen uint64) (stored bool, err error)
	// DeletePrefix bumps the generation of the prefix's family, then drops every
	// key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Remember serves key from c, falling back to load on a miss and storing the
// result. Cache failures are logged and never fail the read.
//
// The family generation is read before load. A write that invalidates the
// family while load runs bumps it, and the stale result is then not stored.
func Remember[T any](ctx context.Context, c Cache, log zerolog.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	family := Family(key)

	var cached T
	found, err := c.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheErrors.WithLabelValues("get").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to store")
	case found:
		metrics.CacheHits.WithLabelValues(family).Inc()
		return cached, nil
	default:
		metrics.CacheMisses.WithLabelValues(family).Inc()
	}

	gen, genErr := c.Generation(ctx, family)
	if genErr != nil {
		metrics.CacheErrors.WithLabelValues("generation").Inc()
		log.Warn().Err(genErr).Str("family", family).Msg("Cache generation read failed")
	}

	value, err := load(ctx)
	if err != nil || genErr != nil {
		return value, err
	}
	stored, err := c.SetIfGeneration(ctx, key, value, gen)
	switch {
	case err != nil:
		metrics.CacheErrors.WithLabelValues("set").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	case !stored:
		log.Debug().Str("key", key).Msg("Family invalidated during load, result not cached")
	}
	return value, nil
}

// Invalidate drops every listed prefix, logging failures.
func Invalidate(ctx context.Context, c Cache, log zerolog.Logger, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := c.DeletePrefix(ctx, prefix); err != nil {
			metrics.CacheErrors.WithLabelValues("invalidate").Inc()
			log.Warn().Err(err).Str("prefix", prefix).Msg("Cache invalidation failed")
		}
	}
}

// Family is the part of key before the first colon, used as a metrics label.
func Family(key string) string {
	family, _, _ := strings.Cut(key, ":")
	return family
}
