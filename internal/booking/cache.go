package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/redis/go-redis/v9"
)

// Cache holds availability previews. Entries are keyed by a per-day
// generation that every committed write bumps, so stale previews are never
// read after a write; they simply age out.
type Cache interface {
	Generation(ctx context.Context, restaurantID string, day reservation.Date) (int64, error)
	Bump(ctx context.Context, restaurantID string, day reservation.Date) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Generation(context.Context, string, reservation.Date) (int64, error) { return 0, nil }
func (NopCache) Bump(context.Context, string, reservation.Date) error             { return nil }
func (NopCache) Get(context.Context, string) ([]byte, bool, error)              { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error        { return nil }

const (
	keyPrefix = "tablebook"
	// generation counters outlive every preview they version
	generationTTL = 7 * 24 * time.Hour
)

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

func generationKey(restaurantID string, day reservation.Date) string {
	return fmt.Sprintf("%s:gen:%s:%s", keyPrefix, restaurantID, day)
}

func (c *RedisCache) Generation(ctx context.Context, restaurantID string, day reservation.Date) (int64, error) {
	n, err := c.rdb.Get(ctx, generationKey(restaurantID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCache) Bump(ctx context.Context, restaurantID string, day reservation.Date) error {
	key := generationKey(restaurantID, day)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, key)
		p.Expire(ctx, key, generationTTL)
		return nil
	})
	return err
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func slotsKey(restaurantID string, version int64, day reservation.Date, generation int64, size int) string {
	return fmt.Sprintf("%s:slots:%s:%d:%s:%d:%d", keyPrefix, restaurantID, version, day, generation, size)
}

// previewTTL bounds how long an availability preview may be served: never
// past maxTTL, past the next pending expiry of the day, or, for today, past
// the next minute boundary when another candidate slot drops off.
func previewTTL(maxTTL time.Duration, now time.Time, day reservation.Date, rs []reservation.Reservation) time.Duration {
	ttl := maxTTL
	for _, r := range rs {
		if r.Status != reservation.StatusPending || r.PendingExpires == nil || !r.PendingExpires.After(now) {
			continue
		}
		if d := r.PendingExpires.Sub(now); d < ttl {
			ttl = d
		}
	}
	if reservation.DateOf(now) == day {
		if d := now.Truncate(time.Minute).Add(time.Minute).Sub(now); d < ttl {
			ttl = d
		}
	}
	return ttl
}
