// Package cache holds the score-by-cuisine aggregation between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"restaurant_map/internal/config"
	"restaurant_map/internal/metrics"
	"restaurant_map/internal/models"
)

const (
	scoresKeyPrefix = "restaurant_map:stats:scores-by-cuisine:"
	versionKey      = scoresKeyPrefix + "version"
)

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = time.Hour

// ScoreCache never fails the caller: a broken cache behaves like an empty one.
//
// Entries are keyed by a version that Invalidate bumps. Get reports the
// version it read so the caller can Set under it: a value computed before an
// invalidation lands under an old version and is never served. A negative
// version means the cache could not be read, and Set ignores it.
type ScoreCache interface {
	Get(ctx context.Context) (scores []models.CuisineScore, version int64, ok bool)
	Set(ctx context.Context, version int64, scores []models.CuisineScore)
	Invalidate(ctx context.Context)
}

// New returns a Redis cache when an address is configured and Nop otherwise.
func New(cfg config.RedisConfig) ScoreCache {
	if cfg.Addr == "" {
		logrus.Info("REDIS_ADDR not set, stats cache disabled")
		return Nop{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedis(client, cfg.TTL)
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func scoresKey(version int64) string {
	return scoresKeyPrefix + strconv.FormatInt(version, 10)
}

func (c *Redis) Get(ctx context.Context) ([]models.CuisineScore, int64, bool) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		version = 0
	case err != nil:
		logrus.WithError(err).Warn("stats cache read failed")
		metrics.StatsCacheMissesTotal.Inc()
		return nil, -1, false
	}

	s, err := c.client.Get(ctx, scoresKey(version)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("stats cache read failed")
		}
		metrics.StatsCacheMissesTotal.Inc()
		return nil, version, false
	}
	var scores []models.CuisineScore
	if err := json.Unmarshal([]byte(s), &scores); err != nil {
		logrus.WithError(err).Warn("stats cache entry undecodable")
		metrics.StatsCacheMissesTotal.Inc()
		return nil, version, false
	}
	metrics.StatsCacheHitsTotal.Inc()
	return scores, version, true
}

func (c *Redis) Set(ctx context.Context, version int64, scores []models.CuisineScore) {
	if version < 0 {
		return
	}
	b, err := json.Marshal(scores)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, scoresKey(version), string(b), c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("stats cache write failed")
	}
}

// Invalidate moves readers to a fresh version. Entries of older versions
// expire with their TTL.
func (c *Redis) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		logrus.WithError(err).Warn("stats cache invalidate failed")
	}
}

func (c *Redis) Close() error { return c.client.Close() }

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context) ([]models.CuisineScore, int64, bool) { return nil, -1, false }
func (Nop) Set(context.Context, int64, []models.CuisineScore)        {}
func (Nop) Invalidate(context.Context)                               {}
