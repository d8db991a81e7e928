package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant_map/internal/cache"
	"restaurant_map/internal/config"
	"restaurant_map/internal/models"
)

func TestNewWithoutAddressIsNop(t *testing.T) {
	c := cache.New(config.RedisConfig{})
	if _, ok := c.(cache.Nop); !ok {
		t.Fatalf("New without address = %T, want cache.Nop", c)
	}
	c.Set(context.Background(), 0, []models.CuisineScore{{Cuisine: "Pizza", AverageScore: 10, Count: 3}})
	if _, version, hit := c.Get(context.Background()); hit || version >= 0 {
		t.Errorf("Nop Get = version %d, hit %v; want a miss with no version", version, hit)
	}
}

func TestRedisUnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := cache.NewRedis(client, time.Minute)
	ctx := context.Background()
	c.Set(ctx, 0, []models.CuisineScore{{Cuisine: "Pizza", AverageScore: 10, Count: 3}})
	c.Invalidate(ctx)
	if scores, version, hit := c.Get(ctx); hit || scores != nil || version >= 0 {
		t.Errorf("Get on unreachable redis = %v, %d, %v; want miss with no version", scores, version, hit)
	}
}
