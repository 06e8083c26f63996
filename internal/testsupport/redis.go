package testsupport

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"savewise/internal/adapters/config"
)

// NewRedisClient creates a redis client for integration tests and removes the
// predictions key before and after the test.
func NewRedisClient(t *testing.T, cfg config.RedisConfig) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	if err := client.Del(context.Background(), cfg.PredictionsKey).Err(); err != nil {
		t.Fatalf("failed to clear redis key before test: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Del(context.Background(), cfg.PredictionsKey).Err()
		_ = client.Close()
	})

	return client
}
