package testsupport

import (
	"strings"
	"testing"
)

func TestLoadDatabaseConfigsFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "pass")
	t.Setenv("POSTGRES_DB", "db")
	t.Setenv("POSTGRES_PORT", "5543")
	t.Setenv("POSTGRES_SSL_MODE", "disable")

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadDatabaseConfigsFromEnv(t)

	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5543 {
		t.Fatalf("unexpected postgres config %+v", cfg.Postgres)
	}

	if cfg.Redis.Host != "redis" || cfg.Redis.Port != 6380 || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}

	if !strings.HasPrefix(cfg.Redis.PredictionsKey, "savewise_test_predictions_") {
		t.Fatalf("expected a per-test predictions key, got %q", cfg.Redis.PredictionsKey)
	}
}

func TestIntValueFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SAVEWISE_TEST_INT", "abc")
	if got := intValue("SAVEWISE_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback, got %d", got)
	}
}
