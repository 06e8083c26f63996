package bootstrap

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/adapters/config"
	errnoop "savewise/internal/adapters/errors/noop"
	"savewise/internal/adapters/openai"
	"savewise/internal/domain/features"
	"savewise/internal/ml/ensemble"
	"savewise/internal/repository/supabase"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

func TestProvideRemoteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Provider: config.ProviderNone}}
		store, err := provideRemoteStore(ctx, cfg, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("supabase", func(t *testing.T) {
		cfg := &config.Config{
			Store:    config.StoreConfig{Provider: config.ProviderSupabase},
			Supabase: config.SupabaseConfig{URL: "https://example.supabase.co", AnonKey: "anon", Table: "predictions"},
		}
		store, err := provideRemoteStore(ctx, cfg, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &supabase.Store{}, store)
		assert.Equal(t, "supabase", store.Name())
	})

	t.Run("postgres without client", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Provider: config.ProviderPostgres}}
		_, err := provideRemoteStore(ctx, cfg, nil, nil)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	})

	t.Run("redis without client", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Provider: config.ProviderRedis}}
		_, err := provideRemoteStore(ctx, cfg, nil, nil)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Provider: "mongo"}}
		_, err := provideRemoteStore(ctx, cfg, nil, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestProvideFeatureSpec(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := provideFeatureSpec(config.ModelConfig{
			FeatureInfoPath: filepath.Join(dir, "missing.json"),
		})
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "truncated.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"numerical_features": [`), 0o644))

		_, err := provideFeatureSpec(config.ModelConfig{FeatureInfoPath: path})
		assert.Error(t, err)
	})

	t.Run("valid file", func(t *testing.T) {
		want := features.DefaultSpec()
		body, err := json.Marshal(want)
		require.NoError(t, err)
		path := filepath.Join(dir, "feature_info.json")
		require.NoError(t, os.WriteFile(path, body, 0o644))

		spec, err := provideFeatureSpec(config.ModelConfig{FeatureInfoPath: path})
		require.NoError(t, err)
		assert.Equal(t, want.Names(), spec.Names())
	})
}

func TestModelsCheck(t *testing.T) {
	ctx := context.Background()

	check := modelsCheck(nil)
	assert.True(t, check.Critical)
	assert.Error(t, check.Ping(ctx))

	partial := &ensemble.Registry{Savings: stubModel{}, Amount: stubModel{}}
	assert.Error(t, modelsCheck(partial).Ping(ctx))

	full, err := ensemble.NewRegistry(stubModel{}, stubModel{}, stubModel{})
	require.NoError(t, err)
	assert.NoError(t, modelsCheck(full).Ping(ctx))
}

type stubModel struct{}

func (stubModel) Predict(input []float32) ([][]float32, error) { return nil, nil }
func (stubModel) Close() error                                 { return nil }

func TestProvideErrorTrackerDisabled(t *testing.T) {
	cfg := &config.Config{ErrorTracking: config.ErrorTrackingConfig{Enabled: true}}
	tracker := provideErrorTracker(cfg, logger.NewNop())
	assert.IsType(t, &errnoop.Tracker{}, tracker)
}

func TestProvideLLMWithoutKey(t *testing.T) {
	for _, provider := range []string{config.AdvisorGemini, config.AdvisorOpenAI} {
		cfg := &config.Config{
			Advisor: config.AdvisorConfig{Provider: provider},
			Gemini:  config.GeminiConfig{Model: "gemini-2.0-flash"},
			OpenAI:  config.OpenAIConfig{Model: "gpt-4o-mini"},
		}
		assert.Nil(t, provideLLM(context.Background(), cfg, logger.NewNop()), provider)
	}
}

func TestProvideLLMOpenAI(t *testing.T) {
	cfg := &config.Config{
		Advisor: config.AdvisorConfig{Provider: config.AdvisorOpenAI},
		OpenAI:  config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
	}
	llm := provideLLM(context.Background(), cfg, logger.NewNop())
	assert.IsType(t, &openai.Client{}, llm)
}

func TestLifecycleShutdownSkipsMissingComponents(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLifecycle().Shutdown(nil, Components{ErrorTracker: errnoop.New()}, logger.NewNop())
	})
}
