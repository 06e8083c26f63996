package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/adapters/config"
	"savewise/pkg/errors"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.GeminiConfig{Model: "gemini-2.0-flash"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestGenerationConfig(t *testing.T) {
	cfg := generationConfig()
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	assert.EqualValues(t, 512, cfg.MaxOutputTokens)
	assert.Len(t, cfg.SafetySettings, 4)
}
