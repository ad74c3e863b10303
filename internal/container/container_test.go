package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/adapters/llm"
	"geoverify/adapters/llm/heuristic"
	"geoverify/adapters/sqlstore"
	"geoverify/domain/claim"
	"geoverify/internal/config"
	"geoverify/internal/critique"
	"geoverify/internal/errors"
	"geoverify/internal/session"
	"geoverify/internal/usage"
)

func TestNewWiresStores(t *testing.T) {
	tests := []struct {
		name   string
		store  config.StoreConfig
		assert func(t *testing.T, c *Container)
	}{
		{"memory", config.StoreConfig{Driver: "memory"}, func(t *testing.T, c *Container) {
			assert.IsType(t, &critique.MemoryStore{}, c.SessionRepo)
			assert.IsType(t, &usage.MemoryRepository{}, c.UsageRepo)
			assert.Nil(t, c.DB)
		}},
		{"file", config.StoreConfig{Driver: "file", Path: t.TempDir()}, func(t *testing.T, c *Container) {
			assert.IsType(t, &session.FileStore{}, c.SessionRepo)
		}},
		{"sqlite", config.StoreConfig{Driver: "sqlite", DatabaseURL: ":memory:"}, func(t *testing.T, c *Container) {
			assert.IsType(t, &sqlstore.CritiqueSessionRepository{}, c.SessionRepo)
			assert.IsType(t, &sqlstore.LLMUsageRepository{}, c.UsageRepo)
			assert.NotNil(t, c.DB)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store = tt.store

			c, err := New(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer c.Shutdown(context.Background())
			tt.assert(t, c)

			id, err := c.Critiques.StartSession(context.Background(), claim.ParsedPaper{Title: "Marine cloud brightening"}, "climate", nil)
			require.NoError(t, err)
			status, err := c.Critiques.RunWithCritic(context.Background(), id, c.Critic)
			require.NoError(t, err)
			assert.True(t, status.IsComplete)
		})
	}
}

func TestNewSelectsCritic(t *testing.T) {
	cfg := config.Default()
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &heuristic.Critic{}, c.Critic)

	cfg.Critic.APIKey = "sk-test"
	c, err = New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &llm.CriticAdapter{}, c.Critic)
}

func TestNewRejectsBadSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.SNRMethod = "wavelet"
	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnknownMethod, errors.GetCode(err))

	cfg = config.Default()
	cfg.Validation.RangeTablesFile = "/nonexistent/ranges.yaml"
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))

	_, err = New(context.Background(), nil, nil)
	assert.Error(t, err)
}
