package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/config"
	"mediagraph/infrastructure/messaging/eventbridge"
	"mediagraph/infrastructure/messaging/logging"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		Environment:    "test",
		Store:          store,
		BackendURL:     "http://localhost:8080",
		SaveDebounce:   time.Second,
		BackendTimeout: time.Second,
		LogLevel:       "error",
	}
}

func TestProvideLogger(t *testing.T) {
	logger, err := ProvideLogger(testConfig(config.StoreMemory))
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg := testConfig(config.StoreMemory)
	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	require.Error(t, err)
}

func TestProvideGraphRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, cleanup, err := ProvideGraphRepository(testConfig(config.StoreMemory), nil, nil, zap.NewNop())
		require.NoError(t, err)
		defer cleanup()

		_, err = repo.Create(ctx, valueobjects.GraphID("g1"), "Board")
		require.NoError(t, err)
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(config.StoreSQLite)
		cfg.SQLitePath = filepath.Join(t.TempDir(), "graphs.db")

		repo, cleanup, err := ProvideGraphRepository(cfg, nil, nil, zap.NewNop())
		require.NoError(t, err)
		defer cleanup()

		_, err = repo.Create(ctx, valueobjects.GraphID("g1"), "Board")
		require.NoError(t, err)
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := ProvideGraphRepository(testConfig("postgres"), nil, nil, zap.NewNop())
		require.Error(t, err)
	})
}

func TestProvideEventPublisher(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	assert.IsType(t, &logging.Publisher{}, ProvideEventPublisher(cfg, nil, zap.NewNop()))

	cfg.EventBusName = "graphs"
	assert.IsType(t, &eventbridge.Publisher{}, ProvideEventPublisher(cfg, nil, zap.NewNop()))
}

func TestInitializeEditor(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.EnableMetrics = true

	container, err := InitializeEditor(cfg)
	require.NoError(t, err)
	assert.NotNil(t, container.Sessions)
	assert.NotNil(t, container.Backend)
	assert.NotNil(t, container.Metrics)
	assert.Equal(t, 0, container.Sessions.Count())
}
