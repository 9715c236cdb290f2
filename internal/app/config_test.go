package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	require.True(t, cfg.PostgresAutoMigrate)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Zero(t, cfg.RedisTTL)
	require.Empty(t, cfg.CatalogPath)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}
