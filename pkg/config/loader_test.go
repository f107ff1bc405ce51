package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/config"
)

const (
	testCacheEntries = 64
	testTimeout      = 5 * time.Second
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "intervaltree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultTreeKind, cfg.Tree.Kind)
	assert.Equal(t, config.DefaultStoreCodec, cfg.Store.Codec)
	assert.Equal(t, config.DefaultLoggingFormat, cfg.Logging.Format)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	content := `tree:
  kind: mixed
  collection: list
  auto_balancing: false
  write_collections: true
  compress: true
store:
  backend: bolt
  path: /var/lib/intervaltree/collections.db
  timeout: 5s
  cache_entries: 64
  weak_references: true
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  prometheus: true
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, config.KindMixed, cfg.Tree.Kind)
	assert.Equal(t, "list", cfg.Tree.Collection)
	assert.False(t, cfg.Tree.AutoBalancing)
	assert.True(t, cfg.Tree.WriteCollections)
	assert.True(t, cfg.Tree.Compress)
	assert.Equal(t, config.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/intervaltree/collections.db", cfg.Store.Path)
	assert.Equal(t, testTimeout, cfg.Store.Timeout)
	assert.Equal(t, testCacheEntries, cfg.Store.CacheEntries)
	assert.True(t, cfg.Store.WeakReferences)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.True(t, cfg.Telemetry.Prometheus)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "store:\n  backend: redis\n"))
	require.ErrorIs(t, err, config.ErrMissingRedisAddr)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "tree: [unterminated"))
	require.Error(t, err)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

//nolint:paralleltest // t.Setenv forbids t.Parallel.
func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("INTERVALTREE_TREE_KIND", "int")
	t.Setenv("INTERVALTREE_STORE_BACKEND", "redis")
	t.Setenv("INTERVALTREE_STORE_REDIS_ADDR", "localhost:6379")

	cfg, err := config.LoadConfig(writeConfig(t, "tree:\n  kind: double\n"))
	require.NoError(t, err)

	assert.Equal(t, "int", cfg.Tree.Kind)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}
