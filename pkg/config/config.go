// Package config provides configuration loading and validation for the
// intervaltree tools.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// Sentinel validation errors.
var (
	ErrInvalidKind         = errors.New("invalid tree kind")
	ErrInvalidCollection   = errors.New("invalid collection kind")
	ErrInvalidBackend      = errors.New("invalid store backend")
	ErrMissingStorePath    = errors.New("store path is required for this backend")
	ErrMissingRedisAddr    = errors.New("redis address is required for the redis backend")
	ErrInvalidCodec        = errors.New("invalid store codec")
	ErrInvalidTimeout      = errors.New("store timeout must be positive")
	ErrInvalidCacheEntries = errors.New("cache entries must be positive")
	ErrWeakWithoutStore    = errors.New("weak references need a store backend")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
)

// KindMixed configures a tree accepting every numeric kind.
const KindMixed = "mixed"

// Store backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

var (
	backends   = []string{BackendNone, BackendFile, BackendBolt, BackendRedis}
	codecs     = []string{"json", "gob", "binary"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all configuration for the intervaltree tools.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TreeConfig holds the tree strategies.
type TreeConfig struct {
	// Kind is a numeric kind name or "mixed".
	Kind             string `mapstructure:"kind"`
	Collection       string `mapstructure:"collection"`
	AutoBalancing    bool   `mapstructure:"auto_balancing"`
	WriteCollections bool   `mapstructure:"write_collections"`
	Compress         bool   `mapstructure:"compress"`
}

// StoreConfig selects where node collections live.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the directory of the file backend or the bolt database file.
	Path        string `mapstructure:"path"`
	Codec       string `mapstructure:"codec"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`

	Timeout        time.Duration `mapstructure:"timeout"`
	CacheEntries   int           `mapstructure:"cache_entries"`
	WeakReferences bool          `mapstructure:"weak_references"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry and Prometheus settings.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	Prometheus   bool   `mapstructure:"prometheus"`
}

// LoadConfig loads configuration from file and environment variables. An
// empty path searches the default locations and tolerates a missing file.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("intervaltree")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/intervaltree")
	}

	viperCfg.SetEnvPrefix("INTERVALTREE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("tree.kind", DefaultTreeKind)
	viperCfg.SetDefault("tree.collection", DefaultTreeCollection)
	viperCfg.SetDefault("tree.auto_balancing", DefaultTreeAutoBalancing)
	viperCfg.SetDefault("tree.write_collections", DefaultTreeWriteCollections)
	viperCfg.SetDefault("tree.compress", DefaultTreeCompress)

	viperCfg.SetDefault("store.backend", DefaultStoreBackend)
	viperCfg.SetDefault("store.path", "")
	viperCfg.SetDefault("store.codec", DefaultStoreCodec)
	viperCfg.SetDefault("store.redis_addr", "")
	viperCfg.SetDefault("store.redis_prefix", DefaultStoreRedisPrefix)
	viperCfg.SetDefault("store.timeout", DefaultStoreTimeout)
	viperCfg.SetDefault("store.cache_entries", DefaultStoreCacheEntries)
	viperCfg.SetDefault("store.weak_references", DefaultStoreWeakReferences)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)

	viperCfg.SetDefault("telemetry.service_name", DefaultTelemetryServiceName)
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.prometheus", false)
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if _, err := c.Tree.NumericKind(); err != nil {
		return err
	}

	if _, err := collection.ParseKind(c.Tree.Collection); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, c.Tree.Collection)
	}

	if err := c.Store.validate(); err != nil {
		return err
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// NumericKind returns the configured kind, numeric.Invalid for "mixed".
func (t TreeConfig) NumericKind() (numeric.Kind, error) {
	if strings.EqualFold(t.Kind, KindMixed) {
		return numeric.Invalid, nil
	}

	kind, err := numeric.ParseKind(t.Kind)
	if err != nil {
		return numeric.Invalid, fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}

	return kind, nil
}

func (s StoreConfig) validate() error {
	if !slices.Contains(backends, s.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, s.Backend)
	}

	switch s.Backend {
	case BackendFile, BackendBolt:
		if s.Path == "" {
			return fmt.Errorf("%w: %s", ErrMissingStorePath, s.Backend)
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	case BackendNone:
		if s.WeakReferences {
			return ErrWeakWithoutStore
		}
	}

	if !slices.Contains(codecs, s.Codec) {
		return fmt.Errorf("%w: %q", ErrInvalidCodec, s.Codec)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, s.Timeout)
	}

	if s.CacheEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheEntries, s.CacheEntries)
	}

	return nil
}
