package config

import "time"

// Tree defaults.
const (
	DefaultTreeKind             = "long"
	DefaultTreeCollection       = "set"
	DefaultTreeAutoBalancing    = true
	DefaultTreeWriteCollections = false
	DefaultTreeCompress         = false
)

// Store defaults.
const (
	DefaultStoreBackend        = BackendNone
	DefaultStoreCodec          = "binary"
	DefaultStoreRedisPrefix    = "intervaltree:"
	DefaultStoreTimeout        = 2 * time.Second
	DefaultStoreCacheEntries   = 1024
	DefaultStoreWeakReferences = false
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Telemetry defaults.
const (
	DefaultTelemetryServiceName = "intervaltree"
)
