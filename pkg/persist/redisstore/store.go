// Package redisstore persists interval collections in Redis. Each collection
// is one string value under a prefixed key.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// Defaults.
const (
	DefaultPrefix  = "intervaltree:"
	DefaultTimeout = 2 * time.Second
	scanCount      = 256
)

var _ collection.Persistor = (*Store)(nil)

// Store is a collection.Persistor over a Redis client. Persistor calls carry
// no context, so each one runs under the store timeout.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces the Redis keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New wraps client. The caller owns the client and closes it.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, timeout: DefaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	s := New(client, opts...)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()

		return nil, err
	}

	return s, nil
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load implements collection.Persistor.
func (s *Store) Load(key string) ([]interval.Interval, bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	ivs, err := interval.UnmarshalList(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode collection %s: %w", key, err)
	}

	return ivs, true, nil
}

// Upsert implements collection.Persistor.
func (s *Store) Upsert(key string, c collection.Collection) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, interval.MarshalList(c.Values()), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Remove implements collection.Persistor.
func (s *Store) Remove(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Keys scans for every collection key under the prefix, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	slices.Sort(keys)

	return keys, nil
}
