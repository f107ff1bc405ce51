// Package boltstore persists interval collections in a bbolt database, one
// bucket entry per collection key.
package boltstore

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

const (
	filePerm       = 0o600
	defaultTimeout = time.Second
)

// DefaultBucket holds the collections unless WithBucket says otherwise.
var DefaultBucket = []byte("collections")

var errMissingBucket = errors.New("bucket missing")

var _ collection.Persistor = (*Store)(nil)

// Store is a collection.Persistor over a bbolt file. Values are interval
// lists in the binary interval encoding.
type Store struct {
	db      *bbolt.DB
	bucket  []byte
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBucket stores collections in the named bucket.
func WithBucket(name string) Option {
	return func(s *Store) { s.bucket = []byte(name) }
}

// WithTimeout bounds the wait for the database file lock.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open opens or creates the database at path and its bucket.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{bucket: DefaultBucket, timeout: defaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bbolt.Open(path, filePerm, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}

	s.db = db
	s.logger.Debug("bolt store opened", "path", path, "bucket", string(s.bucket))

	return s, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.db.Path() }

// Load implements collection.Persistor.
func (s *Store) Load(key string) ([]interval.Interval, bool, error) {
	var (
		ivs   []interval.Interval
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errMissingBucket
		}

		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}

		found = true

		// data is only valid inside the transaction; decoding copies it.
		var err error
		ivs, err = interval.UnmarshalList(data)

		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("load collection %s: %w", key, err)
	}

	return ivs, found, nil
}

// Upsert implements collection.Persistor.
func (s *Store) Upsert(key string, c collection.Collection) error {
	data := interval.MarshalList(c.Values())

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errMissingBucket
		}

		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}

	return nil
}

// Remove implements collection.Persistor.
func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errMissingBucket
		}

		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("remove collection %s: %w", key, err)
	}

	return nil
}

// Keys returns every stored key in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errMissingBucket
		}

		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	return keys, nil
}
