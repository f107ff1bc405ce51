package persist

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

const dirPerm = 0o755

var _ collection.Persistor = (*FileStore)(nil)

// FileStore persists each collection as one file in a directory. File names
// are the hex-encoded collection key plus the codec extension, so any key
// is a valid name.
type FileStore struct {
	dir    string
	codec  Codec
	logger *slog.Logger

	mu sync.Mutex
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(s *FileStore) { s.logger = logger }
}

// NewFileStore creates dir if needed and returns a store writing with codec.
func NewFileStore(dir string, codec Codec, opts ...FileStoreOption) (*FileStore, error) {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileStore{dir: dir, codec: codec, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Load implements collection.Persistor. A missing file is not an error.
func (s *FileStore) Load(key string) ([]interval.Interval, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("open collection file: %w", err)
	}
	defer file.Close()

	ivs, err := s.codec.Decode(file)
	if err != nil {
		return nil, false, fmt.Errorf("decode collection %s: %w", key, err)
	}

	return ivs, true, nil
}

// Upsert implements collection.Persistor. The file is replaced atomically.
func (s *FileStore) Upsert(key string, c collection.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".upsert-*")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	err = s.codec.Encode(tmp, c.Values())

	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), s.path(key))
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write collection %s: %w", key, err)
	}

	s.logger.Debug("collection stored", "key", key, "intervals", c.Len())

	return nil
}

// Remove implements collection.Persistor. Removing an absent key succeeds.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove collection %s: %w", key, err)
	}

	return nil
}

// Keys lists the stored collection keys in sorted order. Files not written
// by the store are ignored.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list store dir: %w", err)
	}

	var keys []string

	ext := s.codec.Extension()

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ext)
		if !ok || entry.IsDir() {
			continue
		}

		key, err := hex.DecodeString(name)
		if err != nil {
			continue
		}

		keys = append(keys, string(key))
	}

	slices.Sort(keys)

	return keys, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+s.codec.Extension())
}
