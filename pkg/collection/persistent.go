package collection

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/Sumatoshi-tech/intervaltree/pkg/alg/lru"
)

// DefaultCacheEntries is the number of collections a PersistentFactory keeps
// resident when no limit is configured.
const DefaultCacheEntries = 1024

// persistentPrefix prefixes the base kind in a persistent factory name.
const persistentPrefix = "persistent-"

// PersistentFactory loads node collections from a Persistor through an LRU
// cache and keeps the persistor in sync through its observer.
//
// With weak references enabled, nodes only point weakly at the cells held by
// the cache. A collection evicted from the cache and collected by the garbage
// collector is reloaded from the persistor on the next access.
type PersistentFactory struct {
	base      Kind
	persistor Persistor
	cache     *lru.Cache[string, *Cell]
	weak      bool
	logger    *slog.Logger
	observer  *PersistingObserver
}

// PersistentOption configures a PersistentFactory.
type PersistentOption func(*persistentConfig)

type persistentConfig struct {
	logger       *slog.Logger
	cacheEntries int
	weak         bool
}

// WithCacheEntries bounds the number of resident collections.
func WithCacheEntries(n int) PersistentOption {
	return func(c *persistentConfig) { c.cacheEntries = n }
}

// WithWeakReferences makes nodes hold their collections weakly.
func WithWeakReferences(weak bool) PersistentOption {
	return func(c *persistentConfig) { c.weak = weak }
}

// WithLogger sets the logger for persistence failures. When nil, a discard
// logger is used.
func WithLogger(logger *slog.Logger) PersistentOption {
	return func(c *persistentConfig) { c.logger = logger }
}

// NewPersistentFactory returns a factory creating collections of kind base
// that are stored in p.
func NewPersistentFactory(base Kind, p Persistor, opts ...PersistentOption) *PersistentFactory {
	cfg := persistentConfig{cacheEntries: DefaultCacheEntries}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f := &PersistentFactory{
		base:      base,
		persistor: p,
		weak:      cfg.weak,
		logger:    cfg.logger,
	}

	f.cache = lru.New(
		lru.WithMaxEntries[string, *Cell](max(cfg.cacheEntries, 1)),
		lru.WithEvictCallback(func(key string, _ *Cell) {
			f.logger.Debug("collection evicted", "key", key, "weak", f.weak)
		}),
	)

	f.observer = &PersistingObserver{factory: f}

	return f
}

// Name implements Factory, for example "persistent-set".
func (f *PersistentFactory) Name() string { return persistentPrefix + string(f.base) }

// Base returns the kind of the collections created by the factory.
func (f *PersistentFactory) Base() Kind { return f.base }

// Persistor returns the backing persistor.
func (f *PersistentFactory) Persistor() Persistor { return f.persistor }

// New implements Factory.
func (f *PersistentFactory) New() Collection {
	return NewCell(f.base.New())
}

// Load implements Factory. Keys absent from the persistor resolve to an
// empty collection.
func (f *PersistentFactory) Load(key string) (Collection, error) {
	cell, err := f.cache.GetOrLoad(key, f.fetch)
	if err != nil {
		f.logger.Warn("collection load failed", "key", key, "error", err)

		return nil, err
	}

	return cell, nil
}

func (f *PersistentFactory) fetch(key string) (*Cell, error) {
	ivs, _, err := f.persistor.Load(key)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", key, err)
	}

	c := f.base.New()
	c.AddAll(ivs...)

	return NewCell(c), nil
}

// UseWeakReferences implements Factory.
func (f *PersistentFactory) UseWeakReferences() bool { return f.weak }

// Observer implements Factory.
func (f *PersistentFactory) Observer() Observer { return f.observer }

// PersistingObserver returns the observer with its failure counter.
func (f *PersistentFactory) PersistingObserver() *PersistingObserver { return f.observer }

// CacheStats reports the collection cache counters.
func (f *PersistentFactory) CacheStats() lru.Stats { return f.cache.Stats() }

// Resident returns the keys of the cached collections, most recently used
// first.
func (f *PersistentFactory) Resident() []string { return f.cache.Keys() }

// Evict drops every resident collection from the cache. Collections still
// referenced strongly by a node stay alive.
func (f *PersistentFactory) Evict() { f.cache.Clear() }

// PersistingObserver writes every reported collection change to the
// factory's persistor and keeps the factory cache current. Failures are
// logged and counted; there are no retries.
type PersistingObserver struct {
	factory  *PersistentFactory
	failures atomic.Int64
}

// Upsert implements Observer.
func (o *PersistingObserver) Upsert(ev Event) {
	if ev.Collection.Len() == 0 {
		o.Remove(ev)

		return
	}

	if err := o.factory.persistor.Upsert(ev.Key, ev.Collection); err != nil {
		o.failures.Add(1)
		o.factory.logger.Error("collection upsert failed",
			"key", ev.Key, "event", ev.Type.String(), "error", err)
	}

	if cell, ok := ev.Collection.(*Cell); ok {
		o.factory.cache.Put(ev.Key, cell)
	}
}

// Remove implements Observer.
func (o *PersistingObserver) Remove(ev Event) {
	o.factory.cache.Remove(ev.Key)

	if err := o.factory.persistor.Remove(ev.Key); err != nil {
		o.failures.Add(1)
		o.factory.logger.Error("collection remove failed",
			"key", ev.Key, "event", ev.Type.String(), "error", err)
	}
}

// Failures returns the number of persistor calls that failed.
func (o *PersistingObserver) Failures() int64 { return o.failures.Load() }
