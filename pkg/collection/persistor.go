package collection

import (
	"maps"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// Persistor stores node collections by key outside the tree. The tree never
// calls a persistor directly; factories and observers do.
type Persistor interface {
	// Load returns the intervals stored under key. The boolean is false when
	// nothing is stored.
	Load(key string) ([]interval.Interval, bool, error)
	Upsert(key string, c Collection) error
	Remove(key string) error
}

// MapPersistor keeps collections in process memory.
type MapPersistor struct {
	mu    sync.RWMutex
	items map[string][]interval.Interval
}

// NewMapPersistor returns an empty in-memory persistor.
func NewMapPersistor() *MapPersistor {
	return &MapPersistor{items: make(map[string][]interval.Interval)}
}

// Load implements Persistor.
func (p *MapPersistor) Load(key string) ([]interval.Interval, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ivs, ok := p.items[key]

	return slices.Clone(ivs), ok, nil
}

// Upsert implements Persistor.
func (p *MapPersistor) Upsert(key string, c Collection) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items[key] = c.Values()

	return nil
}

// Remove implements Persistor.
func (p *MapPersistor) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.items, key)

	return nil
}

// Keys returns the stored keys in sorted order.
func (p *MapPersistor) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Sorted(maps.Keys(p.items))
}
