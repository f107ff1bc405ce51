package collection

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownFactory is returned when a factory name is not registered.
var ErrUnknownFactory = errors.New("unknown collection factory")

// Factory supplies the collection of a tree node.
type Factory interface {
	// Name identifies the factory in serialized configurations.
	Name() string
	// New returns an empty collection for a freshly created node.
	New() Collection
	// Load resolves the collection stored under key, for nodes restored from
	// a snapshot or whose weakly held collection was reclaimed.
	Load(key string) (Collection, error)
	// UseWeakReferences reports whether nodes should hold their collection
	// weakly and reload it through Load once it has been reclaimed.
	UseWeakReferences() bool
	// Observer returns the listener for collection mutations, or nil.
	Observer() Observer
}

// Cell is the heap cell a node points at when it holds its collection
// weakly. A factory that supports weak references keeps its cells alive for
// as long as it wants the collection to stay resident.
type Cell struct {
	Collection
}

// NewCell wraps c in a cell.
func NewCell(c Collection) *Cell {
	return &Cell{Collection: c}
}

// memoryFactory creates plain in-memory collections of one kind. The tree
// holds them strongly, so Load only ever creates an empty collection.
type memoryFactory struct {
	kind Kind
}

// SetFactory creates in-memory sets.
var SetFactory Factory = memoryFactory{kind: KindSet}

// ListFactory creates in-memory lists.
var ListFactory Factory = memoryFactory{kind: KindList}

// MemoryFactory returns the in-memory factory for kind.
func MemoryFactory(kind Kind) Factory {
	return memoryFactory{kind: kind}
}

func (f memoryFactory) Name() string { return string(f.kind) }
func (f memoryFactory) New() Collection { return f.kind.New() }
func (f memoryFactory) Load(string) (Collection, error) { return f.kind.New(), nil }
func (memoryFactory) UseWeakReferences() bool { return false }
func (memoryFactory) Observer() Observer { return nil }

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		string(KindSet):  SetFactory,
		string(KindList): ListFactory,
	}
)

// RegisterFactory makes f resolvable by name, replacing any previous factory.
func RegisterFactory(f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[f.Name()] = f
}

// LookupFactory resolves a registered factory.
func LookupFactory(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFactory, name)
	}

	return f, nil
}
