package intervaltree

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// Sentinel errors.
var (
	// ErrIllegalConfiguration is returned when a tree is built without a
	// comparator or factory, or with options that contradict each other.
	ErrIllegalConfiguration = errors.New("illegal tree configuration")

	// ErrIllegalStructure reports a broken internal invariant. Mutations panic
	// with it, Verify returns it.
	ErrIllegalStructure = errors.New("illegal tree structure")
)

// Configuration is the fixed strategy set of a tree.
type Configuration struct {
	kind             numeric.Kind
	comparator       compare.Comparator
	filter           interval.Filter
	factory          collection.Factory
	autoBalancing    bool
	writeCollections bool
}

// Kind is the only numeric kind the tree accepts, Invalid when any kind
// the comparator can order is accepted.
func (c Configuration) Kind() numeric.Kind { return c.kind }

// Comparator orders normalized values.
func (c Configuration) Comparator() compare.Comparator { return c.comparator }

// Filter is the default filter of Find.
func (c Configuration) Filter() interval.Filter { return c.filter }

// Factory supplies node collections.
func (c Configuration) Factory() collection.Factory { return c.factory }

// AutoBalancing reports whether mutations rebalance the tree.
func (c Configuration) AutoBalancing() bool { return c.autoBalancing }

// WriteCollections reports whether snapshots embed the node collections.
func (c Configuration) WriteCollections() bool { return c.writeCollections }

// UsesPersistor reports whether collections live in a persistor.
func (c Configuration) UsesPersistor() bool {
	_, ok := c.factory.(*collection.PersistentFactory)

	return ok
}

func (c Configuration) validate() error {
	if c.comparator == nil {
		return fmt.Errorf("%w: missing comparator", ErrIllegalConfiguration)
	}

	if c.kind != numeric.Invalid && !c.kind.Valid() {
		return fmt.Errorf("%w: %w: %s", ErrIllegalConfiguration, numeric.ErrUnknownKind, c.kind)
	}

	if c.factory == nil {
		return fmt.Errorf("%w: missing collection factory", ErrIllegalConfiguration)
	}

	if !c.filter.Valid() {
		return fmt.Errorf("%w: missing filter", ErrIllegalConfiguration)
	}

	if c.factory.UseWeakReferences() && c.factory.Observer() == nil {
		return fmt.Errorf("%w: factory %s holds collections weakly without persisting them",
			ErrIllegalConfiguration, c.factory.Name())
	}

	return nil
}

// Builder assembles a Configuration and the tree using it.
type Builder struct {
	cfg         Configuration
	persistor   collection.Persistor
	persistOpts []collection.PersistentOption
}

// NewBuilder returns a builder with autobalancing on, the weakEqual filter
// and no comparator or factory.
func NewBuilder() *Builder {
	return &Builder{cfg: Configuration{
		filter:        interval.FilterWeakEqual,
		autoBalancing: true,
	}}
}

// UsePredefinedType configures a tree over a single numeric kind: the strict
// comparator and the weakEqual filter. Intervals of other kinds are rejected.
func (b *Builder) UsePredefinedType(kind numeric.Kind) *Builder {
	b.cfg.kind = kind
	b.cfg.comparator = compare.Strict{}
	b.cfg.filter = interval.FilterWeakEqual

	return b
}

// UseMixedNumbers configures a tree accepting every numeric kind, compared
// after promotion.
func (b *Builder) UseMixedNumbers() *Builder {
	b.cfg.kind = numeric.Invalid
	b.cfg.comparator = compare.Promoting{}
	b.cfg.filter = interval.FilterWeakEqual

	return b
}

// Comparator sets a custom comparator.
func (b *Builder) Comparator(c compare.Comparator) *Builder {
	b.cfg.comparator = c

	return b
}

// Filter sets the default filter of Find.
func (b *Builder) Filter(f interval.Filter) *Builder {
	b.cfg.filter = f

	return b
}

// Factory sets the collection factory.
func (b *Builder) Factory(f collection.Factory) *Builder {
	b.cfg.factory = f

	return b
}

// CollectionKind selects an in-memory factory of the given kind.
func (b *Builder) CollectionKind(kind collection.Kind) *Builder {
	b.cfg.factory = collection.MemoryFactory(kind)

	return b
}

// Persistor stores collections in p through a caching PersistentFactory whose
// base kind follows the configured in-memory factory (set by default).
func (b *Builder) Persistor(p collection.Persistor, opts ...collection.PersistentOption) *Builder {
	b.persistor = p
	b.persistOpts = opts

	return b
}

// AutoBalancing toggles rebalancing on mutation.
func (b *Builder) AutoBalancing(on bool) *Builder {
	b.cfg.autoBalancing = on

	return b
}

// WriteCollections toggles embedding collections in snapshots.
func (b *Builder) WriteCollections(on bool) *Builder {
	b.cfg.writeCollections = on

	return b
}

// Configuration resolves and validates the configuration.
func (b *Builder) Configuration() (Configuration, error) {
	cfg := b.cfg
	cfg.factory = b.resolveFactory()

	if err := cfg.validate(); err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}

// resolveFactory wraps the configured in-memory kind into a persistent
// factory when a persistor is set.
func (b *Builder) resolveFactory() collection.Factory {
	if b.persistor == nil {
		return b.cfg.factory
	}

	base := collection.KindSet

	if b.cfg.factory != nil {
		if kind, err := collection.ParseKind(b.cfg.factory.Name()); err == nil {
			base = kind
		}
	}

	return collection.NewPersistentFactory(base, b.persistor, b.persistOpts...)
}

// Build returns an empty tree.
func (b *Builder) Build() (*Tree, error) {
	cfg, err := b.Configuration()
	if err != nil {
		return nil, err
	}

	return newTree(cfg), nil
}

// Load reads a snapshot written by Tree.Save. The builder's factory or
// persistor, when set, replaces the factory named in the snapshot; one is
// required for snapshots whose collections live in a persistor. Every other
// setting comes from the snapshot.
func (b *Builder) Load(r io.Reader) (*Tree, error) {
	factory := b.resolveFactory()
	if factory != nil && factory.UseWeakReferences() && factory.Observer() == nil {
		return nil, fmt.Errorf("%w: factory %s holds collections weakly without persisting them",
			ErrIllegalConfiguration, factory.Name())
	}

	return decode(r, factory)
}
