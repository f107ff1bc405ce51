// Package compare provides the pluggable strategies that order numeric values
// inside an interval tree.
package compare

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// ErrKindMismatch is returned by strict comparators for operands of different kinds.
var ErrKindMismatch = errors.New("comparator kind mismatch")

// ErrUnknownComparator is returned when a comparator name is not registered.
var ErrUnknownComparator = errors.New("unknown comparator")

// Registered comparator names.
const (
	NamePromoting = "promoting"
	NameStrict    = "strict"
)

// Comparator orders two non-null values.
type Comparator interface {
	// Name identifies the strategy in serialized configurations.
	Name() string
	// Check reports whether values of kinds a and b may be compared.
	Check(a, b numeric.Kind) error
	// Compare returns -1, 0 or 1. Callers must have passed Check for the
	// operands' kinds.
	Compare(a, b numeric.Value) int
}

// Promoting compares values of different kinds by promoting both to the wider
// kind (byte < short < int < long < float < double).
type Promoting struct{}

// Name implements Comparator.
func (Promoting) Name() string { return NamePromoting }

// Check implements Comparator. Every pair of kinds is comparable.
func (Promoting) Check(_, _ numeric.Kind) error { return nil }

// Compare implements Comparator.
func (Promoting) Compare(a, b numeric.Value) int {
	return promoted(a, b)
}

// Strict only compares values of identical kinds.
type Strict struct{}

// Name implements Comparator.
func (Strict) Name() string { return NameStrict }

// Check implements Comparator.
func (Strict) Check(a, b numeric.Kind) error {
	if a != b {
		return fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a, b)
	}

	return nil
}

// Compare implements Comparator. Mixed kinds are a programming error.
func (s Strict) Compare(a, b numeric.Value) int {
	if err := s.Check(a.Kind(), b.Kind()); err != nil {
		panic(err)
	}

	return promoted(a, b)
}

// promoted compares a and b in their wider kind.
func promoted(a, b numeric.Value) int {
	switch numeric.Wider(a.Kind(), b.Kind()) {
	case numeric.Float:
		return three(float32(a.Float64()), float32(b.Float64()))
	case numeric.Double:
		return three(a.Float64(), b.Float64())
	default:
		return three(a.Int64(), b.Int64())
	}
}

func three[T int64 | float32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Max returns the greater of a and b under c, preferring a on ties.
func Max(c Comparator, a, b numeric.Value) numeric.Value {
	if c.Compare(b, a) > 0 {
		return b
	}

	return a
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Comparator{
		NamePromoting: Promoting{},
		NameStrict:    Strict{},
	}
)

// Register makes a comparator resolvable by name, replacing any previous one.
func Register(c Comparator) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[c.Name()] = c
}

// Lookup resolves a registered comparator.
func Lookup(name string) (Comparator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComparator, name)
	}

	return c, nil
}
