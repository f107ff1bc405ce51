package interval

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sumatoshi-tech/intervaltree/pkg/compare"
)

// ErrUnknownFilter is returned when a filter name is not registered.
var ErrUnknownFilter = errors.New("unknown interval filter")

// Registered filter names.
const (
	FilterNameEqual       = "equal"
	FilterNameStrictEqual = "strictEqual"
	FilterNameWeakEqual   = "weakEqual"
	FilterNameInterval    = "interval"
)

// Filter decides whether a stored candidate matches a query interval during
// lookups and removals.
type Filter struct {
	name  string
	match func(cmp compare.Comparator, candidate, query Interval) bool
}

// NewFilter builds a named filter from a match function.
func NewFilter(name string, match func(cmp compare.Comparator, candidate, query Interval) bool) Filter {
	return Filter{name: name, match: match}
}

// Name identifies the filter in serialized configurations.
func (f Filter) Name() string { return f.name }

// Valid reports whether f has a match function.
func (f Filter) Valid() bool { return f.match != nil }

// Match reports whether candidate satisfies the filter for query.
func (f Filter) Match(cmp compare.Comparator, candidate, query Interval) bool {
	return f.match(cmp, candidate, query)
}

// Built-in filters.
var (
	// FilterEqual matches intervals that are identical in kind, raw bounds, flags and label.
	FilterEqual = Filter{name: FilterNameEqual, match: func(_ compare.Comparator, candidate, query Interval) bool {
		return candidate == query
	}}

	// FilterStrictEqual is FilterEqual restricted to candidates of the query's kind.
	FilterStrictEqual = Filter{name: FilterNameStrictEqual, match: strictEqual}

	// FilterInterval matches every interval covering the same normalized range,
	// regardless of raw bounds, flags or label.
	FilterInterval = Filter{name: FilterNameInterval, match: intervalEqual}

	// FilterWeakEqual behaves like FilterStrictEqual for candidates of the query's kind and
	// like FilterInterval across kinds.
	FilterWeakEqual = Filter{name: FilterNameWeakEqual, match: func(cmp compare.Comparator, candidate, query Interval) bool {
		if candidate.kind == query.kind {
			return strictEqual(cmp, candidate, query)
		}

		return intervalEqual(cmp, candidate, query)
	}}
)

func strictEqual(_ compare.Comparator, candidate, query Interval) bool {
	return candidate.kind == query.kind && candidate == query
}

func intervalEqual(cmp compare.Comparator, candidate, query Interval) bool {
	if cmp.Check(candidate.kind, query.kind) != nil {
		return false
	}

	return cmp.Compare(candidate.normStart, query.normStart) == 0 &&
		cmp.Compare(candidate.normEnd, query.normEnd) == 0
}

var (
	filtersMu sync.RWMutex
	filters   = map[string]Filter{
		FilterNameEqual:       FilterEqual,
		FilterNameStrictEqual: FilterStrictEqual,
		FilterNameWeakEqual:   FilterWeakEqual,
		FilterNameInterval:    FilterInterval,
	}
)

// RegisterFilter makes f resolvable by name, replacing any previous filter.
func RegisterFilter(f Filter) {
	filtersMu.Lock()
	defer filtersMu.Unlock()

	filters[f.name] = f
}

// LookupFilter resolves a registered filter.
func LookupFilter(name string) (Filter, error) {
	filtersMu.RLock()
	defer filtersMu.RUnlock()

	f, ok := filters[name]
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}

	return f, nil
}
