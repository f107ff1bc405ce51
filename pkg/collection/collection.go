// Package collection holds the per-node interval collections of an interval
// tree together with the factories, persistors and observers that supply,
// cache and store them outside the tree.
package collection

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// ErrUnknownKind is returned for a collection kind other than set or list.
var ErrUnknownKind = errors.New("unknown collection kind")

// Collection stores the intervals sharing one normalized range. The tree
// never inspects how a collection deduplicates; it only asks whether a
// mutation changed anything.
type Collection interface {
	// Add inserts iv and reports whether the collection changed.
	Add(iv interval.Interval) bool
	// Remove deletes one occurrence of iv and reports whether it was present.
	Remove(iv interval.Interval) bool
	Contains(iv interval.Interval) bool
	Len() int
	// Values returns a copy of the elements in iteration order.
	Values() []interval.Interval
	All() iter.Seq[interval.Interval]
	AddAll(ivs ...interval.Interval) bool
	RemoveAll(ivs ...interval.Interval) bool
	// RetainAll keeps only the elements equal to one of ivs.
	RetainAll(ivs ...interval.Interval) bool
	Clear()
}

// Kind selects the base collection semantics.
type Kind string

// Collection kinds.
const (
	KindSet  Kind = "set"
	KindList Kind = "list"
)

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindSet, KindList:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// New returns an empty collection of kind k. Unknown kinds yield a set.
func (k Kind) New() Collection {
	if k == KindList {
		return NewList()
	}

	return NewSet()
}

// Set deduplicates intervals by equality and keeps insertion order.
type Set struct {
	index map[interval.Interval]struct{}
	items []interval.Interval
}

// NewSet returns an empty set holding ivs.
func NewSet(ivs ...interval.Interval) *Set {
	s := &Set{index: make(map[interval.Interval]struct{}, len(ivs))}
	s.AddAll(ivs...)

	return s
}

// Add implements Collection. Intervals already present are ignored.
func (s *Set) Add(iv interval.Interval) bool {
	if _, ok := s.index[iv]; ok {
		return false
	}

	s.index[iv] = struct{}{}
	s.items = append(s.items, iv)

	return true
}

// Remove implements Collection.
func (s *Set) Remove(iv interval.Interval) bool {
	if _, ok := s.index[iv]; !ok {
		return false
	}

	delete(s.index, iv)
	s.items = slices.DeleteFunc(s.items, func(other interval.Interval) bool { return other == iv })

	return true
}

// Contains implements Collection.
func (s *Set) Contains(iv interval.Interval) bool {
	_, ok := s.index[iv]

	return ok
}

// Len implements Collection.
func (s *Set) Len() int { return len(s.items) }

// Values implements Collection.
func (s *Set) Values() []interval.Interval { return slices.Clone(s.items) }

// All implements Collection. The set must not change during iteration.
func (s *Set) All() iter.Seq[interval.Interval] { return slices.Values(s.items) }

// AddAll implements Collection.
func (s *Set) AddAll(ivs ...interval.Interval) bool {
	changed := false

	for _, iv := range ivs {
		changed = s.Add(iv) || changed
	}

	return changed
}

// RemoveAll implements Collection.
func (s *Set) RemoveAll(ivs ...interval.Interval) bool {
	changed := false

	for _, iv := range ivs {
		changed = s.Remove(iv) || changed
	}

	return changed
}

// RetainAll implements Collection.
func (s *Set) RetainAll(ivs ...interval.Interval) bool {
	keep := make(map[interval.Interval]struct{}, len(ivs))
	for _, iv := range ivs {
		keep[iv] = struct{}{}
	}

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(iv interval.Interval) bool {
		if _, ok := keep[iv]; ok {
			return false
		}

		delete(s.index, iv)

		return true
	})

	return len(s.items) != before
}

// Clear implements Collection.
func (s *Set) Clear() {
	clear(s.index)
	s.items = nil
}

// List keeps every added interval, duplicates included.
type List struct {
	items []interval.Interval
}

// NewList returns a list holding ivs.
func NewList(ivs ...interval.Interval) *List {
	return &List{items: slices.Clone(ivs)}
}

// Add implements Collection. It always appends, so it always reports a change.
func (l *List) Add(iv interval.Interval) bool {
	l.items = append(l.items, iv)

	return true
}

// Remove implements Collection. Only the first occurrence of iv is removed.
func (l *List) Remove(iv interval.Interval) bool {
	idx := slices.Index(l.items, iv)
	if idx < 0 {
		return false
	}

	l.items = slices.Delete(l.items, idx, idx+1)

	return true
}

// Contains implements Collection.
func (l *List) Contains(iv interval.Interval) bool { return slices.Contains(l.items, iv) }

// Len implements Collection. Duplicates are counted.
func (l *List) Len() int { return len(l.items) }

// Values implements Collection.
func (l *List) Values() []interval.Interval { return slices.Clone(l.items) }

// All implements Collection. The list must not change during iteration.
func (l *List) All() iter.Seq[interval.Interval] { return slices.Values(l.items) }

// AddAll implements Collection.
func (l *List) AddAll(ivs ...interval.Interval) bool {
	l.items = append(l.items, ivs...)

	return len(ivs) > 0
}

// RemoveAll implements Collection. Every occurrence of each of ivs is removed.
func (l *List) RemoveAll(ivs ...interval.Interval) bool {
	drop := make(map[interval.Interval]struct{}, len(ivs))
	for _, iv := range ivs {
		drop[iv] = struct{}{}
	}

	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(iv interval.Interval) bool {
		_, ok := drop[iv]

		return ok
	})

	return len(l.items) != before
}

// RetainAll implements Collection.
func (l *List) RetainAll(ivs ...interval.Interval) bool {
	keep := make(map[interval.Interval]struct{}, len(ivs))
	for _, iv := range ivs {
		keep[iv] = struct{}{}
	}

	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(iv interval.Interval) bool {
		_, ok := keep[iv]

		return !ok
	})

	return len(l.items) != before
}

// Clear implements Collection.
func (l *List) Clear() { l.items = nil }
