package collection

import (
	"iter"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

// EventType classifies a collection mutation.
type EventType uint8

// Event types.
const (
	EventAdded EventType = iota + 1
	EventRemoved
	EventStructureChanged
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventStructureChanged:
		return "structureChanged"
	default:
		return "unknown"
	}
}

// Event describes one change to the collection stored under Key. Interval is
// the zero value for structure changes.
type Event struct {
	Key        string
	Interval   interval.Interval
	Collection Collection
	Type       EventType
}

// Observer listens to collection mutations. Upsert is called while the
// collection still holds elements, Remove once it became empty.
type Observer interface {
	Upsert(ev Event)
	Remove(ev Event)
}

// ObserverFuncs adapts a pair of functions to Observer. Nil functions are skipped.
type ObserverFuncs struct {
	OnUpsert func(Event)
	OnRemove func(Event)
}

// Upsert implements Observer.
func (o ObserverFuncs) Upsert(ev Event) {
	if o.OnUpsert != nil {
		o.OnUpsert(ev)
	}
}

// Remove implements Observer.
func (o ObserverFuncs) Remove(ev Event) {
	if o.OnRemove != nil {
		o.OnRemove(ev)
	}
}

// Observed wraps a collection and reports its mutations to an observer.
// Single-element mutations emit one event each; bulk operations and Batch
// emit a single structure-changed event when anything changed.
type Observed struct {
	inner      Collection
	key        string
	observer   Observer
	suppressed int
	mods       uint64
}

// Observe wraps inner so that changes are reported to observer under key.
func Observe(inner Collection, key string, observer Observer) *Observed {
	return &Observed{inner: inner, key: key, observer: observer}
}

// Unwrap returns the wrapped collection.
func (o *Observed) Unwrap() Collection { return o.inner }

// Key returns the key events are reported under.
func (o *Observed) Key() string { return o.key }

// Suppress stops notifications until the returned resume function is called.
// Scopes nest.
func (o *Observed) Suppress() (resume func()) {
	o.suppressed++

	return func() { o.suppressed-- }
}

// Batch runs fn with notifications suppressed and emits one structure-changed
// event if fn changed the collection. It reports whether anything changed.
func (o *Observed) Batch(fn func(c Collection)) bool {
	before := o.mods

	resume := o.Suppress()
	fn(o)
	resume()

	changed := o.mods != before
	if changed {
		o.notify(EventStructureChanged, interval.Interval{})
	}

	return changed
}

func (o *Observed) record(changed bool, typ EventType, iv interval.Interval) bool {
	if changed {
		o.mods++
		o.notify(typ, iv)
	}

	return changed
}

func (o *Observed) notify(typ EventType, iv interval.Interval) {
	if o.suppressed > 0 || o.observer == nil {
		return
	}

	ev := Event{Key: o.key, Interval: iv, Collection: o.inner, Type: typ}

	if o.inner.Len() == 0 {
		o.observer.Remove(ev)

		return
	}

	o.observer.Upsert(ev)
}

func (o *Observed) Add(iv interval.Interval) bool {
	return o.record(o.inner.Add(iv), EventAdded, iv)
}

func (o *Observed) Remove(iv interval.Interval) bool {
	return o.record(o.inner.Remove(iv), EventRemoved, iv)
}

func (o *Observed) Contains(iv interval.Interval) bool { return o.inner.Contains(iv) }

func (o *Observed) Len() int { return o.inner.Len() }

func (o *Observed) Values() []interval.Interval { return o.inner.Values() }

func (o *Observed) All() iter.Seq[interval.Interval] { return o.inner.All() }

func (o *Observed) AddAll(ivs ...interval.Interval) bool {
	return o.Batch(func(Collection) {
		if o.inner.AddAll(ivs...) {
			o.mods++
		}
	})
}

func (o *Observed) RemoveAll(ivs ...interval.Interval) bool {
	return o.Batch(func(Collection) {
		if o.inner.RemoveAll(ivs...) {
			o.mods++
		}
	})
}

func (o *Observed) RetainAll(ivs ...interval.Interval) bool {
	return o.Batch(func(Collection) {
		if o.inner.RetainAll(ivs...) {
			o.mods++
		}
	})
}

func (o *Observed) Clear() {
	o.Batch(func(Collection) {
		if o.inner.Len() > 0 {
			o.inner.Clear()
			o.mods++
		}
	})
}
