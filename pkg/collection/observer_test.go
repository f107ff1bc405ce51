package collection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
)

const testKey = "[1,2]"

var errBackend = errors.New("backend unavailable")

type recorder struct {
	upserts []Event
	removes []Event
}

func (r *recorder) observer() Observer {
	return ObserverFuncs{
		OnUpsert: func(ev Event) { r.upserts = append(r.upserts, ev) },
		OnRemove: func(ev Event) { r.removes = append(r.removes, ev) },
	}
}

func TestObserved_SingleElementEvents(t *testing.T) {
	t.Parallel()

	var rec recorder

	o := Observe(NewSet(), testKey, rec.observer())

	a := iv(1, 2)

	assert.True(t, o.Add(a))
	assert.False(t, o.Add(a))
	require.Len(t, rec.upserts, 1)
	assert.Equal(t, Event{Key: testKey, Interval: a, Collection: o.Unwrap(), Type: EventAdded}, rec.upserts[0])

	assert.True(t, o.Remove(a))
	require.Len(t, rec.removes, 1)
	assert.Equal(t, EventRemoved, rec.removes[0].Type)
	assert.Equal(t, testKey, o.Key())
}

func TestObserved_BulkEmitsOneEvent(t *testing.T) {
	t.Parallel()

	var rec recorder

	o := Observe(NewList(), testKey, rec.observer())

	assert.True(t, o.AddAll(iv(1, 2), iv(1, 2), iv(1, 2, interval.WithLabel("x"))))
	require.Len(t, rec.upserts, 1)
	assert.Equal(t, EventStructureChanged, rec.upserts[0].Type)
	assert.Equal(t, 3, rec.upserts[0].Collection.Len())

	assert.False(t, o.RemoveAll(iv(8, 9)))
	assert.Len(t, rec.upserts, 1)

	assert.True(t, o.RetainAll(iv(1, 2)))
	assert.Len(t, rec.upserts, 2)

	o.Clear()
	require.Len(t, rec.removes, 1)
	assert.Equal(t, EventStructureChanged, rec.removes[0].Type)

	o.Clear()
	assert.Len(t, rec.removes, 1)
}

func TestObserved_BatchAndSuppress(t *testing.T) {
	t.Parallel()

	var rec recorder

	o := Observe(NewSet(), testKey, rec.observer())

	changed := o.Batch(func(c Collection) {
		c.Add(iv(1, 2))
		c.Add(iv(1, 2, interval.WithLabel("y")))
		c.Remove(iv(1, 2))
	})

	assert.True(t, changed)
	require.Len(t, rec.upserts, 1)
	assert.Equal(t, EventStructureChanged, rec.upserts[0].Type)

	resume := o.Suppress()
	o.Add(iv(1, 2))
	resume()

	assert.Len(t, rec.upserts, 1)

	assert.False(t, o.Batch(func(Collection) {}))
}

func TestObserved_NilObserver(t *testing.T) {
	t.Parallel()

	o := Observe(NewSet(), testKey, nil)

	assert.True(t, o.Add(iv(1, 2)))
	assert.Equal(t, 1, o.Len())
}

func TestEventType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "structureChanged", EventStructureChanged.String())
	assert.Equal(t, "unknown", EventType(0).String())
}
