package smallmap

import "fmt"

// Entry is a key's slot in a map, resolved by a single binary search.
// It is either occupied or vacant; use Occupied or Vacant to specialize it,
// or one of the Or* helpers.
//
// An entry is only valid while the map is not changed by anything else.
// Using it after such a change panics with ErrStaleEntry.
type Entry[K, V any] struct {
	m        *Map[K, V]
	key      K
	pos      int
	gen      uint64
	occupied bool
}

func (e Entry[K, V]) Key() K {
	return e.key
}

func (e Entry[K, V]) Occupied() (OccupiedEntry[K, V], bool) {
	if !e.occupied {
		return OccupiedEntry[K, V]{}, false
	}

	return OccupiedEntry[K, V]{e}, true
}

func (e Entry[K, V]) Vacant() (VacantEntry[K, V], bool) {
	if e.occupied {
		return VacantEntry[K, V]{}, false
	}

	return VacantEntry[K, V]{e}, true
}

// OrDefault returns the value of an occupied entry, or inserts the zero
// value into a vacant one and returns that.
func (e Entry[K, V]) OrDefault() *V {
	var zero V
	return e.OrInsert(zero)
}

func (e Entry[K, V]) OrInsert(value V) *V {
	if e.occupied {
		return OccupiedEntry[K, V]{e}.IntoMut()
	}

	return VacantEntry[K, V]{e}.Insert(value)
}

// OrInsertWith is OrInsert with a lazily built value; f only runs for a
// vacant entry.
func (e Entry[K, V]) OrInsertWith(f func() V) *V {
	if e.occupied {
		return OccupiedEntry[K, V]{e}.IntoMut()
	}

	return VacantEntry[K, V]{e}.Insert(f())
}

// AndModify runs f on the value of an occupied entry and returns the entry
// unchanged for chaining.
func (e Entry[K, V]) AndModify(f func(value *V)) Entry[K, V] {
	if e.occupied {
		f(OccupiedEntry[K, V]{e}.GetMut())
	}

	return e
}

func (e Entry[K, V]) check() {
	if e.m == nil || e.m.gen != e.gen {
		panic(fmt.Errorf("%w: key %v", ErrStaleEntry, e.key))
	}
}

// OccupiedEntry is an entry whose key is present.
type OccupiedEntry[K, V any] struct {
	e Entry[K, V]
}

func (o OccupiedEntry[K, V]) Key() K {
	return o.e.key
}

func (o OccupiedEntry[K, V]) Get() V {
	return *o.GetMut()
}

func (o OccupiedEntry[K, V]) GetMut() *V {
	o.e.check()

	return &o.e.m.at(o.e.pos).Value
}

// IntoMut is GetMut for callers that are done with the entry.
func (o OccupiedEntry[K, V]) IntoMut() *V {
	return o.GetMut()
}

// Insert swaps in value and returns the previous one. The pair does not move
// and the entry stays usable.
func (o OccupiedEntry[K, V]) Insert(value V) V {
	v := o.GetMut()
	old := *v
	*v = value

	return old
}

// Remove deletes the pair and returns its value. The entry is consumed.
func (o OccupiedEntry[K, V]) Remove() V {
	o.e.check()

	return o.e.m.removeAt(o.e.pos).Value
}

// VacantEntry is an entry whose key is absent.
type VacantEntry[K, V any] struct {
	e Entry[K, V]
}

func (v VacantEntry[K, V]) Key() K {
	return v.e.key
}

// Insert stores value at the entry's sorted position and returns a pointer
// to it. The entry is consumed.
func (v VacantEntry[K, V]) Insert(value V) *V {
	v.e.check()

	return v.e.m.insertAt(v.e.pos, v.e.key, value)
}
