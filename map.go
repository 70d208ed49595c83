package smallmap

import (
	"cmp"
	"fmt"
	"iter"
)

// Map is an ordered map for a small number of keys. Pairs are kept in a
// contiguous buffer sorted by key: lookups are a binary search, inserts and
// removes shift the tail. The first few pairs are stored inline, so small
// maps never touch the heap.
//
// The zero value is an empty map ready to use for keys whose underlying type
// is an integer, float or string. Other key types need NewFunc.
//
// Map is not safe for concurrent use.
type Map[K, V any] struct {
	table[K, V]
}

// Returns a new map ordered by cmp.Compare.
func New[K cmp.Ordered, V any](opts ...Option[K, V]) *Map[K, V] {
	return NewFunc(cmp.Compare[K], opts...)
}

// Returns a new map ordered by compare, which must define a strict total
// order over keys and return a negative, zero or positive number.
func NewFunc[K, V any](compare func(a, b K) int, opts ...Option[K, V]) *Map[K, V] {
	var m Map[K, V]
	m.init(compare, opts...)

	return &m
}

// Builds a map from a sequence of pairs. Later duplicates win.
func Collect[K cmp.Ordered, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	m := New[K, V]()
	m.Extend(seq)

	return m
}

// Builds a map holding the contents of a builtin map.
func FromMap[K cmp.Ordered, V any](src map[K]V) *Map[K, V] {
	m := New(WithCapacity[K, V](len(src)))
	for k, v := range src {
		m.Insert(k, v)
	}

	return m
}

// Returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	pos, ok := m.search(key)
	if !ok {
		var zero V
		return zero, false
	}

	return m.at(pos).Value, true
}

// Returns a pointer to the value stored for key, or nil.
// The pointer is valid until the next insert of a new key or removal.
func (m *Map[K, V]) GetMut(key K) *V {
	pos, ok := m.search(key)
	if !ok {
		return nil
	}

	return &m.at(pos).Value
}

func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.search(key)
	return ok
}

// MustGet is the indexing form of Get: it panics with an error wrapping
// ErrKeyNotFound when key is absent.
func (m *Map[K, V]) MustGet(key K) V {
	return *m.MustGetMut(key)
}

func (m *Map[K, V]) MustGetMut(key K) *V {
	v := m.GetMut(key)
	if v == nil {
		panic(fmt.Errorf("%w: %v", ErrKeyNotFound, key))
	}

	return v
}

// Insert stores value for key. If key was present, its previous value is
// returned along with true and the length does not change.
func (m *Map[K, V]) Insert(key K, value V) (V, bool) {
	e := m.Entry(key)

	if occupied, ok := e.Occupied(); ok {
		return occupied.Insert(value), true
	}

	vacant, _ := e.Vacant()
	vacant.Insert(value)

	var zero V
	return zero, false
}

// Remove deletes key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	pos, ok := m.search(key)
	if !ok {
		var zero V
		return zero, false
	}

	return m.removeAt(pos).Value, true
}

// Entry resolves key to its slot with a single search. See Entry.
func (m *Map[K, V]) Entry(key K) Entry[K, V] {
	pos, ok := m.search(key)

	return Entry[K, V]{
		m:        m,
		key:      key,
		pos:      pos,
		gen:      m.gen,
		occupied: ok,
	}
}

// Retain removes every pair for which keep returns false. keep may modify
// the value before deciding. Survivors keep their order.
func (m *Map[K, V]) Retain(keep func(key K, value *V) bool) {
	m.retain(keep)
}

// AsSlice exposes the pairs in ascending key order. The slice aliases the
// map's storage: values may be modified in place, but changing a key's
// relative order breaks the map.
func (m *Map[K, V]) AsSlice() []Pair[K, V] {
	return m.pairs.slice()
}

// Values returns a fresh iterator over the values in ascending key order.
func (m *Map[K, V]) Values() *ValuesIter[K, V] {
	return &ValuesIter[K, V]{t: &m.table, gen: m.gen, pairs: m.pairs.slice()}
}

// All yields the pairs in ascending key order. The loop body must not change
// the map structurally; doing so panics with ErrStaleIterator.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.each(func(p *Pair[K, V]) bool {
			return yield(p.Key, p.Value)
		})
	}
}

// Keys yields the keys in ascending order, under the same rules as All.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.each(func(p *Pair[K, V]) bool {
			return yield(p.Key)
		})
	}
}

// Extend inserts every pair of seq. Later duplicates win.
func (m *Map[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.Insert(k, v)
	}
}

// Returns a copy of the map. Keys and values are copied shallowly.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{table: m.clone()}
}

// Equal reports whether both maps hold the same keys, in the sense of m's
// comparator, with values that eq considers equal.
func (m *Map[K, V]) Equal(o *Map[K, V], eq func(a, b V) bool) bool {
	a, b := m.AsSlice(), o.AsSlice()
	if len(a) != len(b) {
		return false
	}

	compare := m.cmp()
	for i := range a {
		if compare(a[i].Key, b[i].Key) != 0 || !eq(a[i].Value, b[i].Value) {
			return false
		}
	}

	return true
}

// replaceWith fills a scratch map through fill and adopts its contents only
// when fill succeeds. A failed decode leaves m as it was.
func (m *Map[K, V]) replaceWith(fill func(dst *Map[K, V]) error) error {
	var dst Map[K, V]
	dst.init(m.cmp())

	if err := fill(&dst); err != nil {
		return err
	}

	m.adopt(&dst.table)

	return nil
}

func (m *Map[K, V]) String() string {
	return fmt.Sprint(m.pairs.slice())
}
