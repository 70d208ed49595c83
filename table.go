package smallmap

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Pair is a single key/value slot of a map, as exposed by AsSlice.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// table is the sorted storage shared by Map and Set. Pairs are kept strictly
// increasing by key; the storage order is the iteration order.
type table[K, V any] struct {
	pairs   store[Pair[K, V]]
	compare func(a, b K) int

	// Advances on every structural change. Entry handles compare it to
	// detect that they outlived the state they were built from.
	gen uint64
}

type Option[K, V any] func(t *table[K, V])

// Reserve room for n pairs up front. Values above the inline capacity
// allocate once instead of growing on demand.
func WithCapacity[K, V any](n int) Option[K, V] {
	return func(t *table[K, V]) {
		t.pairs.reserve(n)
	}
}

func (t *table[K, V]) init(compare func(a, b K) int, opts ...Option[K, V]) {
	t.compare = compare

	for _, opt := range opts {
		opt(t)
	}
}

func (t *table[K, V]) cmp() func(a, b K) int {
	if t.compare == nil {
		t.compare = kindCompare[K]()
	}

	return t.compare
}

// search finds key by binary search. On a miss pos is the first position
// whose key is greater than key.
func (t *table[K, V]) search(key K) (pos int, found bool) {
	compare := t.cmp()

	return slices.BinarySearchFunc(t.pairs.slice(), key, func(p Pair[K, V], k K) int {
		return compare(p.Key, k)
	})
}

func (t *table[K, V]) at(pos int) *Pair[K, V] {
	return &t.pairs.slice()[pos]
}

func (t *table[K, V]) insertAt(pos int, key K, value V) *V {
	t.pairs.insert(pos, Pair[K, V]{Key: key, Value: value})
	t.gen++

	return &t.at(pos).Value
}

func (t *table[K, V]) removeAt(pos int) Pair[K, V] {
	t.gen++

	return t.pairs.remove(pos)
}

// retain keeps the pairs for which keep returns true, in order.
func (t *table[K, V]) retain(keep func(key K, value *V) bool) {
	pairs := t.pairs.slice()

	n := 0
	for i := range pairs {
		if !keep(pairs[i].Key, &pairs[i].Value) {
			continue
		}

		if n != i {
			pairs[n] = pairs[i]
		}
		n++
	}

	t.pairs.truncate(n)
	t.gen++
}

// each calls fn for every pair in order until fn returns false. A structural
// change made by fn panics with ErrStaleIterator.
func (t *table[K, V]) each(fn func(p *Pair[K, V]) bool) {
	gen := t.gen
	pairs := t.pairs.slice()

	for i := range pairs {
		if !fn(&pairs[i]) {
			return
		}

		if t.gen != gen {
			panic(fmt.Errorf("%w: stopped after %d of %d pairs", ErrStaleIterator, i+1, len(pairs)))
		}
	}
}

// adopt replaces the contents of t with the pairs of src, which must share
// t's ordering. src must not be used afterwards.
func (t *table[K, V]) adopt(src *table[K, V]) {
	t.pairs = src.pairs
	t.gen++
}

// Returns the number of stored pairs.
func (t *table[K, V]) Len() int {
	return t.pairs.len()
}

func (t *table[K, V]) IsEmpty() bool {
	return t.pairs.len() == 0
}

// Removes every pair. Heap storage, if any, is kept for reuse.
func (t *table[K, V]) Reset() {
	t.pairs.reset()
	t.gen++
}

// Compact moves the pairs back into the inline buffer when they fit,
// releasing heap storage. Reports whether anything moved.
func (t *table[K, V]) Compact() bool {
	if !t.pairs.compact() {
		return false
	}

	t.gen++

	return true
}

func (t *table[K, V]) Stats() Stats {
	return Stats{
		Size:           t.pairs.len(),
		InlineCapacity: inlineSize,
		Capacity:       t.pairs.capacity(),
		Spilled:        t.pairs.spilled,
	}
}

func (t *table[K, V]) clone() table[K, V] {
	return table[K, V]{
		pairs:   t.pairs.clone(),
		compare: t.compare,
	}
}

// kindCompare builds a comparator for keys whose underlying kind is ordered.
// It backs zero-value maps, which have no comparator of their own.
func kindCompare[K any]() func(a, b K) int {
	typ := reflect.TypeFor[K]()

	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}
	case reflect.Float32, reflect.Float64:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}
	case reflect.String:
		return func(a, b K) int {
			return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}
	}

	panic(&UnsupportedKeyError{Type: typ})
}
