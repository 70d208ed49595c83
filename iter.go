package smallmap

import (
	"fmt"
	"iter"
)

// ValuesIter walks the values of a map in ascending key order. It covers the
// pairs present when it was created and cannot be rewound; call Values again
// for a new traversal.
//
// Values may be modified through the map while iterating. Any structural
// change (insert of a new key, remove, retain, reset, compact, decode)
// invalidates the iterator, and using it afterwards panics with an error
// wrapping ErrStaleIterator.
type ValuesIter[K, V any] struct {
	t     *table[K, V]
	gen   uint64
	pairs []Pair[K, V]
}

// Next returns the next value, or false when the iterator is exhausted.
func (it *ValuesIter[K, V]) Next() (V, bool) {
	it.check()

	if len(it.pairs) == 0 {
		var zero V
		return zero, false
	}

	v := it.pairs[0].Value
	it.pairs = it.pairs[1:]

	return v, true
}

// Returns the number of values left.
func (it *ValuesIter[K, V]) Len() int {
	it.check()

	return len(it.pairs)
}

// Seq drains the iterator as a range-over-func sequence.
func (it *ValuesIter[K, V]) Seq() iter.Seq[V] {
	return func(yield func(V) bool) {
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			if !yield(v) {
				return
			}
		}
	}
}

func (it *ValuesIter[K, V]) check() {
	if it.t != nil && it.t.gen != it.gen {
		panic(fmt.Errorf("%w: %d values left unread", ErrStaleIterator, len(it.pairs)))
	}
}
