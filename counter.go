package smallmap

import (
	"cmp"
	"fmt"
	"iter"
	"math"
)

// Counter counts occurrences of a small number of distinct keys. It is a
// Map from key to count and keeps the map's ordering.
//
// A key whose count drops to zero through Remove stays in the counter with
// count 0. Call Prune (or Retain) to drop such keys.
//
// The zero value is an empty counter with the same key restrictions as the
// zero Map.
type Counter[K any] struct {
	m Map[K, uint]
}

func NewCounter[K cmp.Ordered](opts ...Option[K, uint]) *Counter[K] {
	return NewCounterFunc(cmp.Compare[K], opts...)
}

func NewCounterFunc[K any](compare func(a, b K) int, opts ...Option[K, uint]) *Counter[K] {
	var c Counter[K]
	c.m.init(compare, opts...)

	return &c
}

// Counts every key of seq.
func CountAll[K cmp.Ordered](seq iter.Seq[K]) *Counter[K] {
	c := NewCounter[K]()
	c.Extend(seq)

	return c
}

// Builds a counter from (key, count) pairs. Later duplicates win.
func CounterFromPairs[K cmp.Ordered](seq iter.Seq2[K, uint]) *Counter[K] {
	c := NewCounter[K]()
	c.m.Extend(seq)

	return c
}

func CounterFromMap[K cmp.Ordered](src map[K]uint) *Counter[K] {
	return &Counter[K]{m: *FromMap(src)}
}

// Add counts one occurrence of key.
func (c *Counter[K]) Add(key K) {
	c.AddN(key, 1)
}

// AddN counts n occurrences of key at once. It panics with an error wrapping
// ErrCountOverflow instead of letting the count wrap around; the count is
// left unchanged in that case.
func (c *Counter[K]) AddN(key K, n uint) {
	count := c.m.Entry(key).OrDefault()
	if *count > math.MaxUint-n {
		panic(fmt.Errorf("%w: key %v has %d, adding %d", ErrCountOverflow, key, *count, n))
	}

	*count += n
}

// Remove takes back one occurrence of key. It returns false when key was
// never added or its count is already zero.
func (c *Counter[K]) Remove(key K) bool {
	occupied, ok := c.m.Entry(key).Occupied()
	if !ok {
		return false
	}

	count := occupied.GetMut()
	if *count == 0 {
		return false
	}

	*count--

	return true
}

// Get returns the count of key, 0 for keys never added.
func (c *Counter[K]) Get(key K) uint {
	n, _ := c.m.Get(key)
	return n
}

// Extend counts every key of seq.
func (c *Counter[K]) Extend(seq iter.Seq[K]) {
	for k := range seq {
		c.Add(k)
	}
}

// Retain keeps the keys for which keep returns true.
func (c *Counter[K]) Retain(keep func(key K, count *uint) bool) {
	c.m.Retain(keep)
}

// Prune drops every key whose count is zero.
func (c *Counter[K]) Prune() {
	c.m.Retain(func(_ K, count *uint) bool {
		return *count > 0
	})
}

func (c *Counter[K]) Len() int {
	return c.m.Len()
}

func (c *Counter[K]) IsEmpty() bool {
	return c.m.IsEmpty()
}

// AsSlice exposes the (key, count) pairs in ascending key order.
func (c *Counter[K]) AsSlice() []Pair[K, uint] {
	return c.m.AsSlice()
}

func (c *Counter[K]) Values() *ValuesIter[K, uint] {
	return c.m.Values()
}

func (c *Counter[K]) All() iter.Seq2[K, uint] {
	return c.m.All()
}

func (c *Counter[K]) Keys() iter.Seq[K] {
	return c.m.Keys()
}

func (c *Counter[K]) Reset() {
	c.m.Reset()
}

func (c *Counter[K]) Stats() Stats {
	return c.m.Stats()
}

func (c *Counter[K]) Clone() *Counter[K] {
	return &Counter[K]{m: *c.m.Clone()}
}

// Map exposes the underlying map.
func (c *Counter[K]) Map() *Map[K, uint] {
	return &c.m
}

func (c *Counter[K]) String() string {
	return c.m.String()
}
