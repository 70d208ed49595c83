package smallmap

import "slices"

// Number of elements a store keeps without a separate heap allocation.
const inlineSize = 8

// store is a growable sequence that keeps its first inlineSize elements
// inside the owning value and spills to a heap slice beyond that.
//
// The zero value is an empty store and allocates nothing. Once spilled, a
// store stays on the heap until compact moves the elements back.
type store[T any] struct {
	// Elements live here while the store is not spilled.
	// For small element types the whole buffer shares a couple of cache
	// lines with the rest of the owner. Large element types make every map
	// value large, so keep the pair type in mind.
	inline [inlineSize]T

	// Heap backing, only meaningful when spilled is set.
	heap []T

	n       int
	spilled bool
}

func (s *store[T]) len() int {
	if s.spilled {
		return len(s.heap)
	}

	return s.n
}

func (s *store[T]) capacity() int {
	if s.spilled {
		return cap(s.heap)
	}

	return inlineSize
}

// slice exposes the live elements. It aliases the store's memory.
func (s *store[T]) slice() []T {
	if s.spilled {
		return s.heap
	}

	return s.inline[:s.n:s.n]
}

func (s *store[T]) push(v T) {
	s.insert(s.len(), v)
}

// insert places v at pos, shifting everything at or after pos one slot right.
func (s *store[T]) insert(pos int, v T) {
	if !s.spilled && s.n < inlineSize {
		copy(s.inline[pos+1:s.n+1], s.inline[pos:s.n])
		s.inline[pos] = v
		s.n++

		return
	}

	if !s.spilled {
		s.spill(inlineSize + 1)
	}

	if len(s.heap) == cap(s.heap) {
		s.heap = slices.Grow(s.heap, growCapacity(len(s.heap)+1)-len(s.heap))
	}

	s.heap = slices.Insert(s.heap, pos, v)
}

// remove deletes the element at pos, shifting the tail one slot left.
func (s *store[T]) remove(pos int) T {
	var zero T

	if s.spilled {
		v := s.heap[pos]
		// slices.Delete zeroes the vacated tail slot.
		s.heap = slices.Delete(s.heap, pos, pos+1)

		return v
	}

	v := s.inline[pos]
	copy(s.inline[pos:s.n-1], s.inline[pos+1:s.n])
	s.n--
	s.inline[s.n] = zero

	return v
}

// truncate shortens the store to n elements and zeroes the released slots.
func (s *store[T]) truncate(n int) {
	if s.spilled {
		clear(s.heap[n:])
		s.heap = s.heap[:n]

		return
	}

	clear(s.inline[n:s.n])
	s.n = n
}

// reserve makes room for at least n elements without further allocation.
func (s *store[T]) reserve(n int) {
	if n <= s.capacity() {
		return
	}

	if !s.spilled {
		s.spill(n)
		return
	}

	s.heap = slices.Grow(s.heap, n-len(s.heap))
}

// spill moves the inline elements to a heap buffer of at least capacity
// elements.
func (s *store[T]) spill(capacity int) {
	heap := make([]T, s.n, growCapacity(max(capacity, s.n)))
	copy(heap, s.inline[:s.n])
	clear(s.inline[:s.n])

	s.heap = heap
	s.n = 0
	s.spilled = true
}

// compact moves a spilled store back inline when its elements fit again,
// releasing the heap buffer. Reports whether it did.
func (s *store[T]) compact() bool {
	if !s.spilled || len(s.heap) > inlineSize {
		return false
	}

	s.n = copy(s.inline[:], s.heap)
	s.heap = nil
	s.spilled = false

	return true
}

// growCapacity rounds n up to a power of two while that stays within int on
// every platform. Larger requests are taken as is.
func growCapacity(n int) int {
	if n <= 0 || n > 1<<30 {
		return max(n, 0)
	}

	return int(NextPowerOf2(uint32(n)))
}

func (s *store[T]) reset() {
	s.truncate(0)
}

func (s *store[T]) clone() store[T] {
	c := store[T]{
		inline:  s.inline,
		n:       s.n,
		spilled: s.spilled,
	}

	if s.spilled {
		c.heap = slices.Clone(s.heap)
	}

	return c
}
