package smallmap

import (
	"cmp"
	"iter"
)

// Set is a sorted set for a small number of keys. It shares Map's storage:
// keys are kept in ascending order in a buffer that stays inline while small.
// Set doesn't store values, only keys.
type Set[K any] struct {
	table[K, struct{}]
}

func NewSet[K cmp.Ordered](opts ...Option[K, struct{}]) *Set[K] {
	return NewSetFunc(cmp.Compare[K], opts...)
}

func NewSetFunc[K any](compare func(a, b K) int, opts ...Option[K, struct{}]) *Set[K] {
	var s Set[K]
	s.init(compare, opts...)

	return &s
}

func (s *Set[K]) Has(key K) bool {
	_, ok := s.search(key)
	return ok
}

// Puts a key in the set.
// Returns whether the key is new.
func (s *Set[K]) Put(key K) bool {
	pos, ok := s.search(key)
	if ok {
		return false
	}

	s.insertAt(pos, key, struct{}{})

	return true
}

// Deletes a key from the set.
func (s *Set[K]) Delete(key K) bool {
	pos, ok := s.search(key)
	if !ok {
		return false
	}

	s.removeAt(pos)

	return true
}

// All yields the keys in ascending order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		s.each(func(p *Pair[K, struct{}]) bool {
			return yield(p.Key)
		})
	}
}
