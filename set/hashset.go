package set

import (
	"fmt"
)

const (
	DefaultCapacity = 10  // DefaultCapacity is the number of chains of a new HashSet
	MaxLoadFactor   = 0.8 // MaxLoadFactor is the size/capacity ratio above which a HashSet doubles
)

// HashFunc maps an element to a hash value, it must be a pure deterministic function.
// Elements the set treats as equal must hash equally: for floats every NaN and both
// zeros have to collapse to one value, as HashFloat does.
type HashFunc[T any] func(element T) uint64

// chain is a singly-linked list node owned by its predecessor or by the bucket array
type chain[T comparable] struct {
	element T
	next    *chain[T]
}

// HashSet is a Set backed by a separately-chained hash table.
// The table doubles its capacity and rehashes every element as soon as
// size/capacity exceeds MaxLoadFactor.
type HashSet[T comparable] struct {
	buckets []*chain[T]
	size    int
	hash    HashFunc[T]
}

// HashOption configures a HashSet
type HashOption func(*hashOptions)

type hashOptions struct {
	capacity int
}

// WithCapacity sets the initial number of chains, it must be at least 1
func WithCapacity(capacity int) HashOption {
	return func(o *hashOptions) {
		o.capacity = capacity
	}
}

// NewHashSet creates an empty HashSet that places elements using hash.
// It panics if hash is nil or the capacity option is below 1.
func NewHashSet[T comparable](hash HashFunc[T], opts ...HashOption) *HashSet[T] {
	if hash == nil {
		panic(ErrNoHashFunc)
	}

	var o = hashOptions{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	if o.capacity < 1 {
		panic(fmt.Sprintf("hash set capacity must be positive, got %d", o.capacity))
	}

	return &HashSet[T]{
		buckets: make([]*chain[T], o.capacity),
		hash:    hash,
	}
}

// index reduces the hash of element to a bucket index, so any hash value is safe
func (s *HashSet[T]) index(element T, capacity int) int {
	return int(s.hash(element) % uint64(capacity))
}

// Add inserts element unless it is already present
func (s *HashSet[T]) Add(element T) {
	var i = s.index(element, len(s.buckets))
	for c := s.buckets[i]; c != nil; c = c.next {
		if same(c.element, element) {
			return
		}
	}

	s.buckets[i] = &chain[T]{element: element, next: s.buckets[i]}
	s.size++

	if float64(s.size)/float64(len(s.buckets)) > MaxLoadFactor {
		s.grow()
	}
}

// same is == except that NaN equals NaN, matching cmp.Compare used by the ordered variants
func same[T comparable](a, b T) bool {
	return a == b || (a != a && b != b) //nolint:gocritic // x != x only holds for NaN
}

// grow doubles the bucket array and moves every chain node to its new bucket
func (s *HashSet[T]) grow() {
	var buckets = make([]*chain[T], 2*len(s.buckets))
	for _, c := range s.buckets {
		for c != nil {
			next := c.next
			i := s.index(c.element, len(buckets))
			c.next = buckets[i]
			buckets[i] = c
			c = next
		}
	}

	s.buckets = buckets
}

// Contains reports whether element is in the table
func (s *HashSet[T]) Contains(element T) bool {
	for c := s.buckets[s.index(element, len(s.buckets))]; c != nil; c = c.next {
		if same(c.element, element) {
			return true
		}
	}

	return false
}

// Size returns the number of elements
func (s *HashSet[T]) Size() int {
	return s.size
}

// Capacity returns the current number of chains
func (s *HashSet[T]) Capacity() int {
	return len(s.buckets)
}

// LoadFactor returns size/capacity
func (s *HashSet[T]) LoadFactor() float64 {
	return float64(s.size) / float64(len(s.buckets))
}

// Clone returns a deep copy that shares no chain nodes with s.
// The copy uses the same hash function.
func (s *HashSet[T]) Clone() *HashSet[T] {
	var buckets = make([]*chain[T], len(s.buckets))
	for i, c := range s.buckets {
		var link = &buckets[i]
		for ; c != nil; c = c.next {
			*link = &chain[T]{element: c.element}
			link = &(*link).next
		}
	}

	return &HashSet[T]{buckets: buckets, size: s.size, hash: s.hash}
}

// Validate checks that every element sits in the chain its hash selects,
// that no element is stored twice and that the load factor is within bounds
func (s *HashSet[T]) Validate() error {
	var (
		count int
		seen  = make(map[T]struct{}, s.size)
	)

	for i, c := range s.buckets {
		for ; c != nil; c = c.next {
			if want := s.index(c.element, len(s.buckets)); want != i {
				return corrupted("element %v is in chain %d, hash selects chain %d", c.element, i, want)
			}
			if _, dup := seen[c.element]; dup {
				return corrupted("element %v is stored twice", c.element)
			}
			seen[c.element] = struct{}{}
			count++
		}
	}

	if count != s.size {
		return corrupted("hash set holds %d elements but reports size %d", count, s.size)
	}
	if s.LoadFactor() > MaxLoadFactor {
		return corrupted("load factor %.3f exceeds %.1f", s.LoadFactor(), MaxLoadFactor)
	}

	return nil
}
