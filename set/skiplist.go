package set

import (
	"cmp"
	"math/rand"
)

// DefaultMaxLevels caps the number of skip list levels (base level included)
const DefaultMaxLevels = 32

// keyKind tells a normal key from the -INF and +INF sentinels
type keyKind uint8

const (
	negInf keyKind = iota
	normal
	posInf
)

// key is a skip list key: -INF, +INF or a normal value
type key[T cmp.Ordered] struct {
	kind  keyKind
	value T
}

// compare orders k against a normal value v, sentinels bound every value
func (k key[T]) compare(v T) int {
	switch k.kind {
	case negInf:
		return -1
	case posInf:
		return 1
	default:
		return cmp.Compare(k.value, v)
	}
}

// less orders two keys, -INF < normal values < +INF
func (k key[T]) less(other key[T]) bool {
	if k.kind != normal || other.kind != normal {
		return k.kind < other.kind
	}

	return cmp.Less(k.value, other.value)
}

func (k key[T]) equal(other key[T]) bool {
	return k.kind == other.kind && (k.kind != normal || cmp.Compare(k.value, other.value) == 0)
}

// skipNode owns the node that follows it on its level, below points at the
// node holding the same key one level down and is nil on the base level
type skipNode[T cmp.Ordered] struct {
	key   key[T]
	next  *skipNode[T]
	below *skipNode[T]
}

// Coin decides whether a freshly inserted key is promoted one more level
type Coin func() bool

// SkipList is a Set backed by a skip list.
// heads[0] is the -INF sentinel of the base level that holds every element,
// each following level is a sparser sorted subsequence of the one below.
// Every level is bounded by its own -INF and +INF sentinels.
type SkipList[T cmp.Ordered] struct {
	heads     []*skipNode[T]
	size      int
	coin      Coin
	maxLevels int
}

// SkipListOption configures a SkipList
type SkipListOption func(*skipListOptions)

type skipListOptions struct {
	coin      Coin
	seed      int64
	maxLevels int
}

// WithSeed seeds the default coin
func WithSeed(seed int64) SkipListOption {
	return func(o *skipListOptions) {
		o.seed = seed
	}
}

// WithRand flips coins using r
func WithRand(r *rand.Rand) SkipListOption {
	return func(o *skipListOptions) {
		o.coin = func() bool {
			return r.Int63()&1 == 1
		}
	}
}

// WithCoin replaces the random coin, tests use it to force level layouts
func WithCoin(coin Coin) SkipListOption {
	return func(o *skipListOptions) {
		o.coin = coin
	}
}

// WithMaxLevels caps the number of levels, values below 1 are ignored
func WithMaxLevels(levels int) SkipListOption {
	return func(o *skipListOptions) {
		if levels > 0 {
			o.maxLevels = levels
		}
	}
}

// NewSkipList creates an empty SkipList.
// Without options coins come from a math/rand source seeded with 1.
func NewSkipList[T cmp.Ordered](opts ...SkipListOption) *SkipList[T] {
	var o = skipListOptions{seed: 1, maxLevels: DefaultMaxLevels}
	for _, opt := range opts {
		opt(&o)
	}

	if o.coin == nil {
		WithRand(rand.New(rand.NewSource(o.seed)))(&o) //nolint:gosec
	}

	return &SkipList[T]{coin: o.coin, maxLevels: o.maxLevels}
}

// newLevel creates a -INF/+INF sentinel pair whose below links point at the
// sentinels of the level underneath (nil for the base level)
func newLevel[T cmp.Ordered](belowHead, belowTail *skipNode[T]) *skipNode[T] {
	var tail = &skipNode[T]{key: key[T]{kind: posInf}, below: belowTail}

	return &skipNode[T]{key: key[T]{kind: negInf}, next: tail, below: belowHead}
}

// lastNode returns the +INF sentinel of the level starting at head
func lastNode[T cmp.Ordered](head *skipNode[T]) *skipNode[T] {
	var n = head
	for n.next != nil {
		n = n.next
	}

	return n
}

// Add inserts element unless it is already present, then promotes it
// level by level for as long as the coin says so
func (s *SkipList[T]) Add(element T) {
	if len(s.heads) == 0 {
		s.heads = append(s.heads, newLevel[T](nil, nil))
	}

	// preds[i] is the last node on level i whose key is less than element
	var preds = make([]*skipNode[T], len(s.heads))
	var n = s.heads[len(s.heads)-1]
	for level := len(s.heads) - 1; ; level-- {
		for n.next.key.compare(element) < 0 {
			n = n.next
		}
		preds[level] = n
		if level == 0 {
			break
		}
		n = n.below
	}

	if next := preds[0].next; next.key.compare(element) == 0 {
		return
	}

	var below *skipNode[T]
	for level := 0; ; level++ {
		if level == len(s.heads) {
			var top = s.heads[level-1]
			var head = newLevel(top, lastNode(top))
			s.heads = append(s.heads, head)
			preds = append(preds, head)
		}

		var pred = preds[level]
		var inserted = &skipNode[T]{key: key[T]{kind: normal, value: element}, next: pred.next, below: below}
		pred.next = inserted
		below = inserted

		if level+1 >= s.maxLevels || !s.coin() {
			break
		}
	}

	s.size++
}

// Contains reports whether element is in the list
func (s *SkipList[T]) Contains(element T) bool {
	if len(s.heads) == 0 {
		return false
	}

	var n = s.heads[len(s.heads)-1]
	for {
		for {
			c := n.next.key.compare(element)
			if c == 0 {
				return true
			}
			if c > 0 {
				break
			}
			n = n.next
		}

		if n.below == nil {
			return false
		}
		n = n.below
	}
}

// Size returns the number of elements
func (s *SkipList[T]) Size() int {
	return s.size
}

// Levels returns the number of levels, 0 before the first Add
func (s *SkipList[T]) Levels() int {
	return len(s.heads)
}

// LevelSizes returns the number of normal keys on every level, base level first
func (s *SkipList[T]) LevelSizes() []int {
	var sizes = make([]int, len(s.heads))
	for i, head := range s.heads {
		for n := head.next; n.key.kind == normal; n = n.next {
			sizes[i]++
		}
	}

	return sizes
}

// Clone returns a deep copy that shares no nodes with s.
// The copy keeps flipping the same coin.
func (s *SkipList[T]) Clone() *SkipList[T] {
	var c = &SkipList[T]{
		heads:     make([]*skipNode[T], len(s.heads)),
		size:      s.size,
		coin:      s.coin,
		maxLevels: s.maxLevels,
	}

	for level, head := range s.heads {
		// oldBelow and newBelow walk the level underneath in lockstep, every
		// below link of this level points forward of the previous one
		var oldBelow, newBelow *skipNode[T]
		if level > 0 {
			oldBelow, newBelow = s.heads[level-1], c.heads[level-1]
		}

		var link = &c.heads[level]
		for n := head; n != nil; n = n.next {
			var copied = &skipNode[T]{key: n.key}
			if n.below != nil {
				for oldBelow != n.below {
					oldBelow, newBelow = oldBelow.next, newBelow.next
				}
				copied.below = newBelow
			}
			*link = copied
			link = &copied.next
		}
	}

	return c
}

// Validate checks that every level is sorted between its sentinels, that every
// node above the base level links down to a node with the same key on the level
// underneath and that the base level holds exactly Size elements
func (s *SkipList[T]) Validate() error {
	if len(s.heads) == 0 {
		if s.size != 0 {
			return corrupted("skip list has no levels but reports size %d", s.size)
		}
		return nil
	}

	for level, head := range s.heads {
		if head.key.kind != negInf {
			return corrupted("level %d does not start with -INF", level)
		}

		var below *skipNode[T]
		if level > 0 {
			below = s.heads[level-1]
		}

		var count int
		var prev *skipNode[T]
		for n := head; n != nil; prev, n = n, n.next {
			if prev != nil && !prev.key.less(n.key) {
				return corrupted("level %d is not strictly increasing at %v", level, n.key.value)
			}
			if n.key.kind == normal {
				count++
			}
			if n.next == nil && n.key.kind != posInf {
				return corrupted("level %d does not end with +INF", level)
			}

			if level == 0 {
				if n.below != nil {
					return corrupted("base level node %v has a below link", n.key.value)
				}
				continue
			}

			// the below target must be reachable on the lower level at or after
			// the previous target
			if n.below == nil {
				return corrupted("level %d node %v has no below link", level, n.key.value)
			}
			for below != nil && below != n.below {
				below = below.next
			}
			if below == nil {
				return corrupted("level %d node %v links below to a node outside level %d", level, n.key.value, level-1)
			}
			if !below.key.equal(n.key) {
				return corrupted("level %d node %v links below to key %v", level, n.key.value, below.key.value)
			}
		}

		if level == 0 && count != s.size {
			return corrupted("base level holds %d elements but size is %d", count, s.size)
		}
		if level > 0 && count == 0 {
			return corrupted("level %d holds no elements", level)
		}
	}

	return nil
}
