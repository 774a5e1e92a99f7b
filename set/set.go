// Package set provides interchangeable Set implementations with different
// performance and ordering trade-offs.
//
// Four variants share one contract (Add, Contains, Size):
//
//   - BST: unbalanced binary search tree, O(n) worst case on sorted input
//   - AVL: height-balanced binary search tree, O(log n) Add and Contains
//   - HashSet: separately-chained hash table, expected O(1), doubles past 0.8 load
//   - SkipList: probabilistic skip list with sentinel-bounded levels, expected O(log n)
//
// None of the variants is safe for concurrent use. Callers that share a Set
// between goroutines must serialize access themselves.
//
// Example:
//
//	words, err := set.New[string](set.KindAVL, set.HashString)
//	if err != nil {
//	    return err
//	}
//	words.Add("APPLE")
//	words.Contains("APPLE") // true
package set

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownKind is returned for a Set variant name that is not registered
	ErrUnknownKind = errors.New("unknown set kind")
	// ErrNoHashFunc is returned when a hash table is requested without a hash function
	ErrNoHashFunc = errors.New("hash set requires a hash function")
	// ErrCorrupted is wrapped by every Validate error
	ErrCorrupted = errors.New("set structure is corrupted")
)

// Reader is the read side of a Set
type Reader[T any] interface {
	// Contains reports whether element has been added to the set
	Contains(element T) bool
}

// Set is a collection of unique elements
type Set[T any] interface {
	Reader[T]

	// Add inserts element, adding an element that is already present has no effect
	Add(element T)

	// Size returns the number of distinct elements added so far
	Size() int
}

// Validator is implemented by every variant in this package.
// Validate walks the whole structure and reports the first broken invariant.
type Validator interface {
	Validate() error
}

// Kind names a Set variant
type Kind string

const (
	KindBST      Kind = "bst"      // KindBST is the unbalanced binary search tree
	KindAVL      Kind = "avl"      // KindAVL is the height-balanced binary search tree
	KindHash     Kind = "hash"     // KindHash is the separately-chained hash table
	KindSkipList Kind = "skiplist" // KindSkipList is the probabilistic skip list
)

// Kinds returns all variant names in a stable order
func Kinds() []Kind {
	return []Kind{KindBST, KindAVL, KindHash, KindSkipList}
}

// ParseKind converts a variant name into a Kind
func ParseKind(name string) (Kind, error) {
	var k = Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: '%s'", ErrUnknownKind, name)
}

// New creates an empty Set of the given kind.
// hash is used only by KindHash and may be nil for the other kinds.
func New[T cmp.Ordered](kind Kind, hash HashFunc[T]) (Set[T], error) {
	switch kind {
	case KindBST:
		return NewBST[T](), nil
	case KindAVL:
		return NewAVL[T](), nil
	case KindHash:
		if hash == nil {
			return nil, ErrNoHashFunc
		}
		return NewHashSet[T](hash), nil
	case KindSkipList:
		return NewSkipList[T](), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownKind, kind)
	}
}

// AddAll adds every element of elements to s
func AddAll[T any](s Set[T], elements ...T) {
	for _, e := range elements {
		s.Add(e)
	}
}

func corrupted(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupted, fmt.Sprintf(format, args...))
}
