package set

import (
	"cmp"
)

// BST is a Set backed by a plain binary search tree.
// It never rebalances, so sorted input degrades Add and Contains to O(n).
type BST[T cmp.Ordered] struct {
	root *node[T]
	size int
}

// NewBST creates an empty BST
func NewBST[T cmp.Ordered]() *BST[T] {
	return &BST[T]{}
}

// Add inserts element unless it is already present
func (s *BST[T]) Add(element T) {
	var link = &s.root
	for *link != nil {
		switch c := cmp.Compare(element, (*link).element); {
		case c < 0:
			link = &(*link).left
		case c > 0:
			link = &(*link).right
		default:
			return
		}
	}

	*link = &node[T]{element: element}
	s.size++
}

// Contains reports whether element is in the tree
func (s *BST[T]) Contains(element T) bool {
	return find(s.root, element)
}

// Size returns the number of elements
func (s *BST[T]) Size() int {
	return s.size
}

// Height returns the number of nodes on the longest root-to-leaf path
func (s *BST[T]) Height() int {
	return treeHeight(s.root)
}

// Clone returns a deep copy that shares no nodes with s
func (s *BST[T]) Clone() *BST[T] {
	return &BST[T]{root: cloneTree(s.root), size: s.size}
}

// Validate checks search order and the element count
func (s *BST[T]) Validate() error {
	count, _, err := checkTree(s.root, nil, nil, false)
	if err != nil {
		return err
	}
	if count != s.size {
		return corrupted("bst holds %d nodes but reports size %d", count, s.size)
	}

	return nil
}
