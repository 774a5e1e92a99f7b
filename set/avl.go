package set

import (
	"cmp"
)

// AVL is a Set backed by a height-balanced binary search tree.
// After every insertion each ancestor of the new leaf is rebalanced bottom-up,
// so for every node the heights of its subtrees differ by at most one and
// Add and Contains run in O(log n).
type AVL[T cmp.Ordered] struct {
	root *node[T]
	size int
}

// NewAVL creates an empty AVL tree
func NewAVL[T cmp.Ordered]() *AVL[T] {
	return &AVL[T]{}
}

// Add inserts element unless it is already present
func (s *AVL[T]) Add(element T) {
	var added bool
	if s.root, added = avlInsert(s.root, element); added {
		s.size++
	}
}

// Contains reports whether element is in the tree
func (s *AVL[T]) Contains(element T) bool {
	return find(s.root, element)
}

// Size returns the number of elements
func (s *AVL[T]) Size() int {
	return s.size
}

// Height returns the height of the root, 0 for an empty tree
func (s *AVL[T]) Height() int {
	return height(s.root)
}

// Clone returns a deep copy that shares no nodes with s
func (s *AVL[T]) Clone() *AVL[T] {
	return &AVL[T]{root: cloneTree(s.root), size: s.size}
}

// Validate checks search order, cached heights, the balance condition and the element count
func (s *AVL[T]) Validate() error {
	count, _, err := checkTree(s.root, nil, nil, true)
	if err != nil {
		return err
	}
	if count != s.size {
		return corrupted("avl holds %d nodes but reports size %d", count, s.size)
	}

	return nil
}

// avlInsert inserts element below n and returns the new subtree root
func avlInsert[T cmp.Ordered](n *node[T], element T) (*node[T], bool) {
	if n == nil {
		return &node[T]{element: element, height: 1}, true
	}

	var added bool
	switch c := cmp.Compare(element, n.element); {
	case c < 0:
		n.left, added = avlInsert(n.left, element)
	case c > 0:
		n.right, added = avlInsert(n.right, element)
	default:
		return n, false
	}

	if !added {
		return n, false
	}

	return rebalance(n), true
}

func height[T cmp.Ordered](n *node[T]) int {
	if n == nil {
		return 0
	}

	return n.height
}

func (n *node[T]) updateHeight() {
	n.height = 1 + max(height(n.left), height(n.right))
}

// balanceFactor is the left subtree height minus the right subtree height
func balanceFactor[T cmp.Ordered](n *node[T]) int {
	if n == nil {
		return 0
	}

	return height(n.left) - height(n.right)
}

// rebalance restores the AVL condition at n, whose subtrees are already balanced
func rebalance[T cmp.Ordered](n *node[T]) *node[T] {
	n.updateHeight()

	switch bf := balanceFactor(n); {
	case bf > 1:
		// left-right case
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case bf < -1:
		// right-left case
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}

	return n
}

//	    n            l
//	   / \          / \
//	  l   c  =>    a   n
//	 / \              / \
//	a   b            b   c
func rotateRight[T cmp.Ordered](n *node[T]) *node[T] {
	l := n.left
	n.left = l.right
	l.right = n

	n.updateHeight()
	l.updateHeight()

	return l
}

//	  n                r
//	 / \              / \
//	a   r     =>     n   c
//	   / \          / \
//	  b   c        a   b
func rotateLeft[T cmp.Ordered](n *node[T]) *node[T] {
	r := n.right
	n.right = r.left
	r.left = n

	n.updateHeight()
	r.updateHeight()

	return r
}
