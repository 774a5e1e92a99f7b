package set

import (
	"cmp"
)

// node is a binary search tree node owned by exactly one parent (or the root).
// height is maintained by AVL only, BST leaves it at zero.
type node[T cmp.Ordered] struct {
	element T
	left    *node[T]
	right   *node[T]
	height  int
}

// find looks element up starting at n
func find[T cmp.Ordered](n *node[T], element T) bool {
	for n != nil {
		switch c := cmp.Compare(element, n.element); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return true
		}
	}

	return false
}

// cloneTree recreates every node of the subtree rooted at n
func cloneTree[T cmp.Ordered](n *node[T]) *node[T] {
	if n == nil {
		return nil
	}

	return &node[T]{
		element: n.element,
		left:    cloneTree(n.left),
		right:   cloneTree(n.right),
		height:  n.height,
	}
}

// treeHeight measures the subtree rooted at n, an absent subtree has height 0
func treeHeight[T cmp.Ordered](n *node[T]) int {
	if n == nil {
		return 0
	}

	return 1 + max(treeHeight(n.left), treeHeight(n.right))
}

// checkTree verifies search order within the open interval (lo, hi) and,
// when balanced is set, the cached heights and the AVL balance condition.
// It returns the number of nodes and the measured height of the subtree.
func checkTree[T cmp.Ordered](n *node[T], lo, hi *T, balanced bool) (count int, height int, err error) {
	if n == nil {
		return 0, 0, nil
	}

	if lo != nil && cmp.Compare(n.element, *lo) <= 0 {
		return 0, 0, corrupted("element %v is not greater than its lower bound %v", n.element, *lo)
	}
	if hi != nil && cmp.Compare(n.element, *hi) >= 0 {
		return 0, 0, corrupted("element %v is not less than its upper bound %v", n.element, *hi)
	}

	lc, lh, err := checkTree(n.left, lo, &n.element, balanced)
	if err != nil {
		return 0, 0, err
	}
	rc, rh, err := checkTree(n.right, &n.element, hi, balanced)
	if err != nil {
		return 0, 0, err
	}

	height = 1 + max(lh, rh)
	if balanced {
		if n.height != height {
			return 0, 0, corrupted("node %v caches height %d, measured %d", n.element, n.height, height)
		}
		if diff := lh - rh; diff > 1 || diff < -1 {
			return 0, 0, corrupted("node %v has balance factor %d", n.element, diff)
		}
	}

	return lc + rc + 1, height, nil
}
