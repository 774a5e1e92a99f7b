package set

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCoin replays outcomes and then keeps answering false
func scriptedCoin(outcomes ...bool) Coin {
	return func() bool {
		if len(outcomes) == 0 {
			return false
		}
		o := outcomes[0]
		outcomes = outcomes[1:]
		return o
	}
}

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList[int]()
	for _, v := range []int{5, 1, 9, 3} {
		s.Add(v)
	}

	assert.True(t, s.Contains(9))
	assert.False(t, s.Contains(7))
	assert.Equal(t, 4, s.Size())
	assert.NoError(t, s.Validate())
}

func TestSkipListEmpty(t *testing.T) {
	s := NewSkipList[string]()
	assert.False(t, s.Contains("a"))
	assert.Equal(t, 0, s.Levels())
	assert.NoError(t, s.Validate())
}

func TestSkipListNeverPromoted(t *testing.T) {
	s := NewSkipList[int](WithCoin(func() bool { return false }))
	for i := 10; i > 0; i-- {
		s.Add(i)
	}

	assert.Equal(t, 1, s.Levels())
	assert.Equal(t, []int{10}, s.LevelSizes())
	assert.NoError(t, s.Validate())
}

func TestSkipListAlwaysPromotedIsCapped(t *testing.T) {
	s := NewSkipList[int](WithCoin(func() bool { return true }), WithMaxLevels(4))
	for i := 0; i < 20; i++ {
		s.Add(i)
		require.NoError(t, s.Validate())
	}

	assert.Equal(t, 4, s.Levels())
	assert.Equal(t, []int{20, 20, 20, 20}, s.LevelSizes())
}

func TestSkipListScriptedLevels(t *testing.T) {
	// 5 reaches level 2, 1 stays on the base level, 9 reaches level 1,
	// 3 reaches level 3 and creates a new top level
	s := NewSkipList[int](WithCoin(scriptedCoin(
		true, true, false,
		false,
		true, false,
		true, true, true, false,
	)))

	for _, v := range []int{5, 1, 9, 3} {
		s.Add(v)
		require.NoError(t, s.Validate())
	}

	assert.Equal(t, 4, s.Levels())
	assert.Equal(t, []int{4, 3, 2, 1}, s.LevelSizes())

	for _, v := range []int{1, 3, 5, 9} {
		assert.True(t, s.Contains(v), "%d", v)
	}
	for _, v := range []int{0, 2, 4, 6, 10} {
		assert.False(t, s.Contains(v), "%d", v)
	}

	// the top level holds only 3 and its below chain reaches the base level
	top := s.heads[3].next
	require.Equal(t, 3, top.key.value)
	depth := 0
	for n := top; n != nil; n = n.below {
		assert.Equal(t, 3, n.key.value)
		depth++
	}
	assert.Equal(t, 4, depth)
}

func TestSkipListDuplicateDoesNotFlip(t *testing.T) {
	flips := 0
	s := NewSkipList[string](WithCoin(func() bool {
		flips++
		return false
	}))

	s.Add("a")
	s.Add("a")
	s.Add("a")

	assert.Equal(t, 1, flips)
	assert.Equal(t, 1, s.Size())
}

func TestSkipListSeededIsDeterministic(t *testing.T) {
	a := NewSkipList[int](WithSeed(99))
	b := NewSkipList[int](WithRand(rand.New(rand.NewSource(99))))
	for i := 0; i < 500; i++ {
		a.Add(i)
		b.Add(i)
	}

	assert.Equal(t, a.LevelSizes(), b.LevelSizes())
	assert.Greater(t, a.Levels(), 1)
}

func TestSkipListLevelsAreSorted(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	s := NewSkipList[int](WithSeed(3))
	for i := 0; i < 3000; i++ {
		s.Add(r.Intn(2000) - 1000)
		if i%100 == 0 {
			require.NoError(t, s.Validate(), "after add #%d", i)
		}
	}
	require.NoError(t, s.Validate())

	sizes := s.LevelSizes()
	for i := 1; i < len(sizes); i++ {
		assert.LessOrEqual(t, sizes[i], sizes[i-1])
	}
	assert.Equal(t, s.Size(), sizes[0])
}

func TestSkipListCloneIsDeep(t *testing.T) {
	s := NewSkipList[string](WithSeed(5))
	for _, w := range []string{"kiwi", "apple", "pear", "fig", "plum", "lime", "date"} {
		s.Add(w)
	}

	c := s.Clone()
	require.NoError(t, c.Validate())
	assert.Equal(t, s.LevelSizes(), c.LevelSizes())

	for level := range s.heads {
		for a, b := s.heads[level], c.heads[level]; a != nil; a, b = a.next, b.next {
			require.NotNil(t, b)
			assert.NotSame(t, a, b)
			assert.True(t, a.key.equal(b.key))
		}
	}

	c.Add("grape")
	assert.True(t, c.Contains("grape"))
	assert.False(t, s.Contains("grape"))
	assert.Equal(t, 7, s.Size())
	assert.Equal(t, 8, c.Size())
	assert.NoError(t, s.Validate())
	assert.NoError(t, c.Validate())
}

func TestSkipListValidateDetectsBrokenBelow(t *testing.T) {
	s := NewSkipList[int](WithCoin(scriptedCoin(false, true, false)))
	s.Add(1)
	s.Add(2)
	require.Equal(t, 2, s.Levels())

	// point the level 1 copy of 2 at the base node holding 1
	s.heads[1].next.below = s.heads[0].next
	assert.ErrorIs(t, s.Validate(), ErrCorrupted)
}

func TestSkipListKeyOrdering(t *testing.T) {
	lo := key[int]{kind: negInf}
	hi := key[int]{kind: posInf}
	one := key[int]{kind: normal, value: 1}
	two := key[int]{kind: normal, value: 2}

	assert.True(t, lo.less(one))
	assert.True(t, one.less(two))
	assert.True(t, two.less(hi))
	assert.True(t, lo.less(hi))
	assert.False(t, hi.less(lo))
	assert.False(t, one.less(one))
	assert.True(t, one.equal(key[int]{kind: normal, value: 1}))
	assert.False(t, lo.equal(one))

	assert.Equal(t, -1, lo.compare(-1000))
	assert.Equal(t, 1, hi.compare(1000))
	assert.Equal(t, 0, two.compare(2))
}
