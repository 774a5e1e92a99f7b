package set

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSetGrowth(t *testing.T) {
	s := NewHashSet[int](HashInt[int])
	require.Equal(t, DefaultCapacity, s.Capacity())

	var capacities = []int{s.Capacity()}
	for i := 0; i < 100; i++ {
		s.Add(i)
		if c := s.Capacity(); c != capacities[len(capacities)-1] {
			capacities = append(capacities, c)
		}
		require.LessOrEqual(t, s.LoadFactor(), MaxLoadFactor)
	}

	assert.Equal(t, []int{10, 20, 40, 80, 160}, capacities)
	assert.Equal(t, 100, s.Size())
	for i := 0; i < 100; i++ {
		assert.True(t, s.Contains(i), "lost %d", i)
	}
	assert.False(t, s.Contains(100))
	assert.NoError(t, s.Validate())
}

func TestHashSetGrowsOnlyPastThreshold(t *testing.T) {
	s := NewHashSet[int](HashInt[int])
	for i := 0; i < 8; i++ {
		s.Add(i)
	}
	// 8/10 is not above 0.8
	assert.Equal(t, 10, s.Capacity())

	s.Add(8)
	assert.Equal(t, 20, s.Capacity())

	// duplicates never count towards the load
	for i := 0; i < 9; i++ {
		s.Add(i)
	}
	assert.Equal(t, 20, s.Capacity())
	assert.Equal(t, 9, s.Size())
}

func TestHashSetCollisions(t *testing.T) {
	constant := func(string) uint64 { return 7 }
	s := NewHashSet[string](constant, WithCapacity(4))

	for _, w := range []string{"a", "b", "c", "a", "d", "e"} {
		s.Add(w)
	}

	assert.Equal(t, 5, s.Size())
	for _, w := range []string{"a", "b", "c", "d", "e"} {
		assert.True(t, s.Contains(w))
	}
	assert.False(t, s.Contains("f"))
	assert.NoError(t, s.Validate())
}

func TestHashSetAnyHashValueIsInRange(t *testing.T) {
	huge := func(v int) uint64 { return math.MaxUint64 - uint64(v) }
	s := NewHashSet[int](huge, WithCapacity(3))

	for i := 0; i < 50; i++ {
		s.Add(i)
	}

	assert.Equal(t, 50, s.Size())
	assert.True(t, s.Contains(49))
	assert.NoError(t, s.Validate())
}

func TestHashSetContractViolations(t *testing.T) {
	assert.Panics(t, func() { NewHashSet[string](nil) })
	assert.Panics(t, func() { NewHashSet[string](HashString, WithCapacity(0)) })
	assert.NotPanics(t, func() { NewHashSet[string](HashString, WithCapacity(1)) })
}

func TestHashSetCloneIsDeep(t *testing.T) {
	s := NewHashSet[string](HashStringCity)
	for _, w := range []string{"alpha", "beta", "gamma"} {
		s.Add(w)
	}

	c := s.Clone()
	require.NoError(t, c.Validate())
	assert.Equal(t, s.Capacity(), c.Capacity())

	for i := range s.buckets {
		if s.buckets[i] != nil {
			assert.NotSame(t, s.buckets[i], c.buckets[i])
		}
	}

	c.Add("delta")
	assert.True(t, c.Contains("delta"))
	assert.False(t, s.Contains("delta"))
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, 4, c.Size())
}

func TestHashSetValidateDetectsMisplacedElement(t *testing.T) {
	s := NewHashSet[int](func(v int) uint64 { return uint64(v) })
	s.Add(1)
	s.Add(2)

	// move 2 into the chain of 1
	s.buckets[1].next, s.buckets[2] = s.buckets[2], nil
	assert.ErrorIs(t, s.Validate(), ErrCorrupted)
}

func TestStringHashFunc(t *testing.T) {
	h, ok := StringHashFunc("")
	require.True(t, ok)
	assert.Equal(t, HashString("word"), h("word"))

	h, ok = StringHashFunc("city")
	require.True(t, ok)
	assert.Equal(t, HashStringCity("word"), h("word"))

	_, ok = StringHashFunc("md5")
	assert.False(t, ok)

	assert.Equal(t, HashInt(42), HashInt(42))
}

func TestHashSetFloatsAgreeWithOrderedSets(t *testing.T) {
	values := []float64{math.NaN(), 1.5, math.NaN(), math.Copysign(0, -1), 0, math.Inf(1), 1.5}

	h := NewHashSet[float64](HashFloat[float64])
	avl := NewAVL[float64]()
	for _, v := range values {
		h.Add(v)
		avl.Add(v)
	}

	assert.Equal(t, 4, avl.Size())
	assert.Equal(t, avl.Size(), h.Size())
	assert.True(t, h.Contains(math.NaN()))
	assert.True(t, h.Contains(0))
	assert.True(t, h.Contains(math.Copysign(0, -1)))
	assert.False(t, h.Contains(2))
	assert.NoError(t, h.Validate())

	assert.Equal(t, HashFloat(math.NaN()), HashFloat(-math.NaN()))
	assert.Equal(t, HashFloat(float32(0)), HashFloat(math.Copysign(0, -1)))
}
