package suballoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/mem"
)

func TestReallocate_SameClassInPlace(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	r, err := sa.Allocate(1)
	require.NoError(t, err)

	grown, err := sa.Reallocate(r, 2)
	require.NoError(t, err)
	assert.Equal(t, r.Offset, grown.Offset)
	assert.Equal(t, 2, grown.Size)
	assert.True(t, sa.IsAllocated(grown))
	assert.False(t, sa.IsAllocated(r), "old size no longer recorded")

	shrunk, err := sa.Reallocate(grown, 1)
	require.NoError(t, err)
	assert.Equal(t, r, shrunk)
	requireConsistent(t, sa)
}

func TestReallocate_ShrinkMoves(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	r, err := sa.Allocate(4)
	require.NoError(t, err)

	moved, err := sa.Reallocate(r, 2)
	require.NoError(t, err)
	assert.NotEqual(t, r.Offset, moved.Offset)
	assert.Equal(t, 2, moved.Size)
	assert.False(t, sa.IsAllocated(r))
	assert.True(t, sa.IsAllocated(moved))

	class, err := sa.ClassOf(moved.Size)
	require.NoError(t, err)
	assert.Equal(t, 2, class)

	st := sa.Stats()
	assert.Equal(t, 1, st.Allocations)
	assert.Equal(t, 2, st.Reserved, "now in a class 2 slot")
	requireConsistent(t, sa)
}

func TestReallocate_ShrinkFallsBackInPlace(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	var live []mem.RangeOf[byte]
	for _i := 0; _i < 4; _i++ {
		r, err := sa.Allocate(4)
		require.NoError(t, err)
		live = append(live, r)
	}
	require.False(t, sa.CanAllocate(2))
	require.True(t, sa.CanReallocate(live[1], 2))

	shrunk, err := sa.Reallocate(live[1], 2)
	require.NoError(t, err)
	assert.Equal(t, live[1].Offset, shrunk.Offset)
	assert.Equal(t, 2, shrunk.Size)
	assert.True(t, sa.IsAllocated(shrunk))

	st := sa.Stats()
	assert.Equal(t, 16, st.Reserved, "still in its class 4 slot")
	assert.Equal(t, 14, st.Requested)
	requireConsistent(t, sa)
}

func TestReallocate_GrowMoves(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	r, err := sa.Allocate(1)
	require.NoError(t, err)
	require.True(t, sa.CanReallocate(r, 4))

	moved, err := sa.Reallocate(r, 4)
	require.NoError(t, err)
	assert.NotEqual(t, r.Offset, moved.Offset)
	assert.Equal(t, 4, moved.Size)
	assert.False(t, sa.IsAllocated(r))
	assert.True(t, sa.IsAllocated(moved))
	assert.Len(t, sa.Allocations(), 1)
	requireConsistent(t, sa)
}

func TestReallocate_GrowWithoutSpace(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	r, err := sa.Allocate(1)
	require.NoError(t, err)
	for _i := 0; _i < 3; _i++ {
		_, err := sa.Allocate(4)
		require.NoError(t, err)
	}

	assert.False(t, sa.CanReallocate(r, 4))
	assert.True(t, sa.CanReallocate(r, 2), "same class always fits")

	_, err = sa.Reallocate(r, 4)
	assert.ErrorIs(t, err, ErrInsufficientSpace)
	assert.True(t, sa.IsAllocated(r), "failed grow keeps the original")
	requireConsistent(t, sa)
}

func TestReallocate_Errors(t *testing.T) {
	sa := newPot(t, 16, 4, 2)

	r, err := sa.Allocate(2)
	require.NoError(t, err)

	tests := []struct {
		name  string
		r     mem.RangeOf[byte]
		size  int
		cause error
	}{
		{"not allocated", mem.NewRange[byte](8, 2), 2, ErrNotAllocated},
		{"out of bounds", mem.NewRange[byte](20, 2), 2, ErrOutOfBounds},
		{"zero size", r, 0, ErrInvalidSize},
		{"too big", r, 5, ErrSizeTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sa.CanReallocate(tt.r, tt.size))

			_, err := sa.Reallocate(tt.r, tt.size)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInsufficientSpace)
			assert.ErrorIs(t, err, tt.cause)
		})
	}

	assert.True(t, sa.IsAllocated(r))
	requireConsistent(t, sa)
}

func TestReallocate_CallerRelocatesPayload(t *testing.T) {
	memory := make([]int32, 16)
	cfg, err := Pot(mem.NewRange[int32](0, len(memory)), 4, 2)
	require.NoError(t, err)
	sa, err := NewSegregatedSlab(cfg)
	require.NoError(t, err)

	r, err := sa.Allocate(2)
	require.NoError(t, err)
	fill(memory, r, 9)

	moved, err := sa.Reallocate(r, 3)
	require.NoError(t, err)
	require.NotEqual(t, r.Offset, moved.Offset)

	// Reallocate only moves coordinates.
	for i := moved.Offset; i < moved.End(); i++ {
		assert.Zero(t, memory[i])
	}

	n := mem.CopyWithin(memory, r, moved)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int32{9, 9, 0}, memory[moved.Offset:moved.End()])
}
