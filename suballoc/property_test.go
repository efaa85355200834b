package suballoc

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/mem"
)

// runRandomOps drives sa with seeded alloc/free/realloc and returns the
// sequence of ranges handed out.
func runRandomOps(t *testing.T, sa *SegregatedSlab[byte], seed int64, steps int) []mem.RangeOf[byte] {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	maxClass := sa.classes[len(sa.classes)-1]
	live := map[mem.RangeOf[byte]]bool{}
	var trace []mem.RangeOf[byte]

	pick := func() mem.RangeOf[byte] {
		// Allocations() is ordered, so the pick is reproducible.
		all := sa.Allocations()
		return all[rng.Intn(len(all))]
	}

	for step := 0; step < steps; step++ {
		op := rng.Intn(10)
		switch {
		case op < 5 || len(live) == 0: // allocate
			size := 1 + rng.Intn(maxClass)
			can := sa.CanAllocate(size)
			r, err := sa.Allocate(size)
			if err != nil {
				require.ErrorIs(t, err, ErrInsufficientSpace, "step %d", step)
				require.False(t, can, "step %d: CanAllocate(%d) lied", step, size)
				break
			}
			require.True(t, can, "step %d", step)
			require.Equal(t, size, r.Size)
			require.False(t, live[r], "step %d: %s handed out twice", step, r)
			live[r] = true
			trace = append(trace, r)

		case op < 8: // deallocate
			r := pick()
			require.NoError(t, sa.Deallocate(r), "step %d", step)
			delete(live, r)
			require.False(t, sa.IsAllocated(r))

		default: // reallocate
			r := pick()
			size := 1 + rng.Intn(maxClass)
			can := sa.CanReallocate(r, size)
			moved, err := sa.Reallocate(r, size)
			if err != nil {
				require.ErrorIs(t, err, ErrInsufficientSpace, "step %d", step)
				require.False(t, can, "step %d", step)
				require.True(t, sa.IsAllocated(r), "step %d: failed realloc lost %s", step, r)
				break
			}
			require.True(t, can, "step %d", step)
			require.Equal(t, size, moved.Size)
			delete(live, r)
			live[moved] = true
			trace = append(trace, moved)
		}

		requireConsistent(t, sa)
		require.Len(t, sa.Allocations(), len(live), "step %d", step)
		require.Equal(t, len(live), sa.Stats().Allocations, "step %d", step)
	}
	return trace
}

func TestProperty_RandomOpsKeepInvariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		sa := newPot(t, 1024, 64, 2)
		runRandomOps(t, sa, seed, 500)
	}
}

func TestProperty_RandomOpsNonPot(t *testing.T) {
	cfg, err := NewSegregatedSlabConfig(mem.NewRange[byte](0, 360), 60, []int{3, 5, 12, 20, 60})
	require.NoError(t, err)
	sa, err := NewSegregatedSlab(cfg)
	require.NoError(t, err)
	runRandomOps(t, sa, 99, 400)
}

func TestProperty_ClassNeverExceeded(t *testing.T) {
	sa := newPot(t, 512, 32, 1)
	rng := rand.New(rand.NewSource(5))

	for _i := 0; _i < 200; _i++ {
		size := 1 + rng.Intn(32)
		r, err := sa.Allocate(size)
		if errors.Is(err, ErrInsufficientSpace) {
			break
		}
		require.NoError(t, err)

		i := r.Offset / sa.SlabSize()
		class := sa.slabs[i].class
		assert.LessOrEqual(t, r.Size, class)
		assert.True(t, r.IsSubrangeOf(sa.slabs[i].rng), "%s crosses slab %d", r, i)
	}
}

func TestDeterminism_SameSeedSameRanges(t *testing.T) {
	a := runRandomOps(t, newPot(t, 512, 32, 2), 2024, 300)
	b := runRandomOps(t, newPot(t, 512, 32, 2), 2024, 300)
	assert.Equal(t, a, b, "allocations must be deterministic")
}
